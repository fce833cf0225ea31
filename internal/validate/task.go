package validate

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taskboard/backend/internal/models"
)

// TaskInput is a raw task payload as decoded from a request body. Everything
// arrives as strings; Task normalizes and checks it.
type TaskInput struct {
	Title    string `json:"title"`
	Details  string `json:"details"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Category string `json:"category"`
	Deadline string `json:"deadline"`
}

var allowedStatus = map[models.TaskStatus]bool{
	models.StatusTodo:       true,
	models.StatusInProgress: true,
	models.StatusDone:       true,
}

var allowedPriority = map[models.TaskPriority]bool{
	models.PriorityLow:    true,
	models.PriorityMedium: true,
	models.PriorityHigh:   true,
}

// Task normalizes raw input into a TaskData and collects every violation
// instead of stopping at the first one. Title, details, status and deadline
// are strict; priority and category silently fall back to their defaults.
// Pure: no clock access beyond "today" for the deadline check.
func Task(in TaskInput) (models.TaskData, Errs) {
	var errs Errs

	title := strings.TrimSpace(in.Title)
	details := strings.TrimSpace(in.Details)

	status := strings.ToLower(strings.TrimSpace(in.Status))
	status = strings.Join(strings.Fields(status), "") // "in progress" -> "inprogress"
	if status == "" {
		status = string(models.StatusTodo)
	}

	priority := models.TaskPriority(strings.ToLower(strings.TrimSpace(in.Priority)))
	category := strings.TrimSpace(in.Category)

	// Bounds count characters, not bytes.
	if n := utf8.RuneCountInString(title); n < 2 || n > 100 {
		errs.add("title", "title must be 2-100 chars")
	}
	if n := utf8.RuneCountInString(details); n < 2 || n > 500 {
		errs.add("details", "details must be 2-500 chars")
	}
	if !allowedStatus[models.TaskStatus(status)] {
		errs.add("status", "status must be todo|inprogress|done")
	}

	if !allowedPriority[priority] {
		priority = models.PriorityMedium
	}
	if n := utf8.RuneCountInString(category); n < 2 || n > 40 {
		category = models.DefaultCategory
	}

	deadline, derr := parseDeadline(strings.TrimSpace(in.Deadline))
	if derr != "" {
		errs.add("deadline", derr)
	}

	if len(errs) > 0 {
		return models.TaskData{}, errs
	}
	return models.TaskData{
		Title:    title,
		Details:  details,
		Status:   models.TaskStatus(status),
		Priority: priority,
		Category: category,
		Deadline: deadline,
	}, nil
}

func parseDeadline(raw string) (*time.Time, string) {
	if raw == "" {
		return nil, ""
	}
	d, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		d, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		return nil, "deadline must be a valid date"
	}
	// Date-only comparison: time of day never rejects a deadline.
	if startOfDay(d).Before(startOfDay(time.Now())) {
		return nil, "deadline cannot be in the past"
	}
	return &d, ""
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
