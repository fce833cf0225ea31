package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/internal/policy"
	"github.com/taskboard/backend/internal/query"
	"github.com/taskboard/backend/internal/repository"
	"github.com/taskboard/backend/internal/session"
)

// TasksRepo is an in-memory task store with the same contract as the postgres
// implementation. It backs unit tests and the no-database dev mode. Each
// method holds the lock for its whole duration, which gives the same
// single-document atomicity the SQL conditional statements give.
type TasksRepo struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
	order []string // insertion order, the stable tie-break for sorting
	now   func() time.Time
}

func NewTasks() *TasksRepo {
	return &TasksRepo{
		tasks: make(map[string]models.Task),
		now:   time.Now,
	}
}

func (r *TasksRepo) Create(_ context.Context, ident session.Identity, data models.TaskData) (models.Task, error) {
	now := r.now()
	t := models.Task{
		ID:        uuid.NewString(),
		OwnerID:   ident.UserID,
		Title:     data.Title,
		Details:   data.Details,
		Status:    data.Status,
		Priority:  data.Priority,
		Category:  data.Category,
		Deadline:  data.Deadline,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.mu.Lock()
	r.tasks[t.ID] = t
	r.order = append(r.order, t.ID)
	r.mu.Unlock()
	return t, nil
}

func (r *TasksRepo) GetByID(_ context.Context, ident session.Identity, id string) (models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok || !policy.CanAccess(ident, t.OwnerID) {
		return models.Task{}, repository.ErrNotFound
	}
	return t, nil
}

func (r *TasksRepo) List(_ context.Context, ident session.Identity, params query.Params) (repository.TaskList, error) {
	r.mu.RLock()
	scope := policy.ScopeFor(ident)
	matched := []models.Task{}
	for _, id := range r.order {
		t := r.tasks[id]
		if !scope.All() && t.OwnerID != scope.OwnerID {
			continue
		}
		if params.Title != "" && !strings.EqualFold(t.Title, params.Title) {
			continue
		}
		matched = append(matched, t)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		c := compareTasks(matched[i], matched[j], params.SortField)
		if params.SortDesc {
			return c > 0
		}
		return c < 0
	})

	list := repository.TaskList{Items: matched}
	if params.Paginated {
		page := query.NewPageInfo(params, len(matched))
		list.Page = &page
		lo := params.Offset()
		if lo > len(matched) {
			lo = len(matched)
		}
		hi := lo + params.Limit
		if hi > len(matched) {
			hi = len(matched)
		}
		list.Items = matched[lo:hi]
	}
	return list, nil
}

func (r *TasksRepo) Update(_ context.Context, ident session.Identity, id string, data models.TaskData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || !policy.CanAccess(ident, t.OwnerID) {
		return repository.ErrNotFound
	}
	t.Title = data.Title
	t.Details = data.Details
	t.Status = data.Status
	t.Priority = data.Priority
	t.Category = data.Category
	t.Deadline = data.Deadline
	t.UpdatedAt = r.now()
	r.tasks[id] = t
	return nil
}

func (r *TasksRepo) Delete(_ context.Context, ident session.Identity, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || !policy.CanAccess(ident, t.OwnerID) {
		return repository.ErrNotFound
	}
	delete(r.tasks, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func compareTasks(a, b models.Task, field string) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "priority":
		return strings.Compare(string(a.Priority), string(b.Priority))
	case "category":
		return strings.Compare(a.Category, b.Category)
	case "deadline":
		return compareDeadlines(a.Deadline, b.Deadline)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// Tasks without a deadline sort before tasks with one, ascending.
func compareDeadlines(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}
