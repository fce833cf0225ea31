package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/internal/policy"
	"github.com/taskboard/backend/internal/query"
	"github.com/taskboard/backend/internal/repository"
	"github.com/taskboard/backend/internal/session"
)

type tasksRepo struct{ pool *pgxpool.Pool }

func NewTasks(pool *pgxpool.Pool) repository.Tasks {
	return &tasksRepo{pool: pool}
}

const taskColumns = `id, owner_id, title, details, status, priority, category, deadline, created_at, updated_at`

func (r *tasksRepo) Create(ctx context.Context, ident session.Identity, data models.TaskData) (models.Task, error) {
	t := models.Task{
		ID:       uuid.NewString(),
		OwnerID:  ident.UserID,
		Title:    data.Title,
		Details:  data.Details,
		Status:   data.Status,
		Priority: data.Priority,
		Category: data.Category,
		Deadline: data.Deadline,
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now

	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks(`+taskColumns+`) VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		t.ID, t.OwnerID, t.Title, t.Details, t.Status, t.Priority, t.Category, t.Deadline, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// scopeCond appends the ownership predicate for non-admin callers. Baking the
// scope into the same statement as the mutation is what makes
// authorize-then-mutate one atomic operation.
func scopeCond(ident session.Identity, args []any) (string, []any) {
	scope := policy.ScopeFor(ident)
	if scope.All() {
		return "", args
	}
	args = append(args, scope.OwnerID)
	return fmt.Sprintf(" AND owner_id=$%d", len(args)), args
}

func (r *tasksRepo) GetByID(ctx context.Context, ident session.Identity, id string) (models.Task, error) {
	cond, args := scopeCond(ident, []any{id})
	var t models.Task
	err := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id=$1`+cond, args...,
	).Scan(&t.ID, &t.OwnerID, &t.Title, &t.Details, &t.Status, &t.Priority, &t.Category, &t.Deadline, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, repository.ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (r *tasksRepo) List(ctx context.Context, ident session.Identity, params query.Params) (repository.TaskList, error) {
	where := []string{"true"}
	var args []any

	if scope := policy.ScopeFor(ident); !scope.All() {
		args = append(args, scope.OwnerID)
		where = append(where, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if params.Title != "" {
		args = append(args, query.EscapeLike(params.Title))
		where = append(where, fmt.Sprintf(`title ILIKE $%d ESCAPE '\'`, len(args)))
	}
	cond := strings.Join(where, " AND ")

	var list repository.TaskList

	if params.Paginated {
		// Count and fetch are two statements; snapshot consistency across
		// them is not required.
		var total int
		if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM tasks WHERE `+cond, args...).Scan(&total); err != nil {
			return list, fmt.Errorf("count tasks: %w", err)
		}
		page := query.NewPageInfo(params, total)
		list.Page = &page
	}

	q := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + cond + ` ORDER BY ` + params.OrderBy()
	if params.Paginated {
		args = append(args, params.Limit, params.Offset())
		q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return list, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	list.Items = []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Details, &t.Status, &t.Priority, &t.Category, &t.Deadline, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return list, err
		}
		list.Items = append(list.Items, t)
	}
	return list, rows.Err()
}

func (r *tasksRepo) Update(ctx context.Context, ident session.Identity, id string, data models.TaskData) error {
	args := []any{id, data.Title, data.Details, data.Status, data.Priority, data.Category, data.Deadline}
	cond, args := scopeCond(ident, args)
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET title=$2, details=$3, status=$4, priority=$5, category=$6, deadline=$7, updated_at=now() WHERE id=$1`+cond,
		args...,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *tasksRepo) Delete(ctx context.Context, ident session.Identity, id string) error {
	cond, args := scopeCond(ident, []any{id})
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1`+cond, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
