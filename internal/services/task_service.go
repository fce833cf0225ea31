package services

import (
	"context"

	"github.com/taskboard/backend/internal/metrics"
	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/internal/query"
	repo "github.com/taskboard/backend/internal/repository"
	"github.com/taskboard/backend/internal/session"
	"github.com/taskboard/backend/internal/validate"
	"github.com/taskboard/backend/internal/worker"
)

type TaskService struct {
	tasks repo.Tasks
	log   repo.AuditLogs
	wp    *worker.Pool
}

func NewTaskService(t repo.Tasks, l repo.AuditLogs, wp *worker.Pool) *TaskService {
	return &TaskService{tasks: t, log: l, wp: wp}
}

func (s *TaskService) audit(taskID, action string, ident session.Identity) {
	id := taskID
	s.wp.Submit(func() {
		_ = s.log.Create(context.Background(), models.AuditLog{
			EntityType: "task",
			EntityID:   &id,
			Action:     action,
			Details:    map[string]any{"actor": ident.UserID, "role": ident.Role},
		})
	})
}

func (s *TaskService) Create(ctx context.Context, ident session.Identity, in validate.TaskInput) (models.Task, error) {
	data, errs := validate.Task(in)
	if len(errs) > 0 {
		return models.Task{}, validationErr(errs)
	}
	t, err := s.tasks.Create(ctx, ident, data)
	if err != nil {
		return models.Task{}, err
	}
	metrics.TaskOpsTotal.WithLabelValues("create").Inc()
	s.audit(t.ID, "create", ident)
	return t, nil
}

func (s *TaskService) GetByID(ctx context.Context, ident session.Identity, id string) (models.Task, error) {
	return s.tasks.GetByID(ctx, ident, id)
}

func (s *TaskService) List(ctx context.Context, ident session.Identity, params query.Params) (repo.TaskList, error) {
	return s.tasks.List(ctx, ident, params)
}

func (s *TaskService) Update(ctx context.Context, ident session.Identity, id string, in validate.TaskInput) error {
	data, errs := validate.Task(in)
	if len(errs) > 0 {
		return validationErr(errs)
	}
	if err := s.tasks.Update(ctx, ident, id, data); err != nil {
		return err
	}
	metrics.TaskOpsTotal.WithLabelValues("update").Inc()
	s.audit(id, "update", ident)
	return nil
}

func (s *TaskService) Delete(ctx context.Context, ident session.Identity, id string) error {
	if err := s.tasks.Delete(ctx, ident, id); err != nil {
		return err
	}
	metrics.TaskOpsTotal.WithLabelValues("delete").Inc()
	s.audit(id, "delete", ident)
	return nil
}
