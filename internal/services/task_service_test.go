package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/internal/repository"
	"github.com/taskboard/backend/internal/repository/memory"
	"github.com/taskboard/backend/internal/session"
	"github.com/taskboard/backend/internal/validate"
	"github.com/taskboard/backend/internal/worker"
)

func newTaskService(t *testing.T) (*TaskService, *memory.AuditLogsRepo) {
	t.Helper()
	audit := memory.NewAuditLogs()
	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)
	return NewTaskService(memory.NewTasks(), audit, wp), audit
}

func TestTaskService_CreateValidatesInput(t *testing.T) {
	svc, _ := newTaskService(t)
	ident := session.Identity{UserID: "u1", Role: models.RoleUser}

	_, err := svc.Create(context.Background(), ident, validate.TaskInput{
		Title:   "x",
		Details: "too short title above",
		Status:  "todo",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "title", verr.Fields[0].Field)
}

func TestTaskService_CreateAuditsAsync(t *testing.T) {
	audit := memory.NewAuditLogs()
	wp := worker.NewPool(1)
	svc := NewTaskService(memory.NewTasks(), audit, wp)
	ident := session.Identity{UserID: "u1", Role: models.RoleUser}

	created, err := svc.Create(context.Background(), ident, validate.TaskInput{
		Title:   "Buy milk",
		Details: "2% milk",
		Status:  "todo",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), ident, created.ID))

	wp.Stop() // drains the queue

	entries := audit.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "create", entries[0].Action)
	assert.Equal(t, "delete", entries[1].Action)
	for _, e := range entries {
		assert.Equal(t, "task", e.EntityType)
		require.NotNil(t, e.EntityID)
		assert.Equal(t, created.ID, *e.EntityID)
		assert.Equal(t, "u1", e.Details["actor"])
	}
}

func TestTaskService_UpdateMissingTask(t *testing.T) {
	svc, audit := newTaskService(t)
	ident := session.Identity{UserID: "u1", Role: models.RoleUser}

	err := svc.Update(context.Background(), ident, "no-such-id", validate.TaskInput{
		Title:   "Buy milk",
		Details: "2% milk",
		Status:  "todo",
	})
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	assert.Empty(t, audit.Entries(), "failed operations leave no audit trail")
}
