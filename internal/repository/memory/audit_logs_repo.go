package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskboard/backend/internal/models"
)

type AuditLogsRepo struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func NewAuditLogs() *AuditLogsRepo {
	return &AuditLogsRepo{}
}

func (r *AuditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now()
	r.mu.Lock()
	r.logs = append(r.logs, l)
	r.mu.Unlock()
	return nil
}

// Entries returns a copy of everything logged so far.
func (r *AuditLogsRepo) Entries() []models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AuditLog, len(r.logs))
	copy(out, r.logs)
	return out
}
