package ports

import (
	"context"

	"github.com/ecivil/civil-portal/internal/core/domain"
)

// AuditSink accepts auth events without blocking the caller.
type AuditSink interface {
	Enqueue(event domain.AuthEvent)
}

// AuditRepository persists auth events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}
