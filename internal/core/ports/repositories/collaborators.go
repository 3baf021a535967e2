package repositories

import (
	"context"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
)

// CategoryResolver looks up the optional category attached to a transaction.
// Unknown categories yield apperrors.ErrNotFound, an unreachable service apperrors.ErrUnavailable.
type CategoryResolver interface {
	Resolve(ctx context.Context, categoryID string) (*domain.Category, error)
}

// EventPublisher emits transaction lifecycle events to other services.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}
