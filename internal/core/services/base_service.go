package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	now domain.Clock
	loc *time.Location
}

func newBaseService(now domain.Clock, loc *time.Location) BaseService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return BaseService{now: now, loc: loc}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// Now returns the current time in the service's configured location.
func (s *BaseService) Now() time.Time {
	return s.now().In(s.loc)
}
