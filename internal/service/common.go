package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   domain.Role
}

// IsAdmin reports whether the actor holds the administrative role.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

func (a Actor) event() events.Actor {
	return events.Actor{UserID: a.UserID, Role: a.Role}
}

// repoError converts repository sentinels into API-facing domain errors.
func repoError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", nil)
	case errors.Is(err, repository.ErrInvalidState):
		return apperrors.NewConflict(resource+" has already been reviewed", nil)
	case errors.Is(err, repository.ErrSlotUnavailable):
		return apperrors.NewConflict("parking slot is not available", nil)
	case errors.Is(err, repository.ErrTypeMismatch):
		return apperrors.NewConflict("parking slot does not match the vehicle type", nil)
	default:
		return apperrors.MapError(err)
	}
}

func requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("administrator role required")
	}
	return nil
}

// parseStatusFilter returns nil for an empty filter and a validation error for an unknown one.
func parseStatusFilter[T ~string](raw string, parse func(string) (T, bool)) (*T, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, ok := parse(raw)
	if !ok {
		return nil, apperrors.NewValidationError("invalid status filter", map[string]any{"status": raw})
	}
	return &v, nil
}

func pageOf[T any](items []T, total int, req domain.PageRequest) domain.Page[T] {
	if items == nil {
		items = []T{}
	}
	return domain.Page[T]{Items: items, Total: total, Page: req.Page, Limit: req.Limit}
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
