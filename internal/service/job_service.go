package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/repository"
)

// JobService runs scheduled maintenance.
type JobService struct {
	requests   repository.SlotRequestRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewJobService constructs the service.
func NewJobService(requests repository.SlotRequestRepository, users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *JobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{
		requests:   requests,
		users:      users,
		dispatcher: dispatcher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ReleaseExpiredAssignments frees the slots of approved requests whose end date is before today.
// The requests stay APPROVED and are stamped with releasedAt.
func (s *JobService) ReleaseExpiredAssignments(ctx context.Context) (int, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	expired, err := s.requests.ListExpired(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list expired assignments: %w", err)
	}
	if len(expired) == 0 {
		s.logger.Debug("no expired assignments")
		return 0, nil
	}

	released := 0
	for _, req := range expired {
		if err := s.requests.Release(ctx, req.ID, now); err != nil {
			s.logger.Warn("release failed", zap.String("request_id", req.ID), zap.Error(err))
			continue
		}
		released++

		payload := events.SlotReleasedPayload{VehiclePlate: req.VehiclePlate, EndDate: req.EndDate.Format(domain.DateLayout)}
		if req.AssignedSlot != nil {
			payload.SlotNumber = req.AssignedSlot.SlotNumber
		}
		publish(ctx, s.dispatcher, s.logger, events.Event{
			Type:       events.EventSlotReleased,
			ResourceID: req.ID,
			Recipient:  lookupRecipient(ctx, s.users, s.logger, req.UserID),
			Payload:    payload,
		})
	}
	s.logger.Info("released expired assignments", zap.Int("found", len(expired)), zap.Int("released", released))
	return released, nil
}
