package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

// VehicleService coordinates vehicle registration and review.
type VehicleService struct {
	vehicles   repository.VehicleRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// VehicleDependencies bundles repositories for the vehicle service.
type VehicleDependencies struct {
	VehicleRepo repository.VehicleRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// VehicleInput describes vehicle creation. OwnerID is honoured only for administrators.
type VehicleInput struct {
	OwnerID     string
	PlateNumber string
	VehicleType string
	Size        string
	Color       string
	Model       string
}

// VehiclePatch describes a partial vehicle update.
type VehiclePatch struct {
	PlateNumber *string
	VehicleType *string
	Size        *string
	Color       *string
	Model       *string
}

// NewVehicleService constructs the service.
func NewVehicleService(deps VehicleDependencies) *VehicleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VehicleService{vehicles: deps.VehicleRepo, users: deps.UserRepo, dispatcher: deps.Dispatcher, logger: logger}
}

// List returns the caller's vehicles, or every vehicle for an administrator.
func (s *VehicleService) List(ctx context.Context, actor Actor, req domain.PageRequest) (domain.Page[domain.Vehicle], error) {
	req = req.Normalize()
	status, err := parseStatusFilter(req.Status, domain.ParseApprovalStatus)
	if err != nil {
		return domain.Page[domain.Vehicle]{}, err
	}
	filter := repository.VehicleFilter{Status: status, Search: req.Search, Limit: req.Limit, Offset: req.Offset()}
	if !actor.IsAdmin() {
		filter.OwnerID = &actor.UserID
	}
	items, total, err := s.vehicles.List(ctx, filter)
	if err != nil {
		return domain.Page[domain.Vehicle]{}, apperrors.MapError(err)
	}
	return pageOf(items, total, req), nil
}

// Get returns a vehicle visible to the caller.
func (s *VehicleService) Get(ctx context.Context, actor Actor, id string) (*domain.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "vehicle")
	}
	if !actor.IsAdmin() && vehicle.OwnerID != actor.UserID {
		return nil, apperrors.NewNotFound("vehicle", nil)
	}
	return vehicle, nil
}

// Create registers a PENDING vehicle.
func (s *VehicleService) Create(ctx context.Context, actor Actor, input VehicleInput) (*domain.Vehicle, error) {
	plate := domain.NormalizePlate(input.PlateNumber)
	if plate == "" || input.VehicleType == "" || input.Size == "" {
		return nil, apperrors.NewValidationError("plateNumber, vehicleType, size required", nil)
	}
	vehicleType, ok := domain.ParseVehicleType(input.VehicleType)
	if !ok {
		return nil, apperrors.NewValidationError("invalid vehicleType", map[string]any{"vehicleType": input.VehicleType})
	}
	size, ok := domain.ParseVehicleSize(input.Size)
	if !ok {
		return nil, apperrors.NewValidationError("invalid size", map[string]any{"size": input.Size})
	}

	owner := actor.UserID
	if actor.IsAdmin() && strings.TrimSpace(input.OwnerID) != "" {
		if _, err := s.users.GetByID(ctx, input.OwnerID); err != nil {
			return nil, repoError(err, "owner")
		}
		owner = input.OwnerID
	}

	vehicle := &domain.Vehicle{
		OwnerID:     owner,
		PlateNumber: plate,
		VehicleType: vehicleType,
		Size:        size,
		Attributes: domain.VehicleAttributes{
			Color: strings.TrimSpace(input.Color),
			Model: strings.TrimSpace(input.Model),
		},
		Status: domain.ApprovalPending,
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, repoError(err, "vehicle with this plate number")
	}
	return vehicle, nil
}

// Update edits a vehicle. An owner editing a reviewed vehicle sends it back to PENDING.
func (s *VehicleService) Update(ctx context.Context, actor Actor, id string, patch VehiclePatch) (*domain.Vehicle, error) {
	vehicle, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if patch.PlateNumber != nil {
		plate := domain.NormalizePlate(*patch.PlateNumber)
		if plate == "" {
			return nil, apperrors.NewValidationError("plateNumber cannot be empty", nil)
		}
		vehicle.PlateNumber = plate
	}
	if patch.VehicleType != nil {
		t, ok := domain.ParseVehicleType(*patch.VehicleType)
		if !ok {
			return nil, apperrors.NewValidationError("invalid vehicleType", map[string]any{"vehicleType": *patch.VehicleType})
		}
		vehicle.VehicleType = t
	}
	if patch.Size != nil {
		sz, ok := domain.ParseVehicleSize(*patch.Size)
		if !ok {
			return nil, apperrors.NewValidationError("invalid size", map[string]any{"size": *patch.Size})
		}
		vehicle.Size = sz
	}
	if patch.Color != nil {
		vehicle.Attributes.Color = strings.TrimSpace(*patch.Color)
	}
	if patch.Model != nil {
		vehicle.Attributes.Model = strings.TrimSpace(*patch.Model)
	}
	if !actor.IsAdmin() && vehicle.Status.IsTerminal() {
		vehicle.Status = domain.ApprovalPending
		vehicle.RejectionReason = ""
	}

	if err := s.vehicles.Update(ctx, vehicle); err != nil {
		return nil, repoError(err, "vehicle with this plate number")
	}
	return vehicle, nil
}

// Delete removes a vehicle visible to the caller.
func (s *VehicleService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return repoError(s.vehicles.Delete(ctx, id), "vehicle")
}

// Approve moves a PENDING vehicle to APPROVED.
func (s *VehicleService) Approve(ctx context.Context, actor Actor, id string) (*domain.Vehicle, error) {
	return s.review(ctx, actor, id, domain.ActionApprove, "")
}

// Reject moves a PENDING vehicle to REJECTED with a mandatory reason.
func (s *VehicleService) Reject(ctx context.Context, actor Actor, id, reason string) (*domain.Vehicle, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("rejection reason required", nil)
	}
	return s.review(ctx, actor, id, domain.ActionReject, reason)
}

func (s *VehicleService) review(ctx context.Context, actor Actor, id string, action domain.ApprovalAction, reason string) (*domain.Vehicle, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "vehicle")
	}
	if !domain.CanTransition(action, vehicle.Status) {
		return nil, apperrors.NewConflict("vehicle has already been reviewed", map[string]any{"status": vehicle.Status})
	}

	eventType := events.EventVehicleApproved
	vehicle.Status = domain.ApprovalApproved
	vehicle.RejectionReason = ""
	if action == domain.ActionReject {
		eventType = events.EventVehicleRejected
		vehicle.Status = domain.ApprovalRejected
		vehicle.RejectionReason = reason
	}
	if err := s.vehicles.Update(ctx, vehicle); err != nil {
		return nil, repoError(err, "vehicle")
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:       eventType,
		ResourceID: vehicle.ID,
		Actor:      actor.event(),
		Recipient:  s.recipient(ctx, vehicle.OwnerID),
		Payload: events.VehicleReviewedPayload{
			PlateNumber: vehicle.PlateNumber,
			Status:      vehicle.Status,
			Reason:      vehicle.RejectionReason,
		},
	})
	return vehicle, nil
}

func (s *VehicleService) recipient(ctx context.Context, userID string) events.Recipient {
	return lookupRecipient(ctx, s.users, s.logger, userID)
}

func lookupRecipient(ctx context.Context, users repository.UserRepository, logger *zap.Logger, userID string) events.Recipient {
	recipient := events.Recipient{UserID: userID}
	if users == nil {
		return recipient
	}
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		logger.Warn("notification recipient lookup failed", zap.String("user_id", userID), zap.Error(err))
		return recipient
	}
	recipient.Name = user.Name
	recipient.Email = user.Email
	return recipient
}
