package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

var tracer = otel.Tracer("github.com/spec-kit/parking-service/internal/service")

// SlotRequestService coordinates slot requests and their review.
type SlotRequestService struct {
	requests   repository.SlotRequestRepository
	vehicles   repository.VehicleRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// SlotRequestDependencies bundles repositories for the slot request service.
type SlotRequestDependencies struct {
	RequestRepo repository.SlotRequestRepository
	VehicleRepo repository.VehicleRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// SlotRequestInput describes a new request. Dates are YYYY-MM-DD.
type SlotRequestInput struct {
	VehicleID         string
	PreferredLocation string
	StartDate         string
	EndDate           string
	Notes             string
}

// SlotRequestPatch describes a partial update of a PENDING request.
type SlotRequestPatch struct {
	VehicleID         *string
	PreferredLocation *string
	StartDate         *string
	EndDate           *string
	Notes             *string
}

// RejectionInfo is the answer of the reason lookup.
type RejectionInfo struct {
	Status domain.ApprovalStatus `json:"status"`
	Reason string                `json:"reason"`
}

// NewSlotRequestService constructs the service.
func NewSlotRequestService(deps SlotRequestDependencies) *SlotRequestService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotRequestService{
		requests:   deps.RequestRepo,
		vehicles:   deps.VehicleRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List returns the caller's requests, or all requests for an administrator.
func (s *SlotRequestService) List(ctx context.Context, actor Actor, req domain.PageRequest) (domain.Page[domain.SlotRequest], error) {
	req = req.Normalize()
	status, err := parseStatusFilter(req.Status, domain.ParseApprovalStatus)
	if err != nil {
		return domain.Page[domain.SlotRequest]{}, err
	}
	filter := repository.SlotRequestFilter{Status: status, Search: req.Search, Limit: req.Limit, Offset: req.Offset()}
	if !actor.IsAdmin() {
		filter.UserID = &actor.UserID
	}
	items, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return domain.Page[domain.SlotRequest]{}, apperrors.MapError(err)
	}
	return pageOf(items, total, req), nil
}

// Get returns a request visible to the caller.
func (s *SlotRequestService) Get(ctx context.Context, actor Actor, id string) (*domain.SlotRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "slot request")
	}
	if !actor.IsAdmin() && req.UserID != actor.UserID {
		return nil, apperrors.NewNotFound("slot request", nil)
	}
	return req, nil
}

// Create files a PENDING request for an APPROVED vehicle of the caller.
func (s *SlotRequestService) Create(ctx context.Context, actor Actor, input SlotRequestInput) (*domain.SlotRequest, error) {
	if strings.TrimSpace(input.VehicleID) == "" || input.StartDate == "" || input.EndDate == "" {
		return nil, apperrors.NewValidationError("vehicleId, startDate, endDate required", nil)
	}
	start, end, err := parseDateRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.requestableVehicle(ctx, actor, input.VehicleID)
	if err != nil {
		return nil, err
	}

	req := &domain.SlotRequest{
		UserID:            vehicle.OwnerID,
		VehicleID:         vehicle.ID,
		PreferredLocation: strings.TrimSpace(input.PreferredLocation),
		StartDate:         start,
		EndDate:           end,
		Notes:             strings.TrimSpace(input.Notes),
		Status:            domain.ApprovalPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, repoError(err, "slot request")
	}
	return req, nil
}

// Update edits a request while it is still PENDING.
func (s *SlotRequestService) Update(ctx context.Context, actor Actor, id string, patch SlotRequestPatch) (*domain.SlotRequest, error) {
	req, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.ApprovalPending {
		return nil, apperrors.NewConflict("only pending requests can be edited", map[string]any{"status": req.Status})
	}

	if patch.VehicleID != nil && *patch.VehicleID != req.VehicleID {
		vehicle, err := s.requestableVehicle(ctx, actor, *patch.VehicleID)
		if err != nil {
			return nil, err
		}
		if vehicle.OwnerID != req.UserID {
			return nil, apperrors.NewValidationError("vehicle belongs to another user", nil)
		}
		req.VehicleID = vehicle.ID
	}
	startRaw := req.StartDate.Format(domain.DateLayout)
	endRaw := req.EndDate.Format(domain.DateLayout)
	if patch.StartDate != nil {
		startRaw = *patch.StartDate
	}
	if patch.EndDate != nil {
		endRaw = *patch.EndDate
	}
	start, end, err := parseDateRange(startRaw, endRaw)
	if err != nil {
		return nil, err
	}
	req.StartDate, req.EndDate = start, end
	if patch.PreferredLocation != nil {
		req.PreferredLocation = strings.TrimSpace(*patch.PreferredLocation)
	}
	if patch.Notes != nil {
		req.Notes = strings.TrimSpace(*patch.Notes)
	}

	if err := s.requests.Update(ctx, req); err != nil {
		return nil, repoError(err, "slot request")
	}
	return req, nil
}

// Delete removes a request; an approved request frees its slot.
func (s *SlotRequestService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return repoError(s.requests.Delete(ctx, id), "slot request")
}

// Approve binds an AVAILABLE slot of the matching vehicle type to a PENDING request.
func (s *SlotRequestService) Approve(ctx context.Context, actor Actor, id, slotID string) (*domain.SlotRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return nil, apperrors.NewValidationError("slotId required", nil)
	}

	ctx, span := tracer.Start(ctx, "SlotRequestService.Approve")
	defer span.End()
	span.SetAttributes(attribute.String("slot_request.id", id), attribute.String("parking_slot.id", slotID))

	req, err := s.requests.Approve(ctx, id, slotID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, repoError(err, "slot request")
	}

	slotNumber := ""
	if req.AssignedSlot != nil {
		slotNumber = req.AssignedSlot.SlotNumber
	}
	s.logger.Info("slot request approved",
		zap.String("request_id", req.ID),
		zap.String("slot", slotNumber),
		zap.String("by", actor.UserID))
	s.publishReview(ctx, actor, events.EventSlotRequestApproved, req)
	return req, nil
}

// Reject moves a PENDING request to REJECTED with a mandatory reason.
func (s *SlotRequestService) Reject(ctx context.Context, actor Actor, id, reason string) (*domain.SlotRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("rejection reason required", nil)
	}
	req, err := s.requests.Reject(ctx, id, reason)
	if err != nil {
		return nil, repoError(err, "slot request")
	}
	s.publishReview(ctx, actor, events.EventSlotRequestRejected, req)
	return req, nil
}

// Reason returns the rejection reason of a request visible to the caller.
func (s *SlotRequestService) Reason(ctx context.Context, actor Actor, id string) (RejectionInfo, error) {
	req, err := s.Get(ctx, actor, id)
	if err != nil {
		return RejectionInfo{}, err
	}
	return RejectionInfo{Status: req.Status, Reason: req.RejectionReason}, nil
}

func (s *SlotRequestService) requestableVehicle(ctx context.Context, actor Actor, vehicleID string) (*domain.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, repoError(err, "vehicle")
	}
	if !actor.IsAdmin() && vehicle.OwnerID != actor.UserID {
		return nil, apperrors.NewNotFound("vehicle", nil)
	}
	if vehicle.Status != domain.ApprovalApproved {
		return nil, apperrors.NewValidationError("vehicle must be approved before requesting a slot",
			map[string]any{"vehicleStatus": vehicle.Status})
	}
	return vehicle, nil
}

func (s *SlotRequestService) publishReview(ctx context.Context, actor Actor, eventType events.EventType, req *domain.SlotRequest) {
	payload := events.SlotRequestReviewedPayload{
		VehiclePlate: req.VehiclePlate,
		Status:       req.Status,
		StartDate:    req.StartDate.Format(domain.DateLayout),
		EndDate:      req.EndDate.Format(domain.DateLayout),
		Reason:       req.RejectionReason,
	}
	if req.AssignedSlot != nil {
		payload.SlotNumber = req.AssignedSlot.SlotNumber
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:       eventType,
		ResourceID: req.ID,
		Actor:      actor.event(),
		Recipient:  lookupRecipient(ctx, s.users, s.logger, req.UserID),
		Payload:    payload,
	})
}

func parseDateRange(startRaw, endRaw string) (start, end time.Time, err error) {
	start, err = domain.ParseDate(strings.TrimSpace(startRaw))
	if err != nil {
		return start, end, apperrors.NewValidationError("startDate must be YYYY-MM-DD", map[string]any{"startDate": startRaw})
	}
	end, err = domain.ParseDate(strings.TrimSpace(endRaw))
	if err != nil {
		return start, end, apperrors.NewValidationError("endDate must be YYYY-MM-DD", map[string]any{"endDate": endRaw})
	}
	if end.Before(start) {
		return start, end, apperrors.NewValidationError("endDate must not be before startDate", nil)
	}
	return start, end, nil
}
