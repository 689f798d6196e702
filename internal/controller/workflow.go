package controller

import (
	"context"
	"strings"

	"github.com/spec-kit/parking-service/internal/client"
	"github.com/spec-kit/parking-service/internal/domain"
)

// ValidationError is raised before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// VehicleReviewer is the review half of the vehicle endpoints.
type VehicleReviewer interface {
	Approve(ctx context.Context, id string) (*domain.Vehicle, error)
	Reject(ctx context.Context, id, reason string) (*domain.Vehicle, error)
}

// RequestReviewer is the review half of the slot request endpoints.
type RequestReviewer interface {
	Approve(ctx context.Context, id, slotID string) (*domain.SlotRequest, error)
	Reject(ctx context.Context, id, reason string) (*domain.SlotRequest, error)
}

// SlotLister lists parking slots.
type SlotLister interface {
	List(ctx context.Context, params client.ListParams) (domain.Page[domain.ParkingSlot], error)
}

func requirePending(kind string, status domain.ApprovalStatus) error {
	if status.IsTerminal() {
		return invalid("status", kind+" has already been "+strings.ToLower(string(status)))
	}
	return nil
}

// RequireReason trims reason and rejects it when empty.
func RequireReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", invalid("reason", "A rejection reason is required.")
	}
	return reason, nil
}

// ApproveVehicle moves a PENDING vehicle to APPROVED.
func ApproveVehicle(ctx context.Context, api VehicleReviewer, v domain.Vehicle) (*domain.Vehicle, error) {
	if err := requirePending("vehicle", v.Status); err != nil {
		return nil, err
	}
	return api.Approve(ctx, v.ID)
}

// RejectVehicle moves a PENDING vehicle to REJECTED with a trimmed, non-empty reason.
func RejectVehicle(ctx context.Context, api VehicleReviewer, v domain.Vehicle, reason string) (*domain.Vehicle, error) {
	if err := requirePending("vehicle", v.Status); err != nil {
		return nil, err
	}
	reason, err := RequireReason(reason)
	if err != nil {
		return nil, err
	}
	return api.Reject(ctx, v.ID, reason)
}

// ApprovalDialog offers the slots a request may be bound to.
type ApprovalDialog struct {
	Request domain.SlotRequest
	Slots   []domain.ParkingSlot
}

// OpenApproval loads the currently AVAILABLE slots of the request's vehicle type.
// The list is fetched on every call.
func OpenApproval(ctx context.Context, slots SlotLister, req domain.SlotRequest) (*ApprovalDialog, error) {
	if err := requirePending("request", req.Status); err != nil {
		return nil, err
	}
	params := client.ListParams{
		Page:        1,
		Limit:       domain.MaxPageSize,
		Status:      string(domain.SlotStatusAvailable),
		VehicleType: string(req.VehicleType),
	}
	dialog := &ApprovalDialog{Request: req, Slots: []domain.ParkingSlot{}}
	for {
		page, err := slots.List(ctx, params)
		if err != nil {
			return nil, err
		}
		for _, s := range page.Items {
			if s.Status == domain.SlotStatusAvailable && (req.VehicleType == "" || s.VehicleType == req.VehicleType) {
				dialog.Slots = append(dialog.Slots, s)
			}
		}
		if len(page.Items) == 0 || params.Page*params.Limit >= page.Total {
			break
		}
		params.Page++
	}
	return dialog, nil
}

// Confirm approves the request with one of the offered slots. ref is the slot's id or its
// number, matched case-insensitively; the backend always receives the id.
func (d *ApprovalDialog) Confirm(ctx context.Context, api RequestReviewer, ref string) (*domain.SlotRequest, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, invalid("slotId", "Please select a parking slot.")
	}
	slot, ok := d.offered(ref)
	if !ok {
		return nil, invalid("slotId", "The selected slot is not available for this request.")
	}
	return api.Approve(ctx, d.Request.ID, slot.ID)
}

func (d *ApprovalDialog) offered(ref string) (domain.ParkingSlot, bool) {
	for _, s := range d.Slots {
		if s.ID == ref || strings.EqualFold(s.SlotNumber, ref) {
			return s, true
		}
	}
	return domain.ParkingSlot{}, false
}

// RejectRequest moves a PENDING request to REJECTED with a trimmed, non-empty reason.
func RejectRequest(ctx context.Context, api RequestReviewer, req domain.SlotRequest, reason string) (*domain.SlotRequest, error) {
	if err := requirePending("request", req.Status); err != nil {
		return nil, err
	}
	reason, err := RequireReason(reason)
	if err != nil {
		return nil, err
	}
	return api.Reject(ctx, req.ID, reason)
}
