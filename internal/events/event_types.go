package events

import (
	"time"

	"github.com/spec-kit/parking-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventVehicleApproved     EventType = "vehicle_approved"
	EventVehicleRejected     EventType = "vehicle_rejected"
	EventSlotRequestApproved EventType = "slot_request_approved"
	EventSlotRequestRejected EventType = "slot_request_rejected"
	EventSlotReleased        EventType = "slot_released"
)

// Actor identifies who triggered an event. Empty for scheduled jobs.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Recipient is the account that should hear about an event.
type Recipient struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ResourceID string      `json:"resource_id"`
	Actor      Actor       `json:"actor"`
	Recipient  Recipient   `json:"recipient"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// VehicleReviewedPayload accompanies vehicle approval and rejection.
type VehicleReviewedPayload struct {
	PlateNumber string                `json:"plate_number"`
	Status      domain.ApprovalStatus `json:"status"`
	Reason      string                `json:"reason,omitempty"`
}

// SlotRequestReviewedPayload accompanies slot request approval and rejection.
type SlotRequestReviewedPayload struct {
	VehiclePlate string                `json:"vehicle_plate"`
	Status       domain.ApprovalStatus `json:"status"`
	SlotNumber   string                `json:"slot_number,omitempty"`
	StartDate    string                `json:"start_date"`
	EndDate      string                `json:"end_date"`
	Reason       string                `json:"reason,omitempty"`
}

// SlotReleasedPayload is emitted when an expired assignment frees its slot.
type SlotReleasedPayload struct {
	SlotNumber   string `json:"slot_number"`
	VehiclePlate string `json:"vehicle_plate"`
	EndDate      string `json:"end_date"`
}
