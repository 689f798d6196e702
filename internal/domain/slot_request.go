package domain

import (
	"encoding/json"
	"time"
)

// DateLayout is the wire format of request date ranges.
const DateLayout = "2006-01-02"

// AssignedSlot is the slot bound to an approved request.
type AssignedSlot struct {
	ID         string `json:"id"`
	SlotNumber string `json:"slotNumber"`
}

// SlotRequest asks for a parking slot for one vehicle over a date range.
type SlotRequest struct {
	ID                string         `json:"id"`
	UserID            string         `json:"userId"`
	UserName          string         `json:"userName,omitempty"`
	VehicleID         string         `json:"vehicleId"`
	VehiclePlate      string         `json:"vehiclePlate"`
	VehicleType       VehicleType    `json:"vehicleType"`
	PreferredLocation string         `json:"preferredLocation"`
	StartDate         time.Time      `json:"startDate"`
	EndDate           time.Time      `json:"endDate"`
	Notes             string         `json:"notes,omitempty"`
	Status            ApprovalStatus `json:"status"`
	AssignedSlot      *AssignedSlot  `json:"assignedSlot,omitempty"`
	RejectionReason   string         `json:"rejectionReason,omitempty"`
	ReleasedAt        *time.Time     `json:"releasedAt,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

type slotRequestAlias SlotRequest

type slotRequestWire struct {
	slotRequestAlias
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// MarshalJSON renders the date range as YYYY-MM-DD.
func (r SlotRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(slotRequestWire{
		slotRequestAlias: slotRequestAlias(r),
		StartDate:        r.StartDate.Format(DateLayout),
		EndDate:          r.EndDate.Format(DateLayout),
	})
}

// UnmarshalJSON accepts YYYY-MM-DD or RFC 3339 dates.
func (r *SlotRequest) UnmarshalJSON(data []byte) error {
	var wire slotRequestWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = SlotRequest(wire.slotRequestAlias)
	var err error
	if r.StartDate, err = parseWireDate(wire.StartDate); err != nil {
		return err
	}
	if r.EndDate, err = parseWireDate(wire.EndDate); err != nil {
		return err
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(DateLayout, raw)
}

func parseWireDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	return ParseDate(raw)
}
