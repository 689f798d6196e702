package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotStatus enumerates occupancy states of a parking slot.
type SlotStatus string

const (
	SlotStatusAvailable   SlotStatus = "AVAILABLE"
	SlotStatusOccupied    SlotStatus = "OCCUPIED"
	SlotStatusReserved    SlotStatus = "RESERVED"
	SlotStatusMaintenance SlotStatus = "MAINTENANCE"
)

// ParseSlotStatus normalises a slot status.
func ParseSlotStatus(raw string) (SlotStatus, bool) {
	switch s := SlotStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case SlotStatusAvailable, SlotStatusOccupied, SlotStatusReserved, SlotStatusMaintenance:
		return s, true
	default:
		return "", false
	}
}

// SlotAssignment records who currently holds a slot.
type SlotAssignment struct {
	UserID       string `json:"userId"`
	VehicleID    string `json:"vehicleId"`
	VehiclePlate string `json:"vehiclePlate"`
}

// ParkingSlot is one space of the inventory.
type ParkingSlot struct {
	ID          string          `json:"id"`
	SlotNumber  string          `json:"slotNumber"`
	VehicleType VehicleType     `json:"vehicleType"`
	Size        VehicleSize     `json:"size"`
	Location    string          `json:"location"`
	Status      SlotStatus      `json:"status"`
	AssignedTo  *SlotAssignment `json:"assignedTo,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// SlotNumber formats the n-th slot of a prefix, e.g. A-01.
func SlotNumber(prefix string, n int) string {
	return fmt.Sprintf("%s-%02d", strings.ToUpper(strings.TrimSpace(prefix)), n)
}

// SlotSequence extracts the numeric suffix of a slot number with the given prefix.
// It returns false when the number does not belong to the prefix.
func SlotSequence(prefix, slotNumber string) (int, bool) {
	head := strings.ToUpper(strings.TrimSpace(prefix)) + "-"
	if !strings.HasPrefix(slotNumber, head) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(slotNumber, head))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
