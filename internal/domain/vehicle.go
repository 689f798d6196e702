package domain

import (
	"strings"
	"time"
)

// VehicleType enumerates vehicle classes. Slots are typed the same way.
type VehicleType string

const (
	VehicleTypeCar        VehicleType = "CAR"
	VehicleTypeMotorcycle VehicleType = "MOTORCYCLE"
	VehicleTypeTruck      VehicleType = "TRUCK"
)

// ParseVehicleType normalises a vehicle type, accepting lowercase input.
func ParseVehicleType(raw string) (VehicleType, bool) {
	switch t := VehicleType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case VehicleTypeCar, VehicleTypeMotorcycle, VehicleTypeTruck:
		return t, true
	default:
		return "", false
	}
}

// VehicleSize enumerates footprint classes.
type VehicleSize string

const (
	VehicleSizeSmall  VehicleSize = "SMALL"
	VehicleSizeMedium VehicleSize = "MEDIUM"
	VehicleSizeLarge  VehicleSize = "LARGE"
)

// ParseVehicleSize normalises a size, accepting lowercase input.
func ParseVehicleSize(raw string) (VehicleSize, bool) {
	switch s := VehicleSize(strings.ToUpper(strings.TrimSpace(raw))); s {
	case VehicleSizeSmall, VehicleSizeMedium, VehicleSizeLarge:
		return s, true
	default:
		return "", false
	}
}

// VehicleAttributes holds free-form descriptive fields.
type VehicleAttributes struct {
	Color string `json:"color,omitempty"`
	Model string `json:"model,omitempty"`
}

// Vehicle is registered by its owner and approved by an administrator.
type Vehicle struct {
	ID              string            `json:"id"`
	OwnerID         string            `json:"userId"`
	PlateNumber     string            `json:"plateNumber"`
	VehicleType     VehicleType       `json:"vehicleType"`
	Size            VehicleSize       `json:"size"`
	Attributes      VehicleAttributes `json:"attributes"`
	Status          ApprovalStatus    `json:"status"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// NormalizePlate upper-cases and trims a plate number.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
