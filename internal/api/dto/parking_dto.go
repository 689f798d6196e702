package dto

// VehicleAttributesPayload carries optional descriptive fields.
type VehicleAttributesPayload struct {
	Color *string `json:"color,omitempty"`
	Model *string `json:"model,omitempty"`
}

// VehiclePayload is used for both create and update; nil fields are left unchanged on update.
type VehiclePayload struct {
	UserID      string                    `json:"userId,omitempty"`
	PlateNumber *string                   `json:"plateNumber,omitempty"`
	VehicleType *string                   `json:"vehicleType,omitempty"`
	Size        *string                   `json:"size,omitempty"`
	Attributes  *VehicleAttributesPayload `json:"attributes,omitempty"`
}

// RejectRequest carries a mandatory rejection reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// SlotPayload is used for both create and update of a single slot.
type SlotPayload struct {
	SlotNumber  *string `json:"slotNumber,omitempty"`
	VehicleType *string `json:"vehicleType,omitempty"`
	Size        *string `json:"size,omitempty"`
	Location    *string `json:"location,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// BulkSlotRequest creates Count sequentially numbered slots.
type BulkSlotRequest struct {
	Count       int    `json:"count"`
	Prefix      string `json:"prefix"`
	VehicleType string `json:"vehicleType"`
	Size        string `json:"size"`
	Location    string `json:"location"`
}

// SlotRequestPayload is used for both create and update; dates are YYYY-MM-DD.
type SlotRequestPayload struct {
	VehicleID         *string `json:"vehicleId,omitempty"`
	PreferredLocation *string `json:"preferredLocation,omitempty"`
	StartDate         *string `json:"startDate,omitempty"`
	EndDate           *string `json:"endDate,omitempty"`
	Notes             *string `json:"notes,omitempty"`
}

// ApproveSlotRequest names the slot to bind.
type ApproveSlotRequest struct {
	SlotID string `json:"slotId"`
}

// UserPayload is used for both admin create and update of accounts.
type UserPayload struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// Str returns a pointer to s, for building payloads.
func Str(s string) *string {
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
