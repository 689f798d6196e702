package controller

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/spec-kit/parking-service/internal/api/dto"
	"github.com/spec-kit/parking-service/internal/domain"
)

const (
	RequiredFieldsMessage = "Please fill in all required fields."
	PasswordMismatch      = "Passwords do not match"
	MinPasswordLength     = 8
	MaxBulkSlots          = 100
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, RequiredFieldsMessage)
	}
	return nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func enumField[T ~string](field, raw string, parse func(string) (T, bool)) (*string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, ok := parse(raw)
	if !ok {
		return nil, invalid(field, "Invalid "+field+" \""+raw+"\".")
	}
	s := string(v)
	return &s, nil
}

// VehicleForm is the input of the vehicle create and edit dialogs.
type VehicleForm struct {
	PlateNumber string
	VehicleType string
	Size        string
	Color       string
	Model       string
	// OwnerID lets an administrator register a vehicle on behalf of a user.
	OwnerID string
}

// Payload validates the form. Create requires plate, type and size; edits send only what is set.
func (f VehicleForm) Payload(create bool) (dto.VehiclePayload, error) {
	if create {
		for _, field := range []struct{ name, value string }{
			{"plateNumber", f.PlateNumber},
			{"vehicleType", f.VehicleType},
			{"size", f.Size},
		} {
			if err := required(field.name, field.value); err != nil {
				return dto.VehiclePayload{}, err
			}
		}
	}
	vehicleType, err := enumField("vehicleType", f.VehicleType, domain.ParseVehicleType)
	if err != nil {
		return dto.VehiclePayload{}, err
	}
	size, err := enumField("size", f.Size, domain.ParseVehicleSize)
	if err != nil {
		return dto.VehiclePayload{}, err
	}
	payload := dto.VehiclePayload{
		UserID:      strings.TrimSpace(f.OwnerID),
		VehicleType: vehicleType,
		Size:        size,
	}
	if plate := domain.NormalizePlate(f.PlateNumber); plate != "" {
		payload.PlateNumber = &plate
	}
	color, model := optional(f.Color), optional(f.Model)
	if color != nil || model != nil {
		payload.Attributes = &dto.VehicleAttributesPayload{Color: color, Model: model}
	}
	return payload, nil
}

// SlotForm is the input of the single slot dialog.
type SlotForm struct {
	SlotNumber  string
	VehicleType string
	Size        string
	Location    string
	Status      string
}

func (f SlotForm) Payload(create bool) (dto.SlotPayload, error) {
	if create {
		for _, field := range []struct{ name, value string }{
			{"slotNumber", f.SlotNumber},
			{"vehicleType", f.VehicleType},
			{"size", f.Size},
			{"location", f.Location},
		} {
			if err := required(field.name, field.value); err != nil {
				return dto.SlotPayload{}, err
			}
		}
	}
	vehicleType, err := enumField("vehicleType", f.VehicleType, domain.ParseVehicleType)
	if err != nil {
		return dto.SlotPayload{}, err
	}
	size, err := enumField("size", f.Size, domain.ParseVehicleSize)
	if err != nil {
		return dto.SlotPayload{}, err
	}
	status, err := enumField("status", f.Status, domain.ParseSlotStatus)
	if err != nil {
		return dto.SlotPayload{}, err
	}
	payload := dto.SlotPayload{
		VehicleType: vehicleType,
		Size:        size,
		Location:    optional(f.Location),
		Status:      status,
	}
	if number := strings.ToUpper(strings.TrimSpace(f.SlotNumber)); number != "" {
		payload.SlotNumber = &number
	}
	return payload, nil
}

// BulkSlotForm creates Count slots named PREFIX-NN.
type BulkSlotForm struct {
	Count       int
	Prefix      string
	VehicleType string
	Size        string
	Location    string
}

func (f BulkSlotForm) Payload() (dto.BulkSlotRequest, error) {
	for _, field := range []struct{ name, value string }{
		{"prefix", f.Prefix},
		{"vehicleType", f.VehicleType},
		{"size", f.Size},
		{"location", f.Location},
	} {
		if err := required(field.name, field.value); err != nil {
			return dto.BulkSlotRequest{}, err
		}
	}
	if f.Count < 1 || f.Count > MaxBulkSlots {
		return dto.BulkSlotRequest{}, invalid("count", "Count must be between 1 and 100.")
	}
	prefix := strings.ToUpper(strings.TrimSpace(f.Prefix))
	for _, r := range prefix {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return dto.BulkSlotRequest{}, invalid("prefix", "Prefix may only contain letters and digits.")
		}
	}
	vehicleType, err := enumField("vehicleType", f.VehicleType, domain.ParseVehicleType)
	if err != nil {
		return dto.BulkSlotRequest{}, err
	}
	size, err := enumField("size", f.Size, domain.ParseVehicleSize)
	if err != nil {
		return dto.BulkSlotRequest{}, err
	}
	return dto.BulkSlotRequest{
		Count:       f.Count,
		Prefix:      prefix,
		VehicleType: *vehicleType,
		Size:        *size,
		Location:    strings.TrimSpace(f.Location),
	}, nil
}

// SlotRequestForm asks for a slot for one vehicle over an inclusive date range.
type SlotRequestForm struct {
	VehicleID         string
	PreferredLocation string
	StartDate         string
	EndDate           string
	Notes             string
}

func (f SlotRequestForm) Payload(create bool) (dto.SlotRequestPayload, error) {
	if create {
		for _, field := range []struct{ name, value string }{
			{"vehicleId", f.VehicleID},
			{"startDate", f.StartDate},
			{"endDate", f.EndDate},
		} {
			if err := required(field.name, field.value); err != nil {
				return dto.SlotRequestPayload{}, err
			}
		}
	}
	start, end := strings.TrimSpace(f.StartDate), strings.TrimSpace(f.EndDate)
	for _, d := range []struct{ name, value string }{{"startDate", start}, {"endDate", end}} {
		if d.value == "" {
			continue
		}
		if _, err := domain.ParseDate(d.value); err != nil {
			return dto.SlotRequestPayload{}, invalid(d.name, "Dates must use the YYYY-MM-DD format.")
		}
	}
	if start != "" && end != "" && end < start {
		return dto.SlotRequestPayload{}, invalid("endDate", "End date must not be before the start date.")
	}
	return dto.SlotRequestPayload{
		VehicleID:         optional(f.VehicleID),
		PreferredLocation: optional(f.PreferredLocation),
		StartDate:         optional(start),
		EndDate:           optional(end),
		Notes:             optional(f.Notes),
	}, nil
}

// UserForm is the admin account dialog.
type UserForm struct {
	Name     string
	Email    string
	Password string
	Role     string
	Status   string
}

func (f UserForm) Payload(create bool) (dto.UserPayload, error) {
	if create {
		for _, field := range []struct{ name, value string }{
			{"name", f.Name},
			{"email", f.Email},
			{"password", f.Password},
		} {
			if err := required(field.name, field.value); err != nil {
				return dto.UserPayload{}, err
			}
		}
	}
	if err := validEmail(f.Email); err != nil {
		return dto.UserPayload{}, err
	}
	if f.Password != "" && len(f.Password) < MinPasswordLength {
		return dto.UserPayload{}, invalid("password", "Password must be at least 8 characters.")
	}
	role, err := enumField("role", f.Role, domain.ParseRole)
	if err != nil {
		return dto.UserPayload{}, err
	}
	status, err := enumField("status", f.Status, domain.ParseUserStatus)
	if err != nil {
		return dto.UserPayload{}, err
	}
	payload := dto.UserPayload{
		Name:   optional(f.Name),
		Email:  optional(strings.ToLower(f.Email)),
		Role:   role,
		Status: status,
	}
	if f.Password != "" {
		payload.Password = &f.Password
	}
	return payload, nil
}

// ProfileForm edits the signed-in account.
type ProfileForm struct {
	Name  string
	Email string
}

func (f ProfileForm) Payload() (dto.ProfileRequest, error) {
	if strings.TrimSpace(f.Name) == "" && strings.TrimSpace(f.Email) == "" {
		return dto.ProfileRequest{}, invalid("", RequiredFieldsMessage)
	}
	if err := validEmail(f.Email); err != nil {
		return dto.ProfileRequest{}, err
	}
	return dto.ProfileRequest{Name: optional(f.Name), Email: optional(strings.ToLower(f.Email))}, nil
}

// PasswordForm changes the signed-in account's password.
type PasswordForm struct {
	Current string
	New     string
	Confirm string
}

func (f PasswordForm) Validate() error {
	for _, field := range []struct{ name, value string }{
		{"currentPassword", f.Current},
		{"newPassword", f.New},
		{"confirmPassword", f.Confirm},
	} {
		if field.value == "" {
			return invalid(field.name, RequiredFieldsMessage)
		}
	}
	if f.New != f.Confirm {
		return invalid("confirmPassword", PasswordMismatch)
	}
	if len(f.New) < MinPasswordLength {
		return invalid("newPassword", "Password must be at least 8 characters.")
	}
	return nil
}

func validEmail(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return invalid("email", "Please enter a valid email address.")
	}
	return nil
}
