package service

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

// MaxBulkSlots bounds a single bulk creation.
const MaxBulkSlots = 100

// SlotService manages the parking slot inventory.
type SlotService struct {
	slots  repository.ParkingSlotRepository
	logger *zap.Logger
}

// SlotInput describes one slot.
type SlotInput struct {
	SlotNumber  string
	VehicleType string
	Size        string
	Location    string
	Status      string
}

// BulkSlotInput describes a sequentially numbered batch.
type BulkSlotInput struct {
	Count       int
	Prefix      string
	VehicleType string
	Size        string
	Location    string
}

// SlotPatch describes a partial slot update.
type SlotPatch struct {
	SlotNumber  *string
	VehicleType *string
	Size        *string
	Location    *string
	Status      *string
}

// NewSlotService constructs the service.
func NewSlotService(slots repository.ParkingSlotRepository, logger *zap.Logger) *SlotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotService{slots: slots, logger: logger}
}

// List returns one page of slots. Every authenticated caller may view the inventory.
func (s *SlotService) List(ctx context.Context, req domain.PageRequest, vehicleType string) (domain.Page[domain.ParkingSlot], error) {
	req = req.Normalize()
	status, err := parseStatusFilter(req.Status, domain.ParseSlotStatus)
	if err != nil {
		return domain.Page[domain.ParkingSlot]{}, err
	}
	filter := repository.SlotFilter{Status: status, Search: req.Search, Limit: req.Limit, Offset: req.Offset()}
	if strings.TrimSpace(vehicleType) != "" {
		t, ok := domain.ParseVehicleType(vehicleType)
		if !ok {
			return domain.Page[domain.ParkingSlot]{}, apperrors.NewValidationError("invalid vehicleType", map[string]any{"vehicleType": vehicleType})
		}
		filter.VehicleType = &t
	}
	items, total, err := s.slots.List(ctx, filter)
	if err != nil {
		return domain.Page[domain.ParkingSlot]{}, apperrors.MapError(err)
	}
	return pageOf(items, total, req), nil
}

// Get returns a slot.
func (s *SlotService) Get(ctx context.Context, id string) (*domain.ParkingSlot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "parking slot")
	}
	return slot, nil
}

// Create adds a single slot.
func (s *SlotService) Create(ctx context.Context, actor Actor, input SlotInput) (*domain.ParkingSlot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	number := strings.ToUpper(strings.TrimSpace(input.SlotNumber))
	if number == "" {
		return nil, apperrors.NewValidationError("slotNumber required", nil)
	}
	vehicleType, size, location, err := parseSlotShape(input.VehicleType, input.Size, input.Location)
	if err != nil {
		return nil, err
	}
	status := domain.SlotStatusAvailable
	if input.Status != "" {
		st, err := parseManualSlotStatus(input.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}

	slot := &domain.ParkingSlot{SlotNumber: number, VehicleType: vehicleType, Size: size, Location: location, Status: status}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, repoError(err, "parking slot "+number)
	}
	return slot, nil
}

// BulkCreate adds Count AVAILABLE slots numbered PREFIX-NN, continuing after the highest existing number.
func (s *SlotService) BulkCreate(ctx context.Context, actor Actor, input BulkSlotInput) ([]domain.ParkingSlot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if input.Count < 1 || input.Count > MaxBulkSlots {
		return nil, apperrors.NewValidationError("count must be between 1 and 100", map[string]any{"count": input.Count})
	}
	prefix := strings.ToUpper(strings.TrimSpace(input.Prefix))
	if prefix == "" || !isAlphanumeric(prefix) {
		return nil, apperrors.NewValidationError("prefix must be alphanumeric", map[string]any{"prefix": input.Prefix})
	}
	vehicleType, size, location, err := parseSlotShape(input.VehicleType, input.Size, input.Location)
	if err != nil {
		return nil, err
	}

	existing, err := s.slots.SlotNumbersWithPrefix(ctx, prefix)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	next := 1 + highestSequence(prefix, existing)

	batch := make([]*domain.ParkingSlot, 0, input.Count)
	for i := 0; i < input.Count; i++ {
		batch = append(batch, &domain.ParkingSlot{
			SlotNumber:  domain.SlotNumber(prefix, next+i),
			VehicleType: vehicleType,
			Size:        size,
			Location:    location,
			Status:      domain.SlotStatusAvailable,
		})
	}
	if err := s.slots.CreateMany(ctx, batch); err != nil {
		return nil, repoError(err, "parking slot")
	}

	created := make([]domain.ParkingSlot, 0, len(batch))
	for _, slot := range batch {
		created = append(created, *slot)
	}
	s.logger.Info("bulk slots created",
		zap.String("prefix", prefix),
		zap.Int("count", len(created)),
		zap.String("first", created[0].SlotNumber))
	return created, nil
}

// Update edits a slot. OCCUPIED can only be entered through request approval;
// leaving OCCUPIED clears the assignment.
func (s *SlotService) Update(ctx context.Context, actor Actor, id string, patch SlotPatch) (*domain.ParkingSlot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	slot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.SlotNumber != nil {
		number := strings.ToUpper(strings.TrimSpace(*patch.SlotNumber))
		if number == "" {
			return nil, apperrors.NewValidationError("slotNumber cannot be empty", nil)
		}
		slot.SlotNumber = number
	}
	if patch.VehicleType != nil {
		t, ok := domain.ParseVehicleType(*patch.VehicleType)
		if !ok {
			return nil, apperrors.NewValidationError("invalid vehicleType", map[string]any{"vehicleType": *patch.VehicleType})
		}
		if slot.Status == domain.SlotStatusOccupied && t != slot.VehicleType {
			return nil, apperrors.NewConflict("cannot change the vehicle type of an occupied slot", nil)
		}
		slot.VehicleType = t
	}
	if patch.Size != nil {
		sz, ok := domain.ParseVehicleSize(*patch.Size)
		if !ok {
			return nil, apperrors.NewValidationError("invalid size", map[string]any{"size": *patch.Size})
		}
		slot.Size = sz
	}
	if patch.Location != nil {
		location := strings.TrimSpace(*patch.Location)
		if location == "" {
			return nil, apperrors.NewValidationError("location cannot be empty", nil)
		}
		slot.Location = location
	}
	if patch.Status != nil {
		status, ok := domain.ParseSlotStatus(*patch.Status)
		if !ok {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *patch.Status})
		}
		if status != slot.Status {
			if status == domain.SlotStatusOccupied {
				return nil, apperrors.NewValidationError("slots become OCCUPIED only through request approval", nil)
			}
			slot.Status = status
			slot.AssignedTo = nil
		}
	}

	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, repoError(err, "parking slot "+slot.SlotNumber)
	}
	return slot, nil
}

// Delete removes a slot unless it is OCCUPIED.
func (s *SlotService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	slot, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if slot.Status == domain.SlotStatusOccupied {
		return apperrors.NewConflict("cannot delete an occupied parking slot", map[string]any{"slotNumber": slot.SlotNumber})
	}
	return repoError(s.slots.Delete(ctx, id), "parking slot")
}

func parseSlotShape(rawType, rawSize, rawLocation string) (domain.VehicleType, domain.VehicleSize, string, error) {
	vehicleType, ok := domain.ParseVehicleType(rawType)
	if !ok {
		return "", "", "", apperrors.NewValidationError("invalid vehicleType", map[string]any{"vehicleType": rawType})
	}
	size, ok := domain.ParseVehicleSize(rawSize)
	if !ok {
		return "", "", "", apperrors.NewValidationError("invalid size", map[string]any{"size": rawSize})
	}
	location := strings.TrimSpace(rawLocation)
	if location == "" {
		return "", "", "", apperrors.NewValidationError("location required", nil)
	}
	return vehicleType, size, location, nil
}

func parseManualSlotStatus(raw string) (domain.SlotStatus, error) {
	status, ok := domain.ParseSlotStatus(raw)
	if !ok {
		return "", apperrors.NewValidationError("invalid status", map[string]any{"status": raw})
	}
	if status == domain.SlotStatusOccupied {
		return "", apperrors.NewValidationError("slots become OCCUPIED only through request approval", nil)
	}
	return status, nil
}

func highestSequence(prefix string, numbers []string) int {
	highest := 0
	for _, n := range numbers {
		if seq, ok := domain.SlotSequence(prefix, n); ok && seq > highest {
			highest = seq
		}
	}
	return highest
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
