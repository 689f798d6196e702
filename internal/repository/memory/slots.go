package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
)

type slotRepo struct{ s *Store }

func (r *slotRepo) numberTakenLocked(number, exceptID string) bool {
	for id, slot := range r.s.slots {
		if id != exceptID && slot.SlotNumber == number {
			return true
		}
	}
	return false
}

func (r *slotRepo) insertLocked(slot *domain.ParkingSlot) {
	now := r.s.now()
	slot.ID = newID()
	slot.CreatedAt, slot.UpdatedAt = now, now
	r.s.slots[slot.ID] = *cloneSlot(*slot)
}

func (r *slotRepo) Create(_ context.Context, slot *domain.ParkingSlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.numberTakenLocked(slot.SlotNumber, "") {
		return repository.ErrDuplicate
	}
	r.insertLocked(slot)
	return nil
}

func (r *slotRepo) CreateMany(_ context.Context, slots []*domain.ParkingSlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seen := map[string]bool{}
	for _, slot := range slots {
		if seen[slot.SlotNumber] || r.numberTakenLocked(slot.SlotNumber, "") {
			return repository.ErrDuplicate
		}
		seen[slot.SlotNumber] = true
	}
	for _, slot := range slots {
		r.insertLocked(slot)
	}
	return nil
}

func (r *slotRepo) Update(_ context.Context, slot *domain.ParkingSlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.slots[slot.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.numberTakenLocked(slot.SlotNumber, slot.ID) {
		return repository.ErrDuplicate
	}
	slot.CreatedAt = current.CreatedAt
	slot.UpdatedAt = r.s.now()
	r.s.slots[slot.ID] = *cloneSlot(*slot)
	return nil
}

func (r *slotRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.slots[id]; !ok {
		return repository.ErrNotFound
	}
	for reqID, req := range r.s.requests {
		if req.AssignedSlot != nil && req.AssignedSlot.ID == id {
			req.AssignedSlot = nil
			r.s.requests[reqID] = req
		}
	}
	delete(r.s.slots, id)
	return nil
}

func (r *slotRepo) GetByID(_ context.Context, id string) (*domain.ParkingSlot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	slot, ok := r.s.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneSlot(slot), nil
}

func (r *slotRepo) List(_ context.Context, filter repository.SlotFilter) ([]domain.ParkingSlot, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []domain.ParkingSlot
	for _, slot := range r.s.slots {
		if filter.Status != nil && slot.Status != *filter.Status {
			continue
		}
		if filter.VehicleType != nil && slot.VehicleType != *filter.VehicleType {
			continue
		}
		plate := ""
		if slot.AssignedTo != nil {
			plate = slot.AssignedTo.VehiclePlate
		}
		if !matches(filter.Search, slot.SlotNumber, slot.Location, string(slot.VehicleType), string(slot.Status), plate) {
			continue
		}
		items = append(items, *cloneSlot(slot))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].SlotNumber < items[j].SlotNumber })
	return paginate(items, filter.Limit, filter.Offset), len(items), nil
}

func (r *slotRepo) SlotNumbersWithPrefix(_ context.Context, prefix string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var numbers []string
	for _, slot := range r.s.slots {
		if strings.HasPrefix(slot.SlotNumber, prefix+"-") {
			numbers = append(numbers, slot.SlotNumber)
		}
	}
	return numbers, nil
}

// releaseSlotLocked marks the slot AVAILABLE and clears its assignment. Caller holds the write lock.
func (s *Store) releaseSlotLocked(id string) {
	slot, ok := s.slots[id]
	if !ok || slot.Status != domain.SlotStatusOccupied {
		return
	}
	slot.Status = domain.SlotStatusAvailable
	slot.AssignedTo = nil
	slot.UpdatedAt = s.now()
	s.slots[id] = slot
}

func cloneSlot(slot domain.ParkingSlot) *domain.ParkingSlot {
	if slot.AssignedTo != nil {
		a := *slot.AssignedTo
		slot.AssignedTo = &a
	}
	return &slot
}
