package memory

import (
	"context"
	"time"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
)

type vehicleRepo struct{ s *Store }

func (r *vehicleRepo) plateTakenLocked(plate, exceptID string) bool {
	for id, v := range r.s.vehicles {
		if id != exceptID && v.PlateNumber == plate {
			return true
		}
	}
	return false
}

func (r *vehicleRepo) Create(_ context.Context, vehicle *domain.Vehicle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.plateTakenLocked(vehicle.PlateNumber, "") {
		return repository.ErrDuplicate
	}
	now := r.s.now()
	vehicle.ID = newID()
	vehicle.CreatedAt, vehicle.UpdatedAt = now, now
	r.s.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (r *vehicleRepo) Update(_ context.Context, vehicle *domain.Vehicle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.vehicles[vehicle.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.plateTakenLocked(vehicle.PlateNumber, vehicle.ID) {
		return repository.ErrDuplicate
	}
	vehicle.OwnerID = current.OwnerID
	vehicle.CreatedAt = current.CreatedAt
	vehicle.UpdatedAt = r.s.now()
	r.s.vehicles[vehicle.ID] = *vehicle
	return nil
}

// Delete removes the vehicle with its requests and frees any slot it holds.
func (r *vehicleRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.vehicles[id]; !ok {
		return repository.ErrNotFound
	}
	for slotID, slot := range r.s.slots {
		if slot.AssignedTo != nil && slot.AssignedTo.VehicleID == id {
			r.s.releaseSlotLocked(slotID)
		}
	}
	for reqID, req := range r.s.requests {
		if req.VehicleID == id {
			delete(r.s.requests, reqID)
		}
	}
	delete(r.s.vehicles, id)
	return nil
}

func (r *vehicleRepo) GetByID(_ context.Context, id string) (*domain.Vehicle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (r *vehicleRepo) List(_ context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []domain.Vehicle
	for _, v := range r.s.vehicles {
		if filter.OwnerID != nil && v.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Status != nil && v.Status != *filter.Status {
			continue
		}
		if !matches(filter.Search, v.PlateNumber, string(v.VehicleType), v.Attributes.Color, v.Attributes.Model, string(v.Status)) {
			continue
		}
		items = append(items, v)
	}
	newestFirst(items, func(v domain.Vehicle) time.Time { return v.CreatedAt }, func(v domain.Vehicle) string { return v.ID })
	return paginate(items, filter.Limit, filter.Offset), len(items), nil
}
