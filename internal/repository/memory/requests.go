package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
)

type requestRepo struct{ s *Store }

// hydrateLocked fills the joined user, vehicle and slot fields.
func (s *Store) hydrateLocked(req domain.SlotRequest) domain.SlotRequest {
	if user, ok := s.users[req.UserID]; ok {
		req.UserName = user.Name
	}
	if vehicle, ok := s.vehicles[req.VehicleID]; ok {
		req.VehiclePlate = vehicle.PlateNumber
		req.VehicleType = vehicle.VehicleType
	}
	if req.AssignedSlot != nil {
		assigned := *req.AssignedSlot
		if slot, ok := s.slots[assigned.ID]; ok {
			assigned.SlotNumber = slot.SlotNumber
		}
		req.AssignedSlot = &assigned
	}
	if req.ReleasedAt != nil {
		at := *req.ReleasedAt
		req.ReleasedAt = &at
	}
	return req
}

func (r *requestRepo) Create(_ context.Context, req *domain.SlotRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[req.UserID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.vehicles[req.VehicleID]; !ok {
		return repository.ErrNotFound
	}
	now := r.s.now()
	req.ID = newID()
	req.CreatedAt, req.UpdatedAt = now, now
	r.s.requests[req.ID] = *req
	*req = r.s.hydrateLocked(*req)
	return nil
}

func (r *requestRepo) Update(_ context.Context, req *domain.SlotRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.requests[req.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.vehicles[req.VehicleID]; !ok {
		return repository.ErrNotFound
	}
	current.VehicleID = req.VehicleID
	current.PreferredLocation = req.PreferredLocation
	current.StartDate = req.StartDate
	current.EndDate = req.EndDate
	current.Notes = req.Notes
	current.Status = req.Status
	current.RejectionReason = req.RejectionReason
	current.UpdatedAt = r.s.now()
	r.s.requests[req.ID] = current
	*req = r.s.hydrateLocked(current)
	return nil
}

func (r *requestRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	if req.AssignedSlot != nil && req.ReleasedAt == nil {
		r.s.releaseSlotLocked(req.AssignedSlot.ID)
	}
	delete(r.s.requests, id)
	return nil
}

func (r *requestRepo) GetByID(_ context.Context, id string) (*domain.SlotRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	req, ok := r.s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	hydrated := r.s.hydrateLocked(req)
	return &hydrated, nil
}

func (r *requestRepo) List(_ context.Context, filter repository.SlotRequestFilter) ([]domain.SlotRequest, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []domain.SlotRequest
	for _, stored := range r.s.requests {
		req := r.s.hydrateLocked(stored)
		if filter.UserID != nil && req.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		slotNumber := ""
		if req.AssignedSlot != nil {
			slotNumber = req.AssignedSlot.SlotNumber
		}
		if !matches(filter.Search, req.VehiclePlate, req.UserName, req.PreferredLocation, string(req.Status), slotNumber) {
			continue
		}
		items = append(items, req)
	}
	newestFirst(items, func(r domain.SlotRequest) time.Time { return r.CreatedAt }, func(r domain.SlotRequest) string { return r.ID })
	return paginate(items, filter.Limit, filter.Offset), len(items), nil
}

func (r *requestRepo) Approve(_ context.Context, requestID, slotID string) (*domain.SlotRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[requestID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !domain.CanTransition(domain.ActionApprove, req.Status) {
		return nil, repository.ErrInvalidState
	}
	vehicle, ok := r.s.vehicles[req.VehicleID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	slot, ok := r.s.slots[slotID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if slot.Status != domain.SlotStatusAvailable {
		return nil, repository.ErrSlotUnavailable
	}
	if slot.VehicleType != vehicle.VehicleType {
		return nil, repository.ErrTypeMismatch
	}

	now := r.s.now()
	slot.Status = domain.SlotStatusOccupied
	slot.AssignedTo = &domain.SlotAssignment{UserID: req.UserID, VehicleID: vehicle.ID, VehiclePlate: vehicle.PlateNumber}
	slot.UpdatedAt = now
	r.s.slots[slotID] = slot

	req.Status = domain.ApprovalApproved
	req.AssignedSlot = &domain.AssignedSlot{ID: slotID}
	req.RejectionReason = ""
	req.UpdatedAt = now
	r.s.requests[requestID] = req

	hydrated := r.s.hydrateLocked(req)
	return &hydrated, nil
}

func (r *requestRepo) Reject(_ context.Context, requestID, reason string) (*domain.SlotRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[requestID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !domain.CanTransition(domain.ActionReject, req.Status) {
		return nil, repository.ErrInvalidState
	}
	req.Status = domain.ApprovalRejected
	req.RejectionReason = reason
	req.UpdatedAt = r.s.now()
	r.s.requests[requestID] = req

	hydrated := r.s.hydrateLocked(req)
	return &hydrated, nil
}

func (r *requestRepo) ListExpired(_ context.Context, before time.Time) ([]domain.SlotRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []domain.SlotRequest
	for _, req := range r.s.requests {
		if req.Status != domain.ApprovalApproved || req.AssignedSlot == nil || req.ReleasedAt != nil {
			continue
		}
		if !req.EndDate.Before(before) {
			continue
		}
		items = append(items, r.s.hydrateLocked(req))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].EndDate.Before(items[j].EndDate) })
	return items, nil
}

func (r *requestRepo) Release(_ context.Context, requestID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[requestID]
	if !ok || req.ReleasedAt != nil {
		return repository.ErrNotFound
	}
	if req.AssignedSlot != nil {
		r.s.releaseSlotLocked(req.AssignedSlot.ID)
	}
	req.ReleasedAt = &at
	req.UpdatedAt = r.s.now()
	r.s.requests[requestID] = req
	return nil
}
