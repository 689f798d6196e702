package memory

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	now := r.s.now()
	user.ID = newID()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for id, existing := range r.s.users {
		if id != user.ID && existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

// Delete cascades to the user's vehicles and requests, freeing any slots they held.
func (r *userRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	for slotID, slot := range r.s.slots {
		if slot.AssignedTo != nil && slot.AssignedTo.UserID == id {
			r.s.releaseSlotLocked(slotID)
		}
	}
	for reqID, req := range r.s.requests {
		if req.UserID == id {
			delete(r.s.requests, reqID)
		}
	}
	for vehicleID, vehicle := range r.s.vehicles {
		if vehicle.OwnerID == id {
			delete(r.s.vehicles, vehicleID)
		}
	}
	delete(r.s.users, id)
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []domain.User
	for _, user := range r.s.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.Status != nil && user.Status != *filter.Status {
			continue
		}
		if !matches(filter.Search, user.Name, user.Email, string(user.Role), string(user.Status)) {
			continue
		}
		items = append(items, user)
	}
	newestFirst(items, func(u domain.User) time.Time { return u.CreatedAt }, func(u domain.User) string { return u.ID })
	return paginate(items, filter.Limit, filter.Offset), len(items), nil
}
