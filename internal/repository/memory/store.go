// Package memory provides in-process implementations of the repository interfaces.
// All repositories of one Store share a single lock so multi-entity changes such as
// slot approval are atomic.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
)

// Store holds every entity in maps keyed by id.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]domain.User
	vehicles map[string]domain.Vehicle
	slots    map[string]domain.ParkingSlot
	requests map[string]domain.SlotRequest
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		users:    map[string]domain.User{},
		vehicles: map[string]domain.Vehicle{},
		slots:    map[string]domain.ParkingSlot{},
		requests: map[string]domain.SlotRequest{},
	}
}

// Users exposes the store as a UserRepository.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Vehicles exposes the store as a VehicleRepository.
func (s *Store) Vehicles() repository.VehicleRepository { return &vehicleRepo{s} }

// Slots exposes the store as a ParkingSlotRepository.
func (s *Store) Slots() repository.ParkingSlotRepository { return &slotRepo{s} }

// Requests exposes the store as a SlotRequestRepository.
func (s *Store) Requests() repository.SlotRequestRepository { return &requestRepo{s} }

func newID() string { return uuid.NewString() }

func matches(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = domain.DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// newestFirst orders by creation time descending, falling back to id for ties.
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if ci.Equal(cj) {
			return id(items[i]) > id(items[j])
		}
		return ci.After(cj)
	})
}
