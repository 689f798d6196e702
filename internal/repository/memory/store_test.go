package memory

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
)

type fixture struct {
	store   *Store
	user    domain.User
	vehicle domain.Vehicle
	slot    domain.ParkingSlot
	request domain.SlotRequest
}

func newFixture(t *testing.T, slotType domain.VehicleType) fixture {
	t.Helper()
	ctx := context.Background()
	s := NewStore()

	user := domain.User{Name: "Ada", Email: "Ada@Example.com", Role: domain.RoleUser, Status: domain.UserStatusActive}
	if err := s.Users().Create(ctx, &user); err != nil {
		t.Fatal(err)
	}
	vehicle := domain.Vehicle{OwnerID: user.ID, PlateNumber: "ABC123", VehicleType: domain.VehicleTypeCar, Size: domain.VehicleSizeMedium, Status: domain.ApprovalApproved}
	if err := s.Vehicles().Create(ctx, &vehicle); err != nil {
		t.Fatal(err)
	}
	slot := domain.ParkingSlot{SlotNumber: "A-01", VehicleType: slotType, Size: domain.VehicleSizeMedium, Location: "Level 1", Status: domain.SlotStatusAvailable}
	if err := s.Slots().Create(ctx, &slot); err != nil {
		t.Fatal(err)
	}
	req := domain.SlotRequest{
		UserID:    user.ID,
		VehicleID: vehicle.ID,
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Status:    domain.ApprovalPending,
	}
	if err := s.Requests().Create(ctx, &req); err != nil {
		t.Fatal(err)
	}
	return fixture{store: s, user: user, vehicle: vehicle, slot: slot, request: req}
}

func TestApproveOccupiesSlot(t *testing.T) {
	f := newFixture(t, domain.VehicleTypeCar)
	ctx := context.Background()

	approved, err := f.store.Requests().Approve(ctx, f.request.ID, f.slot.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != domain.ApprovalApproved || approved.AssignedSlot == nil || approved.AssignedSlot.SlotNumber != "A-01" {
		t.Fatalf("unexpected request %+v", approved)
	}
	if approved.UserName != "Ada" || approved.VehiclePlate != "ABC123" {
		t.Fatalf("joined fields missing: %+v", approved)
	}

	slot, _ := f.store.Slots().GetByID(ctx, f.slot.ID)
	if slot.Status != domain.SlotStatusOccupied || slot.AssignedTo == nil || slot.AssignedTo.VehiclePlate != "ABC123" {
		t.Fatalf("slot not occupied: %+v", slot)
	}

	if _, err := f.store.Requests().Approve(ctx, f.request.ID, f.slot.ID); !errors.Is(err, repository.ErrInvalidState) {
		t.Fatalf("second approve err=%v", err)
	}
}

func TestApproveTypeMismatchLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, domain.VehicleTypeTruck)
	ctx := context.Background()

	if _, err := f.store.Requests().Approve(ctx, f.request.ID, f.slot.ID); !errors.Is(err, repository.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	req, _ := f.store.Requests().GetByID(ctx, f.request.ID)
	slot, _ := f.store.Slots().GetByID(ctx, f.slot.ID)
	if req.Status != domain.ApprovalPending || slot.Status != domain.SlotStatusAvailable {
		t.Fatalf("state changed: req=%s slot=%s", req.Status, slot.Status)
	}
}

func TestConcurrentApprovalsAssignSlotOnce(t *testing.T) {
	f := newFixture(t, domain.VehicleTypeCar)
	ctx := context.Background()

	second := domain.SlotRequest{UserID: f.user.ID, VehicleID: f.vehicle.ID, StartDate: f.request.StartDate, EndDate: f.request.EndDate, Status: domain.ApprovalPending}
	if err := f.store.Requests().Create(ctx, &second); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{f.request.ID, second.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.store.Requests().Approve(ctx, id, f.slot.ID)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, repository.ErrSlotUnavailable):
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one approval, got %d", succeeded)
	}
}

func TestDeleteApprovedRequestFreesSlot(t *testing.T) {
	f := newFixture(t, domain.VehicleTypeCar)
	ctx := context.Background()

	if _, err := f.store.Requests().Approve(ctx, f.request.ID, f.slot.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.store.Requests().Delete(ctx, f.request.ID); err != nil {
		t.Fatal(err)
	}
	slot, _ := f.store.Slots().GetByID(ctx, f.slot.ID)
	if slot.Status != domain.SlotStatusAvailable || slot.AssignedTo != nil {
		t.Fatalf("slot not released: %+v", slot)
	}
}

func TestReleaseExpired(t *testing.T) {
	f := newFixture(t, domain.VehicleTypeCar)
	ctx := context.Background()

	if _, err := f.store.Requests().Approve(ctx, f.request.ID, f.slot.ID); err != nil {
		t.Fatal(err)
	}
	expired, err := f.store.Requests().ListExpired(ctx, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	if err != nil || len(expired) != 1 {
		t.Fatalf("expired=%v err=%v", expired, err)
	}
	if err := f.store.Requests().Release(ctx, f.request.ID, time.Now()); err != nil {
		t.Fatal(err)
	}
	slot, _ := f.store.Slots().GetByID(ctx, f.slot.ID)
	if slot.Status != domain.SlotStatusAvailable {
		t.Fatalf("slot status %s", slot.Status)
	}
	again, _ := f.store.Requests().ListExpired(ctx, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	if len(again) != 0 {
		t.Fatalf("released request listed again: %v", again)
	}
}

func TestListSearchAndPaging(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for i := 1; i <= 12; i++ {
		slot := domain.ParkingSlot{SlotNumber: domain.SlotNumber("B", i), VehicleType: domain.VehicleTypeCar, Size: domain.VehicleSizeSmall, Location: "Garage", Status: domain.SlotStatusAvailable}
		if err := s.Slots().Create(ctx, &slot); err != nil {
			t.Fatal(err)
		}
	}

	items, total, err := s.Slots().List(ctx, repository.SlotFilter{Limit: 10, Offset: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 12 || len(items) != 2 || items[0].SlotNumber != "B-11" {
		t.Fatalf("total=%d items=%v", total, items)
	}

	items, total, _ = s.Slots().List(ctx, repository.SlotFilter{Search: "b-0"})
	if total != 9 || len(items) != 9 {
		t.Fatalf("search total=%d len=%d", total, len(items))
	}

	for _, page := range []int{3, 50, math.MaxInt} {
		req := domain.PageRequest{Page: page, Limit: 10}.Normalize()
		items, total, err := s.Slots().List(ctx, repository.SlotFilter{Limit: req.Limit, Offset: req.Offset()})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if total != 12 || len(items) != 0 {
			t.Fatalf("page %d: total=%d items=%v", page, total, items)
		}
	}
}

func TestDuplicateEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := domain.User{Name: "A", Email: "a@example.com"}
	b := domain.User{Name: "B", Email: "A@EXAMPLE.COM"}
	if err := s.Users().Create(ctx, &a); err != nil {
		t.Fatal(err)
	}
	if err := s.Users().Create(ctx, &b); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}
