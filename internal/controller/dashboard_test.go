package controller

import (
	"context"
	"net/http"
	"testing"

	"github.com/spec-kit/parking-service/internal/access"
	"github.com/spec-kit/parking-service/internal/client"
	"github.com/spec-kit/parking-service/internal/domain"
)

type staticLister[T any] struct {
	totals map[string]int
	items  []T
	err    error
}

func (s staticLister[T]) List(_ context.Context, p client.ListParams) (domain.Page[T], error) {
	if s.err != nil {
		return domain.Page[T]{}, s.err
	}
	return domain.Page[T]{Items: s.items, Total: s.totals[p.Status], Page: p.Page, Limit: p.Limit}, nil
}

func values(stats []Stat) map[string]int {
	out := make(map[string]int, len(stats))
	for _, s := range stats {
		out[s.Title] = s.Value
	}
	return out
}

func TestDashboardPerRole(t *testing.T) {
	src := DashboardSources{
		Vehicles: staticLister[domain.Vehicle]{totals: map[string]int{"": 45}},
		Slots:    staticLister[domain.ParkingSlot]{totals: map[string]int{"": 100, "AVAILABLE": 58}},
		Requests: staticLister[domain.SlotRequest]{
			totals: map[string]int{"": 20, "PENDING": 12, "APPROVED": 3},
			items:  []domain.SlotRequest{{ID: "r1"}, {ID: "r2"}},
		},
		Users: staticLister[domain.User]{totals: map[string]int{"ACTIVE": 32}},
	}

	admin, err := LoadDashboard(context.Background(), domain.RoleAdmin, src, nil, nil)
	if err != nil {
		t.Fatalf("admin dashboard: %v", err)
	}
	want := map[string]int{"Total Vehicles": 45, "Parking Slots": 100, "Pending Requests": 12, "Registered Users": 32}
	if got := values(admin.Stats); len(got) != len(want) || got["Registered Users"] != 32 || got["Pending Requests"] != 12 || got["Parking Slots"] != 100 {
		t.Fatalf("admin stats = %v", got)
	}
	if len(admin.Recent) != 2 {
		t.Fatalf("recent = %+v", admin.Recent)
	}

	user, err := LoadDashboard(context.Background(), domain.RoleUser, src, nil, nil)
	if err != nil {
		t.Fatalf("user dashboard: %v", err)
	}
	got := values(user.Stats)
	if got["My Vehicles"] != 45 || got["Available Slots"] != 58 || got["My Requests"] != 12 || got["Approved Slots"] != 3 {
		t.Fatalf("user stats = %v", got)
	}
	if _, ok := got["Registered Users"]; ok {
		t.Fatal("user dashboard must not show admin cards")
	}
}

func TestDashboardPartialFailure(t *testing.T) {
	notes := &recordingNotifier{}
	src := DashboardSources{
		Vehicles: staticLister[domain.Vehicle]{totals: map[string]int{"": 2}},
		Slots:    staticLister[domain.ParkingSlot]{err: &client.APIError{Status: http.StatusServiceUnavailable, Message: "slots offline"}},
		Requests: staticLister[domain.SlotRequest]{err: &client.APIError{Status: http.StatusServiceUnavailable, Message: "requests offline"}},
	}

	board, err := LoadDashboard(context.Background(), domain.RoleUser, src, notes, nil)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if board.Stats[0].Value != 2 || board.Stats[0].Unavailable {
		t.Fatalf("vehicles card = %+v", board.Stats[0])
	}
	if !board.Stats[1].Unavailable || !board.Stats[2].Unavailable {
		t.Fatalf("failed cards = %+v", board.Stats)
	}
	if len(board.Recent) != 0 {
		t.Fatalf("recent = %+v", board.Recent)
	}
	if got := notes.all(); len(got) != 1 || got[0].ok {
		t.Fatalf("notices = %+v", got)
	}
}

func TestDashboardRequiresRole(t *testing.T) {
	_, err := LoadDashboard(context.Background(), domain.Role(""), DashboardSources{}, nil, nil)
	if err == nil || err.Error() != access.LoginNotice {
		t.Fatalf("err = %v", err)
	}
}
