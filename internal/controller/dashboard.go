package controller

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/parking-service/internal/access"
	"github.com/spec-kit/parking-service/internal/client"
	"github.com/spec-kit/parking-service/internal/domain"
)

// RecentRequests is how many slot requests the dashboard lists.
const RecentRequests = 5

// Lister loads one page of T.
type Lister[T any] interface {
	List(ctx context.Context, params client.ListParams) (domain.Page[T], error)
}

// DashboardSources are the endpoints the dashboard reads. Users may be nil for non-admins.
type DashboardSources struct {
	Vehicles Lister[domain.Vehicle]
	Slots    Lister[domain.ParkingSlot]
	Requests Lister[domain.SlotRequest]
	Users    Lister[domain.User]
}

// Stat is one dashboard card.
type Stat struct {
	Title       string
	Value       int
	Description string
	Link        string
	Unavailable bool
}

// Dashboard is the composite view, assembled once every source has answered.
type Dashboard struct {
	Stats  []Stat
	Recent []domain.SlotRequest
}

type statQuery struct {
	stat   Stat
	count  func(ctx context.Context) (int, error)
	source string
}

func total[T any](src Lister[T], status string) func(ctx context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		page, err := src.List(ctx, client.ListParams{Page: 1, Limit: 1, Status: status})
		if err != nil {
			return 0, err
		}
		return page.Total, nil
	}
}

func dashboardQueries(role domain.Role, src DashboardSources) []statQuery {
	if access.Can(role, access.ManageUsers) && src.Users != nil {
		return []statQuery{
			{Stat{Title: "Total Vehicles", Description: "Registered in the system", Link: "/vehicles"}, total(src.Vehicles, ""), "vehicles"},
			{Stat{Title: "Parking Slots", Description: "Total slots in the facility", Link: "/slots"}, total(src.Slots, ""), "slots"},
			{Stat{Title: "Pending Requests", Description: "Waiting for approval", Link: "/requests"}, total(src.Requests, string(domain.ApprovalPending)), "requests"},
			{Stat{Title: "Registered Users", Description: "Active user accounts", Link: "/users"}, total(src.Users, string(domain.UserStatusActive)), "users"},
		}
	}
	return []statQuery{
		{Stat{Title: "My Vehicles", Description: "Total registered vehicles", Link: "/vehicles"}, total(src.Vehicles, ""), "vehicles"},
		{Stat{Title: "Available Slots", Description: "Parking slots available now", Link: "/slots"}, total(src.Slots, string(domain.SlotStatusAvailable)), "slots"},
		{Stat{Title: "My Requests", Description: "Active parking requests", Link: "/requests"}, total(src.Requests, string(domain.ApprovalPending)), "requests"},
		{Stat{Title: "Approved Slots", Description: "Currently assigned to you", Link: "/slots"}, total(src.Requests, string(domain.ApprovalApproved)), "requests"},
	}
}

// LoadDashboard fetches every source concurrently. A failing source leaves its cards marked
// unavailable and raises a single error notice; the rest of the dashboard still populates.
func LoadDashboard(ctx context.Context, role domain.Role, src DashboardSources, notifier Notifier, logger *zap.Logger) (*Dashboard, error) {
	if err := access.Require(role, access.ViewDashboard); err != nil {
		return nil, err
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	queries := dashboardQueries(role, src)
	board := &Dashboard{Stats: make([]Stat, len(queries)), Recent: []domain.SlotRequest{}}

	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed []string
	)
	fail := func(source string, err error) error {
		logger.Warn("dashboard source failed", zap.String("source", source), zap.Error(err))
		mu.Lock()
		failed = append(failed, source)
		mu.Unlock()
		return err
	}

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			stat := q.stat
			n, err := q.count(ctx)
			if err != nil {
				stat.Unavailable = true
				board.Stats[i] = stat
				return fail(q.source, err)
			}
			stat.Value = n
			board.Stats[i] = stat
			return nil
		})
	}
	g.Go(func() error {
		page, err := src.Requests.List(ctx, client.ListParams{Page: 1, Limit: RecentRequests})
		if err != nil {
			return fail("requests", err)
		}
		if page.Items != nil {
			board.Recent = page.Items
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		notifier.Error("Failed to load dashboard", client.MessageOf(err, "Some figures could not be loaded."))
		logger.Debug("dashboard partially loaded", zap.Strings("failed", failed))
	}
	return board, nil
}
