package controller

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/parking-service/internal/client"
	"github.com/spec-kit/parking-service/internal/domain"
)

type notice struct {
	ok          bool
	title, desc string
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *recordingNotifier) Success(title, desc string) { n.add(notice{true, title, desc}) }
func (n *recordingNotifier) Error(title, desc string)   { n.add(notice{false, title, desc}) }

func (n *recordingNotifier) add(x notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, x)
}

func (n *recordingNotifier) all() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notice(nil), n.notices...)
}

type fetchLog struct {
	mu     sync.Mutex
	params []client.ListParams
}

func (f *fetchLog) record(p client.ListParams) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, p)
}

func (f *fetchLog) calls() []client.ListParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.ListParams(nil), f.params...)
}

func plates(items []domain.Vehicle) []string {
	out := make([]string, 0, len(items))
	for _, v := range items {
		out = append(out, v.PlateNumber)
	}
	return out
}

func TestListControllerLoadsAndSearches(t *testing.T) {
	log := &fetchLog{}
	fetch := func(_ context.Context, p client.ListParams) (domain.Page[domain.Vehicle], error) {
		log.record(p)
		return domain.Page[domain.Vehicle]{
			Items: []domain.Vehicle{{PlateNumber: p.Search + "1"}},
			Total: 25,
			Page:  p.Page,
			Limit: p.Limit,
		}, nil
	}
	lc := NewListController[domain.Vehicle](context.Background(), fetch, ListOptions{Resource: "vehicles", Debounce: 30 * time.Millisecond})
	defer lc.Close()

	lc.SetPage(3)
	lc.Wait()
	if st := lc.State(); st.Page != 3 || st.TotalPages != 3 || st.Total != 25 {
		t.Fatalf("state = %+v", st)
	}

	lc.SetSearch("A")
	lc.SetSearch("AB")
	lc.SetSearch("ABC")
	lc.Wait()

	calls := log.calls()
	if len(calls) != 2 {
		t.Fatalf("fetches = %+v", calls)
	}
	if last := calls[1]; last.Search != "ABC" || last.Page != 1 {
		t.Fatalf("search fetch = %+v", last)
	}
	if got := plates(lc.State().Items); len(got) != 1 || got[0] != "ABC1" {
		t.Fatalf("items = %v", got)
	}
}

func TestListControllerPageBeyondLast(t *testing.T) {
	all := make([]domain.ParkingSlot, 12)
	for i := range all {
		all[i] = domain.ParkingSlot{SlotNumber: domain.SlotNumber("A", i+1)}
	}
	fetch := func(_ context.Context, p client.ListParams) (domain.Page[domain.ParkingSlot], error) {
		start := min((p.Page-1)*p.Limit, len(all))
		end := min(start+p.Limit, len(all))
		return domain.Page[domain.ParkingSlot]{Items: all[start:end], Total: len(all), Page: p.Page, Limit: p.Limit}, nil
	}
	notes := &recordingNotifier{}
	lc := NewListController[domain.ParkingSlot](context.Background(), fetch, ListOptions{Resource: "parking slots", PageSize: 10, Notifier: notes})
	defer lc.Close()

	lc.Load()
	lc.Wait()
	if st := lc.State(); st.TotalPages != 2 || len(st.Items) != 10 {
		t.Fatalf("first page = %+v", st)
	}

	lc.SetPage(5)
	lc.Wait()
	st := lc.State()
	if st.Page != 5 || st.Total != 12 || st.Items == nil || len(st.Items) != 0 || st.Error != "" {
		t.Fatalf("page 5 = %+v", st)
	}
	if n := notes.all(); len(n) != 0 {
		t.Fatalf("notices = %+v", n)
	}
}

func TestListControllerStatusFilterResetsPage(t *testing.T) {
	log := &fetchLog{}
	fetch := func(_ context.Context, p client.ListParams) (domain.Page[domain.SlotRequest], error) {
		log.record(p)
		return domain.Page[domain.SlotRequest]{}, nil
	}
	lc := NewListController[domain.SlotRequest](context.Background(), fetch, ListOptions{})
	defer lc.Close()

	lc.SetPage(4)
	lc.Wait()
	lc.SetStatus("pending")
	lc.Wait()

	calls := log.calls()
	if last := calls[len(calls)-1]; last.Page != 1 || last.Status != "PENDING" {
		t.Fatalf("last fetch = %+v", last)
	}
	if st := lc.State(); st.Items == nil || len(st.Items) != 0 {
		t.Fatalf("items must be an empty slice, got %#v", st.Items)
	}
}

func TestListControllerFetchFailure(t *testing.T) {
	notes := &recordingNotifier{}
	fetch := func(context.Context, client.ListParams) (domain.Page[domain.Vehicle], error) {
		return domain.Page[domain.Vehicle]{Items: []domain.Vehicle{{PlateNumber: "STALE"}}}, &client.APIError{Status: http.StatusInternalServerError, Message: "database unavailable"}
	}
	lc := NewListController[domain.Vehicle](context.Background(), fetch, ListOptions{Resource: "vehicles", Notifier: notes})
	defer lc.Close()

	lc.Load()
	lc.Wait()

	st := lc.State()
	if st.Error != "database unavailable" || len(st.Items) != 0 || st.Loading {
		t.Fatalf("state = %+v", st)
	}
	got := notes.all()
	if len(got) != 1 || got[0].ok || got[0].title != "Failed to load vehicles" {
		t.Fatalf("notices = %+v", got)
	}
}

func TestMutateRefreshesExactlyOnce(t *testing.T) {
	log := &fetchLog{}
	fetch := func(_ context.Context, p client.ListParams) (domain.Page[domain.Vehicle], error) {
		log.record(p)
		return domain.Page[domain.Vehicle]{}, nil
	}
	notes := &recordingNotifier{}
	lc := NewListController[domain.Vehicle](context.Background(), fetch, ListOptions{Notifier: notes})
	defer lc.Close()
	lc.SetPage(2)
	lc.Wait()

	err := lc.Mutate(context.Background(), Mutation{
		Success: "Vehicle approved",
		Run:     func(context.Context) error { return nil },
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	lc.Wait()

	calls := log.calls()
	if len(calls) != 2 || calls[1].Page != 2 {
		t.Fatalf("fetches = %+v", calls)
	}
	if got := notes.all(); len(got) != 1 || !got[0].ok || got[0].title != "Vehicle approved" {
		t.Fatalf("notices = %+v", got)
	}
}

func TestMutateFailureLeavesListAlone(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantTitle string
		wantDesc  string
	}{
		{"validation", &ValidationError{Field: "reason", Message: "A rejection reason is required."}, "Validation Error", "A rejection reason is required."},
		{"server message", &client.APIError{Status: http.StatusConflict, Message: "slot is not available"}, "Failed to approve", "slot is not available"},
		{"fallback", errors.New("dial tcp: refused"), "Failed to approve", "Could not approve request."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &fetchLog{}
			notes := &recordingNotifier{}
			lc := NewListController[domain.SlotRequest](context.Background(), func(_ context.Context, p client.ListParams) (domain.Page[domain.SlotRequest], error) {
				log.record(p)
				return domain.Page[domain.SlotRequest]{}, nil
			}, ListOptions{Notifier: notes})
			defer lc.Close()

			err := lc.Mutate(context.Background(), Mutation{
				Success:  "Request approved",
				Failure:  "Failed to approve",
				Fallback: "Could not approve request.",
				Run:      func(context.Context) error { return tt.err },
			})
			lc.Wait()
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v", err)
			}
			if n := len(log.calls()); n != 0 {
				t.Fatalf("unexpected fetches: %d", n)
			}
			got := notes.all()
			if len(got) != 1 || got[0].ok || got[0].title != tt.wantTitle || got[0].desc != tt.wantDesc {
				t.Fatalf("notices = %+v", got)
			}
		})
	}
}
