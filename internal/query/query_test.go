package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu      sync.Mutex
	calls   []string
	results []Result[string, string]
}

func (r *recorder) fetchCalls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) delivered() []Result[string, string] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Result[string, string](nil), r.results...)
}

func (r *recorder) onResult(res Result[string, string]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func TestDebounceCollapsesBursts(t *testing.T) {
	rec := &recorder{}
	q := New(context.Background(), func(_ context.Context, p string) (string, error) {
		rec.mu.Lock()
		rec.calls = append(rec.calls, p)
		rec.mu.Unlock()
		return "result:" + p, nil
	}, 40*time.Millisecond, rec.onResult)

	for _, term := range []string{"A", "AB", "ABC"} {
		q.Set(term)
		time.Sleep(5 * time.Millisecond)
	}
	q.Wait()

	if calls := rec.fetchCalls(); len(calls) != 1 || calls[0] != "ABC" {
		t.Fatalf("fetch calls = %v", calls)
	}
	got := rec.delivered()
	if len(got) != 1 || got[0].Value != "result:ABC" {
		t.Fatalf("delivered = %+v", got)
	}
	if snap := q.Snapshot(); snap.Loading || snap.Value != "result:ABC" || snap.Params != "ABC" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestStaleResponseNeverOverwritesNewer(t *testing.T) {
	rec := &recorder{}
	release := make(chan struct{})
	started := make(chan struct{})
	var slowCtxErr error

	q := New(context.Background(), func(ctx context.Context, p string) (string, error) {
		if p == "slow" {
			close(started)
			<-release
			slowCtxErr = ctx.Err()
			return "slow-value", nil
		}
		return "fast-value", nil
	}, 0, rec.onResult)

	q.SetNow("slow")
	<-started
	q.SetNow("fast")

	deadline := time.After(time.Second)
	for len(rec.delivered()) == 0 {
		select {
		case <-deadline:
			t.Fatal("fast result never delivered")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	close(release)
	q.Wait()

	got := rec.delivered()
	if len(got) != 1 || got[0].Params != "fast" {
		t.Fatalf("delivered = %+v", got)
	}
	if q.Snapshot().Value != "fast-value" {
		t.Fatalf("value = %q", q.Snapshot().Value)
	}
	if !errors.Is(slowCtxErr, context.Canceled) {
		t.Fatalf("superseded fetch context err = %v", slowCtxErr)
	}
}

func TestFailureExposesZeroValue(t *testing.T) {
	boom := errors.New("boom")
	q := New(context.Background(), func(_ context.Context, p string) ([]string, error) {
		if p == "bad" {
			return []string{"partial"}, boom
		}
		return []string{"ok"}, nil
	}, 0, nil)

	q.SetNow("good")
	q.Wait()
	q.SetNow("bad")
	q.Wait()

	snap := q.Snapshot()
	if !errors.Is(snap.Err, boom) || snap.Value != nil {
		t.Fatalf("snapshot = %+v", snap)
	}

	q.Refresh()
	q.Wait()
	if calls := q.Snapshot(); calls.Params != "bad" {
		t.Fatalf("refresh must reuse params, got %+v", calls)
	}
}

func TestCloseDropsPendingWork(t *testing.T) {
	rec := &recorder{}
	q := New(context.Background(), func(_ context.Context, p string) (string, error) {
		rec.mu.Lock()
		rec.calls = append(rec.calls, p)
		rec.mu.Unlock()
		return p, nil
	}, 50*time.Millisecond, rec.onResult)

	q.Set("pending")
	q.Close()
	q.Wait()
	q.Set("after close")
	time.Sleep(80 * time.Millisecond)

	if calls := rec.fetchCalls(); len(calls) != 0 {
		t.Fatalf("fetch calls = %v", calls)
	}
}
