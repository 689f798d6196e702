package cli

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/access"
	"github.com/spec-kit/parking-service/internal/client"
	"github.com/spec-kit/parking-service/internal/config"
	"github.com/spec-kit/parking-service/internal/session"
)

type terminal struct {
	env     Env
	counter *countingTransport
}

func newTerminal(baseURL string) *terminal {
	counter := &countingTransport{next: http.DefaultTransport}
	return &terminal{
		counter: counter,
		env: Env{
			Config: &config.ClientConfig{
				APIURL:         baseURL,
				PageSize:       10,
				SearchDebounce: 20 * time.Millisecond,
				RequestTimeout: 5 * time.Second,
			},
			Storage:    session.NewMemoryStorage(),
			HTTPClient: &http.Client{Timeout: 5 * time.Second, Transport: counter},
			Logger:     zap.NewNop(),
		},
	}
}

func (tm *terminal) run(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	env := tm.env
	env.In = strings.NewReader(stdin)
	env.Out = &out
	env.Err = &errOut
	code := Execute(context.Background(), env, args)
	return out.String(), errOut.String(), code
}

func (tm *terminal) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, code := tm.run(t, "", args...)
	if code != 0 {
		t.Fatalf("parkctl %s: exit %d\nstdout: %s\nstderr: %s", strings.Join(args, " "), code, out, errOut)
	}
	return out
}

func TestAnonymousCommandsNeverReachTheNetwork(t *testing.T) {
	tm := newTerminal("http://127.0.0.1:1")
	for _, args := range [][]string{
		{"vehicles", "list"},
		{"slots", "create", "--count", "3", "--prefix", "A"},
		{"requests", "approve", "some-id"},
		{"users", "list"},
		{"dashboard"},
	} {
		_, errOut, code := tm.run(t, "", args...)
		if code != 1 || !strings.Contains(errOut, access.LoginNotice) {
			t.Fatalf("%v: exit %d stderr %q", args, code, errOut)
		}
	}
	if tm.counter.n != 0 {
		t.Fatalf("requests sent: %d", tm.counter.n)
	}

	out, _, code := tm.run(t, "", "nav", "/users")
	if code != 1 || !strings.Contains(out, "redirect: /login") {
		t.Fatalf("nav: exit %d out %q", code, out)
	}
}

func TestUserCannotRunAdminCommands(t *testing.T) {
	ts := newBackend(t)
	tm := newTerminal(ts.URL)
	tm.mustRun(t, "register", "--name", "Uma", "--email", "uma@example.com", "--password", "password1")

	nav := tm.mustRun(t, "nav")
	if strings.Contains(nav, "/users") || !strings.Contains(nav, "/requests") {
		t.Fatalf("user nav = %q", nav)
	}

	for _, args := range [][]string{
		{"users", "list"},
		{"vehicles", "approve", "v1"},
		{"slots", "delete", "s1"},
		{"requests", "reject", "r1", "--reason", "no"},
	} {
		before := tm.counter.n
		_, errOut, code := tm.run(t, "", args...)
		if code != 1 || !strings.Contains(errOut, access.ActionDenied) {
			t.Fatalf("%v: exit %d stderr %q", args, code, errOut)
		}
		// only the session check at start-up may reach the server
		if sent := tm.counter.n - before; sent != 1 {
			t.Fatalf("%v: %d requests sent", args, sent)
		}
	}

	out, _, code := tm.run(t, "", "nav", "/users")
	if code != 1 || !strings.Contains(out, "redirect: /dashboard") {
		t.Fatalf("nav /users: exit %d out %q", code, out)
	}
}

func TestApprovalFlowFromTheCommandLine(t *testing.T) {
	ts := newBackend(t)
	adminTerm := newTerminal(ts.URL)
	userTerm := newTerminal(ts.URL)

	adminTerm.mustRun(t, "login", "--email", adminEmail, "--password", adminPassword)
	userTerm.mustRun(t, "register", "--name", "Ada", "--email", "ada@example.com", "--password", "password1")

	out := userTerm.mustRun(t, "vehicles", "create", "--plate", "abc123", "--type", "car", "--size", "medium", "--color", "blue")
	if !strings.Contains(out, "ABC123") || !strings.Contains(out, "PENDING") {
		t.Fatalf("vehicles after create:\n%s", out)
	}

	_, user := connect(t, ts.URL, userTerm.env.Storage)
	vehicles, err := user.Vehicles.List(context.Background(), client.ListParams{Page: 1, Limit: 10})
	if err != nil || len(vehicles.Items) != 1 {
		t.Fatalf("vehicles = %+v, %v", vehicles, err)
	}
	vehicleID := vehicles.Items[0].ID

	_, errOut, code := adminTerm.run(t, "", "vehicles", "reject", vehicleID, "--reason", "  ")
	if code != 1 || !strings.Contains(errOut, "A rejection reason is required.") {
		t.Fatalf("blank reject: exit %d stderr %q", code, errOut)
	}
	out = adminTerm.mustRun(t, "vehicles", "approve", vehicleID)
	if !strings.Contains(out, "APPROVED") {
		t.Fatalf("vehicles after approve:\n%s", out)
	}

	out = adminTerm.mustRun(t, "slots", "create", "--count", "2", "--prefix", "a", "--type", "car", "--size", "medium", "--location", "Level 1")
	if !strings.Contains(out, "created 2 slot(s)") || !strings.Contains(out, "A-02") {
		t.Fatalf("bulk create:\n%s", out)
	}

	userTerm.mustRun(t, "requests", "create", "--vehicle", vehicleID, "--start", "2025-06-01", "--end", "2025-06-30", "--location", "Level 1")
	requests, err := user.Requests.List(context.Background(), client.ListParams{Page: 1, Limit: 10})
	if err != nil || len(requests.Items) != 1 {
		t.Fatalf("requests = %+v, %v", requests, err)
	}
	requestID := requests.Items[0].ID

	out, errOut, code = adminTerm.run(t, "", "requests", "approve", requestID)
	if code != 1 || !strings.Contains(out, "A-01") || !strings.Contains(out, "A-02") || !strings.Contains(errOut, "Please select a parking slot.") {
		t.Fatalf("approve without slot: exit %d\nstdout: %s\nstderr: %s", code, out, errOut)
	}
	adminTerm.mustRun(t, "requests", "approve", requestID, "--slot", "A-01")

	out = userTerm.mustRun(t, "slots", "list", "--search", "A-01")
	if !strings.Contains(out, "OCCUPIED") || !strings.Contains(out, "ABC123") {
		t.Fatalf("slot A-01:\n%s", out)
	}
	out = userTerm.mustRun(t, "requests", "reason", requestID)
	if !strings.Contains(out, "status: APPROVED") {
		t.Fatalf("reason:\n%s", out)
	}
	out = userTerm.mustRun(t, "dashboard")
	if !strings.Contains(out, "Welcome back, Ada") || !strings.Contains(out, "Approved Slots") {
		t.Fatalf("dashboard:\n%s", out)
	}

	out, _, code = userTerm.run(t, "AB\nABC1\n", "vehicles", "search")
	if code != 0 || !strings.Contains(out, `search "ABC1": 1 match(es)`) {
		t.Fatalf("search: exit %d\n%s", code, out)
	}

	userTerm.mustRun(t, "logout")
	_, errOut, code = userTerm.run(t, "", "whoami")
	if code != 1 || !strings.Contains(errOut, access.LoginNotice) {
		t.Fatalf("whoami after logout: exit %d stderr %q", code, errOut)
	}
}

func TestSettingsCommands(t *testing.T) {
	ts := newBackend(t)
	tm := newTerminal(ts.URL)
	tm.mustRun(t, "register", "--name", "Uma", "--email", "uma@example.com", "--password", "password1")

	_, errOut, code := tm.run(t, "", "settings", "password", "--current", "password1", "--new", "password2", "--confirm", "password3")
	if code != 1 || !strings.Contains(errOut, "Passwords do not match") {
		t.Fatalf("mismatch: exit %d stderr %q", code, errOut)
	}
	tm.mustRun(t, "settings", "password", "--current", "password1", "--new", "password2", "--confirm", "password2")

	out := tm.mustRun(t, "settings", "profile", "--name", "Uma Q")
	if !strings.Contains(out, "Uma Q <uma@example.com>") {
		t.Fatalf("profile:\n%s", out)
	}

	out = tm.mustRun(t, "settings", "notifications")
	if !strings.Contains(out, "email notifications: true") || !strings.Contains(out, "system updates:      false") {
		t.Fatalf("default preferences:\n%s", out)
	}
	out = tm.mustRun(t, "settings", "notifications", "--updates", "--email=false")
	if !strings.Contains(out, "email notifications: false") || !strings.Contains(out, "system updates:      true") {
		t.Fatalf("saved preferences:\n%s", out)
	}

	tm.mustRun(t, "logout")
	tm.mustRun(t, "login", "--email", "uma@example.com", "--password", "password2")
	out = tm.mustRun(t, "settings", "notifications")
	if !strings.Contains(out, "system updates:      true") {
		t.Fatalf("preferences must survive logout:\n%s", out)
	}
}
