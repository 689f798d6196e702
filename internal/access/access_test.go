package access

import (
	"errors"
	"testing"

	"github.com/spec-kit/parking-service/internal/domain"
)

func TestCapabilityMatrix(t *testing.T) {
	tests := []struct {
		capability Capability
		user       bool
		admin      bool
	}{
		{ViewDashboard, true, true},
		{ManageOwnVehicles, true, true},
		{ViewSlots, true, true},
		{ManageOwnRequests, true, true},
		{ManageSettings, true, true},
		{ReviewVehicles, false, true},
		{ViewAllVehicles, false, true},
		{ManageSlots, false, true},
		{ReviewRequests, false, true},
		{ViewAllRequests, false, true},
		{ManageUsers, false, true},
	}
	for _, tt := range tests {
		if got := Can(domain.RoleUser, tt.capability); got != tt.user {
			t.Errorf("USER %s = %v", tt.capability, got)
		}
		if got := Can(domain.RoleAdmin, tt.capability); got != tt.admin {
			t.Errorf("ADMIN %s = %v", tt.capability, got)
		}
		if Can("", tt.capability) {
			t.Errorf("anonymous %s allowed", tt.capability)
		}
	}
}

func TestNavFollowsTable(t *testing.T) {
	paths := func(rs []Route) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.Path)
		}
		return out
	}
	user := paths(Nav(domain.RoleUser))
	want := []string{"/dashboard", "/vehicles", "/slots", "/requests", "/settings"}
	if len(user) != len(want) {
		t.Fatalf("user nav = %v", user)
	}
	for i := range want {
		if user[i] != want[i] {
			t.Fatalf("user nav = %v", user)
		}
	}
	if admin := paths(Nav(domain.RoleAdmin)); len(admin) != 6 || admin[4] != "/users" {
		t.Fatalf("admin nav = %v", admin)
	}
	if len(Nav("")) != 0 {
		t.Fatal("anonymous nav must be empty")
	}
}

func TestGuard(t *testing.T) {
	tests := []struct {
		name   string
		role   domain.Role
		path   string
		denial *Denial
	}{
		{"user dashboard", domain.RoleUser, "/dashboard", nil},
		{"user users", domain.RoleUser, "/users", &Denial{Redirect: "/dashboard", Notice: "You don't have permission to access this page."}},
		{"admin users", domain.RoleAdmin, "/users", nil},
		{"anonymous", "", "/vehicles", &Denial{Redirect: "/login", Notice: LoginNotice}},
		{"unknown page", domain.RoleAdmin, "/nowhere", &Denial{Redirect: "/dashboard", Notice: NotFoundNotice}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Guard(tt.role, tt.path)
			switch {
			case tt.denial == nil && got != nil:
				t.Fatalf("unexpected denial %+v", got)
			case tt.denial != nil && (got == nil || *got != *tt.denial):
				t.Fatalf("denial = %+v, want %+v", got, tt.denial)
			}
		})
	}
}

func TestRequire(t *testing.T) {
	if err := Require(domain.RoleAdmin, ManageSlots); err != nil {
		t.Fatal(err)
	}
	err := Require(domain.RoleUser, ManageSlots)
	var denial *Denial
	if !errors.As(err, &denial) || denial.Notice != ActionDenied {
		t.Fatalf("Require = %v", err)
	}
}
