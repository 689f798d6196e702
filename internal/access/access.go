// Package access decides what each role may see and do. Nothing else branches on a role.
package access

import (
	"github.com/spec-kit/parking-service/internal/domain"
)

// Capability names one permitted action.
type Capability string

const (
	ViewDashboard     Capability = "dashboard:view"
	ManageOwnVehicles Capability = "vehicles:manage-own"
	ReviewVehicles    Capability = "vehicles:review"
	ViewAllVehicles   Capability = "vehicles:view-all"
	ViewSlots         Capability = "slots:view"
	ManageSlots       Capability = "slots:manage"
	ManageOwnRequests Capability = "requests:manage-own"
	ReviewRequests    Capability = "requests:review"
	ViewAllRequests   Capability = "requests:view-all"
	ManageUsers       Capability = "users:manage"
	ManageSettings    Capability = "settings:manage"
)

const (
	DeniedNotice    = "You don't have permission to access this page."
	ActionDenied    = "You don't have permission to perform this action."
	LoginNotice     = "Please login to continue."
	NotFoundNotice  = "Page not found."
	DefaultRedirect = "/dashboard"
	LoginRedirect   = "/login"
)

var userCapabilities = []Capability{
	ViewDashboard,
	ManageOwnVehicles,
	ViewSlots,
	ManageOwnRequests,
	ManageSettings,
}

var adminCapabilities = append(append([]Capability{}, userCapabilities...),
	ReviewVehicles,
	ViewAllVehicles,
	ManageSlots,
	ReviewRequests,
	ViewAllRequests,
	ManageUsers,
)

var table = map[domain.Role][]Capability{
	domain.RoleUser:  userCapabilities,
	domain.RoleAdmin: adminCapabilities,
}

// Can reports whether role holds capability.
func Can(role domain.Role, capability Capability) bool {
	for _, c := range table[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// Capabilities lists everything role may do.
func Capabilities(role domain.Role) []Capability {
	return append([]Capability(nil), table[role]...)
}

// Route is one page of the portal.
type Route struct {
	Name     string
	Path     string
	Requires Capability
}

var routes = []Route{
	{Name: "Dashboard", Path: "/dashboard", Requires: ViewDashboard},
	{Name: "Vehicles", Path: "/vehicles", Requires: ManageOwnVehicles},
	{Name: "Parking Slots", Path: "/slots", Requires: ViewSlots},
	{Name: "Slot Requests", Path: "/requests", Requires: ManageOwnRequests},
	{Name: "User Management", Path: "/users", Requires: ManageUsers},
	{Name: "Settings", Path: "/settings", Requires: ManageSettings},
}

// Routes returns every page in navigation order.
func Routes() []Route {
	return append([]Route(nil), routes...)
}

// Nav returns the navigation items role may follow.
func Nav(role domain.Role) []Route {
	var out []Route
	for _, r := range routes {
		if Can(role, r.Requires) {
			out = append(out, r)
		}
	}
	return out
}

// Denial tells the caller where to go instead and what to show.
type Denial struct {
	Redirect string
	Notice   string
}

func (d *Denial) Error() string { return d.Notice }

// Guard checks whether role may load path. It returns nil when allowed.
// An empty role is an anonymous visitor.
func Guard(role domain.Role, path string) *Denial {
	if role == "" {
		return &Denial{Redirect: LoginRedirect, Notice: LoginNotice}
	}
	for _, r := range routes {
		if r.Path != path {
			continue
		}
		if Can(role, r.Requires) {
			return nil
		}
		return &Denial{Redirect: DefaultRedirect, Notice: DeniedNotice}
	}
	return &Denial{Redirect: DefaultRedirect, Notice: NotFoundNotice}
}

// Require checks a single action. It returns nil when allowed.
func Require(role domain.Role, capability Capability) error {
	if role == "" {
		return &Denial{Redirect: LoginRedirect, Notice: LoginNotice}
	}
	if !Can(role, capability) {
		return &Denial{Redirect: DefaultRedirect, Notice: ActionDenied}
	}
	return nil
}
