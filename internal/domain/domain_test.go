package domain

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		action ApprovalAction
		from   ApprovalStatus
		valid  bool
	}{
		{ActionApprove, ApprovalPending, true},
		{ActionReject, ApprovalPending, true},
		{ActionApprove, ApprovalApproved, false},
		{ActionApprove, ApprovalRejected, false},
		{ActionReject, ApprovalApproved, false},
		{ActionReject, ApprovalRejected, false},
		{"archive", ApprovalPending, false},
	}

	for _, tt := range cases {
		if got := CanTransition(tt.action, tt.from); got != tt.valid {
			t.Fatalf("CanTransition(%q, %q)=%v, want %v", tt.action, tt.from, got, tt.valid)
		}
	}
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		raw  string
		want Role
		ok   bool
	}{
		{"ADMIN", RoleAdmin, true},
		{"admin", RoleAdmin, true},
		{" user ", RoleUser, true},
		{"USER", RoleUser, true},
		{"administrative", RoleAdmin, true},
		{"root", "", false},
		{"", "", false},
	}
	for _, tt := range cases {
		got, ok := ParseRole(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseRole(%q)=(%q,%v), want (%q,%v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseEnumsAcceptLegacyCasing(t *testing.T) {
	if v, ok := ParseVehicleType("car"); !ok || v != VehicleTypeCar {
		t.Fatalf("vehicle type: got %q %v", v, ok)
	}
	if v, ok := ParseVehicleSize("Medium"); !ok || v != VehicleSizeMedium {
		t.Fatalf("vehicle size: got %q %v", v, ok)
	}
	if v, ok := ParseSlotStatus("available"); !ok || v != SlotStatusAvailable {
		t.Fatalf("slot status: got %q %v", v, ok)
	}
	if v, ok := ParseApprovalStatus("rejected"); !ok || v != ApprovalRejected {
		t.Fatalf("approval status: got %q %v", v, ok)
	}
	if _, ok := ParseVehicleType("bus"); ok {
		t.Fatal("expected bus to be rejected")
	}
}

func TestSlotNumbering(t *testing.T) {
	if got := SlotNumber("a", 1); got != "A-01" {
		t.Fatalf("SlotNumber=%q", got)
	}
	if got := SlotNumber("B", 123); got != "B-123" {
		t.Fatalf("SlotNumber=%q", got)
	}
	if n, ok := SlotSequence("A", "A-07"); !ok || n != 7 {
		t.Fatalf("SlotSequence=%d %v", n, ok)
	}
	if _, ok := SlotSequence("A", "AB-07"); ok {
		t.Fatal("AB-07 must not belong to prefix A")
	}
	if _, ok := SlotSequence("A", "A-x"); ok {
		t.Fatal("non-numeric suffix must be rejected")
	}
}

func TestPageRequestNormalize(t *testing.T) {
	p := PageRequest{Page: 0, Limit: 500, Search: "  abc ", Status: "pending"}.Normalize()
	if p.Page != 1 || p.Limit != MaxPageSize || p.Search != "abc" || p.Status != "PENDING" {
		t.Fatalf("unexpected normalisation: %+v", p)
	}
	if off := (PageRequest{Page: 3, Limit: 10}).Offset(); off != 20 {
		t.Fatalf("Offset=%d", off)
	}
}

func TestPageRequestOffsetNeverOverflows(t *testing.T) {
	for _, limit := range []int{1, 7, 20, MaxPageSize} {
		off := PageRequest{Page: math.MaxInt, Limit: limit}.Offset()
		if off < 0 {
			t.Fatalf("limit %d: Offset=%d", limit, off)
		}
		if off < 1_000_000 {
			t.Fatalf("limit %d: huge page mapped to offset %d", limit, off)
		}
	}
}

func TestPageTotalPages(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{5, 0, 0},
	}
	for _, tt := range cases {
		p := Page[int]{Total: tt.total, Limit: tt.limit}
		if got := p.TotalPages(); got != tt.want {
			t.Fatalf("TotalPages(total=%d, limit=%d)=%d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestSlotRequestDatesOnTheWire(t *testing.T) {
	req := SlotRequest{
		ID:        "r1",
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Status:    ApprovalPending,
	}
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"startDate":"2025-06-01"`) || !strings.Contains(string(raw), `"endDate":"2025-06-30"`) {
		t.Fatalf("unexpected encoding %s", raw)
	}

	var decoded SlotRequest
	if err := json.Unmarshal([]byte(`{"id":"r2","startDate":"2025-06-01T00:00:00Z","endDate":"2025-06-30","status":"PENDING"}`), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.ID != "r2" || !decoded.StartDate.Equal(req.StartDate) || !decoded.EndDate.Equal(req.EndDate) {
		t.Fatalf("unexpected decode %+v", decoded)
	}
}
