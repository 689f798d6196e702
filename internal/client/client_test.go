package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spec-kit/parking-service/internal/api/dto"
	"github.com/spec-kit/parking-service/internal/domain"
)

func TestDecodePageShapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		total int
		page  int
		items int
	}{
		{"canonical", `{"data":{"items":[{"id":"a"},{"id":"b"}],"total":12,"page":2,"limit":2}}`, 12, 2, 2},
		{"flat", `{"items":[{"id":"a"}],"total":7}`, 7, 0, 1},
		{"legacy meta", `{"data":[{"id":"a"},{"id":"b"},{"id":"c"}],"meta":{"totalItems":30,"currentPage":3,"itemsPerPage":3}}`, 30, 3, 3},
		{"bare array", `[{"id":"a"}]`, 1, 0, 1},
		{"null items", `{"data":{"items":null,"total":0,"page":1,"limit":10}}`, 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := decodePage[domain.Vehicle]([]byte(tt.body))
			if err != nil {
				t.Fatalf("decodePage: %v", err)
			}
			if page.Total != tt.total || page.Page != tt.page || len(page.Items) != tt.items {
				t.Fatalf("page = %+v", page)
			}
			if page.Items == nil {
				t.Fatal("items must never be nil")
			}
		})
	}

	if _, err := decodePage[domain.Vehicle]([]byte(`{"unexpected":true}`)); !errors.Is(err, errUnknownEnvelope) {
		t.Fatalf("expected errUnknownEnvelope, got %v", err)
	}
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    string
		message string
	}{
		{"envelope", http.StatusConflict, `{"error":{"code":"CONFLICT","message":"slot is not available"}}`, "CONFLICT", "slot is not available"},
		{"legacy message", http.StatusBadRequest, `{"message":"bad input"}`, "", "bad input"},
		{"plain text", http.StatusBadGateway, `upstream down`, "", "upstream down"},
		{"empty", http.StatusServiceUnavailable, ``, "", "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := decodeError(tt.status, []byte(tt.body))
			if apiErr.Code != tt.code || apiErr.Message != tt.message || apiErr.Status != tt.status {
				t.Fatalf("decodeError = %+v", apiErr)
			}
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	wrapped := fmt.Errorf("ctx: %w", &APIError{Status: http.StatusNotFound, Message: "vehicle not found"})
	if !IsNotFound(wrapped) || IsConflict(wrapped) || IsUnauthorized(wrapped) || IsForbidden(wrapped) {
		t.Fatal("status helpers disagree")
	}
	if got := MessageOf(wrapped, "fallback"); got != "vehicle not found" {
		t.Fatalf("MessageOf = %q", got)
	}
	if got := MessageOf(errors.New("dial tcp"), "fallback"); got != "fallback" {
		t.Fatalf("MessageOf network error = %q", got)
	}
}

func TestRequestsCarryTokenAndQuery(t *testing.T) {
	var gotAuth, gotQuery, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"items":[],"total":0,"page":2,"limit":5}}`)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL + "/", HTTPClient: srv.Client(), Tokens: TokenFunc(func() string { return "tok" })})
	page, err := c.Slots.List(context.Background(), ListParams{Page: 2, Limit: 5, Search: " A- ", VehicleType: "CAR"})
	if err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotPath != "/parking-slots" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotQuery != "limit=5&page=2&search=A-&vehicleType=CAR" {
		t.Fatalf("query = %q", gotQuery)
	}
	if page.Page != 2 || page.Limit != 5 {
		t.Fatalf("page = %+v", page)
	}
}

func TestUnauthorizedHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"code":"UNAUTHORIZED","message":"invalid token"}}`)
	}))
	defer srv.Close()

	token := "expired"
	calls := 0
	c := New(Options{
		BaseURL:        srv.URL,
		HTTPClient:     srv.Client(),
		Tokens:         TokenFunc(func() string { return token }),
		OnUnauthorized: func() { calls++ },
	})

	_, err := c.Auth.Me(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("hook calls = %d", calls)
	}

	token = ""
	_, err = c.Auth.Login(context.Background(), dto.LoginRequest{Email: "a@b.c", Password: "x"})
	if !IsUnauthorized(err) || calls != 1 {
		t.Fatalf("anonymous 401 must not trigger the hook: err=%v calls=%d", err, calls)
	}
}

func TestSlotRequestDatesDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"id":"r1","status":"APPROVED","startDate":"2025-06-01","endDate":"2025-06-30","assignedSlot":{"id":"s1","slotNumber":"A-01"}}}`)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	req, err := c.Requests.Approve(context.Background(), "r1", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if req.StartDate.Format(domain.DateLayout) != "2025-06-01" || req.AssignedSlot == nil || req.AssignedSlot.SlotNumber != "A-01" {
		t.Fatalf("request = %+v", req)
	}
}
