package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository/memory"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	raw, meta, err := tm.GenerateToken("user-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := tm.ParseToken(raw)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != domain.RoleAdmin || claims.ID != meta.ID {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	raw, _, _ := tm.GenerateToken("user-1", domain.RoleUser)

	other := NewTokenManager("other-secret", 1)
	if _, err := other.ParseToken(raw); err == nil {
		t.Fatal("expected signature error")
	}

	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := tm.ParseToken(raw); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestPasswordPolicyAndCompare(t *testing.T) {
	cases := []struct {
		password string
		want     error
	}{
		{"short", ErrPasswordTooShort},
		{"päss wörd", nil},
		{strings.Repeat("x", MaxPasswordBytes), nil},
		{strings.Repeat("x", MaxPasswordBytes+1), ErrPasswordTooLong},
	}
	for _, tt := range cases {
		if err := CheckPasswordPolicy(tt.password); !errors.Is(err, tt.want) {
			t.Fatalf("CheckPasswordPolicy(%q) = %v, want %v", tt.password, err, tt.want)
		}
	}

	hash, err := HashPassword("password1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := ComparePassword(hash, "password1"); err != nil {
		t.Fatalf("matching password: %v", err)
	}
	if err := ComparePassword(hash, "password2"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("wrong password: %v", err)
	}
	if err := ComparePassword("not-a-hash", "password1"); err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("corrupt hash: %v", err)
	}
}

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()
	if err := store.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := store.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	if ok, _ := store.IsRevoked(ctx, "jti-1"); !ok {
		t.Fatal("jti-1 should be revoked")
	}
	if ok, _ := store.IsRevoked(ctx, "jti-old"); ok {
		t.Fatal("already-expired token should not be tracked")
	}
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	active := domain.User{Name: "Active", Email: "active@example.com", Role: domain.RoleUser, Status: domain.UserStatusActive}
	suspended := domain.User{Name: "Gone", Email: "gone@example.com", Role: domain.RoleUser, Status: domain.UserStatusSuspended}
	admin := domain.User{Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin, Status: domain.UserStatusActive}
	for _, u := range []*domain.User{&active, &suspended, &admin} {
		if err := store.Users().Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	tm := NewTokenManager("secret", 5)
	revoked := NewMemoryRevocationStore()
	mw := NewAuthMiddleware(tm, store.Users(), revoked, zap.NewNop())

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.User.Email)
	})
	app.Get("/admin", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	token := func(u domain.User) string {
		raw, _, err := tm.GenerateToken(u.ID, u.Role)
		if err != nil {
			t.Fatal(err)
		}
		return raw
	}
	revokedToken, meta, _ := tm.GenerateToken(active.ID, active.Role)
	_ = revoked.Revoke(ctx, meta.ID, meta.ExpiresAt)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"active user", "/me", "Bearer " + token(active), http.StatusOK},
		{"suspended user", "/me", "Bearer " + token(suspended), http.StatusUnauthorized},
		{"revoked token", "/me", "Bearer " + revokedToken, http.StatusUnauthorized},
		{"user on admin route", "/admin", "Bearer " + token(active), http.StatusForbidden},
		{"admin on admin route", "/admin", "Bearer " + token(admin), http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("status=%d want %d", resp.StatusCode, tc.want)
			}
		})
	}
}
