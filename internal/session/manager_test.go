package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/parking-service/internal/api/dto"
	"github.com/spec-kit/parking-service/internal/client"
	"github.com/spec-kit/parking-service/internal/domain"
)

type fakeAPI struct {
	loginFn    func(dto.LoginRequest) (*client.AuthResult, error)
	registerFn func(dto.RegisterRequest) (*client.AuthResult, error)
	meFn       func() (*domain.User, error)
	profileFn  func(dto.ProfileRequest) (*domain.User, error)
	passwordFn func(current, next string) error
	logoutFn   func() error
	meCalls    int
	logouts    int
}

func (f *fakeAPI) Login(_ context.Context, req dto.LoginRequest) (*client.AuthResult, error) {
	return f.loginFn(req)
}

func (f *fakeAPI) Register(_ context.Context, req dto.RegisterRequest) (*client.AuthResult, error) {
	return f.registerFn(req)
}

func (f *fakeAPI) Me(context.Context) (*domain.User, error) {
	f.meCalls++
	return f.meFn()
}

func (f *fakeAPI) Logout(context.Context) error {
	f.logouts++
	if f.logoutFn != nil {
		return f.logoutFn()
	}
	return nil
}

func (f *fakeAPI) UpdateProfile(_ context.Context, req dto.ProfileRequest) (*domain.User, error) {
	return f.profileFn(req)
}

func (f *fakeAPI) ChangePassword(_ context.Context, current, next string) error {
	return f.passwordFn(current, next)
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("whatever"))
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

var uma = domain.User{ID: "u1", Name: "Uma", Email: "uma@example.com", Role: domain.RoleUser}

func TestInitWithoutTokenIsAnonymous(t *testing.T) {
	api := &fakeAPI{}
	m := NewManager(api, NewMemoryStorage(), nil)
	if !m.State().IsLoading {
		t.Fatal("new manager must start loading")
	}
	if err := m.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	st := m.State()
	if st.IsAuthenticated || st.IsLoading || st.Error != "" || api.meCalls != 0 {
		t.Fatalf("state = %+v, me calls = %d", st, api.meCalls)
	}
}

func TestInitRestoresValidSession(t *testing.T) {
	store := NewMemoryStorage()
	token := signed(t, time.Now().Add(time.Hour))
	_ = store.Set(keyToken, token)
	api := &fakeAPI{meFn: func() (*domain.User, error) { u := uma; return &u, nil }}

	m := NewManager(api, store, nil)
	if err := m.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	st := m.State()
	if !st.IsAuthenticated || st.Token != token || st.User == nil || st.User.Email != uma.Email || st.Role() != domain.RoleUser {
		t.Fatalf("state = %+v", st)
	}
	if raw, ok, _ := store.Get(keyUser); !ok || raw == "" {
		t.Fatal("user must be persisted")
	}
}

func TestInitClearsRejectedToken(t *testing.T) {
	store := NewMemoryStorage()
	_ = store.Set(keyToken, signed(t, time.Now().Add(time.Hour)))
	_ = store.Set(keyUser, `{"id":"u1"}`)
	api := &fakeAPI{meFn: func() (*domain.User, error) {
		return nil, &client.APIError{Status: http.StatusUnauthorized, Message: "invalid token"}
	}}

	m := NewManager(api, store, nil)
	if err := m.Init(context.Background()); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Init = %v", err)
	}
	st := m.State()
	if st.IsAuthenticated || st.Token != "" || st.Error != ExpiredMessage {
		t.Fatalf("state = %+v", st)
	}
	if _, ok, _ := store.Get(keyToken); ok {
		t.Fatal("token must be cleared")
	}
	if _, ok, _ := store.Get(keyUser); ok {
		t.Fatal("user must be cleared")
	}
}

func TestInitSkipsNetworkForExpiredToken(t *testing.T) {
	store := NewMemoryStorage()
	_ = store.Set(keyToken, signed(t, time.Now().Add(-time.Minute)))
	api := &fakeAPI{}

	m := NewManager(api, store, nil)
	if err := m.Init(context.Background()); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Init = %v", err)
	}
	if api.meCalls != 0 {
		t.Fatalf("me calls = %d", api.meCalls)
	}
}

func TestLoginFailureKeepsPriorState(t *testing.T) {
	api := &fakeAPI{
		loginFn: func(req dto.LoginRequest) (*client.AuthResult, error) {
			if req.Password == "right" {
				return &client.AuthResult{User: uma, Token: "tok-1"}, nil
			}
			return nil, &client.APIError{Status: http.StatusUnauthorized, Message: "invalid credentials"}
		},
	}
	store := NewMemoryStorage()
	m := NewManager(api, store, nil)
	_ = m.Init(context.Background())

	if err := m.Login(context.Background(), dto.LoginRequest{Email: uma.Email, Password: "right"}); err != nil {
		t.Fatal(err)
	}
	if tok, _, _ := store.Get(keyToken); tok != "tok-1" {
		t.Fatalf("persisted token = %q", tok)
	}

	err := m.Login(context.Background(), dto.LoginRequest{Email: uma.Email, Password: "wrong"})
	if err == nil {
		t.Fatal("expected error")
	}
	st := m.State()
	if !st.IsAuthenticated || st.Token != "tok-1" || st.Error != "invalid credentials" || st.IsLoading {
		t.Fatalf("state = %+v", st)
	}
}

func TestLoginFallbackMessage(t *testing.T) {
	api := &fakeAPI{loginFn: func(dto.LoginRequest) (*client.AuthResult, error) {
		return nil, errors.New("connection refused")
	}}
	m := NewManager(api, nil, nil)
	_ = m.Login(context.Background(), dto.LoginRequest{})
	if got := m.State().Error; got != "Failed to login. Please check your credentials." {
		t.Fatalf("error = %q", got)
	}
}

func TestRegisterLogoutAndSubscribe(t *testing.T) {
	api := &fakeAPI{registerFn: func(req dto.RegisterRequest) (*client.AuthResult, error) {
		return &client.AuthResult{User: domain.User{ID: "u2", Name: req.Name, Email: req.Email, Role: domain.RoleUser}, Token: "tok-2"}, nil
	}}
	store := NewMemoryStorage()
	m := NewManager(api, store, nil)

	var seen []State
	cancel := m.Subscribe(func(s State) { seen = append(seen, s) })

	if err := m.Register(context.Background(), dto.RegisterRequest{Name: "Ned", Email: "ned@example.com", Password: "password1"}); err != nil {
		t.Fatal(err)
	}
	if last := seen[len(seen)-1]; !last.IsAuthenticated || last.User.Name != "Ned" {
		t.Fatalf("last notification = %+v", last)
	}

	m.Logout(context.Background())
	if api.logouts != 1 {
		t.Fatalf("server logouts = %d", api.logouts)
	}
	if st := m.State(); st.IsAuthenticated || st.Token != "" || st.User != nil {
		t.Fatalf("state after logout = %+v", st)
	}
	if _, ok, _ := store.Get(keyToken); ok {
		t.Fatal("token must be cleared")
	}

	cancel()
	n := len(seen)
	m.Logout(context.Background())
	if len(seen) != n {
		t.Fatal("cancelled subscriber was notified")
	}
	if api.logouts != 1 {
		t.Fatal("anonymous logout must not call the server")
	}
}

func TestLogoutClearsBeforeRevoking(t *testing.T) {
	store := NewMemoryStorage()
	api := &fakeAPI{loginFn: func(dto.LoginRequest) (*client.AuthResult, error) {
		return &client.AuthResult{User: uma, Token: "tok"}, nil
	}}
	m := NewManager(api, store, nil)
	if err := m.Login(context.Background(), dto.LoginRequest{}); err != nil {
		t.Fatal(err)
	}

	api.logoutFn = func() error {
		if st := m.State(); st.IsAuthenticated || st.Token != "" {
			t.Errorf("state during revocation = %+v", st)
		}
		if _, ok, _ := store.Get(keyToken); ok {
			t.Error("token still stored during revocation")
		}
		return errors.New("connection refused")
	}
	m.Logout(context.Background())
	if api.logouts != 1 || m.State().IsAuthenticated {
		t.Fatalf("logouts=%d state=%+v", api.logouts, m.State())
	}
}

func TestLogoutRevokesTheCapturedToken(t *testing.T) {
	token := signed(t, time.Now().Add(time.Hour))
	var revoked string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/me":
			_, _ = w.Write([]byte(`{"data":{"id":"u1","name":"Uma","email":"uma@example.com","role":"USER","status":"ACTIVE"}}`))
		case "/auth/logout":
			revoked = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := NewMemoryStorage()
	_ = store.Set(keyToken, token)
	m, _ := Connect(client.Options{BaseURL: srv.URL, HTTPClient: srv.Client()}, store, nil)
	if err := m.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !m.State().IsAuthenticated {
		t.Fatalf("state = %+v", m.State())
	}

	m.Logout(context.Background())
	if revoked != "Bearer "+token {
		t.Fatalf("logout sent Authorization %q", revoked)
	}
	if m.State().IsAuthenticated {
		t.Fatal("still authenticated")
	}
}

func TestProfileAndPassword(t *testing.T) {
	api := &fakeAPI{
		loginFn: func(dto.LoginRequest) (*client.AuthResult, error) {
			return &client.AuthResult{User: uma, Token: "tok"}, nil
		},
		profileFn: func(req dto.ProfileRequest) (*domain.User, error) {
			u := uma
			u.Name = *req.Name
			return &u, nil
		},
		passwordFn: func(current, next string) error {
			if current != "old" {
				return &client.APIError{Status: http.StatusBadRequest, Message: "current password is incorrect"}
			}
			return nil
		},
	}
	m := NewManager(api, nil, nil)

	if err := m.UpdateProfile(context.Background(), dto.ProfileRequest{Name: dto.Str("X")}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("anonymous profile update = %v", err)
	}
	_ = m.Login(context.Background(), dto.LoginRequest{})

	if err := m.UpdateProfile(context.Background(), dto.ProfileRequest{Name: dto.Str("Uma Q")}); err != nil {
		t.Fatal(err)
	}
	if got := m.State().User.Name; got != "Uma Q" {
		t.Fatalf("name = %q", got)
	}

	if err := m.UpdatePassword(context.Background(), "bad", "newpassword"); err == nil {
		t.Fatal("expected error")
	}
	st := m.State()
	if st.Error != "current password is incorrect" || !st.IsAuthenticated {
		t.Fatalf("state = %+v", st)
	}
	if err := m.UpdatePassword(context.Background(), "old", "newpassword"); err != nil {
		t.Fatal(err)
	}
	if m.State().Error != "" {
		t.Fatal("error must be cleared on a new attempt")
	}
}

func TestStateIsACopy(t *testing.T) {
	api := &fakeAPI{loginFn: func(dto.LoginRequest) (*client.AuthResult, error) {
		return &client.AuthResult{User: uma, Token: "tok"}, nil
	}}
	m := NewManager(api, nil, nil)
	_ = m.Login(context.Background(), dto.LoginRequest{})

	st := m.State()
	st.User.Name = "mutated"
	if m.State().User.Name != "Uma" {
		t.Fatal("State must not expose internal pointers")
	}
}

func TestPreferences(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStorage(filepath.Join(dir, "nested", "session.json"))
	m := NewManager(&fakeAPI{}, store, nil)

	prefs, err := m.Preferences()
	if err != nil {
		t.Fatal(err)
	}
	if prefs != DefaultPreferences() || !prefs.EmailNotifications || prefs.SystemUpdates {
		t.Fatalf("defaults = %+v", prefs)
	}

	want := Preferences{EmailNotifications: false, RequestApprovals: true, SystemUpdates: true}
	if err := m.SavePreferences(want); err != nil {
		t.Fatal(err)
	}
	reopened := NewManager(&fakeAPI{}, NewFileStorage(filepath.Join(dir, "nested", "session.json")), nil)
	got, err := reopened.Preferences()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("preferences = %+v", got)
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewFileStorage(path)
	if _, ok, err := s.Get("token"); ok || err != nil {
		t.Fatalf("empty storage: ok=%v err=%v", ok, err)
	}
	if err := s.Set("token", "abc"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("user", "{}"); err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := NewFileStorage(path).Get("token"); !ok || v != "abc" {
		t.Fatalf("token = %q %v", v, ok)
	}
	if err := s.Delete("token", "user"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get("user"); ok {
		t.Fatal("user must be deleted")
	}
}
