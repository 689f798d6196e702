// Package session owns the signed-in state of the client: who is logged in, with which token,
// and how that survives between runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/api/dto"
	"github.com/spec-kit/parking-service/internal/client"
	"github.com/spec-kit/parking-service/internal/domain"
)

const (
	keyToken       = "token"
	keyUser        = "user"
	keyPreferences = "notification_preferences"

	// ExpiredMessage is shown when a stored session can no longer be used.
	ExpiredMessage = "Session expired. Please login again."
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New(ExpiredMessage)
)

// AuthAPI is the subset of the auth endpoints the session needs.
type AuthAPI interface {
	Login(ctx context.Context, req dto.LoginRequest) (*client.AuthResult, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*client.AuthResult, error)
	Me(ctx context.Context) (*domain.User, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, req dto.ProfileRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, current, next string) error
}

// State is a snapshot of the session.
type State struct {
	User            *domain.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// Role returns the signed-in role, or "" when anonymous.
func (s State) Role() domain.Role {
	if !s.IsAuthenticated || s.User == nil {
		return ""
	}
	return s.User.Role
}

// Manager is the only shared mutable object of the client.
type Manager struct {
	mu          sync.Mutex
	state       State
	api         AuthAPI
	storage     Storage
	logger      *zap.Logger
	now         func() time.Time
	subscribers map[int]func(State)
	nextSub     int
}

// NewManager returns an anonymous, loading session. Call Init before use.
func NewManager(api AuthAPI, storage Storage, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Manager{
		state:       State{IsLoading: true},
		api:         api,
		storage:     storage,
		logger:      logger,
		now:         time.Now,
		subscribers: map[int]func(State){},
	}
}

// Connect builds a client whose requests carry the session token and whose 401 answers expire
// the session, plus the manager bound to that client.
func Connect(opts client.Options, storage Storage, logger *zap.Logger) (*Manager, *client.Client) {
	var m *Manager
	opts.Tokens = client.TokenFunc(func() string { return m.Token() })
	opts.OnUnauthorized = func() { m.Expire() }
	if opts.Logger == nil {
		opts.Logger = logger
	}
	c := client.New(opts)
	m = NewManager(c.Auth, storage, logger)
	return m, c
}

// Init restores a persisted session and validates it against the server.
// An invalid or expired token is discarded and ErrSessionExpired returned.
func (m *Manager) Init(ctx context.Context) error {
	token, ok, err := m.storage.Get(keyToken)
	if err != nil {
		m.logger.Warn("read persisted session", zap.Error(err))
	}
	if !ok || token == "" {
		m.set(func(s *State) { *s = State{} })
		return nil
	}

	if m.tokenExpired(token) {
		m.logger.Debug("persisted token already expired")
		m.expire()
		return ErrSessionExpired
	}

	m.set(func(s *State) {
		s.Token = token
		s.IsLoading = true
	})
	user, err := m.api.Me(ctx)
	if err != nil {
		m.logger.Debug("session validation failed", zap.Error(err))
		m.expire()
		return ErrSessionExpired
	}
	m.persistUser(user)
	m.set(func(s *State) {
		*s = State{User: user, Token: token, IsAuthenticated: true}
	})
	return nil
}

// Login exchanges credentials for a session.
func (m *Manager) Login(ctx context.Context, req dto.LoginRequest) error {
	m.startLoading()
	res, err := m.api.Login(ctx, req)
	if err != nil {
		m.fail(client.MessageOf(err, "Failed to login. Please check your credentials."))
		return err
	}
	m.establish(res)
	return nil
}

// Register creates an account and signs it in.
func (m *Manager) Register(ctx context.Context, req dto.RegisterRequest) error {
	m.startLoading()
	res, err := m.api.Register(ctx, req)
	if err != nil {
		m.fail(client.MessageOf(err, "Failed to register. Please try again."))
		return err
	}
	m.establish(res)
	return nil
}

// Logout clears the session, then revokes the old token on the server on a best-effort basis.
func (m *Manager) Logout(ctx context.Context) {
	token := m.Token()
	m.clearStorage()
	m.set(func(s *State) { *s = State{} })
	if token == "" {
		return
	}
	if err := m.api.Logout(client.WithToken(ctx, token)); err != nil {
		m.logger.Debug("server logout failed", zap.Error(err))
	}
}

// Expire drops the session after the server refused its token.
func (m *Manager) Expire() {
	if m.Token() == "" {
		return
	}
	m.expire()
}

// UpdateProfile changes the signed-in user's name or email and merges the result.
func (m *Manager) UpdateProfile(ctx context.Context, req dto.ProfileRequest) error {
	if !m.State().IsAuthenticated {
		return ErrNotAuthenticated
	}
	m.startLoading()
	user, err := m.api.UpdateProfile(ctx, req)
	if err != nil {
		m.fail(client.MessageOf(err, "Failed to update profile."))
		return err
	}
	m.persistUser(user)
	m.set(func(s *State) {
		s.User = user
		s.IsLoading = false
	})
	return nil
}

// UpdatePassword changes the signed-in user's password.
func (m *Manager) UpdatePassword(ctx context.Context, current, next string) error {
	if !m.State().IsAuthenticated {
		return ErrNotAuthenticated
	}
	m.startLoading()
	if err := m.api.ChangePassword(ctx, current, next); err != nil {
		m.fail(client.MessageOf(err, "Failed to update password."))
		return err
	}
	m.set(func(s *State) { s.IsLoading = false })
	return nil
}

// State returns a copy of the current session.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyState(m.state)
}

// Token returns the bearer token, or "" when anonymous.
func (m *Manager) Token() string {
	if m == nil {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Token
}

// Subscribe registers fn for every state change and returns its cancel function.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

func (m *Manager) establish(res *client.AuthResult) {
	user := res.User
	if err := m.storage.Set(keyToken, res.Token); err != nil {
		m.logger.Warn("persist token", zap.Error(err))
	}
	m.persistUser(&user)
	m.set(func(s *State) {
		*s = State{User: &user, Token: res.Token, IsAuthenticated: true}
	})
}

func (m *Manager) expire() {
	m.clearStorage()
	m.set(func(s *State) { *s = State{Error: ExpiredMessage} })
}

func (m *Manager) startLoading() {
	m.set(func(s *State) {
		s.IsLoading = true
		s.Error = ""
	})
}

func (m *Manager) fail(message string) {
	m.set(func(s *State) {
		s.IsLoading = false
		s.Error = message
	})
}

func (m *Manager) persistUser(user *domain.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := m.storage.Set(keyUser, string(raw)); err != nil {
		m.logger.Warn("persist user", zap.Error(err))
	}
}

func (m *Manager) clearStorage() {
	if err := m.storage.Delete(keyToken, keyUser); err != nil {
		m.logger.Warn("clear persisted session", zap.Error(err))
	}
}

// tokenExpired inspects exp without verifying the signature; the server stays the authority.
func (m *Manager) tokenExpired(token string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(m.now())
}

func (m *Manager) set(mutate func(*State)) {
	m.mu.Lock()
	mutate(&m.state)
	snapshot := copyState(m.state)
	subs := make([]func(State), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func copyState(s State) State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
