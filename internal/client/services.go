package client

import (
	"context"
	"net/http"
	"time"

	"github.com/spec-kit/parking-service/internal/api/dto"
	"github.com/spec-kit/parking-service/internal/domain"
)

// AuthResult is the answer of login and registration.
type AuthResult struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// AuthService wraps /auth and the self-service /users endpoints.
type AuthService struct{ c *Client }

// Login exchanges credentials for a token.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*AuthResult, error) {
	var out AuthResult
	if err := s.c.getOne(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*AuthResult, error) {
	var out AuthResult
	if err := s.c.getOne(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the account of the current token.
func (s *AuthService) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := s.c.getOne(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the current token server-side.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.c.getOne(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// UpdateProfile changes the caller's name or email.
func (s *AuthService) UpdateProfile(ctx context.Context, req dto.ProfileRequest) (*domain.User, error) {
	var out domain.User
	if err := s.c.getOne(ctx, http.MethodPut, "/users/profile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword replaces the caller's password.
func (s *AuthService) ChangePassword(ctx context.Context, current, next string) error {
	return s.c.getOne(ctx, http.MethodPut, "/users/password", dto.PasswordRequest{CurrentPassword: current, NewPassword: next}, nil)
}

// VehicleService wraps /vehicles.
type VehicleService struct{ c *Client }

func (s *VehicleService) List(ctx context.Context, params ListParams) (domain.Page[domain.Vehicle], error) {
	return getPage[domain.Vehicle](ctx, s.c, "/vehicles", params)
}

func (s *VehicleService) Get(ctx context.Context, id string) (*domain.Vehicle, error) {
	return one[domain.Vehicle](ctx, s.c, http.MethodGet, resourcePath("/vehicles", id), nil)
}

func (s *VehicleService) Create(ctx context.Context, req dto.VehiclePayload) (*domain.Vehicle, error) {
	return one[domain.Vehicle](ctx, s.c, http.MethodPost, "/vehicles", req)
}

func (s *VehicleService) Update(ctx context.Context, id string, req dto.VehiclePayload) (*domain.Vehicle, error) {
	return one[domain.Vehicle](ctx, s.c, http.MethodPut, resourcePath("/vehicles", id), req)
}

func (s *VehicleService) Delete(ctx context.Context, id string) error {
	return s.c.getOne(ctx, http.MethodDelete, resourcePath("/vehicles", id), nil, nil)
}

func (s *VehicleService) Approve(ctx context.Context, id string) (*domain.Vehicle, error) {
	return one[domain.Vehicle](ctx, s.c, http.MethodPatch, resourcePath("/vehicles", id, "approve"), nil)
}

func (s *VehicleService) Reject(ctx context.Context, id, reason string) (*domain.Vehicle, error) {
	return one[domain.Vehicle](ctx, s.c, http.MethodPatch, resourcePath("/vehicles", id, "reject"), dto.RejectRequest{Reason: reason})
}

// SlotService wraps /parking-slots.
type SlotService struct{ c *Client }

func (s *SlotService) List(ctx context.Context, params ListParams) (domain.Page[domain.ParkingSlot], error) {
	return getPage[domain.ParkingSlot](ctx, s.c, "/parking-slots", params)
}

func (s *SlotService) Get(ctx context.Context, id string) (*domain.ParkingSlot, error) {
	return one[domain.ParkingSlot](ctx, s.c, http.MethodGet, resourcePath("/parking-slots", id), nil)
}

func (s *SlotService) Create(ctx context.Context, req dto.SlotPayload) (*domain.ParkingSlot, error) {
	return one[domain.ParkingSlot](ctx, s.c, http.MethodPost, "/parking-slots", req)
}

// BulkCreate creates req.Count sequentially numbered slots.
func (s *SlotService) BulkCreate(ctx context.Context, req dto.BulkSlotRequest) ([]domain.ParkingSlot, error) {
	var out struct {
		Items []domain.ParkingSlot `json:"items"`
	}
	if err := s.c.getOne(ctx, http.MethodPost, "/parking-slots/bulk", req, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (s *SlotService) Update(ctx context.Context, id string, req dto.SlotPayload) (*domain.ParkingSlot, error) {
	return one[domain.ParkingSlot](ctx, s.c, http.MethodPut, resourcePath("/parking-slots", id), req)
}

func (s *SlotService) Delete(ctx context.Context, id string) error {
	return s.c.getOne(ctx, http.MethodDelete, resourcePath("/parking-slots", id), nil, nil)
}

// SlotRequestService wraps /slot-requests.
type SlotRequestService struct{ c *Client }

// Rejection is the answer of the reason lookup.
type Rejection struct {
	Status domain.ApprovalStatus `json:"status"`
	Reason string                `json:"reason"`
}

func (s *SlotRequestService) List(ctx context.Context, params ListParams) (domain.Page[domain.SlotRequest], error) {
	return getPage[domain.SlotRequest](ctx, s.c, "/slot-requests", params)
}

func (s *SlotRequestService) Get(ctx context.Context, id string) (*domain.SlotRequest, error) {
	return one[domain.SlotRequest](ctx, s.c, http.MethodGet, resourcePath("/slot-requests", id), nil)
}

func (s *SlotRequestService) Create(ctx context.Context, req dto.SlotRequestPayload) (*domain.SlotRequest, error) {
	return one[domain.SlotRequest](ctx, s.c, http.MethodPost, "/slot-requests", req)
}

func (s *SlotRequestService) Update(ctx context.Context, id string, req dto.SlotRequestPayload) (*domain.SlotRequest, error) {
	return one[domain.SlotRequest](ctx, s.c, http.MethodPut, resourcePath("/slot-requests", id), req)
}

func (s *SlotRequestService) Delete(ctx context.Context, id string) error {
	return s.c.getOne(ctx, http.MethodDelete, resourcePath("/slot-requests", id), nil, nil)
}

// Approve binds slotID to the request.
func (s *SlotRequestService) Approve(ctx context.Context, id, slotID string) (*domain.SlotRequest, error) {
	return one[domain.SlotRequest](ctx, s.c, http.MethodPut, resourcePath("/slot-requests", id, "approve"), dto.ApproveSlotRequest{SlotID: slotID})
}

func (s *SlotRequestService) Reject(ctx context.Context, id, reason string) (*domain.SlotRequest, error) {
	return one[domain.SlotRequest](ctx, s.c, http.MethodPut, resourcePath("/slot-requests", id, "reject"), dto.RejectRequest{Reason: reason})
}

// Reason fetches the review outcome and rejection reason of a request.
func (s *SlotRequestService) Reason(ctx context.Context, id string) (*Rejection, error) {
	return one[Rejection](ctx, s.c, http.MethodGet, resourcePath("/slot-requests", id, "reason"), nil)
}

// UserService wraps the administrator /users endpoints.
type UserService struct{ c *Client }

func (s *UserService) List(ctx context.Context, params ListParams) (domain.Page[domain.User], error) {
	return getPage[domain.User](ctx, s.c, "/users", params)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return one[domain.User](ctx, s.c, http.MethodGet, resourcePath("/users", id), nil)
}

func (s *UserService) Create(ctx context.Context, req dto.UserPayload) (*domain.User, error) {
	return one[domain.User](ctx, s.c, http.MethodPost, "/users", req)
}

func (s *UserService) Update(ctx context.Context, id string, req dto.UserPayload) (*domain.User, error) {
	return one[domain.User](ctx, s.c, http.MethodPut, resourcePath("/users", id), req)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.c.getOne(ctx, http.MethodDelete, resourcePath("/users", id), nil, nil)
}

func one[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	var out T
	if err := c.getOne(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
