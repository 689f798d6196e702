package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/auth"
	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

// UserService implements administrator account management.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
	logger     *zap.Logger
}

// UserInput describes an account created by an administrator.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Status   string
}

// UserPatch describes a partial account update. Nil fields are left unchanged.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
	Status   *string
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, bcryptCost int, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, bcryptCost: bcryptCost, logger: logger}
}

// List returns one page of accounts. The status filter also accepts a role name.
func (s *UserService) List(ctx context.Context, actor Actor, req domain.PageRequest) (domain.Page[domain.User], error) {
	req = req.Normalize()
	if err := requireAdmin(actor); err != nil {
		return domain.Page[domain.User]{}, err
	}
	filter := repository.UserFilter{Search: req.Search, Limit: req.Limit, Offset: req.Offset()}
	if req.Status != "" {
		if role, ok := domain.ParseRole(req.Status); ok {
			filter.Role = &role
		} else {
			status, err := parseStatusFilter(req.Status, domain.ParseUserStatus)
			if err != nil {
				return domain.Page[domain.User]{}, err
			}
			filter.Status = status
		}
	}
	items, total, err := s.users.List(ctx, filter)
	if err != nil {
		return domain.Page[domain.User]{}, apperrors.MapError(err)
	}
	return pageOf(items, total, req), nil
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, actor Actor, id string) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "user")
	}
	return user, nil
}

// Create adds an account with an explicit role.
func (s *UserService) Create(ctx context.Context, actor Actor, input UserInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, email, password required", nil)
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	role := domain.RoleUser
	if input.Role != "" {
		r, ok := domain.ParseRole(input.Role)
		if !ok {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
		}
		role = r
	}
	status := domain.UserStatusActive
	if input.Status != "" {
		st, ok := domain.ParseUserStatus(input.Status)
		if !ok {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": input.Status})
		}
		status = st
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role, Status: status}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, repoError(err, "user")
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("by", actor.UserID))
	return user, nil
}

// Update applies a partial update to an account.
func (s *UserService) Update(ctx context.Context, actor Actor, id string, patch UserPatch) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "user")
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", nil)
		}
		user.Name = name
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if patch.Role != nil {
		role, ok := domain.ParseRole(*patch.Role)
		if !ok {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *patch.Role})
		}
		if id == actor.UserID && role != domain.RoleAdmin {
			return nil, apperrors.NewConflict("you cannot remove your own administrator role", nil)
		}
		user.Role = role
	}
	if patch.Status != nil {
		status, ok := domain.ParseUserStatus(*patch.Status)
		if !ok {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *patch.Status})
		}
		if id == actor.UserID && status == domain.UserStatusSuspended {
			return nil, apperrors.NewConflict("you cannot suspend your own account", nil)
		}
		user.Status = status
	}
	if patch.Password != nil && *patch.Password != "" {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, repoError(err, "user")
	}
	return user, nil
}

// Delete removes an account together with its vehicles and requests.
func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id == actor.UserID {
		return apperrors.NewConflict("you cannot delete your own account", nil)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return repoError(err, "user")
	}
	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("by", actor.UserID))
	return nil
}
