package domain

import (
	"strings"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole accepts the canonical values and the legacy lowercase spellings.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "USER", "STANDARD":
		return RoleUser, true
	case "ADMIN", "ADMINISTRATIVE":
		return RoleAdmin, true
	default:
		return "", false
	}
}

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
	UserStatusPending   UserStatus = "PENDING"
)

// ParseUserStatus normalises a status string.
func ParseUserStatus(raw string) (UserStatus, bool) {
	switch s := UserStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case UserStatusActive, UserStatusSuspended, UserStatusPending:
		return s, true
	default:
		return "", false
	}
}

// User is an account that owns vehicles and slot requests.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the administrative role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
