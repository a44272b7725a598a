package domain

import (
	"fmt"
	"time"
)

// UserRole is the organisational role of an employee account.
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleManager  UserRole = "manager"
	UserRoleEmployee UserRole = "employee"
)

// UserStatus is the presence status persisted on the user row and broadcast
// to conversation peers.
type UserStatus string

const (
	UserStatusOnline  UserStatus = "online"
	UserStatusOffline UserStatus = "offline"
	UserStatusAway    UserStatus = "away"
)

// Valid reports whether s is one of the known statuses.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusOnline, UserStatusOffline, UserStatusAway:
		return true
	}
	return false
}

// ParseUserStatus converts a wire value into a UserStatus.
func ParseUserStatus(s string) (UserStatus, error) {
	status := UserStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// User is an employee account.
type User struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	HashedPassword string     `json:"-"` // Never expose password hash in JSON
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Position       string     `json:"position,omitempty"`
	Role           UserRole   `json:"role"`
	Status         UserStatus `json:"status"`
	LastSeen       time.Time  `json:"last_seen"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
