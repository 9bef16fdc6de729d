package domain

import "errors"

var (
	// ErrRoleNotFound is returned when looking up a non-existent role.
	ErrRoleNotFound = errors.New("role not found")
	// ErrPermissionNotFound is returned when looking up a non-existent permission.
	ErrPermissionNotFound = errors.New("permission not found")
)

// Known role names seeded at migration time.
const (
	RoleAdmin        = "admin"
	RoleSalesManager = "sales_manager"
)

// Role is a named group of users, optionally described.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Permission is a named capability granted to a user directly or through a role.
type Permission struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	UserID *int64 `json:"user_id"`
	RoleID *int64 `json:"role_id"`
}
