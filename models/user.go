package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer        UserRole = "CUSTOMER"
	RoleBranchManager   UserRole = "BRANCH_MANAGER"
	RoleRestaurantAdmin UserRole = "RESTAURANT_ADMIN"
	RoleSuperAdmin      UserRole = "SUPER_ADMIN"
)

// Valid reports whether r is one of the known roles
func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleBranchManager, RoleRestaurantAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Role      UserRole  `json:"role" gorm:"not null;default:'CUSTOMER'"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Identity is the caller resolved from the request's session
type Identity struct {
	UserID uint     `json:"id"`
	Name   string   `json:"name"`
	Role   UserRole `json:"role"`
}
