package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of account kinds.
type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePassenger, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// CanDrive reports whether an account with this role may own a driver
// profile, set a status and receive reviews.
func (r Role) CanDrive() bool {
	switch r {
	case RoleDriver, RoleAdmin:
		return true
	case RolePassenger:
		return false
	}
	return false
}

// CanReview reports whether an account with this role may submit reviews.
func (r Role) CanReview() bool {
	switch r {
	case RolePassenger, RoleAdmin:
		return true
	case RoleDriver:
		return false
	}
	return false
}

// SignupRole reports whether r may be requested when creating an account.
// Admin is granted from configuration, never requested.
func (r Role) SignupRole() bool {
	switch r {
	case RolePassenger, RoleDriver:
		return true
	case RoleAdmin:
		return false
	}
	return false
}

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PhoneNumber   string    `gorm:"column:phone_number;uniqueIndex;not null" json:"phone_number"`
	PhoneVerified bool      `gorm:"column:phone_verified;not null;default:false" json:"phone_verified"`
	Role          Role      `gorm:"column:role;not null;check:chk_users_role,role IN ('passenger','driver','admin')" json:"role"`
	IsAdmin       bool      `gorm:"column:is_admin;not null;default:false" json:"is_admin"`
	IsBanned      bool      `gorm:"column:is_banned;not null;default:false" json:"is_banned"`
	FCMToken      string    `gorm:"column:fcm_token" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserSummary is the admin listing row: a user plus their driver display
// name when they have a profile.
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Role        Role      `json:"role"`
	IsBanned    bool      `json:"is_banned"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
	DisplayName *string   `json:"display_name"`
}
