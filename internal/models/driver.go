package models

import (
	"time"

	"github.com/google/uuid"
)

// DriverStatusValue is the status a driver last set for themselves.
type DriverStatusValue string

const (
	DriverStatusAvailable DriverStatusValue = "available"
	DriverStatusBusy      DriverStatusValue = "busy"
	DriverStatusOffline   DriverStatusValue = "offline"
)

func (s DriverStatusValue) Valid() bool {
	switch s {
	case DriverStatusAvailable, DriverStatusBusy, DriverStatusOffline:
		return true
	}
	return false
}

// DriverProfile is the public face of a driver account.
type DriverProfile struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User         *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	DisplayName  string    `gorm:"column:display_name;not null" json:"display_name"`
	PhotoURL     *string   `gorm:"column:photo_url" json:"photo_url"`
	CarMakeModel *string   `gorm:"column:car_make_model" json:"car_make_model"`
	Bio          *string   `gorm:"column:bio" json:"bio"`
	AllowCalls   bool      `gorm:"column:allow_calls;not null;default:true" json:"allow_calls"`
	RatingAvg    float64   `gorm:"column:rating_avg;type:decimal(3,2);not null;default:0" json:"rating_avg"`
	RatingCount  int       `gorm:"column:rating_count;not null;default:0" json:"rating_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (DriverProfile) TableName() string {
	return "driver_profiles"
}

// DriverStatus holds the stored status. Only the driver writes it, and every
// write refreshes LastUpdated.
type DriverStatus struct {
	DriverID    uuid.UUID         `gorm:"type:uuid;primaryKey" json:"driver_id"`
	Driver      *User             `gorm:"foreignKey:DriverID;constraint:OnDelete:CASCADE" json:"-"`
	Status      DriverStatusValue `gorm:"column:status;not null;default:'offline';check:chk_driver_status_status,status IN ('available','busy','offline')" json:"status"`
	LastUpdated time.Time         `gorm:"column:last_updated;not null" json:"last_updated"`
}

// TableName specifies the table name
func (DriverStatus) TableName() string {
	return "driver_status"
}

// DriverRecord is one joined row of users, driver_profiles and
// driver_status, before availability and disclosure are resolved.
type DriverRecord struct {
	ID           uuid.UUID
	PhoneNumber  string
	DisplayName  string
	PhotoURL     *string
	CarMakeModel *string
	Bio          *string
	AllowCalls   bool
	RatingAvg    float64
	RatingCount  int
	Status       DriverStatusValue
	LastUpdated  time.Time
}
