package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinStars         = 1
	MaxStars         = 5
	MaxCommentLength = 300
)

// Review is a passenger's star rating of a driver.
type Review struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DriverID    uuid.UUID `gorm:"type:uuid;not null;index:idx_reviews_driver_passenger" json:"driver_id"`
	PassengerID uuid.UUID `gorm:"type:uuid;not null;index:idx_reviews_driver_passenger" json:"passenger_id"`
	Stars       int       `gorm:"not null;check:chk_reviews_stars,stars >= 1 AND stars <= 5" json:"stars"`
	Comment     *string   `gorm:"size:300" json:"comment"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	Driver      *User     `gorm:"foreignKey:DriverID;constraint:OnDelete:CASCADE" json:"-"`
	Passenger   *User     `gorm:"foreignKey:PassengerID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name
func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReviewWithPassenger is a review joined with the reviewer's phone number.
type ReviewWithPassenger struct {
	ID             uuid.UUID
	Stars          int
	Comment        *string
	CreatedAt      time.Time
	PassengerID    uuid.UUID
	PassengerPhone string
}
