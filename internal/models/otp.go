package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OTP stores a bcrypt hash of a one-time login code sent to a phone number.
type OTP struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PhoneNumber string    `gorm:"column:phone_number;not null;index" json:"phone_number"`
	CodeHash    string    `gorm:"column:code_hash;not null" json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
	Used        bool      `json:"used" gorm:"not null;default:false"`
	Attempts    int       `json:"attempts" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
}

func (OTP) TableName() string {
	return "otps"
}

func (o *OTP) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// SetCode hashes code into CodeHash.
func (o *OTP) SetCode(code string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	o.CodeHash = string(hash)
	return nil
}

// Matches reports whether code is the one this OTP was issued with.
func (o *OTP) Matches(code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(o.CodeHash), []byte(code)) == nil
}

// IsValid checks if the OTP is valid (not expired and not used) at now.
func (o *OTP) IsValid(now time.Time) bool {
	return !o.Used && now.Before(o.ExpiresAt)
}
