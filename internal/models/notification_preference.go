package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationPreference represents user notification preferences
type NotificationPreference struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// General push notification toggle
	PushEnabled bool `gorm:"column:push_enabled;not null;default:true" json:"push_enabled"`

	// New review on the driver's own profile.
	ReviewAlerts bool `gorm:"column:review_alerts;not null;default:true" json:"review_alerts"`
	// Moderation notices such as report outcomes.
	ModerationAlerts bool `gorm:"column:moderation_alerts;not null;default:true" json:"moderation_alerts"`
}

// TableName specifies the table name for NotificationPreference
func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

// DefaultPreferences returns default notification preferences for a new user
func DefaultPreferences(userID uuid.UUID) *NotificationPreference {
	return &NotificationPreference{
		UserID:           userID,
		PushEnabled:      true,
		ReviewAlerts:     true,
		ModerationAlerts: true,
	}
}

// Allows reports whether a push of the given kind should be sent.
func (p *NotificationPreference) Allows(kind NotificationKind) bool {
	if !p.PushEnabled {
		return false
	}
	switch kind {
	case NotificationKindReview:
		return p.ReviewAlerts
	case NotificationKindModeration:
		return p.ModerationAlerts
	}
	return false
}

type NotificationKind string

const (
	NotificationKindReview     NotificationKind = "review"
	NotificationKindModeration NotificationKind = "moderation"
)
