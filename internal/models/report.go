package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportReason string

const (
	ReportReasonSpam       ReportReason = "spam"
	ReportReasonHarassment ReportReason = "harassment"
	ReportReasonUnsafe     ReportReason = "unsafe"
	ReportReasonOther      ReportReason = "other"
)

var ReportReasons = []ReportReason{
	ReportReasonSpam,
	ReportReasonHarassment,
	ReportReasonUnsafe,
	ReportReasonOther,
}

func (r ReportReason) Valid() bool {
	for _, v := range ReportReasons {
		if r == v {
			return true
		}
	}
	return false
}

type ReportStatus string

const (
	ReportStatusOpen     ReportStatus = "open"
	ReportStatusResolved ReportStatus = "resolved"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusOpen, ReportStatusResolved:
		return true
	}
	return false
}

type Report struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"reporter_id"`
	TargetUserID uuid.UUID    `gorm:"type:uuid;not null;index" json:"target_user_id"`
	Reason       ReportReason `gorm:"not null;check:chk_reports_reason,reason IN ('spam','harassment','unsafe','other')" json:"reason"`
	Details      *string      `json:"details"`
	Status       ReportStatus `gorm:"not null;default:'open';check:chk_reports_status,status IN ('open','resolved')" json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	Reporter     *User        `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"-"`
	Target       *User        `gorm:"foreignKey:TargetUserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReportDetail is the admin view of a report with both parties resolved.
type ReportDetail struct {
	ID            uuid.UUID    `json:"id"`
	Reason        ReportReason `json:"reason"`
	Details       *string      `json:"details"`
	Status        ReportStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	ReporterID    uuid.UUID    `json:"reporter_id"`
	ReporterPhone string       `json:"reporter_phone"`
	TargetID      uuid.UUID    `json:"target_id"`
	TargetPhone   string       `json:"target_phone"`
	TargetRole    Role         `json:"target_role"`
	TargetBanned  bool         `json:"target_banned"`
}
