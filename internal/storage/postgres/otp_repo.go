package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
)

type otpRepo struct {
	db  *gorm.DB
	log logger.ILogger
}

func NewOTPRepo(db *gorm.DB, log logger.ILogger) storage.IOTPStorage {
	return &otpRepo{db: db, log: log}
}

func (r *otpRepo) Create(ctx context.Context, otp *models.OTP) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

func (r *otpRepo) InvalidateActive(ctx context.Context, phone string) error {
	return r.db.WithContext(ctx).Model(&models.OTP{}).
		Where("phone_number = ? AND used = ?", phone, false).
		Update("used", true).Error
}

func (r *otpRepo) Latest(ctx context.Context, phone string) (*models.OTP, error) {
	var otp models.OTP
	err := r.db.WithContext(ctx).
		Where("phone_number = ? AND used = ?", phone, false).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &otp, nil
}

func (r *otpRepo) Save(ctx context.Context, otp *models.OTP) error {
	return r.db.WithContext(ctx).Save(otp).Error
}
