package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
)

type preferenceRepo struct {
	db  *gorm.DB
	log logger.ILogger
}

func NewPreferenceRepo(db *gorm.DB, log logger.ILogger) storage.IPreferenceStorage {
	return &preferenceRepo{db: db, log: log}
}

func (r *preferenceRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error) {
	var prefs models.NotificationPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error
	if err == nil {
		return &prefs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	defaults := models.DefaultPreferences(userID)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(defaults).Error; err != nil {
		r.log.Error("failed to create default preferences", logger.Error(err))
		return nil, err
	}
	return defaults, nil
}

func (r *preferenceRepo) Save(ctx context.Context, prefs *models.NotificationPreference) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(prefs).Error
}
