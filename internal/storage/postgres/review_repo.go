package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
)

type reviewRepo struct {
	db  *gorm.DB
	log logger.ILogger
}

func NewReviewRepo(db *gorm.DB, log logger.ILogger) storage.IReviewStorage {
	return &reviewRepo{db: db, log: log}
}

func (r *reviewRepo) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error; err != nil {
		r.log.Error("failed to create review", logger.Error(err))
		return err
	}
	return nil
}

func (r *reviewRepo) Get(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, notFound(err)
	}
	return &review, nil
}

func (r *reviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Review{}))
}

func (r *reviewRepo) ExistsSince(ctx context.Context, driverID, passengerID uuid.UUID, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("driver_id = ? AND passenger_id = ? AND created_at > ?", driverID, passengerID, since).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepo) Stats(ctx context.Context, driverID uuid.UUID) (storage.ReviewStats, error) {
	var row struct {
		ReviewCount int64
		StarSum     int64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COUNT(*) AS review_count, COALESCE(SUM(stars), 0) AS star_sum").
		Where("driver_id = ?", driverID).
		Scan(&row).Error
	if err != nil {
		return storage.ReviewStats{}, err
	}
	return storage.ReviewStats{Count: row.ReviewCount, Sum: row.StarSum}, nil
}

func (r *reviewRepo) ListForDriver(ctx context.Context, driverID uuid.UUID) ([]models.ReviewWithPassenger, error) {
	var reviews []models.ReviewWithPassenger
	err := r.db.WithContext(ctx).
		Table("reviews AS r").
		Select("r.id, r.stars, r.comment, r.created_at, r.passenger_id, u.phone_number AS passenger_phone").
		Joins("JOIN users u ON u.id = r.passenger_id").
		Where("r.driver_id = ?", driverID).
		Order("r.created_at DESC").
		Scan(&reviews).Error
	if err != nil {
		r.log.Error("failed to list reviews", logger.Error(err))
		return nil, err
	}
	return reviews, nil
}
