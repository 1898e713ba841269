package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
)

// driverRoles are the roles that may own a driver profile.
var driverRoles = []string{string(models.RoleDriver), string(models.RoleAdmin)}

const driverColumns = `u.id, u.phone_number, dp.display_name, dp.photo_url, dp.car_make_model, dp.bio,
	dp.allow_calls, dp.rating_avg, dp.rating_count, ds.status, ds.last_updated`

type driverRepo struct {
	db  *gorm.DB
	log logger.ILogger
}

func NewDriverRepo(db *gorm.DB, log logger.ILogger) storage.IDriverStorage {
	return &driverRepo{db: db, log: log}
}

// base selects every non-banned driver-capable user with both a profile and
// a status row.
func (r *driverRepo) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("users AS u").
		Select(driverColumns).
		Joins("JOIN driver_profiles dp ON dp.user_id = u.id").
		Joins("JOIN driver_status ds ON ds.driver_id = u.id").
		Where("u.role IN ?", driverRoles).
		Where("u.is_banned = ?", false)
}

func (r *driverRepo) List(ctx context.Context, filter storage.DriverFilter) ([]models.DriverRecord, error) {
	q := r.base(ctx)
	if filter.ViewerID != nil {
		q = q.Where(`u.id NOT IN (
			SELECT blocked_id FROM blocks WHERE blocker_id = ?
			UNION
			SELECT blocker_id FROM blocks WHERE blocked_id = ?
		)`, *filter.ViewerID, *filter.ViewerID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		q = q.Where("LOWER(dp.display_name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var drivers []models.DriverRecord
	if err := q.Order("dp.rating_avg DESC, dp.display_name ASC").Scan(&drivers).Error; err != nil {
		r.log.Error("failed to list drivers", logger.Error(err))
		return nil, err
	}
	return drivers, nil
}

func (r *driverRepo) Get(ctx context.Context, driverID uuid.UUID) (*models.DriverRecord, error) {
	var drivers []models.DriverRecord
	if err := r.base(ctx).Where("u.id = ?", driverID).Limit(1).Scan(&drivers).Error; err != nil {
		r.log.Error("failed to get driver", logger.Error(err), logger.String("driver_id", driverID.String()))
		return nil, err
	}
	if len(drivers) == 0 {
		return nil, storage.ErrNotFound
	}
	return &drivers[0], nil
}

func (r *driverRepo) CreateProfile(ctx context.Context, profile *models.DriverProfile, status *models.DriverStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(profile).Error; err != nil {
			return err
		}
		if status == nil {
			return nil
		}
		return tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(status).Error
	})
}

func (r *driverRepo) HasProfile(ctx context.Context, driverID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DriverProfile{}).
		Where("user_id = ?", driverID).
		Count(&count).Error
	return count > 0, err
}

func (r *driverRepo) UpsertStatus(ctx context.Context, driverID uuid.UUID, status models.DriverStatusValue, at time.Time) error {
	row := models.DriverStatus{DriverID: driverID, Status: status, LastUpdated: at}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "driver_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "last_updated"}),
		}).
		Create(&row).Error
}

func (r *driverRepo) UpdateProfile(ctx context.Context, driverID uuid.UUID, update storage.ProfileUpdate, at time.Time) error {
	return affected(r.db.WithContext(ctx).Model(&models.DriverProfile{}).
		Where("user_id = ?", driverID).
		Updates(map[string]interface{}{
			"display_name":   update.DisplayName,
			"photo_url":      update.PhotoURL,
			"car_make_model": update.CarMakeModel,
			"bio":            update.Bio,
			"updated_at":     at,
		}))
}

func (r *driverRepo) SetAllowCalls(ctx context.Context, driverID uuid.UUID, allow bool) error {
	return affected(r.db.WithContext(ctx).Model(&models.DriverProfile{}).
		Where("user_id = ?", driverID).
		UpdateColumn("allow_calls", allow))
}

func (r *driverRepo) SetPhotoURL(ctx context.Context, driverID uuid.UUID, url string, at time.Time) error {
	return affected(r.db.WithContext(ctx).Model(&models.DriverProfile{}).
		Where("user_id = ?", driverID).
		Updates(map[string]interface{}{"photo_url": url, "updated_at": at}))
}

func (r *driverRepo) SetRating(ctx context.Context, driverID uuid.UUID, avg float64, count int) error {
	return affected(r.db.WithContext(ctx).Model(&models.DriverProfile{}).
		Where("user_id = ?", driverID).
		UpdateColumns(map[string]interface{}{
			"rating_avg":   avg,
			"rating_count": count,
		}))
}
