package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
)

type userRepo struct {
	db  *gorm.DB
	log logger.ILogger
}

func NewUserRepo(db *gorm.DB, log logger.ILogger) storage.IUserStorage {
	return &userRepo{db: db, log: log}
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.Error("failed to create user", logger.Error(err))
		return err
	}
	return nil
}

func (r *userRepo) CreateDriver(ctx context.Context, user *models.User, profile *models.DriverProfile, status *models.DriverStatus) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		status.DriverID = user.ID
		if err := tx.Omit(clause.Associations).Create(profile).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(status).Error
	})
	if err != nil {
		r.log.Error("failed to create driver", logger.Error(err))
	}
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("phone_number = ?", phone).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepo) MarkPhoneVerified(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("phone_verified", true))
}

func (r *userRepo) SetBanned(ctx context.Context, id uuid.UUID, banned bool) error {
	return affected(r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("is_banned", banned))
}

func (r *userRepo) SetFCMToken(ctx context.Context, id uuid.UUID, token string) error {
	return affected(r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("fcm_token", token))
}

func (r *userRepo) ListSummaries(ctx context.Context) ([]models.UserSummary, error) {
	var users []models.UserSummary
	err := r.db.WithContext(ctx).
		Table("users AS u").
		Select("u.id, u.phone_number, u.role, u.is_banned, u.is_admin, u.created_at, dp.display_name").
		Joins("LEFT JOIN driver_profiles dp ON dp.user_id = u.id").
		Order("u.created_at DESC").
		Scan(&users).Error
	if err != nil {
		r.log.Error("failed to list users", logger.Error(err))
		return nil, err
	}
	return users, nil
}

func (r *userRepo) ListAdmins(ctx context.Context) ([]models.User, error) {
	var admins []models.User
	err := r.db.WithContext(ctx).
		Where("is_admin = ? AND is_banned = ?", true, false).
		Find(&admins).Error
	return admins, err
}
