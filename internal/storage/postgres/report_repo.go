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

type reportRepo struct {
	db  *gorm.DB
	log logger.ILogger
}

func NewReportRepo(db *gorm.DB, log logger.ILogger) storage.IReportStorage {
	return &reportRepo{db: db, log: log}
}

func (r *reportRepo) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(report).Error; err != nil {
		r.log.Error("failed to create report", logger.Error(err))
		return err
	}
	return nil
}

// ListDetailed returns open reports first, newest first within a status.
func (r *reportRepo) ListDetailed(ctx context.Context) ([]models.ReportDetail, error) {
	var reports []models.ReportDetail
	err := r.db.WithContext(ctx).
		Table("reports AS r").
		Select(`r.id, r.reason, r.details, r.status, r.created_at,
			reporter.id AS reporter_id, reporter.phone_number AS reporter_phone,
			target.id AS target_id, target.phone_number AS target_phone,
			target.role AS target_role, target.is_banned AS target_banned`).
		Joins("JOIN users reporter ON reporter.id = r.reporter_id").
		Joins("JOIN users target ON target.id = r.target_user_id").
		Order("r.status ASC, r.created_at DESC").
		Scan(&reports).Error
	if err != nil {
		r.log.Error("failed to list reports", logger.Error(err))
		return nil, err
	}
	return reports, nil
}

func (r *reportRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus) error {
	return affected(r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Update("status", status))
}
