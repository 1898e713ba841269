package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
)

const maxReportDetailsRunes = 1000

// ReportAlerter notifies moderators about a new report.
type ReportAlerter interface {
	AlertNewReport(ctx context.Context, report models.Report) error
}

// ModerationService covers blocks, reports and the admin user controls.
type ModerationService struct {
	store    storage.IStorage
	clock    Clock
	alerters []ReportAlerter
	log      logger.ILogger
}

func NewModerationService(store storage.IStorage, clock Clock, log logger.ILogger, alerters ...ReportAlerter) *ModerationService {
	return &ModerationService{store: store, clock: clock, alerters: alerters, log: log}
}

// BlockUser hides the two users from each other. Repeating a block is a
// no-op.
func (s *ModerationService) BlockUser(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	if blockerID == blockedID {
		return ErrSelfBlock
	}
	if err := s.requireUser(ctx, blockedID); err != nil {
		return err
	}

	block := &models.Block{BlockerID: blockerID, BlockedID: blockedID, CreatedAt: s.clock.Now()}
	if err := s.store.Block().Create(ctx, block); err != nil {
		return fmt.Errorf("create block: %w", err)
	}
	return nil
}

func (s *ModerationService) UnblockUser(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	if err := s.store.Block().Delete(ctx, blockerID, blockedID); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return nil
}

func (s *ModerationService) ListBlocks(ctx context.Context, blockerID uuid.UUID) ([]models.Block, error) {
	blocks, err := s.store.Block().ListByBlocker(ctx, blockerID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

type ReportInput struct {
	TargetUserID uuid.UUID
	Reason       models.ReportReason
	Details      *string
}

// CreateReport files an open report and alerts moderators. Alert failures
// are logged only.
func (s *ModerationService) CreateReport(ctx context.Context, reporterID uuid.UUID, in ReportInput) (*models.Report, error) {
	if !in.Reason.Valid() {
		return nil, invalid("reason", "must be one of spam, harassment, unsafe, other")
	}
	details := optional(in.Details)
	if details != nil && utf8.RuneCountInString(*details) > maxReportDetailsRunes {
		return nil, invalid("details", "must be %d characters or less", maxReportDetailsRunes)
	}
	if reporterID == in.TargetUserID {
		return nil, ErrSelfReport
	}
	if err := s.requireUser(ctx, in.TargetUserID); err != nil {
		return nil, err
	}

	report := &models.Report{
		ReporterID:   reporterID,
		TargetUserID: in.TargetUserID,
		Reason:       in.Reason,
		Details:      details,
		Status:       models.ReportStatusOpen,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.store.Report().Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	alertCtx := context.WithoutCancel(ctx)
	for _, a := range s.alerters {
		if err := a.AlertNewReport(alertCtx, *report); err != nil {
			s.log.Warning("report alert failed", logger.String("report_id", report.ID.String()), logger.Error(err))
		}
	}
	return report, nil
}

// ListReports returns open reports first, newest first within each status.
func (s *ModerationService) ListReports(ctx context.Context) ([]models.ReportDetail, error) {
	reports, err := s.store.Report().ListDetailed(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (s *ModerationService) UpdateReportStatus(ctx context.Context, reportID uuid.UUID, status models.ReportStatus) error {
	if !status.Valid() {
		return invalid("status", "must be open or resolved")
	}
	err := s.store.Report().UpdateStatus(ctx, reportID, status)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrReportNotFound
	}
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	return nil
}

// SetBanned bans or unbans a user. Banned drivers drop out of every listing
// and banned callers are refused by the auth middleware.
func (s *ModerationService) SetBanned(ctx context.Context, userID uuid.UUID, banned bool) error {
	err := s.store.User().SetBanned(ctx, userID, banned)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	return nil
}

func (s *ModerationService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.store.User().ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *ModerationService) requireUser(ctx context.Context, id uuid.UUID) error {
	_, err := s.store.User().GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	return nil
}
