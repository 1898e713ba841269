package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
)

func TestBlockUser(t *testing.T) {
	store := newTestStore(t)
	svc := NewModerationService(store, newFakeClock(), logger.NewNop())
	ctx := context.Background()

	a := createUser(t, store, "+254722000001", models.RolePassenger)
	b := createUser(t, store, "+254722000002", models.RoleDriver)

	assert.ErrorIs(t, svc.BlockUser(ctx, a.ID, a.ID), ErrSelfBlock)
	assert.ErrorIs(t, svc.BlockUser(ctx, a.ID, uuid.New()), ErrUserNotFound)

	require.NoError(t, svc.BlockUser(ctx, a.ID, b.ID))
	require.NoError(t, svc.BlockUser(ctx, a.ID, b.ID))

	blocks, err := svc.ListBlocks(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, b.ID, blocks[0].BlockedID)

	blocked, err := store.Block().ExistsBetween(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, blocked)

	require.NoError(t, svc.UnblockUser(ctx, a.ID, b.ID))
	require.NoError(t, svc.UnblockUser(ctx, a.ID, b.ID))
	blocks, err = svc.ListBlocks(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestCreateReport(t *testing.T) {
	store := newTestStore(t)
	ok := &recordingAlerter{}
	failing := &recordingAlerter{err: errBoom}
	svc := NewModerationService(store, newFakeClock(), logger.NewNop(), failing, ok)
	ctx := context.Background()

	reporter := createUser(t, store, "+254722000010", models.RolePassenger)
	target := createUser(t, store, "+254722000011", models.RoleDriver)

	_, err := svc.CreateReport(ctx, reporter.ID, ReportInput{TargetUserID: target.ID, Reason: "rude"})
	assert.True(t, IsValidation(err))

	_, err = svc.CreateReport(ctx, reporter.ID, ReportInput{TargetUserID: reporter.ID, Reason: models.ReportReasonSpam})
	assert.ErrorIs(t, err, ErrSelfReport)

	_, err = svc.CreateReport(ctx, reporter.ID, ReportInput{TargetUserID: uuid.New(), Reason: models.ReportReasonSpam})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, ok.reports)

	details := "  drove off with my bag  "
	report, err := svc.CreateReport(ctx, reporter.ID, ReportInput{TargetUserID: target.ID, Reason: models.ReportReasonUnsafe, Details: &details})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusOpen, report.Status)
	require.NotNil(t, report.Details)
	assert.Equal(t, "drove off with my bag", *report.Details)

	require.Len(t, ok.reports, 1)
	assert.Equal(t, report.ID, ok.reports[0].ID)
	assert.Len(t, failing.reports, 1)
}

func TestReportLifecycle(t *testing.T) {
	store := newTestStore(t)
	clock := newFakeClock()
	svc := NewModerationService(store, clock, logger.NewNop())
	ctx := context.Background()

	reporter := createUser(t, store, "+254722000020", models.RolePassenger)
	target := createUser(t, store, "+254722000021", models.RoleDriver)

	first, err := svc.CreateReport(ctx, reporter.ID, ReportInput{TargetUserID: target.ID, Reason: models.ReportReasonSpam})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := svc.CreateReport(ctx, reporter.ID, ReportInput{TargetUserID: target.ID, Reason: models.ReportReasonOther})
	require.NoError(t, err)

	assert.True(t, IsValidation(svc.UpdateReportStatus(ctx, first.ID, "closed")))
	assert.ErrorIs(t, svc.UpdateReportStatus(ctx, uuid.New(), models.ReportStatusResolved), ErrReportNotFound)
	require.NoError(t, svc.UpdateReportStatus(ctx, second.ID, models.ReportStatusResolved))

	reports, err := svc.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, first.ID, reports[0].ID)
	assert.Equal(t, models.ReportStatusResolved, reports[1].Status)
	assert.Equal(t, "+254722000021", reports[0].TargetPhone)
}

func TestSetBanned(t *testing.T) {
	store := newTestStore(t)
	svc := NewModerationService(store, newFakeClock(), logger.NewNop())
	ctx := context.Background()

	driver := createDriver(t, store, "+254722000030", "Kariuki", models.DriverStatusAvailable, epoch)

	assert.ErrorIs(t, svc.SetBanned(ctx, uuid.New(), true), ErrUserNotFound)
	require.NoError(t, svc.SetBanned(ctx, driver.ID, true))

	records, err := store.Driver().List(ctx, storage.DriverFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsBanned)
	require.NotNil(t, users[0].DisplayName)
	assert.Equal(t, "Kariuki", *users[0].DisplayName)

	require.NoError(t, svc.SetBanned(ctx, driver.ID, false))
	records, err = store.Driver().List(ctx, storage.DriverFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
