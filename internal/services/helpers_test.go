package services

import (
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Jen9x/TapRide/internal/database"
	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/internal/storage/postgres"
	"github.com/Jen9x/TapRide/pkg/logger"
)

var epoch = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: epoch} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) storage.IStorage {
	t.Helper()
	db, err := database.InitSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return postgres.New(db, logger.NewNop())
}

func createUser(t *testing.T, s storage.IStorage, phone string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{PhoneNumber: phone, PhoneVerified: true, Role: role, IsAdmin: role == models.RoleAdmin}
	require.NoError(t, s.User().Create(context.Background(), u))
	return u
}

// createDriver adds a driver whose status was last written at lastUpdated.
func createDriver(t *testing.T, s storage.IStorage, phone, name string, status models.DriverStatusValue, lastUpdated time.Time) *models.User {
	t.Helper()
	u := createUser(t, s, phone, models.RoleDriver)
	require.NoError(t, s.Driver().CreateProfile(context.Background(),
		&models.DriverProfile{UserID: u.ID, DisplayName: name, AllowCalls: true, UpdatedAt: lastUpdated},
		&models.DriverStatus{DriverID: u.ID, Status: status, LastUpdated: lastUpdated},
	))
	return u
}

type recordingPublisher struct {
	mu      sync.Mutex
	updates []DriverStatusUpdate
	err     error
}

func (p *recordingPublisher) PublishStatus(_ context.Context, update DriverStatusUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, update)
	return p.err
}

func (p *recordingPublisher) published() []DriverStatusUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]DriverStatusUpdate(nil), p.updates...)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []uuid.UUID
}

func (n *recordingNotifier) NotifyNewReview(_ context.Context, driverID uuid.UUID, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, driverID)
}

type recordingAlerter struct {
	reports []models.Report
	err     error
}

func (a *recordingAlerter) AlertNewReport(_ context.Context, report models.Report) error {
	a.reports = append(a.reports, report)
	return a.err
}

type fakeSMS struct {
	codes map[string]string
	err   error
}

func newFakeSMS() *fakeSMS { return &fakeSMS{codes: make(map[string]string)} }

func (f *fakeSMS) SendOTP(_ context.Context, phone, code string, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.codes[phone] = code
	return nil
}

type fakeTokens struct{}

func (fakeTokens) GenerateToken(user *models.User, _ time.Time) (string, error) {
	return "token-" + user.ID.String(), nil
}

type fakeImages struct {
	uploaded []string
	deleted  []string
}

func (f *fakeImages) Upload(_ context.Context, file *multipart.FileHeader, folder string) (string, error) {
	url := "https://cdn.test/" + folder + "/" + file.Filename
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeImages) Delete(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

var errBoom = errors.New("boom")
