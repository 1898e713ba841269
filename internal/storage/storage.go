package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned by lookups and targeted updates that match no row.
var ErrNotFound = errors.New("record not found")

type IStorage interface {
	User() IUserStorage
	Driver() IDriverStorage
	Review() IReviewStorage
	Block() IBlockStorage
	Report() IReportStorage
	OTP() IOTPStorage
	Preference() IPreferenceStorage
	Ping(ctx context.Context) error
}

type IUserStorage interface {
	Create(ctx context.Context, user *models.User) error
	// CreateDriver stores the user with its profile and status in one
	// transaction.
	CreateDriver(ctx context.Context, user *models.User, profile *models.DriverProfile, status *models.DriverStatus) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	MarkPhoneVerified(ctx context.Context, id uuid.UUID) error
	SetBanned(ctx context.Context, id uuid.UUID, banned bool) error
	SetFCMToken(ctx context.Context, id uuid.UUID, token string) error
	ListSummaries(ctx context.Context) ([]models.UserSummary, error)
	ListAdmins(ctx context.Context) ([]models.User, error)
}

// DriverFilter narrows a driver listing. A nil ViewerID skips block
// filtering.
type DriverFilter struct {
	ViewerID *uuid.UUID
	Search   string
}

// ProfileUpdate carries the editable driver profile fields. Nil pointers
// clear the column.
type ProfileUpdate struct {
	DisplayName  string
	PhotoURL     *string
	CarMakeModel *string
	Bio          *string
}

type IDriverStorage interface {
	List(ctx context.Context, filter DriverFilter) ([]models.DriverRecord, error)
	Get(ctx context.Context, driverID uuid.UUID) (*models.DriverRecord, error)
	// CreateProfile inserts the profile and, when status is non-nil, its
	// status row in one transaction.
	CreateProfile(ctx context.Context, profile *models.DriverProfile, status *models.DriverStatus) error
	HasProfile(ctx context.Context, driverID uuid.UUID) (bool, error)
	UpsertStatus(ctx context.Context, driverID uuid.UUID, status models.DriverStatusValue, at time.Time) error
	UpdateProfile(ctx context.Context, driverID uuid.UUID, update ProfileUpdate, at time.Time) error
	SetAllowCalls(ctx context.Context, driverID uuid.UUID, allow bool) error
	SetPhotoURL(ctx context.Context, driverID uuid.UUID, url string, at time.Time) error
	SetRating(ctx context.Context, driverID uuid.UUID, avg float64, count int) error
}

// ReviewStats is the raw aggregate over a driver's reviews.
type ReviewStats struct {
	Count int64
	Sum   int64
}

type IReviewStorage interface {
	Create(ctx context.Context, review *models.Review) error
	Get(ctx context.Context, id uuid.UUID) (*models.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsSince(ctx context.Context, driverID, passengerID uuid.UUID, since time.Time) (bool, error)
	Stats(ctx context.Context, driverID uuid.UUID) (ReviewStats, error)
	ListForDriver(ctx context.Context, driverID uuid.UUID) ([]models.ReviewWithPassenger, error)
}

type IBlockStorage interface {
	Create(ctx context.Context, block *models.Block) error
	Delete(ctx context.Context, blockerID, blockedID uuid.UUID) error
	ListByBlocker(ctx context.Context, blockerID uuid.UUID) ([]models.Block, error)
	ExistsBetween(ctx context.Context, a, b uuid.UUID) (bool, error)
}

type IReportStorage interface {
	Create(ctx context.Context, report *models.Report) error
	ListDetailed(ctx context.Context) ([]models.ReportDetail, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus) error
}

type IOTPStorage interface {
	Create(ctx context.Context, otp *models.OTP) error
	// InvalidateActive marks every unused OTP for phone as used.
	InvalidateActive(ctx context.Context, phone string) error
	// Latest returns the newest unused OTP for phone, expired or not.
	Latest(ctx context.Context, phone string) (*models.OTP, error)
	Save(ctx context.Context, otp *models.OTP) error
}

type IPreferenceStorage interface {
	// GetOrCreate returns stored preferences, creating the defaults on first use.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error)
	Save(ctx context.Context, prefs *models.NotificationPreference) error
}
