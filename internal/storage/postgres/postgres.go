package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
)

type Store struct {
	db  *gorm.DB
	log logger.ILogger
}

// New wraps an open gorm connection. The schema is expected to be migrated
// already (see database.RunMigrations).
func New(db *gorm.DB, log logger.ILogger) storage.IStorage {
	return &Store{db: db, log: log}
}

func (s *Store) User() storage.IUserStorage {
	return NewUserRepo(s.db, s.log)
}

func (s *Store) Driver() storage.IDriverStorage {
	return NewDriverRepo(s.db, s.log)
}

func (s *Store) Review() storage.IReviewStorage {
	return NewReviewRepo(s.db, s.log)
}

func (s *Store) Block() storage.IBlockStorage {
	return NewBlockRepo(s.db, s.log)
}

func (s *Store) Report() storage.IReportStorage {
	return NewReportRepo(s.db, s.log)
}

func (s *Store) OTP() storage.IOTPStorage {
	return NewOTPRepo(s.db, s.log)
}

func (s *Store) Preference() storage.IPreferenceStorage {
	return NewPreferenceRepo(s.db, s.log)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// notFound maps gorm's sentinel onto storage.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return err
}

// affected turns a zero-row targeted write into storage.ErrNotFound.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
