package database

import (
	"gorm.io/gorm"

	"github.com/Jen9x/TapRide/internal/models"
)

// RunMigrations creates or updates every table. It works on postgres and on
// the sqlite databases used in tests.
func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.DriverProfile{},
		&models.DriverStatus{},
		&models.Review{},
		&models.Block{},
		&models.Report{},
		&models.OTP{},
		&models.NotificationPreference{},
	)
	if err != nil {
		return err
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	// Listing sorts on these columns.
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_driver_profiles_rating ON driver_profiles (rating_avg DESC, display_name ASC)`,
		`CREATE INDEX IF NOT EXISTS idx_driver_profiles_name_lower ON driver_profiles (LOWER(display_name))`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
