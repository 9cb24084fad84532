package repository

import "gorm.io/gorm"

// Migrate creates or updates every table the engine owns. Used by
// cmd/seed and the test suites; production schemas are managed the
// same way at deploy time.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&hotelModel{},
		&roomTypeModel{},
		&bookingModel{},
		&holdModel{},
		&paymentIntentModel{},
		&reviewModel{},
	)
}
