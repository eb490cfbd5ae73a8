package migration

import (
	"log"

	"gorm.io/gorm"

	"friendsmarket/models"
)

func init() {
	if err := Register("001_core_schema", migrateCoreSchema); err != nil {
		log.Fatalf("Failed to register migration 001_core_schema: %v", err)
	}
}

func migrateCoreSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Market{},
		&models.Bet{},
		&models.LedgerEntry{},
	)
}
