package db

import (
	"fmt"

	"github.com/pac-voluntarios/portal/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables owned by the portal.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errMigrate := conn.AutoMigrate(&models.Profile{}); errMigrate != nil {
		return fmt.Errorf("db: migrate profiles: %w", errMigrate)
	}
	return nil
}
