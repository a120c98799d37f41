package database

import (
	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Area{},
		&models.Category{},
		&models.Client{},
		&models.Provider{},
		&models.Service{},
		&models.Request{},
		&models.AccommodationDetails{},
		&models.TransportDetails{},
		&models.EntertainmentDetails{},
		&models.Alert{},
		&models.Proposal{},
		&models.Notification{},
	)
}

// SeedData populates the top-level category tree. Categories are keyed by
// stable sysnames so reseeding an existing database is a no-op.
func SeedData(db *gorm.DB) error {
	categories := []models.Category{
		{
			BaseModel: models.BaseModel{ID: "cat-accommodation"},
			Sysname:   models.CategoryAccommodation,
			Name:      "Accommodation",
		},
		{
			BaseModel: models.BaseModel{ID: "cat-transport"},
			Sysname:   models.CategoryTransport,
			Name:      "Transport",
		},
		{
			BaseModel: models.BaseModel{ID: "cat-entertainment"},
			Sysname:   models.CategoryEntertainment,
			Name:      "Entertainment",
		},
	}

	for _, category := range categories {
		if err := db.Where(models.Category{Sysname: category.Sysname}).
			Attrs(category).
			FirstOrCreate(&models.Category{}).Error; err != nil {
			return err
		}
	}

	return nil
}
