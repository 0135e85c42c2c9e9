package db

import (
	"fmt"

	"github.com/zulandar/mashtun/internal/config"
	"github.com/zulandar/mashtun/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.BrewSession{},
		&models.GravityReading{},
		&models.AttenuationSample{},
		&models.AttenuationStat{},
		&models.Alert{},
		&models.BrewhouseConfig{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// starterCatalog is the ingredient inventory seeded by db init: enough
// common fermentables, hops, and yeasts to enter a first recipe without
// hand-adding the basics. IDs are fixed so re-running init updates rows
// instead of duplicating them.
var starterCatalog = []models.Ingredient{
	{ID: "ing-9d01a", Name: "Pale 2-Row", Type: "grain", Origin: "US", Potential: 37, Lovibond: 2},
	{ID: "ing-3f2b8", Name: "Maris Otter", Type: "grain", Origin: "UK", Potential: 38, Lovibond: 3},
	{ID: "ing-7c4e1", Name: "Pilsner Malt", Type: "grain", Origin: "DE", Potential: 37, Lovibond: 1.6},
	{ID: "ing-b05d9", Name: "Munich Malt", Type: "grain", Origin: "DE", Potential: 37, Lovibond: 9},
	{ID: "ing-28a6f", Name: "Wheat Malt", Type: "grain", Origin: "DE", Potential: 38, Lovibond: 2},
	{ID: "ing-e913c", Name: "Crystal 40", Type: "grain", Origin: "US", Potential: 34, Lovibond: 40},
	{ID: "ing-54f07", Name: "Crystal 60", Type: "grain", Origin: "US", Potential: 34, Lovibond: 60},
	{ID: "ing-c6b32", Name: "Chocolate Malt", Type: "grain", Origin: "UK", Potential: 28, Lovibond: 350},
	{ID: "ing-0da84", Name: "Roasted Barley", Type: "grain", Origin: "UK", Potential: 25, Lovibond: 300},
	{ID: "ing-81e5b", Name: "Corn Sugar", Type: "other", Potential: 42, Lovibond: 0},
	{ID: "ing-a7209", Name: "Cascade", Type: "hop", Origin: "US", AlphaAcid: 5.5},
	{ID: "ing-4b8cd", Name: "Centennial", Type: "hop", Origin: "US", AlphaAcid: 10},
	{ID: "ing-f36e5", Name: "Citra", Type: "hop", Origin: "US", AlphaAcid: 12},
	{ID: "ing-62c90", Name: "Saaz", Type: "hop", Origin: "CZ", AlphaAcid: 3.5},
	{ID: "ing-d19b4", Name: "East Kent Goldings", Type: "hop", Origin: "UK", AlphaAcid: 5},
	{ID: "ing-35a7e", Name: "SafAle US-05", Type: "yeast", Origin: "Fermentis", Attenuation: 81, MinTemp: 59, MaxTemp: 75},
	{ID: "ing-8e04f", Name: "SafAle S-04", Type: "yeast", Origin: "Fermentis", Attenuation: 75, MinTemp: 59, MaxTemp: 68},
	{ID: "ing-bc512", Name: "SafLager W-34/70", Type: "yeast", Origin: "Fermentis", Attenuation: 82, MinTemp: 48, MaxTemp: 59},
	{ID: "ing-16d73", Name: "American Ale 1056", Type: "yeast", Origin: "Wyeast", Attenuation: 75, MinTemp: 60, MaxTemp: 72},
}

// SeedCatalog upserts the starter ingredient catalog.
func SeedCatalog(db *gorm.DB) error {
	for _, ing := range starterCatalog {
		result := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "type", "origin", "potential", "lovibond",
				"alpha_acid", "attenuation", "min_temp", "max_temp",
			}),
		}).Create(&ing)
		if result.Error != nil {
			return fmt.Errorf("db: seed ingredient %q: %w", ing.Name, result.Error)
		}
	}
	return nil
}

// SeedBrewhouse writes or updates the BrewhouseConfig row for this owner.
func SeedBrewhouse(db *gorm.DB, cfg *config.Config) error {
	bc := models.BrewhouseConfig{
		Owner:      cfg.Owner,
		Name:       cfg.Brewhouse,
		Units:      cfg.Units,
		Efficiency: cfg.Efficiency,
		Settings:   "{}",
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "units", "efficiency"}),
	}).Create(&bc)
	if result.Error != nil {
		return fmt.Errorf("db: seed brewhouse for %q: %w", cfg.Owner, result.Error)
	}
	return nil
}
