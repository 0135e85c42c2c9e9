package models

import "time"

// Recipe is the core entity: a grain bill, hop schedule, and yeast choice
// sized for a batch. The metric columns are a snapshot of the last
// computation — derived data, rewritten whole on every recipe mutation and
// always recomputable from the ingredient lines.
type Recipe struct {
	ID         string  `gorm:"primaryKey;size:32"`
	Name       string  `gorm:"size:128;not null"`
	Style      string  `gorm:"size:64;index"`
	Status     string  `gorm:"size:16;default:draft;index"`
	BatchSize  float64 `gorm:"not null"`
	BatchUnit  string  `gorm:"size:8;default:gal"`
	BoilTime   float64 `gorm:"default:60"`
	Efficiency float64 `gorm:"default:72"`
	Units      string  `gorm:"size:16;default:imperial"`
	Notes      string  `gorm:"type:text"`

	OG               float64
	FG               float64
	ABV              float64
	IBU              float64
	SRM              float64
	MetricsEstimated bool
	MetricsAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID"`
}

// RecipeIngredient is one line of a recipe: an ingredient reference with an
// amount and, for hops, the addition stage and time. Lines belong to exactly
// one recipe; cloning or scaling copies them, never shares them.
type RecipeIngredient struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"`
	RecipeID     string  `gorm:"size:32;not null;index"`
	IngredientID string  `gorm:"size:32;not null"`
	Amount       float64 `gorm:"not null"`
	Unit         string  `gorm:"size:8;not null"`
	Use          string  `gorm:"size:16"`
	Time         float64
	TimeUnit     string `gorm:"size:8;default:min"`
	SortOrder    int    `gorm:"default:0"`

	Ingredient Ingredient `gorm:"foreignKey:IngredientID"`
}
