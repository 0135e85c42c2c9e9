package models

import "time"

// BrewSession tracks one brew day and the fermentation that follows, from
// planned through completed (or dumped).
type BrewSession struct {
	ID         string `gorm:"primaryKey;size:32"`
	RecipeID   string `gorm:"size:32;not null;index"`
	Status     string `gorm:"size:16;default:planned;index"`
	YeastID    string `gorm:"size:32"`
	PlannedOG  float64
	MeasuredOG float64
	MeasuredFG float64
	Notes      string `gorm:"type:text"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	BrewedAt    *time.Time
	CompletedAt *time.Time

	Recipe   Recipe           `gorm:"foreignKey:RecipeID"`
	Readings []GravityReading `gorm:"foreignKey:SessionID"`
}

// GravityReading is one specific-gravity measurement during fermentation,
// entered by hand or pulled from a Tilt or iSpindel.
type GravityReading struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	SessionID   string  `gorm:"size:32;not null;index"`
	Gravity     float64 `gorm:"not null"`
	Temperature float64
	TempUnit    string    `gorm:"size:4;default:f"`
	Source      string    `gorm:"size:16;default:manual"`
	TakenAt     time.Time `gorm:"index"`
}
