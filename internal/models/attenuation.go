package models

import "time"

// AttenuationSample is one observed apparent attenuation for a yeast,
// recorded when a brew session finishes with measured gravities.
type AttenuationSample struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"`
	IngredientID string  `gorm:"size:32;not null;index"`
	SessionID    string  `gorm:"size:32;not null"`
	Observed     float64 `gorm:"not null"`
	CreatedAt    time.Time
}

// AttenuationStat caches the aggregate over a yeast's samples: the running
// average, how many samples back it, and a confidence tier. Rewritten by the
// analytics refresh job; never an input to recipe math.
type AttenuationStat struct {
	IngredientID   string `gorm:"primaryKey;size:32"`
	SampleCount    int
	AvgAttenuation float64
	Confidence     string `gorm:"size:8;default:low"`
	LastSampleAt   *time.Time
}
