package models

import "time"

// Ingredient is a catalog entry: a grain, hop, yeast, or other fermentable.
// Only the attributes matching Type are meaningful; the rest stay zero.
type Ingredient struct {
	ID     string `gorm:"primaryKey;size:32"`
	Name   string `gorm:"size:128;not null;index"`
	Type   string `gorm:"size:16;not null;index"`
	Origin string `gorm:"size:64"`
	Notes  string `gorm:"type:text"`

	// Fermentables: gravity potential in ppg and color in °L.
	Potential float64
	Lovibond  float64

	// Hops: alpha acid percent.
	AlphaAcid float64

	// Yeast: published apparent attenuation percent and fermentation
	// temperature range in °F. Attenuation 0 means the lab publishes none.
	Attenuation float64
	MinTemp     float64
	MaxTemp     float64

	CreatedAt time.Time
	UpdatedAt time.Time
}
