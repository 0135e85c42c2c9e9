package models

// BrewhouseConfig stores instance-level configuration: who owns this
// database and their default unit system and mash efficiency.
type BrewhouseConfig struct {
	ID         uint    `gorm:"primaryKey;autoIncrement"`
	Owner      string  `gorm:"size:64;uniqueIndex"`
	Name       string  `gorm:"size:128"`
	Units      string  `gorm:"size:16;default:imperial"`
	Efficiency float64 `gorm:"default:72"`
	Settings   string  `gorm:"type:json"`
}
