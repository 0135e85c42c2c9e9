package models

import "time"

// Alert records a cellar condition that was reported to the brewer, keyed by
// session and kind. Acknowledged marks it handled; the watcher won't raise
// the same kind again for a session while an unacknowledged row exists.
type Alert struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	SessionID    string `gorm:"size:32;not null;index"`
	Kind         string `gorm:"size:32;not null"`
	Subject      string `gorm:"size:256"`
	Body         string `gorm:"type:text"`
	Severity     string `gorm:"size:8;default:warning"`
	Acknowledged bool   `gorm:"default:false;index"`
	CreatedAt    time.Time
}
