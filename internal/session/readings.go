package session

import (
	"fmt"
	"time"

	"github.com/zulandar/mashtun/internal/models"
	"github.com/zulandar/mashtun/internal/units"
	"gorm.io/gorm"
)

// Gravity readings outside this range are sensor glitches or typos, not
// beer.
const (
	MinGravity = 0.9
	MaxGravity = 1.2
)

// ReadingOpts holds parameters for logging a gravity reading. Temperature
// 0 means not recorded.
type ReadingOpts struct {
	Gravity     float64
	Temperature float64
	TempUnit    string // f or c; default f
	Source      string // manual, tilt, ispindel; default manual
	TakenAt     time.Time
}

// LogReading records a gravity measurement for an active session. The
// first reading doubles as the measured OG of the batch.
func LogReading(db *gorm.DB, id string, opts ReadingOpts) (*models.GravityReading, error) {
	s, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if !readingStatuses[s.Status] {
		return nil, fmt.Errorf("session: cannot log a reading while %s is %s", id, s.Status)
	}

	if opts.Gravity <= MinGravity || opts.Gravity >= MaxGravity {
		return nil, fmt.Errorf("session: gravity must be in (%v, %v), got %v", MinGravity, MaxGravity, opts.Gravity)
	}

	tempUnit := opts.TempUnit
	if tempUnit == "" {
		tempUnit = string(units.Fahrenheit)
	}
	if units.Kind(units.Unit(tempUnit)) != units.KindTemperature {
		return nil, fmt.Errorf("session: temp unit: %w: %q", units.ErrUnsupportedUnit, tempUnit)
	}

	source := opts.Source
	if source == "" {
		source = "manual"
	}

	takenAt := opts.TakenAt
	if takenAt.IsZero() {
		takenAt = time.Now()
	}

	reading := models.GravityReading{
		SessionID:   id,
		Gravity:     opts.Gravity,
		Temperature: opts.Temperature,
		TempUnit:    tempUnit,
		Source:      source,
		TakenAt:     takenAt,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reading).Error; err != nil {
			return fmt.Errorf("session: log reading for %s: %w", id, err)
		}
		if s.MeasuredOG == 0 {
			if err := tx.Model(&models.BrewSession{}).Where("id = ?", id).Update("measured_og", opts.Gravity).Error; err != nil {
				return fmt.Errorf("session: record measured OG for %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

// Finish records the measured final gravity, completes the session, and —
// when the batch has a usable measured OG and a yeast — feeds one observed
// attenuation sample to the analytics corpus. A batch with og ≤ 1 or no
// yeast completes without a sample.
func Finish(db *gorm.DB, id string, measuredFG float64) (*models.BrewSession, error) {
	s, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if !isValidTransition(s.Status, "completed") {
		valid := ValidTransitions[s.Status]
		return nil, fmt.Errorf("session: invalid status transition from %q to %q; valid transitions: %v", s.Status, "completed", valid)
	}
	if measuredFG <= MinGravity || measuredFG >= MaxGravity {
		return nil, fmt.Errorf("session: gravity must be in (%v, %v), got %v", MinGravity, MaxGravity, measuredFG)
	}

	now := time.Now()
	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":       "completed",
			"measured_fg":  measuredFG,
			"completed_at": now,
		}
		if err := tx.Model(&models.BrewSession{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("session: finish %s: %w", id, err)
		}

		if s.MeasuredOG > 1 && s.YeastID != "" {
			observed := ApparentAttenuation(s.MeasuredOG, measuredFG)
			sample := models.AttenuationSample{
				IngredientID: s.YeastID,
				SessionID:    id,
				Observed:     units.Round(observed, 1),
			}
			if err := tx.Create(&sample).Error; err != nil {
				return fmt.Errorf("session: record attenuation sample for %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return Get(db, id)
}

// ApparentAttenuation is the percentage of gravity points the yeast
// consumed: (og − fg) / (og − 1) × 100.
func ApparentAttenuation(og, fg float64) float64 {
	return (og - fg) / (og - 1) * 100
}

// ProgressInfo summarizes where a fermentation stands.
type ProgressInfo struct {
	Status         string
	PlannedOG      float64
	PlannedFG      float64 // from the recipe snapshot
	MeasuredOG     float64
	CurrentGravity float64
	Attenuation    float64 // apparent, from measured OG to current gravity
	ReadingCount   int
	LastReadingAt  time.Time
}

// Progress reports the current gravity against the plan. Attenuation uses
// the measured OG when one exists, falling back to the planned OG.
func Progress(db *gorm.DB, id string) (*ProgressInfo, error) {
	s, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	info := ProgressInfo{
		Status:     s.Status,
		PlannedOG:  s.PlannedOG,
		PlannedFG:  s.Recipe.FG,
		MeasuredOG: s.MeasuredOG,
	}

	if len(s.Readings) == 0 {
		return &info, nil
	}

	last := s.Readings[len(s.Readings)-1]
	info.CurrentGravity = last.Gravity
	info.ReadingCount = len(s.Readings)
	info.LastReadingAt = last.TakenAt

	og := s.MeasuredOG
	if og == 0 {
		og = s.PlannedOG
	}
	if og > 1 {
		info.Attenuation = ApparentAttenuation(og, last.Gravity)
	}
	return &info, nil
}
