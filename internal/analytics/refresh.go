package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/mashtun/internal/models"
	"github.com/zulandar/mashtun/internal/units"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sampleGroup is the per-yeast aggregate row pulled from attenuation_samples.
type sampleGroup struct {
	IngredientID string
	Count        int
	Avg          float64
	Last         time.Time
}

// RefreshStats recomputes the AttenuationStat row for every yeast with
// samples and upserts them. It runs as a batch job — from the CLI or on the
// cellar daemon's schedule — independent of any recipe computation. Returns
// the number of stats written.
func RefreshStats(db *gorm.DB) (int, error) {
	var groups []sampleGroup
	err := db.Model(&models.AttenuationSample{}).
		Select("ingredient_id, COUNT(*) as count, AVG(observed) as avg, MAX(created_at) as last").
		Group("ingredient_id").
		Find(&groups).Error
	if err != nil {
		return 0, fmt.Errorf("analytics: aggregate samples: %w", err)
	}

	for _, g := range groups {
		last := g.Last
		stat := models.AttenuationStat{
			IngredientID:   g.IngredientID,
			SampleCount:    g.Count,
			AvgAttenuation: units.Round(g.Avg, 1),
			Confidence:     Confidence(g.Count),
			LastSampleAt:   &last,
		}
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ingredient_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sample_count", "avg_attenuation", "confidence", "last_sample_at"}),
		}).Create(&stat)
		if result.Error != nil {
			return 0, fmt.Errorf("analytics: upsert stat for %s: %w", g.IngredientID, result.Error)
		}
	}
	return len(groups), nil
}

// StatFor returns the cached stat for one yeast, or nil if it has no
// samples yet.
func StatFor(db *gorm.DB, ingredientID string) (*models.AttenuationStat, error) {
	var stat models.AttenuationStat
	err := db.Where("ingredient_id = ?", ingredientID).First(&stat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("analytics: stat for %s: %w", ingredientID, err)
	}
	return &stat, nil
}
