package recipe

import (
	"fmt"

	"github.com/zulandar/mashtun/internal/brewcalc"
	"github.com/zulandar/mashtun/internal/models"
	"gorm.io/gorm"
)

// ScaledPreview is the complete unsaved result of scaling a recipe: the
// resized process parameters, every line's new amount, and the metrics the
// resized recipe would have. The caller decides whether to persist it.
type ScaledPreview struct {
	Source  *models.Recipe
	Spec    brewcalc.RecipeSpec
	Lines   []brewcalc.Line
	Metrics brewcalc.Metrics
}

// Scale resizes a recipe to a new batch size, given in the recipe's own
// batch unit, without persisting anything.
func Scale(db *gorm.DB, id string, newBatch float64) (*ScaledPreview, error) {
	src, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	spec, lines := buildInputs(src)
	scaledSpec, scaledLines, err := brewcalc.Scale(spec, lines, newBatch)
	if err != nil {
		return nil, fmt.Errorf("recipe: scale %s: %w", id, err)
	}

	m, err := brewcalc.Compute(scaledSpec, scaledLines)
	if err != nil {
		return nil, fmt.Errorf("recipe: scale %s: %w", id, err)
	}

	return &ScaledPreview{
		Source:  src,
		Spec:    scaledSpec,
		Lines:   scaledLines,
		Metrics: m,
	}, nil
}

// SaveScaled persists a scaled copy as a new draft recipe and recomputes
// its snapshot. An empty name derives one from the source and the new
// batch size.
func SaveScaled(db *gorm.DB, id string, newBatch float64, name string) (*models.Recipe, error) {
	preview, err := Scale(db, id, newBatch)
	if err != nil {
		return nil, err
	}
	src := preview.Source

	if name == "" {
		name = fmt.Sprintf("%s (%g %s)", src.Name, newBatch, src.BatchUnit)
	}

	newID, err := generateUniqueID(db)
	if err != nil {
		return nil, err
	}

	scaled := models.Recipe{
		ID:         newID,
		Name:       name,
		Style:      src.Style,
		Status:     "draft",
		BatchSize:  preview.Spec.BatchSize,
		BatchUnit:  src.BatchUnit,
		BoilTime:   src.BoilTime,
		Efficiency: src.Efficiency,
		Units:      src.Units,
		Notes:      src.Notes,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&scaled).Error; err != nil {
			return fmt.Errorf("recipe: save scaled %s: %w", id, err)
		}
		// Scaled lines come back in source order; zip the new amounts onto
		// copies of the source rows.
		for i, ri := range src.Ingredients {
			line := models.RecipeIngredient{
				RecipeID:     newID,
				IngredientID: ri.IngredientID,
				Amount:       preview.Lines[i].Amount,
				Unit:         ri.Unit,
				Use:          ri.Use,
				Time:         ri.Time,
				TimeUnit:     ri.TimeUnit,
				SortOrder:    ri.SortOrder,
			}
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("recipe: save scaled line for %s: %w", ri.IngredientID, err)
			}
		}
		_, err := Recompute(tx, newID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return Get(db, newID)
}
