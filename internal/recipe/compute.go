package recipe

import (
	"fmt"
	"time"

	"github.com/zulandar/mashtun/internal/brewcalc"
	"github.com/zulandar/mashtun/internal/models"
	"github.com/zulandar/mashtun/internal/units"
	"gorm.io/gorm"
)

// buildInputs resolves a recipe's stored lines into engine inputs. Line
// order is preserved, so scaled results can be zipped back onto the rows.
func buildInputs(r *models.Recipe) (brewcalc.RecipeSpec, []brewcalc.Line) {
	spec := brewcalc.RecipeSpec{
		BatchSize:  r.BatchSize,
		BatchUnit:  units.Unit(r.BatchUnit),
		BoilTime:   r.BoilTime,
		Efficiency: r.Efficiency,
	}

	lines := make([]brewcalc.Line, len(r.Ingredients))
	for i, ri := range r.Ingredients {
		lines[i] = brewcalc.Line{
			Type:        brewcalc.IngredientType(ri.Ingredient.Type),
			Name:        ri.Ingredient.Name,
			Amount:      ri.Amount,
			Unit:        units.Unit(ri.Unit),
			Potential:   ri.Ingredient.Potential,
			Lovibond:    ri.Ingredient.Lovibond,
			AlphaAcid:   ri.Ingredient.AlphaAcid,
			Use:         brewcalc.HopUse(ri.Use),
			Time:        ri.Time,
			TimeUnit:    brewcalc.TimeUnit(ri.TimeUnit),
			Attenuation: ri.Ingredient.Attenuation,
		}
	}
	return spec, lines
}

// Recompute loads a recipe, runs the metrics pipeline over its resolved
// lines, and stores the rounded snapshot. It is the only path that writes
// the metric columns: whatever is stored was computed whole, by one formula
// set, from the lines as they are now.
func Recompute(db *gorm.DB, id string) (*brewcalc.Metrics, error) {
	r, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	spec, lines := buildInputs(r)
	m, err := brewcalc.Compute(spec, lines)
	if err != nil {
		return nil, fmt.Errorf("recipe: recompute %s: %w", id, err)
	}

	// Rounding happens here, at the storage boundary.
	m.OG = units.Round(m.OG, 4)
	m.FG = units.Round(m.FG, 4)
	m.ABV = units.Round(m.ABV, 2)
	m.IBU = units.Round(m.IBU, 1)
	m.SRM = units.Round(m.SRM, 1)

	now := time.Now()
	updates := map[string]interface{}{
		"og":                m.OG,
		"fg":                m.FG,
		"abv":               m.ABV,
		"ibu":               m.IBU,
		"srm":               m.SRM,
		"metrics_estimated": m.Estimated,
		"metrics_at":        now,
	}
	if err := db.Model(&models.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("recipe: store metrics for %s: %w", id, err)
	}
	return &m, nil
}
