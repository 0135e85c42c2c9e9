package recipe

import (
	"errors"
	"fmt"

	"github.com/zulandar/mashtun/internal/brewcalc"
	"github.com/zulandar/mashtun/internal/models"
	"github.com/zulandar/mashtun/internal/units"
	"gorm.io/gorm"
)

// LineOpts holds parameters for adding an ingredient line to a recipe.
// Use/Time/TimeUnit only apply to hops.
type LineOpts struct {
	IngredientID string
	Amount       float64
	Unit         string  // default: lb/kg for fermentables, oz/g for hops, pkg for yeast
	Use          string  // boil, whirlpool, dry-hop; default boil
	Time         float64 // boil/whirlpool minutes or dry-hop days
	TimeUnit     string
}

// AddIngredient appends a line to a recipe and recomputes its metrics. The
// line and the snapshot land together or not at all.
func AddIngredient(db *gorm.DB, recipeID string, opts LineOpts) (*models.RecipeIngredient, error) {
	var r models.Recipe
	if err := db.Where("id = ?", recipeID).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe: not found: %s", recipeID)
		}
		return nil, fmt.Errorf("recipe: get %s: %w", recipeID, err)
	}

	var ing models.Ingredient
	if err := db.Where("id = ?", opts.IngredientID).First(&ing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe: ingredient not found: %s", opts.IngredientID)
		}
		return nil, fmt.Errorf("recipe: get ingredient %s: %w", opts.IngredientID, err)
	}

	line, err := buildLine(&r, &ing, opts)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipeID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("recipe: count lines of %s: %w", recipeID, err)
	}
	line.SortOrder = int(count)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(line).Error; err != nil {
			return fmt.Errorf("recipe: add %s to %s: %w", ing.Name, recipeID, err)
		}
		_, err := Recompute(tx, recipeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateIngredientAmount changes a line's amount and recomputes the
// recipe's metrics.
func UpdateIngredientAmount(db *gorm.DB, recipeID string, lineID uint, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%w: %v", brewcalc.ErrInvalidAmount, amount)
	}

	line, err := getLine(db, recipeID, lineID)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RecipeIngredient{}).Where("id = ?", line.ID).Update("amount", amount).Error; err != nil {
			return fmt.Errorf("recipe: update line %d: %w", lineID, err)
		}
		_, err := Recompute(tx, recipeID)
		return err
	})
}

// RemoveIngredient deletes a line from a recipe and recomputes its metrics.
func RemoveIngredient(db *gorm.DB, recipeID string, lineID uint) error {
	line, err := getLine(db, recipeID, lineID)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.RecipeIngredient{}, line.ID).Error; err != nil {
			return fmt.Errorf("recipe: remove line %d: %w", lineID, err)
		}
		_, err := Recompute(tx, recipeID)
		return err
	})
}

// getLine loads a line, checking it belongs to the given recipe.
func getLine(db *gorm.DB, recipeID string, lineID uint) (*models.RecipeIngredient, error) {
	var line models.RecipeIngredient
	if err := db.Where("id = ? AND recipe_id = ?", lineID, recipeID).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe: line %d not found on %s", lineID, recipeID)
		}
		return nil, fmt.Errorf("recipe: get line %d: %w", lineID, err)
	}
	return &line, nil
}

// buildLine validates line options against the ingredient's type and fills
// in defaults from the recipe's unit system.
func buildLine(r *models.Recipe, ing *models.Ingredient, opts LineOpts) (*models.RecipeIngredient, error) {
	if opts.Amount < 0 {
		return nil, fmt.Errorf("%w: %s has amount %v", brewcalc.ErrInvalidAmount, ing.Name, opts.Amount)
	}

	system := units.System(r.Units)
	unit := units.Unit(opts.Unit)
	use := opts.Use
	timeUnit := opts.TimeUnit
	lineTime := opts.Time

	switch brewcalc.IngredientType(ing.Type) {
	case brewcalc.Grain, brewcalc.Other:
		if unit == "" {
			unit = units.MassUnit(system)
		}
		if units.Kind(unit) != units.KindMass {
			return nil, fmt.Errorf("recipe: %s: %w: %q is not a mass unit", ing.Name, units.ErrUnsupportedUnit, unit)
		}
		use, lineTime, timeUnit = "", 0, ""
	case brewcalc.Hop:
		if unit == "" {
			unit = units.HopMassUnit(system)
		}
		if units.Kind(unit) != units.KindMass {
			return nil, fmt.Errorf("recipe: %s: %w: %q is not a mass unit", ing.Name, units.ErrUnsupportedUnit, unit)
		}
		if use == "" {
			use = string(brewcalc.UseBoil)
		}
		switch brewcalc.HopUse(use) {
		case brewcalc.UseBoil, brewcalc.UseWhirlpool:
			if timeUnit == "" {
				timeUnit = string(brewcalc.Minutes)
			}
		case brewcalc.UseDryHop:
			if timeUnit == "" {
				timeUnit = string(brewcalc.Days)
			}
		default:
			return nil, fmt.Errorf("recipe: %s: unknown hop use %q", ing.Name, use)
		}
		if timeUnit != string(brewcalc.Minutes) && timeUnit != string(brewcalc.Days) {
			return nil, fmt.Errorf("recipe: %s: unknown time unit %q", ing.Name, timeUnit)
		}
		if lineTime < 0 {
			return nil, fmt.Errorf("recipe: %s: time must not be negative: %v", ing.Name, lineTime)
		}
	case brewcalc.Yeast:
		if unit == "" {
			unit = units.Package
		}
		if units.Kind(unit) != units.KindMass && units.Kind(unit) != units.KindCount {
			return nil, fmt.Errorf("recipe: %s: %w: %q is not a mass or package unit", ing.Name, units.ErrUnsupportedUnit, unit)
		}
		use, lineTime, timeUnit = "", 0, ""
	default:
		return nil, fmt.Errorf("%w: %q (%s)", brewcalc.ErrUnrecognizedType, ing.Type, ing.Name)
	}

	return &models.RecipeIngredient{
		RecipeID:     r.ID,
		IngredientID: ing.ID,
		Amount:       opts.Amount,
		Unit:         string(unit),
		Use:          use,
		Time:         lineTime,
		TimeUnit:     timeUnit,
	}, nil
}
