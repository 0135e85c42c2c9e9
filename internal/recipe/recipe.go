// Package recipe provides recipe lifecycle operations. Every mutation that
// can move the numbers funnels through Recompute, so the stored metric
// snapshot never drifts from the ingredient lines.
package recipe

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zulandar/mashtun/internal/brewcalc"
	"github.com/zulandar/mashtun/internal/models"
	"github.com/zulandar/mashtun/internal/units"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a new recipe.
type CreateOpts struct {
	Name       string
	Style      string
	BatchSize  float64
	BatchUnit  string // default: the system's volume unit
	BoilTime   float64
	Efficiency float64
	Units      string // imperial or metric; default imperial
	Notes      string
}

// ListFilters holds optional filters for listing recipes.
type ListFilters struct {
	Status string
	Style  string
	Name   string // substring match
}

// ValidTransitions maps each recipe status to its valid next statuses.
var ValidTransitions = map[string][]string{
	"draft":    {"final", "archived"},
	"final":    {"draft", "archived"},
	"archived": {"draft"},
}

// GenerateID creates a unique recipe ID in rcp-xxxxx format (5-char hex).
func GenerateID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("recipe: generate ID: %w", err)
	}
	return "rcp-" + hex.EncodeToString(b)[:5], nil
}

// Create creates a new draft recipe with an auto-generated ID.
func Create(db *gorm.DB, opts CreateOpts) (*models.Recipe, error) {
	if opts.Units == "" {
		opts.Units = string(units.Imperial)
	}
	if opts.BatchUnit == "" {
		opts.BatchUnit = string(units.VolumeUnit(units.System(opts.Units)))
	}

	r := models.Recipe{
		Name:       opts.Name,
		Style:      opts.Style,
		Status:     "draft",
		BatchSize:  opts.BatchSize,
		BatchUnit:  opts.BatchUnit,
		BoilTime:   opts.BoilTime,
		Efficiency: opts.Efficiency,
		Units:      opts.Units,
		Notes:      opts.Notes,
	}
	if err := validateProcess(&r); err != nil {
		return nil, err
	}

	id, err := generateUniqueID(db)
	if err != nil {
		return nil, err
	}
	r.ID = id

	if err := db.Create(&r).Error; err != nil {
		return nil, fmt.Errorf("recipe: create: %w", err)
	}
	return &r, nil
}

// Get retrieves a recipe by ID with its ingredient lines resolved, in
// grain-bill order.
func Get(db *gorm.DB, id string) (*models.Recipe, error) {
	var r models.Recipe
	err := db.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Ingredients.Ingredient").
		Where("id = ?", id).First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe: not found: %s", id)
		}
		return nil, fmt.Errorf("recipe: get %s: %w", id, err)
	}
	return &r, nil
}

// List returns recipes matching the given filters, oldest first.
func List(db *gorm.DB, filters ListFilters) ([]models.Recipe, error) {
	q := db.Model(&models.Recipe{})

	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Style != "" {
		q = q.Where("style = ?", filters.Style)
	}
	if filters.Name != "" {
		q = q.Where("name LIKE ?", "%"+filters.Name+"%")
	}

	var recipes []models.Recipe
	if err := q.Order("created_at ASC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("recipe: list: %w", err)
	}
	return recipes, nil
}

// Update modifies recipe fields. Status transitions are validated against
// ValidTransitions; process-parameter changes trigger a recompute.
func Update(db *gorm.DB, id string, updates map[string]interface{}) error {
	var r models.Recipe
	if err := db.Where("id = ?", id).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("recipe: not found: %s", id)
		}
		return fmt.Errorf("recipe: get %s for update: %w", id, err)
	}

	if newStatus, ok := updates["status"].(string); ok {
		if !isValidTransition(r.Status, newStatus) {
			valid := ValidTransitions[r.Status]
			return fmt.Errorf("recipe: invalid status transition from %q to %q; valid transitions: %v", r.Status, newStatus, valid)
		}
	}

	merged := r
	if err := applyUpdates(&merged, updates); err != nil {
		return err
	}
	if err := validateProcess(&merged); err != nil {
		return err
	}

	if err := db.Model(&models.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("recipe: update %s: %w", id, err)
	}

	if touchesMetrics(updates) {
		if _, err := Recompute(db, id); err != nil {
			return err
		}
	}
	return nil
}

// Clone copies a recipe and its lines into a new draft. The copy owns its
// lines outright; later edits to either recipe never touch the other.
func Clone(db *gorm.DB, id, name string) (*models.Recipe, error) {
	src, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = src.Name + " (copy)"
	}

	newID, err := generateUniqueID(db)
	if err != nil {
		return nil, err
	}

	clone := models.Recipe{
		ID:         newID,
		Name:       name,
		Style:      src.Style,
		Status:     "draft",
		BatchSize:  src.BatchSize,
		BatchUnit:  src.BatchUnit,
		BoilTime:   src.BoilTime,
		Efficiency: src.Efficiency,
		Units:      src.Units,
		Notes:      src.Notes,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&clone).Error; err != nil {
			return fmt.Errorf("recipe: clone %s: %w", id, err)
		}
		for _, ri := range src.Ingredients {
			line := models.RecipeIngredient{
				RecipeID:     newID,
				IngredientID: ri.IngredientID,
				Amount:       ri.Amount,
				Unit:         ri.Unit,
				Use:          ri.Use,
				Time:         ri.Time,
				TimeUnit:     ri.TimeUnit,
				SortOrder:    ri.SortOrder,
			}
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("recipe: clone line for %s: %w", ri.IngredientID, err)
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

// isValidTransition checks whether a status transition is allowed.
func isValidTransition(from, to string) bool {
	valid, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	for _, v := range valid {
		if v == to {
			return true
		}
	}
	return false
}

// applyUpdates copies known update keys onto the in-memory row for
// re-validation. Unknown keys pass through to GORM untouched.
func applyUpdates(r *models.Recipe, updates map[string]interface{}) error {
	for key, val := range updates {
		switch key {
		case "name", "style", "status", "notes", "units", "batch_unit":
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("recipe: %s must be a string", key)
			}
			switch key {
			case "name":
				r.Name = s
			case "style":
				r.Style = s
			case "status":
				r.Status = s
			case "notes":
				r.Notes = s
			case "units":
				r.Units = s
			case "batch_unit":
				r.BatchUnit = s
			}
		case "batch_size", "boil_time", "efficiency":
			f, ok := val.(float64)
			if !ok {
				return fmt.Errorf("recipe: %s must be a number", key)
			}
			switch key {
			case "batch_size":
				r.BatchSize = f
			case "boil_time":
				r.BoilTime = f
			case "efficiency":
				r.Efficiency = f
			}
		}
	}
	return nil
}

// validateProcess checks the recipe-level fields every calculation depends
// on, using the same ranges the engine enforces.
func validateProcess(r *models.Recipe) error {
	if r.Name == "" {
		return fmt.Errorf("recipe: name is required")
	}
	if r.BatchSize <= 0 {
		return fmt.Errorf("%w: %v", brewcalc.ErrInvalidBatchSize, r.BatchSize)
	}
	if units.Kind(units.Unit(r.BatchUnit)) != units.KindVolume {
		return fmt.Errorf("recipe: batch unit: %w: %q", units.ErrUnsupportedUnit, r.BatchUnit)
	}
	if r.BoilTime < 0 {
		return fmt.Errorf("recipe: boil time must not be negative: %v", r.BoilTime)
	}
	if r.Efficiency <= 0 || r.Efficiency > 100 {
		return fmt.Errorf("recipe: efficiency must be in (0, 100]: %v", r.Efficiency)
	}
	if !units.ValidSystem(units.System(r.Units)) {
		return fmt.Errorf("recipe: units must be imperial or metric, got %q", r.Units)
	}
	return nil
}

// touchesMetrics reports whether an update changes an input to the metric
// pipeline. Display preferences (units) and labels don't.
func touchesMetrics(updates map[string]interface{}) bool {
	for key := range updates {
		switch key {
		case "batch_size", "batch_unit", "boil_time", "efficiency":
			return true
		}
	}
	return false
}

// generateUniqueID generates an ID and retries once on collision.
func generateUniqueID(db *gorm.DB) (string, error) {
	for range 2 {
		id, err := GenerateID()
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("recipe: check ID uniqueness: %w", err)
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("recipe: failed to generate unique ID after retries")
}
