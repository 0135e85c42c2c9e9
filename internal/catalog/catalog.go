// Package catalog provides ingredient catalog operations.
package catalog

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zulandar/mashtun/internal/brewcalc"
	"github.com/zulandar/mashtun/internal/models"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for adding a catalog ingredient. Only the
// attributes matching Type are validated; the rest should stay zero.
type CreateOpts struct {
	Name   string
	Type   string // grain, hop, yeast, other
	Origin string
	Notes  string

	Potential   float64 // fermentables: gravity points per pound per gallon
	Lovibond    float64 // fermentables: color, °L
	AlphaAcid   float64 // hops: alpha acid percent
	Attenuation float64 // yeast: published attenuation percent, 0 = unpublished
	MinTemp     float64 // yeast: °F
	MaxTemp     float64 // yeast: °F
}

// ListFilters holds optional filters for listing ingredients.
type ListFilters struct {
	Type string
	Name string // substring match
}

// GenerateID creates a unique ingredient ID in ing-xxxxx format (5-char hex).
func GenerateID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("catalog: generate ID: %w", err)
	}
	return "ing-" + hex.EncodeToString(b)[:5], nil
}

// Create adds an ingredient with an auto-generated ID. Type-specific
// attributes are validated against their allowed ranges.
func Create(db *gorm.DB, opts CreateOpts) (*models.Ingredient, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("catalog: name is required")
	}
	if opts.Type == "" {
		return nil, fmt.Errorf("catalog: type is required")
	}

	ing := models.Ingredient{
		Name:        opts.Name,
		Type:        opts.Type,
		Origin:      opts.Origin,
		Notes:       opts.Notes,
		Potential:   opts.Potential,
		Lovibond:    opts.Lovibond,
		AlphaAcid:   opts.AlphaAcid,
		Attenuation: opts.Attenuation,
		MinTemp:     opts.MinTemp,
		MaxTemp:     opts.MaxTemp,
	}
	if err := validateAttributes(&ing); err != nil {
		return nil, err
	}

	id, err := generateUniqueID(db)
	if err != nil {
		return nil, err
	}
	ing.ID = id

	if err := db.Create(&ing).Error; err != nil {
		return nil, fmt.Errorf("catalog: create: %w", err)
	}
	return &ing, nil
}

// Get retrieves an ingredient by ID.
func Get(db *gorm.DB, id string) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := db.Where("id = ?", id).First(&ing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("catalog: not found: %s", id)
		}
		return nil, fmt.Errorf("catalog: get %s: %w", id, err)
	}
	return &ing, nil
}

// List returns ingredients matching the given filters, ordered by type
// then name.
func List(db *gorm.DB, filters ListFilters) ([]models.Ingredient, error) {
	q := db.Model(&models.Ingredient{})

	if filters.Type != "" {
		q = q.Where("type = ?", filters.Type)
	}
	if filters.Name != "" {
		q = q.Where("name LIKE ?", "%"+filters.Name+"%")
	}

	var ings []models.Ingredient
	if err := q.Order("type ASC, name ASC").Find(&ings).Error; err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return ings, nil
}

// Update modifies ingredient fields. The merged result is re-validated, so
// a partial update can't leave the row outside its type's ranges.
func Update(db *gorm.DB, id string, updates map[string]interface{}) error {
	ing, err := Get(db, id)
	if err != nil {
		return err
	}

	merged := *ing
	if err := applyUpdates(&merged, updates); err != nil {
		return err
	}
	if err := validateAttributes(&merged); err != nil {
		return err
	}

	if err := db.Model(&models.Ingredient{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("catalog: update %s: %w", id, err)
	}
	return nil
}

// applyUpdates copies known update keys onto the in-memory row for
// re-validation. Unknown keys pass through to GORM untouched.
func applyUpdates(ing *models.Ingredient, updates map[string]interface{}) error {
	for key, val := range updates {
		switch key {
		case "name", "type", "origin", "notes":
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("catalog: %s must be a string", key)
			}
			switch key {
			case "name":
				ing.Name = s
			case "type":
				ing.Type = s
			case "origin":
				ing.Origin = s
			case "notes":
				ing.Notes = s
			}
		case "potential", "lovibond", "alpha_acid", "attenuation", "min_temp", "max_temp":
			f, ok := val.(float64)
			if !ok {
				return fmt.Errorf("catalog: %s must be a number", key)
			}
			switch key {
			case "potential":
				ing.Potential = f
			case "lovibond":
				ing.Lovibond = f
			case "alpha_acid":
				ing.AlphaAcid = f
			case "attenuation":
				ing.Attenuation = f
			case "min_temp":
				ing.MinTemp = f
			case "max_temp":
				ing.MaxTemp = f
			}
		}
	}
	if ing.Name == "" {
		return fmt.Errorf("catalog: name is required")
	}
	return nil
}

// validateAttributes checks the type-specific attribute ranges. Attributes
// that don't apply to the ingredient's type are ignored.
func validateAttributes(ing *models.Ingredient) error {
	switch brewcalc.IngredientType(ing.Type) {
	case brewcalc.Grain, brewcalc.Other:
		if ing.Potential < 1 || ing.Potential > 100 {
			return fmt.Errorf("catalog: %s: potential must be in [1, 100] ppg, got %v", ing.Name, ing.Potential)
		}
		if ing.Lovibond < 0 || ing.Lovibond > 600 {
			return fmt.Errorf("catalog: %s: color must be in [0, 600] °L, got %v", ing.Name, ing.Lovibond)
		}
	case brewcalc.Hop:
		if ing.AlphaAcid <= 0 || ing.AlphaAcid > 25 {
			return fmt.Errorf("catalog: %s: alpha acid must be in (0, 25] percent, got %v", ing.Name, ing.AlphaAcid)
		}
	case brewcalc.Yeast:
		if ing.Attenuation < 0 || ing.Attenuation > 100 {
			return fmt.Errorf("catalog: %s: attenuation must be in (0, 100] percent, got %v", ing.Name, ing.Attenuation)
		}
		if ing.MinTemp < 0 || ing.MaxTemp < 0 {
			return fmt.Errorf("catalog: %s: temperature range must not be negative", ing.Name)
		}
		if ing.MinTemp > 0 && ing.MaxTemp > 0 && ing.MinTemp > ing.MaxTemp {
			return fmt.Errorf("catalog: %s: min temperature %v exceeds max %v", ing.Name, ing.MinTemp, ing.MaxTemp)
		}
	default:
		return fmt.Errorf("%w: %q", brewcalc.ErrUnrecognizedType, ing.Type)
	}
	return nil
}

// generateUniqueID generates an ID and retries once on collision.
func generateUniqueID(db *gorm.DB) (string, error) {
	for range 2 {
		id, err := GenerateID()
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(&models.Ingredient{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("catalog: check ID uniqueness: %w", err)
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("catalog: failed to generate unique ID after retries")
}
