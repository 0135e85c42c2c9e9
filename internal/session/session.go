// Package session tracks brew days and fermentations. Finished sessions
// feed the attenuation analytics corpus; nothing here writes recipe
// metrics.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/mashtun/internal/models"
	"github.com/zulandar/mashtun/internal/recipe"
	"gorm.io/gorm"
)

// StartOpts holds parameters for starting a brew session.
type StartOpts struct {
	Notes string
}

// ListFilters holds optional filters for listing sessions.
type ListFilters struct {
	Status   string
	RecipeID string
}

// ValidTransitions maps each session status to its valid next statuses.
// dumped is reachable from anywhere but completed; nothing leaves a
// terminal status.
var ValidTransitions = map[string][]string{
	"planned":      {"brewing", "dumped"},
	"brewing":      {"fermenting", "dumped"},
	"fermenting":   {"stuck", "conditioning", "completed", "dumped"},
	"stuck":        {"fermenting", "conditioning", "completed", "dumped"},
	"conditioning": {"completed", "dumped"},
}

// readingStatuses are the statuses during which gravity readings make
// sense: wort exists and yeast may still be working.
var readingStatuses = map[string]bool{
	"brewing":      true,
	"fermenting":   true,
	"stuck":        true,
	"conditioning": true,
}

// GenerateID creates a unique session ID in brw-xxxxx format (5-char hex).
func GenerateID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: generate ID: %w", err)
	}
	return "brw-" + hex.EncodeToString(b)[:5], nil
}

// Start creates a planned session for a recipe, capturing the recipe's
// current OG as the target and its yeast line for later attenuation
// bookkeeping. A recipe without a computed snapshot gets one first.
func Start(db *gorm.DB, recipeID string, opts StartOpts) (*models.BrewSession, error) {
	r, err := recipe.Get(db, recipeID)
	if err != nil {
		return nil, err
	}

	plannedOG := r.OG
	if r.MetricsAt == nil {
		m, err := recipe.Recompute(db, recipeID)
		if err != nil {
			return nil, err
		}
		plannedOG = m.OG
	}

	var yeastID string
	for _, ri := range r.Ingredients {
		if ri.Ingredient.Type == "yeast" {
			yeastID = ri.IngredientID
			break
		}
	}

	id, err := generateUniqueID(db)
	if err != nil {
		return nil, err
	}

	s := models.BrewSession{
		ID:        id,
		RecipeID:  recipeID,
		Status:    "planned",
		YeastID:   yeastID,
		PlannedOG: plannedOG,
		Notes:     opts.Notes,
	}
	if err := db.Create(&s).Error; err != nil {
		return nil, fmt.Errorf("session: create: %w", err)
	}
	return &s, nil
}

// Get retrieves a session by ID with its recipe and readings, oldest
// reading first.
func Get(db *gorm.DB, id string) (*models.BrewSession, error) {
	var s models.BrewSession
	err := db.
		Preload("Recipe").
		Preload("Readings", func(db *gorm.DB) *gorm.DB {
			return db.Order("taken_at ASC, id ASC")
		}).
		Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session: not found: %s", id)
		}
		return nil, fmt.Errorf("session: get %s: %w", id, err)
	}
	return &s, nil
}

// List returns sessions matching the given filters, oldest first.
func List(db *gorm.DB, filters ListFilters) ([]models.BrewSession, error) {
	q := db.Model(&models.BrewSession{})

	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.RecipeID != "" {
		q = q.Where("recipe_id = ?", filters.RecipeID)
	}

	var sessions []models.BrewSession
	if err := q.Order("created_at ASC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("session: list: %w", err)
	}
	return sessions, nil
}

// Transition moves a session to a new status, stamping BrewedAt when the
// boil starts and CompletedAt when the beer is done.
func Transition(db *gorm.DB, id, newStatus string) error {
	var s models.BrewSession
	if err := db.Where("id = ?", id).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("session: not found: %s", id)
		}
		return fmt.Errorf("session: get %s: %w", id, err)
	}

	if !isValidTransition(s.Status, newStatus) {
		valid := ValidTransitions[s.Status]
		return fmt.Errorf("session: invalid status transition from %q to %q; valid transitions: %v", s.Status, newStatus, valid)
	}

	updates := map[string]interface{}{"status": newStatus}
	now := time.Now()
	if newStatus == "brewing" {
		updates["brewed_at"] = now
	}
	if newStatus == "completed" {
		updates["completed_at"] = now
	}

	if err := db.Model(&models.BrewSession{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("session: update %s: %w", id, err)
	}
	return nil
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

// generateUniqueID generates an ID and retries once on collision.
func generateUniqueID(db *gorm.DB) (string, error) {
	for range 2 {
		id, err := GenerateID()
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(&models.BrewSession{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("session: check ID uniqueness: %w", err)
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("session: failed to generate unique ID after retries")
}
