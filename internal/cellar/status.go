package cellar

import (
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/mashtun/internal/models"
	"github.com/zulandar/mashtun/internal/session"
	"gorm.io/gorm"
)

// activeStatuses are the brew session statuses the cellar watches. Planned
// sessions have nothing in a fermenter yet; completed and dumped ones are
// history.
var activeStatuses = []string{"brewing", "fermenting", "stuck", "conditioning"}

// StatusProvider abstracts the cellar status query for testability.
type StatusProvider interface {
	Status() (*StatusInfo, error)
}

// StatusInfo is a point-in-time snapshot of everything in the cellar.
type StatusInfo struct {
	Sessions []SessionStatus
}

// SessionStatus summarizes one active brew session.
type SessionStatus struct {
	ID            string
	RecipeName    string
	Status        string
	PlannedOG     float64
	LatestGravity float64
	Attenuation   float64
	ReadingCount  int
	LastReadingAt time.Time
}

// defaultStatusProvider queries the database directly.
type defaultStatusProvider struct {
	db *gorm.DB
}

func (p *defaultStatusProvider) Status() (*StatusInfo, error) {
	return Status(p.db)
}

// Status builds a StatusInfo from all active brew sessions and their
// latest readings.
func Status(db *gorm.DB) (*StatusInfo, error) {
	var sessions []models.BrewSession
	if err := db.Where("status IN ?", activeStatuses).
		Preload("Recipe").
		Order("created_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("cellar: status: %w", err)
	}

	info := &StatusInfo{}
	for _, s := range sessions {
		prog, err := session.Progress(db, s.ID)
		if err != nil {
			return nil, fmt.Errorf("cellar: status: progress for %s: %w", s.ID, err)
		}
		info.Sessions = append(info.Sessions, SessionStatus{
			ID:            s.ID,
			RecipeName:    s.Recipe.Name,
			Status:        s.Status,
			PlannedOG:     prog.PlannedOG,
			LatestGravity: prog.CurrentGravity,
			Attenuation:   prog.Attenuation,
			ReadingCount:  prog.ReadingCount,
			LastReadingAt: prog.LastReadingAt,
		})
	}
	return info, nil
}

// FormatStatus renders a StatusInfo as chat-friendly text.
func FormatStatus(info *StatusInfo) string {
	if len(info.Sessions) == 0 {
		return "The cellar is empty. Nothing fermenting."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Cellar** (%d active)\n", len(info.Sessions)))
	for _, s := range info.Sessions {
		line := fmt.Sprintf("%s  %-12s %s", s.ID, s.Status, s.RecipeName)
		if s.LatestGravity > 0 {
			line += fmt.Sprintf("  SG %.3f", s.LatestGravity)
		}
		if s.Attenuation > 0 {
			line += fmt.Sprintf(" (%.0f%% attenuated)", s.Attenuation)
		}
		if s.ReadingCount == 0 {
			line += "  no readings yet"
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
