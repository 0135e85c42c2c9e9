package cellar

import (
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/mashtun/internal/analytics"
	"github.com/zulandar/mashtun/internal/models"
	"github.com/zulandar/mashtun/internal/session"
	"gorm.io/gorm"
)

// Event types for digests.
const (
	EventDailyDigest  EventType = "daily_digest"
	EventWeeklyDigest EventType = "weekly_digest"
)

// divergenceThreshold is the minimum gap, in attenuation percentage points,
// between observed and published attenuation before a yeast makes the digest.
const divergenceThreshold = 2.0

// DailyReport holds computed metrics for a 24-hour period.
type DailyReport struct {
	PeriodStart       time.Time
	PeriodEnd         time.Time
	SessionsBrewed    int
	SessionsCompleted int
	ReadingsLogged    int
	AlertsRaised      int
	ActiveCount       int
}

// WeeklyReport holds computed metrics for a 7-day period.
type WeeklyReport struct {
	PeriodStart       time.Time
	PeriodEnd         time.Time
	SessionsBrewed    int
	SessionsCompleted int
	ReadingsLogged    int
	StuckCount        int
	AvgAttenuation    float64
	Divergences       []YeastDivergence
}

// YeastDivergence is one yeast whose observed attenuation has drifted from
// the published figure.
type YeastDivergence struct {
	Name      string
	Published float64
	Observed  float64
	Samples   int
	Diff      analytics.Difference
}

// BuildDailyDigest queries the DB for the last 24 hours and returns a
// DetectedEvent with the daily report. Returns nil when no activity.
func (w *Watcher) BuildDailyDigest() (*DetectedEvent, error) {
	now := time.Now()
	since := now.Add(-24 * time.Hour)

	report, err := buildDailyReport(w.db, since, now)
	if err != nil {
		return nil, fmt.Errorf("cellar: daily digest: %w", err)
	}

	// Suppress when no activity.
	if report.SessionsBrewed == 0 && report.SessionsCompleted == 0 &&
		report.ReadingsLogged == 0 && report.AlertsRaised == 0 {
		return nil, nil
	}

	formatted := FormatDaily(report)
	return &DetectedEvent{
		Type:      EventDailyDigest,
		Timestamp: now,
		Title:     formatted.Title,
		Body:      formatted.Body,
	}, nil
}

// BuildWeeklyDigest queries the DB for the last 7 days and returns a
// DetectedEvent with the weekly report. Returns nil when no activity.
func (w *Watcher) BuildWeeklyDigest() (*DetectedEvent, error) {
	now := time.Now()
	since := now.Add(-7 * 24 * time.Hour)

	report, err := buildWeeklyReport(w.db, since, now)
	if err != nil {
		return nil, fmt.Errorf("cellar: weekly digest: %w", err)
	}

	// Suppress when no activity.
	if report.SessionsBrewed == 0 && report.SessionsCompleted == 0 &&
		report.ReadingsLogged == 0 {
		return nil, nil
	}

	formatted := FormatWeekly(report)
	return &DetectedEvent{
		Type:      EventWeeklyDigest,
		Timestamp: now,
		Title:     formatted.Title,
		Body:      formatted.Body,
	}, nil
}

// buildDailyReport queries the database for metrics within the given range.
func buildDailyReport(db *gorm.DB, since, until time.Time) (*DailyReport, error) {
	report := &DailyReport{
		PeriodStart: since,
		PeriodEnd:   until,
	}

	var brewed int64
	if err := db.Model(&models.BrewSession{}).
		Where("brewed_at >= ? AND brewed_at < ?", since, until).
		Count(&brewed).Error; err != nil {
		return nil, err
	}
	report.SessionsBrewed = int(brewed)

	var completed int64
	db.Model(&models.BrewSession{}).
		Where("status = ? AND completed_at >= ? AND completed_at < ?", "completed", since, until).
		Count(&completed)
	report.SessionsCompleted = int(completed)

	var readings int64
	db.Model(&models.GravityReading{}).
		Where("taken_at >= ? AND taken_at < ?", since, until).
		Count(&readings)
	report.ReadingsLogged = int(readings)

	var alerts int64
	db.Model(&models.Alert{}).
		Where("created_at >= ? AND created_at < ?", since, until).
		Count(&alerts)
	report.AlertsRaised = int(alerts)

	var active int64
	db.Model(&models.BrewSession{}).
		Where("status IN ?", activeStatuses).
		Count(&active)
	report.ActiveCount = int(active)

	return report, nil
}

// buildWeeklyReport queries the database for metrics within the given range.
func buildWeeklyReport(db *gorm.DB, since, until time.Time) (*WeeklyReport, error) {
	report := &WeeklyReport{
		PeriodStart: since,
		PeriodEnd:   until,
	}

	var brewed int64
	if err := db.Model(&models.BrewSession{}).
		Where("brewed_at >= ? AND brewed_at < ?", since, until).
		Count(&brewed).Error; err != nil {
		return nil, err
	}
	report.SessionsBrewed = int(brewed)

	var completed int64
	db.Model(&models.BrewSession{}).
		Where("status = ? AND completed_at >= ? AND completed_at < ?", "completed", since, until).
		Count(&completed)
	report.SessionsCompleted = int(completed)

	var readings int64
	db.Model(&models.GravityReading{}).
		Where("taken_at >= ? AND taken_at < ?", since, until).
		Count(&readings)
	report.ReadingsLogged = int(readings)

	var stuck int64
	db.Model(&models.BrewSession{}).
		Where("status = ?", "stuck").
		Count(&stuck)
	report.StuckCount = int(stuck)

	// Average apparent attenuation over sessions completed in the period.
	// Computed in Go for portability across SQLite and MySQL.
	var finished []models.BrewSession
	db.Where("status = ? AND completed_at >= ? AND completed_at < ? AND measured_og > 1 AND measured_fg > 0",
		"completed", since, until).
		Find(&finished)
	if len(finished) > 0 {
		var sum float64
		for _, s := range finished {
			sum += session.ApparentAttenuation(s.MeasuredOG, s.MeasuredFG)
		}
		report.AvgAttenuation = sum / float64(len(finished))
	}

	divergences, err := buildYeastDivergences(db)
	if err != nil {
		return nil, err
	}
	report.Divergences = divergences

	return report, nil
}

// buildYeastDivergences joins the attenuation stats with the catalog and
// keeps yeasts whose observed average strays from the published figure by
// at least divergenceThreshold points.
func buildYeastDivergences(db *gorm.DB) ([]YeastDivergence, error) {
	var rows []struct {
		Name           string
		Attenuation    float64
		AvgAttenuation float64
		SampleCount    int
	}
	if err := db.Model(&models.AttenuationStat{}).
		Select("ingredients.name, ingredients.attenuation, attenuation_stats.avg_attenuation, attenuation_stats.sample_count").
		Joins("JOIN ingredients ON ingredients.id = attenuation_stats.ingredient_id").
		Where("ingredients.attenuation > 0").
		Order("ingredients.name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	var divergences []YeastDivergence
	for _, r := range rows {
		diff := analytics.CompareToSpec(r.Attenuation, r.AvgAttenuation)
		if diff.Magnitude < divergenceThreshold {
			continue
		}
		divergences = append(divergences, YeastDivergence{
			Name:      r.Name,
			Published: r.Attenuation,
			Observed:  r.AvgAttenuation,
			Samples:   r.SampleCount,
			Diff:      diff,
		})
	}
	return divergences, nil
}

// FormatDaily formats a daily digest report as a FormattedEvent.
func FormatDaily(report *DailyReport) FormattedEvent {
	var bodyLines []string
	bodyLines = append(bodyLines, fmt.Sprintf("**Period**: %s – %s",
		report.PeriodStart.Format("Jan 2 15:04"),
		report.PeriodEnd.Format("Jan 2 15:04")))
	bodyLines = append(bodyLines, fmt.Sprintf("**Batches**: %d brewed, %d completed",
		report.SessionsBrewed, report.SessionsCompleted))
	if report.ReadingsLogged > 0 {
		bodyLines = append(bodyLines, fmt.Sprintf("**Readings**: %d logged", report.ReadingsLogged))
	}
	if report.AlertsRaised > 0 {
		bodyLines = append(bodyLines, fmt.Sprintf("**Alerts**: %d raised", report.AlertsRaised))
	}
	bodyLines = append(bodyLines, fmt.Sprintf("**In the cellar**: %d active", report.ActiveCount))

	fields := []Field{
		{Name: "Brewed", Value: fmt.Sprintf("%d", report.SessionsBrewed), Short: true},
		{Name: "Completed", Value: fmt.Sprintf("%d", report.SessionsCompleted), Short: true},
		{Name: "Readings", Value: fmt.Sprintf("%d", report.ReadingsLogged), Short: true},
		{Name: "Active", Value: fmt.Sprintf("%d", report.ActiveCount), Short: true},
	}
	if report.AlertsRaised > 0 {
		fields = append(fields, Field{Name: "Alerts", Value: fmt.Sprintf("%d", report.AlertsRaised), Short: true})
	}

	return FormattedEvent{
		Title:    "Daily Cellar Digest",
		Body:     strings.Join(bodyLines, "\n"),
		Severity: "info",
		Color:    ColorInfo,
		Fields:   fields,
	}
}

// FormatWeekly formats a weekly digest report as a FormattedEvent.
func FormatWeekly(report *WeeklyReport) FormattedEvent {
	var bodyLines []string
	bodyLines = append(bodyLines, fmt.Sprintf("**Period**: %s – %s",
		report.PeriodStart.Format("Jan 2"),
		report.PeriodEnd.Format("Jan 2")))
	bodyLines = append(bodyLines, fmt.Sprintf("**Batches**: %d brewed, %d completed",
		report.SessionsBrewed, report.SessionsCompleted))
	if report.ReadingsLogged > 0 {
		bodyLines = append(bodyLines, fmt.Sprintf("**Readings**: %d logged", report.ReadingsLogged))
	}
	if report.StuckCount > 0 {
		bodyLines = append(bodyLines, fmt.Sprintf("**Stuck**: %d", report.StuckCount))
	}
	if report.AvgAttenuation > 0 {
		bodyLines = append(bodyLines, fmt.Sprintf("**Avg attenuation**: %.1f%%", report.AvgAttenuation))
	}

	if len(report.Divergences) > 0 {
		bodyLines = append(bodyLines, "")
		bodyLines = append(bodyLines, "**Yeast vs. published**:")
		for _, d := range report.Divergences {
			bodyLines = append(bodyLines, fmt.Sprintf("  %s: %.1f%% observed over %d batches, %s",
				d.Name, d.Observed, d.Samples, analytics.FormatDifference(d.Diff)))
		}
	}

	fields := []Field{
		{Name: "Brewed", Value: fmt.Sprintf("%d", report.SessionsBrewed), Short: true},
		{Name: "Completed", Value: fmt.Sprintf("%d", report.SessionsCompleted), Short: true},
	}
	if report.ReadingsLogged > 0 {
		fields = append(fields, Field{Name: "Readings", Value: fmt.Sprintf("%d", report.ReadingsLogged), Short: true})
	}
	if report.StuckCount > 0 {
		fields = append(fields, Field{Name: "Stuck", Value: fmt.Sprintf("%d", report.StuckCount), Short: true})
	}
	if report.AvgAttenuation > 0 {
		fields = append(fields, Field{Name: "Avg Attenuation", Value: fmt.Sprintf("%.1f%%", report.AvgAttenuation), Short: true})
	}

	return FormattedEvent{
		Title:    "Weekly Cellar Digest",
		Body:     strings.Join(bodyLines, "\n"),
		Severity: "info",
		Color:    ColorInfo,
		Fields:   fields,
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h >= 24 {
		days := h / 24
		h = h % 24
		return fmt.Sprintf("%dd %dh", days, h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
