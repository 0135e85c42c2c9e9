package cellar

import (
	"strings"
	"testing"
	"time"

	"github.com/zulandar/mashtun/internal/analytics"
	"github.com/zulandar/mashtun/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openDigestTestDB opens an in-memory SQLite DB with the tables needed for
// digest queries (sessions, readings, alerts, yeast stats).
func openDigestTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Ingredient{},
		&models.Recipe{},
		&models.BrewSession{},
		&models.GravityReading{},
		&models.Alert{},
		&models.AttenuationStat{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func ptr(t time.Time) *time.Time { return &t }

// ---------------------------------------------------------------------------
// BuildDailyDigest
// ---------------------------------------------------------------------------

func TestBuildDailyDigest_NoActivity(t *testing.T) {
	db := openDigestTestDB(t)
	w, _ := NewWatcher(WatcherOpts{DB: db})

	evt, err := w.BuildDailyDigest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evt != nil {
		t.Errorf("expected nil when no activity, got %v", evt)
	}
}

func TestBuildDailyDigest_WithActivity(t *testing.T) {
	db := openDigestTestDB(t)
	now := time.Now()
	recent := now.Add(-2 * time.Hour)

	// Activity: a brew day, a finished batch, a gravity reading, an alert.
	db.Create(&models.Recipe{ID: "rcp-00001", Name: "Amber Ale", BatchSize: 5})
	db.Create(&models.BrewSession{ID: "brw-00001", RecipeID: "rcp-00001",
		Status: "fermenting", BrewedAt: ptr(recent)})
	db.Create(&models.BrewSession{ID: "brw-00002", RecipeID: "rcp-00001",
		Status: "completed", CompletedAt: ptr(recent)})
	db.Create(&models.GravityReading{SessionID: "brw-00001", Gravity: 1.050, TakenAt: recent})
	db.Create(&models.Alert{SessionID: "brw-00001", Kind: AlertTempHigh, CreatedAt: recent})

	w, _ := NewWatcher(WatcherOpts{DB: db})
	evt, err := w.BuildDailyDigest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evt == nil {
		t.Fatal("expected event, got nil")
	}
	if evt.Type != EventDailyDigest {
		t.Errorf("type = %v, want %v", evt.Type, EventDailyDigest)
	}
	if evt.Title != "Daily Cellar Digest" {
		t.Errorf("title = %q, want 'Daily Cellar Digest'", evt.Title)
	}
	if evt.Body == "" {
		t.Error("expected non-empty body")
	}
}

func TestBuildDailyDigest_OldActivitySuppressed(t *testing.T) {
	db := openDigestTestDB(t)
	old := time.Now().Add(-48 * time.Hour)

	// All activity is older than 24 hours.
	db.Create(&models.Recipe{ID: "rcp-00001", Name: "Amber Ale", BatchSize: 5})
	db.Create(&models.BrewSession{ID: "brw-00001", RecipeID: "rcp-00001",
		Status: "completed", BrewedAt: ptr(old.Add(-24 * time.Hour)), CompletedAt: ptr(old)})
	db.Create(&models.GravityReading{SessionID: "brw-00001", Gravity: 1.012, TakenAt: old})

	w, _ := NewWatcher(WatcherOpts{DB: db})
	evt, err := w.BuildDailyDigest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evt != nil {
		t.Errorf("expected nil for old activity, got %v", evt)
	}
}

// ---------------------------------------------------------------------------
// BuildWeeklyDigest
// ---------------------------------------------------------------------------

func TestBuildWeeklyDigest_NoActivity(t *testing.T) {
	db := openDigestTestDB(t)
	w, _ := NewWatcher(WatcherOpts{DB: db})

	evt, err := w.BuildWeeklyDigest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evt != nil {
		t.Errorf("expected nil when no activity, got %v", evt)
	}
}

func TestBuildWeeklyDigest_WithActivity(t *testing.T) {
	db := openDigestTestDB(t)
	now := time.Now()
	recent := now.Add(-3 * 24 * time.Hour)

	db.Create(&models.Recipe{ID: "rcp-00001", Name: "Oatmeal Stout", BatchSize: 5})
	db.Create(&models.BrewSession{ID: "brw-00001", RecipeID: "rcp-00001",
		Status: "completed", BrewedAt: ptr(recent.Add(-10 * 24 * time.Hour)), CompletedAt: ptr(recent),
		MeasuredOG: 1.050, MeasuredFG: 1.012})
	db.Create(&models.GravityReading{SessionID: "brw-00001", Gravity: 1.012, TakenAt: recent})

	w, _ := NewWatcher(WatcherOpts{DB: db})
	evt, err := w.BuildWeeklyDigest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evt == nil {
		t.Fatal("expected event, got nil")
	}
	if evt.Type != EventWeeklyDigest {
		t.Errorf("type = %v, want %v", evt.Type, EventWeeklyDigest)
	}
	if evt.Title != "Weekly Cellar Digest" {
		t.Errorf("title = %q, want 'Weekly Cellar Digest'", evt.Title)
	}
}

func TestBuildWeeklyDigest_OldActivitySuppressed(t *testing.T) {
	db := openDigestTestDB(t)
	old := time.Now().Add(-14 * 24 * time.Hour)

	db.Create(&models.Recipe{ID: "rcp-00001", Name: "Oatmeal Stout", BatchSize: 5})
	db.Create(&models.BrewSession{ID: "brw-00001", RecipeID: "rcp-00001",
		Status: "completed", BrewedAt: ptr(old), CompletedAt: ptr(old)})

	w, _ := NewWatcher(WatcherOpts{DB: db})
	evt, err := w.BuildWeeklyDigest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evt != nil {
		t.Errorf("expected nil for old activity, got %v", evt)
	}
}

// ---------------------------------------------------------------------------
// buildDailyReport
// ---------------------------------------------------------------------------

func TestBuildDailyReport_Counts(t *testing.T) {
	db := openDigestTestDB(t)
	now := time.Now()
	since := now.Add(-24 * time.Hour)
	mid := now.Add(-6 * time.Hour)

	db.Create(&models.Recipe{ID: "rcp-00001", Name: "Amber Ale", BatchSize: 5})

	// 2 brewed in the window, 1 completed, 1 still conditioning from before.
	db.Create(&models.BrewSession{ID: "brw-00001", RecipeID: "rcp-00001",
		Status: "fermenting", BrewedAt: ptr(mid)})
	db.Create(&models.BrewSession{ID: "brw-00002", RecipeID: "rcp-00001",
		Status: "fermenting", BrewedAt: ptr(mid.Add(time.Hour))})
	db.Create(&models.BrewSession{ID: "brw-00003", RecipeID: "rcp-00001",
		Status: "completed", BrewedAt: ptr(mid.Add(-10 * 24 * time.Hour)), CompletedAt: ptr(mid)})
	db.Create(&models.BrewSession{ID: "brw-00004", RecipeID: "rcp-00001",
		Status: "conditioning", BrewedAt: ptr(mid.Add(-5 * 24 * time.Hour))})

	// 3 readings in the window, 1 outside it.
	db.Create(&models.GravityReading{SessionID: "brw-00001", Gravity: 1.050, TakenAt: mid})
	db.Create(&models.GravityReading{SessionID: "brw-00001", Gravity: 1.042, TakenAt: mid.Add(2 * time.Hour)})
	db.Create(&models.GravityReading{SessionID: "brw-00004", Gravity: 1.011, TakenAt: mid.Add(time.Hour)})
	db.Create(&models.GravityReading{SessionID: "brw-00004", Gravity: 1.015, TakenAt: since.Add(-time.Hour)})

	// 2 alerts in the window.
	db.Create(&models.Alert{SessionID: "brw-00001", Kind: AlertTempHigh, CreatedAt: mid})
	db.Create(&models.Alert{SessionID: "brw-00004", Kind: AlertTempLow, CreatedAt: mid.Add(time.Hour)})

	report, err := buildDailyReport(db, since, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SessionsBrewed != 2 {
		t.Errorf("SessionsBrewed = %d, want 2", report.SessionsBrewed)
	}
	if report.SessionsCompleted != 1 {
		t.Errorf("SessionsCompleted = %d, want 1", report.SessionsCompleted)
	}
	if report.ReadingsLogged != 3 {
		t.Errorf("ReadingsLogged = %d, want 3", report.ReadingsLogged)
	}
	if report.AlertsRaised != 2 {
		t.Errorf("AlertsRaised = %d, want 2", report.AlertsRaised)
	}
	// brw-00001, brw-00002 fermenting + brw-00004 conditioning.
	if report.ActiveCount != 3 {
		t.Errorf("ActiveCount = %d, want 3", report.ActiveCount)
	}
}

func TestBuildDailyReport_PeriodBoundaries(t *testing.T) {
	db := openDigestTestDB(t)
	now := time.Now()
	since := now.Add(-24 * time.Hour)

	// Session completed before the window.
	db.Create(&models.Recipe{ID: "rcp-00001", Name: "Amber Ale", BatchSize: 5})
	db.Create(&models.BrewSession{ID: "brw-00001", RecipeID: "rcp-00001",
		Status: "completed", CompletedAt: ptr(since.Add(-time.Hour))})

	report, err := buildDailyReport(db, since, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SessionsCompleted != 0 {
		t.Errorf("SessionsCompleted = %d, want 0 (outside window)", report.SessionsCompleted)
	}
}

// ---------------------------------------------------------------------------
// buildWeeklyReport
// ---------------------------------------------------------------------------

func TestBuildWeeklyReport_AvgAttenuation(t *testing.T) {
	db := openDigestTestDB(t)
	now := time.Now()
	since := now.Add(-7 * 24 * time.Hour)
	mid := now.Add(-3 * 24 * time.Hour)

	db.Create(&models.Recipe{ID: "rcp-00001", Name: "Amber Ale", BatchSize: 5})

	// Two finished batches: 80% and 66.7% apparent attenuation.
	db.Create(&models.BrewSession{ID: "brw-00001", RecipeID: "rcp-00001",
		Status: "completed", CompletedAt: ptr(mid),
		MeasuredOG: 1.050, MeasuredFG: 1.010})
	db.Create(&models.BrewSession{ID: "brw-00002", RecipeID: "rcp-00001",
		Status: "completed", CompletedAt: ptr(mid.Add(time.Hour)),
		MeasuredOG: 1.060, MeasuredFG: 1.020})

	report, err := buildWeeklyReport(db, since, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SessionsCompleted != 2 {
		t.Errorf("SessionsCompleted = %d, want 2", report.SessionsCompleted)
	}
	if report.AvgAttenuation < 73.3 || report.AvgAttenuation > 73.4 {
		t.Errorf("AvgAttenuation = %v, want ~73.33", report.AvgAttenuation)
	}
}

func TestBuildWeeklyReport_SkipsUnmeasuredSessions(t *testing.T) {
	db := openDigestTestDB(t)
	now := time.Now()
	since := now.Add(-7 * 24 * time.Hour)
	mid := now.Add(-2 * 24 * time.Hour)

	db.Create(&models.Recipe{ID: "rcp-00001", Name: "Amber Ale", BatchSize: 5})

	// Completed but the brewer never logged gravities.
	db.Create(&models.BrewSession{ID: "brw-00001", RecipeID: "rcp-00001",
		Status: "completed", CompletedAt: ptr(mid)})

	report, err := buildWeeklyReport(db, since, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.AvgAttenuation != 0 {
		t.Errorf("AvgAttenuation = %v, want 0 for unmeasured sessions", report.AvgAttenuation)
	}
}

func TestBuildWeeklyReport_StuckCount(t *testing.T) {
	db := openDigestTestDB(t)
	now := time.Now()
	since := now.Add(-7 * 24 * time.Hour)

	db.Create(&models.Recipe{ID: "rcp-00001", Name: "Saison", BatchSize: 5})
	db.Create(&models.BrewSession{ID: "brw-00001", RecipeID: "rcp-00001",
		Status: "stuck", BrewedAt: ptr(now.Add(-4 * 24 * time.Hour))})
	db.Create(&models.BrewSession{ID: "brw-00002", RecipeID: "rcp-00001",
		Status: "fermenting", BrewedAt: ptr(now.Add(-2 * 24 * time.Hour))})

	report, err := buildWeeklyReport(db, since, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.StuckCount != 1 {
		t.Errorf("StuckCount = %d, want 1", report.StuckCount)
	}
}

// ---------------------------------------------------------------------------
// buildYeastDivergences
// ---------------------------------------------------------------------------

func TestBuildYeastDivergences_AboveThreshold(t *testing.T) {
	db := openDigestTestDB(t)
	db.Create(&models.Ingredient{ID: "ing-yeast", Name: "SafAle US-05", Type: "yeast",
		Attenuation: 75})
	db.Create(&models.AttenuationStat{IngredientID: "ing-yeast",
		SampleCount: 4, AvgAttenuation: 81, Confidence: "low"})

	divergences, err := buildYeastDivergences(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(divergences) != 1 {
		t.Fatalf("expected 1 divergence, got %d", len(divergences))
	}
	d := divergences[0]
	if d.Name != "SafAle US-05" {
		t.Errorf("name = %q, want %q", d.Name, "SafAle US-05")
	}
	if d.Published != 75 {
		t.Errorf("published = %v, want 75", d.Published)
	}
	if d.Observed != 81 {
		t.Errorf("observed = %v, want 81", d.Observed)
	}
	if d.Samples != 4 {
		t.Errorf("samples = %d, want 4", d.Samples)
	}
	if d.Diff.Direction != "higher" {
		t.Errorf("direction = %q, want %q", d.Diff.Direction, "higher")
	}
	if d.Diff.Magnitude != 6 {
		t.Errorf("magnitude = %v, want 6", d.Diff.Magnitude)
	}
}

func TestBuildYeastDivergences_BelowThresholdExcluded(t *testing.T) {
	db := openDigestTestDB(t)
	db.Create(&models.Ingredient{ID: "ing-yeast", Name: "SafAle US-05", Type: "yeast",
		Attenuation: 75})
	db.Create(&models.AttenuationStat{IngredientID: "ing-yeast",
		SampleCount: 6, AvgAttenuation: 76, Confidence: "medium"})

	divergences, err := buildYeastDivergences(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(divergences) != 0 {
		t.Errorf("expected 0 divergences below threshold, got %d", len(divergences))
	}
}

func TestBuildYeastDivergences_NoPublishedFigureExcluded(t *testing.T) {
	db := openDigestTestDB(t)
	// Lab publishes no attenuation; nothing to diverge from.
	db.Create(&models.Ingredient{ID: "ing-yeast", Name: "Mystery Strain", Type: "yeast"})
	db.Create(&models.AttenuationStat{IngredientID: "ing-yeast",
		SampleCount: 8, AvgAttenuation: 82, Confidence: "medium"})

	divergences, err := buildYeastDivergences(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(divergences) != 0 {
		t.Errorf("expected 0 divergences without published figure, got %d", len(divergences))
	}
}

// ---------------------------------------------------------------------------
// Formatting
// ---------------------------------------------------------------------------

func TestFormatDaily_ContainsExpectedFields(t *testing.T) {
	now := time.Now()
	report := &DailyReport{
		PeriodStart:       now.Add(-24 * time.Hour),
		PeriodEnd:         now,
		SessionsBrewed:    1,
		SessionsCompleted: 2,
		ReadingsLogged:    5,
		AlertsRaised:      1,
		ActiveCount:       3,
	}
	e := FormatDaily(report)
	if e.Title != "Daily Cellar Digest" {
		t.Errorf("title = %q, want 'Daily Cellar Digest'", e.Title)
	}
	if !strings.Contains(e.Body, "1 brewed, 2 completed") {
		t.Errorf("body = %q, want batch counts", e.Body)
	}
	if !strings.Contains(e.Body, "5 logged") {
		t.Errorf("body = %q, want reading count", e.Body)
	}
	if !strings.Contains(e.Body, "1 raised") {
		t.Errorf("body = %q, want alert count", e.Body)
	}
	if !strings.Contains(e.Body, "3 active") {
		t.Errorf("body = %q, want active count", e.Body)
	}

	names := map[string]string{}
	for _, f := range e.Fields {
		names[f.Name] = f.Value
	}
	if names["Brewed"] != "1" {
		t.Errorf("Brewed field = %q, want 1", names["Brewed"])
	}
	if names["Alerts"] != "1" {
		t.Errorf("Alerts field = %q, want 1", names["Alerts"])
	}
}

func TestFormatDaily_NoAlertsLine(t *testing.T) {
	report := &DailyReport{
		PeriodStart:    time.Now().Add(-24 * time.Hour),
		PeriodEnd:      time.Now(),
		SessionsBrewed: 1,
	}
	e := FormatDaily(report)
	if strings.Contains(e.Body, "Alerts") {
		t.Errorf("body should omit alerts line when none raised, got %q", e.Body)
	}
	for _, f := range e.Fields {
		if f.Name == "Alerts" {
			t.Error("should not include Alerts field when none raised")
		}
	}
}

func TestFormatWeekly_ContainsExpectedFields(t *testing.T) {
	now := time.Now()
	report := &WeeklyReport{
		PeriodStart:       now.Add(-7 * 24 * time.Hour),
		PeriodEnd:         now,
		SessionsBrewed:    2,
		SessionsCompleted: 1,
		ReadingsLogged:    12,
		StuckCount:        1,
		AvgAttenuation:    74.5,
	}
	e := FormatWeekly(report)
	if e.Title != "Weekly Cellar Digest" {
		t.Errorf("title = %q, want 'Weekly Cellar Digest'", e.Title)
	}
	if !strings.Contains(e.Body, "2 brewed, 1 completed") {
		t.Errorf("body = %q, want batch counts", e.Body)
	}
	if !strings.Contains(e.Body, "**Stuck**: 1") {
		t.Errorf("body = %q, want stuck count", e.Body)
	}
	if !strings.Contains(e.Body, "74.5%") {
		t.Errorf("body = %q, want avg attenuation", e.Body)
	}
}

func TestFormatWeekly_DivergenceLines(t *testing.T) {
	report := &WeeklyReport{
		PeriodStart:    time.Now().Add(-7 * 24 * time.Hour),
		PeriodEnd:      time.Now(),
		SessionsBrewed: 1,
		Divergences: []YeastDivergence{
			{Name: "SafAle US-05", Published: 75, Observed: 81, Samples: 4,
				Diff: analytics.Difference{Direction: "higher", Magnitude: 6}},
		},
	}
	e := FormatWeekly(report)
	if !strings.Contains(e.Body, "Yeast vs. published") {
		t.Errorf("body = %q, want divergence header", e.Body)
	}
	if !strings.Contains(e.Body, "SafAle US-05: 81.0% observed over 4 batches") {
		t.Errorf("body = %q, want divergence line", e.Body)
	}
	if !strings.Contains(e.Body, "6.0 points higher than published") {
		t.Errorf("body = %q, want formatted difference", e.Body)
	}
}

func TestFormatWeekly_NoDivergenceSection(t *testing.T) {
	report := &WeeklyReport{
		PeriodStart:    time.Now().Add(-7 * 24 * time.Hour),
		PeriodEnd:      time.Now(),
		SessionsBrewed: 1,
	}
	e := FormatWeekly(report)
	if strings.Contains(e.Body, "Yeast vs. published") {
		t.Errorf("body should omit divergence section when empty, got %q", e.Body)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{90 * time.Minute, "1h 30m"},
		{2 * time.Hour, "2h 0m"},
		{25 * time.Hour, "1d 1h"},
		{48 * time.Hour, "2d 0h"},
		{75 * time.Hour, "3d 3h"},
	}
	for _, tt := range tests {
		got := formatDuration(tt.d)
		if got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Event type constants
// ---------------------------------------------------------------------------

func TestDigestEventTypes(t *testing.T) {
	if EventDailyDigest != "daily_digest" {
		t.Errorf("EventDailyDigest = %q, want 'daily_digest'", EventDailyDigest)
	}
	if EventWeeklyDigest != "weekly_digest" {
		t.Errorf("EventWeeklyDigest = %q, want 'weekly_digest'", EventWeeklyDigest)
	}
}
