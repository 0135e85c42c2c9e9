package cellar

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/zulandar/mashtun/internal/models"
	"github.com/zulandar/mashtun/internal/session"
	"github.com/zulandar/mashtun/internal/units"
	"gorm.io/gorm"
)

// Default watcher intervals and stuck-fermentation thresholds.
const (
	DefaultPollInterval  = 5 * time.Minute
	DefaultPulseInterval = 30 * time.Minute
	DefaultStuckAfter    = 72 * time.Hour
	DefaultStuckDelta    = 0.001
)

// EventType identifies the kind of event detected by the watcher.
type EventType string

const (
	EventPhaseChange       EventType = "phase_change"
	EventStuckFermentation EventType = "stuck_fermentation"
	EventTempOutOfRange    EventType = "temp_out_of_range"
	EventPulse             EventType = "pulse"
)

// Alert kinds written to the alerts table.
const (
	AlertTempLow  = "temp_low"
	AlertTempHigh = "temp_high"
)

// DetectedEvent is a raw event detected by the watcher before formatting.
type DetectedEvent struct {
	Type      EventType
	Timestamp time.Time

	// Session events
	SessionID  string
	RecipeName string
	OldStatus  string
	NewStatus  string

	// Stuck events
	Gravity float64       // latest specific gravity
	Window  time.Duration // span the gravity failed to move over

	// Temperature events
	Kind        string  // alert kind (temp_low, temp_high)
	Temperature float64 // latest reading, converted to °F
	MinTemp     float64 // yeast range, °F
	MaxTemp     float64
	YeastName   string

	// Pulse and digest events
	Title string
	Body  string
}

// sessionSnapshot holds the last-known status of each session for change
// detection.
type sessionSnapshot struct {
	Status     string
	RecipeName string
}

// pulseDigest holds a snapshot of cellar activity for comparison. Readings
// carries the latest gravity per session so a pulse fires when fermentation
// actually moves, not just when counts change.
type pulseDigest struct {
	Brewing      int
	Fermenting   int
	Stuck        int
	Conditioning int
	Readings     string
}

// Watcher polls the database for session phase changes, stuck fermentations,
// and out-of-range temperatures. It emits DetectedEvents to a channel for
// formatting and delivery.
type Watcher struct {
	db             *gorm.DB
	statusProvider StatusProvider
	pollInterval   time.Duration
	pulseInterval  time.Duration
	stuckAfter     time.Duration
	stuckDelta     float64

	mu          sync.Mutex
	snapshot    map[string]sessionSnapshot // sessionID -> last-known state
	seeded      bool                       // true after first poll (baseline established)
	lastDigest  *pulseDigest               // last emitted pulse for comparison
	lastPulseAt time.Time                  // when the last pulse was emitted
}

// WatcherOpts holds parameters for creating a Watcher.
type WatcherOpts struct {
	DB             *gorm.DB
	StatusProvider StatusProvider // defaults to a direct database query
	PollInterval   time.Duration  // defaults to DefaultPollInterval
	PulseInterval  time.Duration  // defaults to DefaultPulseInterval
	StuckAfter     time.Duration  // defaults to DefaultStuckAfter
	StuckDelta     float64        // defaults to DefaultStuckDelta
}

// NewWatcher creates a Watcher.
func NewWatcher(opts WatcherOpts) (*Watcher, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("cellar: watcher: db is required")
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	pulse := opts.PulseInterval
	if pulse <= 0 {
		pulse = DefaultPulseInterval
	}
	stuckAfter := opts.StuckAfter
	if stuckAfter <= 0 {
		stuckAfter = DefaultStuckAfter
	}
	stuckDelta := opts.StuckDelta
	if stuckDelta <= 0 {
		stuckDelta = DefaultStuckDelta
	}
	sp := opts.StatusProvider
	if sp == nil {
		sp = &defaultStatusProvider{db: opts.DB}
	}
	return &Watcher{
		db:             opts.DB,
		statusProvider: sp,
		pollInterval:   poll,
		pulseInterval:  pulse,
		stuckAfter:     stuckAfter,
		stuckDelta:     stuckDelta,
		snapshot:       make(map[string]sessionSnapshot),
	}, nil
}

// Poll runs one detection cycle: checks for phase changes, stuck
// fermentations, and out-of-range temperatures. Returns all detected events.
func (w *Watcher) Poll(ctx context.Context) ([]DetectedEvent, error) {
	var allEvents []DetectedEvent

	phaseEvents, err := w.detectPhaseChanges()
	if err != nil {
		return nil, fmt.Errorf("cellar: watcher: phase events: %w", err)
	}
	allEvents = append(allEvents, phaseEvents...)

	stuckEvents, err := w.detectStuck()
	if err != nil {
		return nil, fmt.Errorf("cellar: watcher: stuck events: %w", err)
	}
	allEvents = append(allEvents, stuckEvents...)

	tempEvents, err := w.detectTempAlerts()
	if err != nil {
		return nil, fmt.Errorf("cellar: watcher: temperature events: %w", err)
	}
	allEvents = append(allEvents, tempEvents...)

	return allEvents, nil
}

// Run starts the watcher loop. It polls on the configured interval and
// sends detected events to the returned channel. The channel is closed
// when the context is cancelled. Pulse digests fire on a separate interval.
func (w *Watcher) Run(ctx context.Context) <-chan DetectedEvent {
	ch := make(chan DetectedEvent, 64)
	go func() {
		defer close(ch)
		pollTicker := time.NewTicker(w.pollInterval)
		defer pollTicker.Stop()
		pulseTicker := time.NewTicker(w.pulseInterval)
		defer pulseTicker.Stop()

		emit := func(events []DetectedEvent) {
			for _, e := range events {
				select {
				case ch <- e:
				case <-ctx.Done():
					return
				}
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollTicker.C:
				events, err := w.Poll(ctx)
				if err != nil {
					continue
				}
				emit(events)
			case <-pulseTicker.C:
				if pulse, err := w.BuildPulse(); err == nil && pulse != nil {
					select {
					case ch <- *pulse:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return ch
}

// sessionRow is the slim projection the phase poll reads.
type sessionRow struct {
	ID         string
	Status     string
	RecipeName string
}

// detectPhaseChanges compares current session statuses against the in-memory
// snapshot and emits events for any changes. On the first call it seeds the
// snapshot without emitting events (to avoid a burst of false positives on
// startup).
func (w *Watcher) detectPhaseChanges() ([]DetectedEvent, error) {
	var rows []sessionRow
	if err := w.db.Model(&models.BrewSession{}).
		Select("brew_sessions.id, brew_sessions.status, recipes.name AS recipe_name").
		Joins("LEFT JOIN recipes ON recipes.id = brew_sessions.recipe_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var events []DetectedEvent
	currentIDs := make(map[string]bool, len(rows))

	for _, r := range rows {
		currentIDs[r.ID] = true
		old, exists := w.snapshot[r.ID]
		if !exists {
			// New session. Only emit if we've already seeded.
			w.snapshot[r.ID] = sessionSnapshot{Status: r.Status, RecipeName: r.RecipeName}
			if w.seeded {
				events = append(events, DetectedEvent{
					Type:       EventPhaseChange,
					Timestamp:  time.Now(),
					SessionID:  r.ID,
					RecipeName: r.RecipeName,
					OldStatus:  "",
					NewStatus:  r.Status,
				})
			}
			continue
		}
		if old.Status != r.Status {
			events = append(events, DetectedEvent{
				Type:       EventPhaseChange,
				Timestamp:  time.Now(),
				SessionID:  r.ID,
				RecipeName: r.RecipeName,
				OldStatus:  old.Status,
				NewStatus:  r.Status,
			})
			w.snapshot[r.ID] = sessionSnapshot{Status: r.Status, RecipeName: r.RecipeName}
		}
	}

	// Drop deleted sessions (present in snapshot but missing from DB).
	if w.seeded {
		for id := range w.snapshot {
			if !currentIDs[id] {
				delete(w.snapshot, id)
			}
		}
	}

	if !w.seeded {
		w.seeded = true
	}

	return events, nil
}

// detectStuck finds fermenting sessions whose gravity moved less than
// stuckDelta across the stuckAfter window, flips them to stuck, and emits
// an event. The check needs a reading old enough to span the window and a
// newer one to compare against; absence of readings is not evidence.
func (w *Watcher) detectStuck() ([]DetectedEvent, error) {
	var sessions []models.BrewSession
	if err := w.db.Where("status = ?", "fermenting").
		Preload("Recipe").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	cutoff := now.Add(-w.stuckAfter)

	var events []DetectedEvent
	for _, s := range sessions {
		var baseline models.GravityReading
		err := w.db.Where("session_id = ? AND taken_at <= ?", s.ID, cutoff).
			Order("taken_at DESC, id DESC").
			First(&baseline).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // no reading old enough to span the window
			}
			return nil, err
		}

		var latest models.GravityReading
		if err := w.db.Where("session_id = ?", s.ID).
			Order("taken_at DESC, id DESC").
			First(&latest).Error; err != nil {
			return nil, err
		}
		if !latest.TakenAt.After(baseline.TakenAt) {
			continue // single reading in play; no movement to measure
		}
		if math.Abs(baseline.Gravity-latest.Gravity) >= w.stuckDelta {
			continue
		}

		if err := session.Transition(w.db, s.ID, "stuck"); err != nil {
			return nil, fmt.Errorf("mark %s stuck: %w", s.ID, err)
		}

		// Update the snapshot in place so the next phase poll doesn't
		// report the same transition a second time.
		w.mu.Lock()
		if snap, ok := w.snapshot[s.ID]; ok {
			snap.Status = "stuck"
			w.snapshot[s.ID] = snap
		}
		w.mu.Unlock()

		events = append(events, DetectedEvent{
			Type:       EventStuckFermentation,
			Timestamp:  now,
			SessionID:  s.ID,
			RecipeName: s.Recipe.Name,
			Gravity:    latest.Gravity,
			Window:     latest.TakenAt.Sub(baseline.TakenAt),
		})
	}
	return events, nil
}

// detectTempAlerts checks the latest temperature reading of each fermenting,
// stuck, or conditioning session against its yeast's published range. Each
// breach writes an Alert row; an unacknowledged alert of the same kind
// suppresses repeats until the brewer acknowledges it.
func (w *Watcher) detectTempAlerts() ([]DetectedEvent, error) {
	var sessions []models.BrewSession
	if err := w.db.Where("status IN ? AND yeast_id != ''",
		[]string{"fermenting", "stuck", "conditioning"}).
		Preload("Recipe").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	var events []DetectedEvent
	for _, s := range sessions {
		var latest models.GravityReading
		err := w.db.Where("session_id = ? AND temperature > 0", s.ID).
			Order("taken_at DESC, id DESC").
			First(&latest).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // no temperature recorded yet
			}
			return nil, err
		}

		var yeast models.Ingredient
		if err := w.db.First(&yeast, "id = ?", s.YeastID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		if yeast.MinTemp == 0 && yeast.MaxTemp == 0 {
			continue // no published range
		}

		tempF, err := units.Convert(latest.Temperature, units.Unit(latest.TempUnit), units.Fahrenheit)
		if err != nil {
			continue // unreadable unit on the reading; skip, don't fail the poll
		}

		var kind string
		switch {
		case yeast.MinTemp > 0 && tempF < yeast.MinTemp:
			kind = AlertTempLow
		case yeast.MaxTemp > 0 && tempF > yeast.MaxTemp:
			kind = AlertTempHigh
		default:
			continue
		}

		event := DetectedEvent{
			Type:        EventTempOutOfRange,
			Timestamp:   time.Now(),
			SessionID:   s.ID,
			RecipeName:  s.Recipe.Name,
			Kind:        kind,
			Temperature: tempF,
			MinTemp:     yeast.MinTemp,
			MaxTemp:     yeast.MaxTemp,
			YeastName:   yeast.Name,
		}

		created, err := w.raiseAlert(event)
		if err != nil {
			return nil, err
		}
		if created {
			events = append(events, event)
		}
	}
	return events, nil
}

// raiseAlert inserts an Alert row for the event unless an unacknowledged
// alert of the same kind already exists for the session. Returns whether a
// new row was created.
func (w *Watcher) raiseAlert(event DetectedEvent) (bool, error) {
	var existing int64
	if err := w.db.Model(&models.Alert{}).
		Where("session_id = ? AND kind = ? AND acknowledged = ?", event.SessionID, event.Kind, false).
		Count(&existing).Error; err != nil {
		return false, fmt.Errorf("check alerts for %s: %w", event.SessionID, err)
	}
	if existing > 0 {
		return false, nil
	}

	formatted := FormatTempEvent(event)
	alert := models.Alert{
		SessionID: event.SessionID,
		Kind:      event.Kind,
		Subject:   formatted.Title,
		Body:      formatted.Body,
		Severity:  formatted.Severity,
	}
	if err := w.db.Create(&alert).Error; err != nil {
		return false, fmt.Errorf("create alert for %s: %w", event.SessionID, err)
	}
	return true, nil
}

// BuildPulse creates a pulse digest event from the current cellar status.
// Returns nil (suppressed) when:
//   - nothing is brewing, fermenting, stuck, or conditioning, OR
//   - nothing changed since the last pulse.
func (w *Watcher) BuildPulse() (*DetectedEvent, error) {
	info, err := w.statusProvider.Status()
	if err != nil {
		return nil, fmt.Errorf("cellar: watcher: pulse status: %w", err)
	}

	current := buildDigest(info)

	w.mu.Lock()
	defer w.mu.Unlock()

	// Suppress: empty cellar.
	if current.Brewing+current.Fermenting+current.Stuck+current.Conditioning == 0 {
		return nil, nil
	}

	// Suppress: nothing changed since last pulse.
	if w.lastDigest != nil && *w.lastDigest == current {
		return nil, nil
	}

	w.lastDigest = &current
	w.lastPulseAt = time.Now()

	formatted := FormatPulse(info)
	return &DetectedEvent{
		Type:      EventPulse,
		Timestamp: time.Now(),
		Title:     formatted.Title,
		Body:      formatted.Body,
	}, nil
}

// buildDigest creates a pulseDigest from cellar StatusInfo.
func buildDigest(info *StatusInfo) pulseDigest {
	var d pulseDigest
	for _, s := range info.Sessions {
		switch s.Status {
		case "brewing":
			d.Brewing++
		case "fermenting":
			d.Fermenting++
		case "stuck":
			d.Stuck++
		case "conditioning":
			d.Conditioning++
		}
		if s.LatestGravity > 0 {
			d.Readings += fmt.Sprintf("%s:%.3f,", s.ID, s.LatestGravity)
		}
	}
	return d
}

// LastPulseAt returns when the last pulse digest was emitted.
func (w *Watcher) LastPulseAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastPulseAt
}

// Snapshot returns a copy of the current session snapshot (for testing).
func (w *Watcher) Snapshot() map[string]sessionSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	cp := make(map[string]sessionSnapshot, len(w.snapshot))
	for k, v := range w.snapshot {
		cp[k] = v
	}
	return cp
}

// Seeded returns whether the watcher has completed its initial snapshot.
func (w *Watcher) Seeded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seeded
}
