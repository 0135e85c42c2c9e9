package cellar

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/zulandar/mashtun/internal/analytics"
	"github.com/zulandar/mashtun/internal/config"
	"gorm.io/gorm"
)

// analyticsRefreshCron schedules the nightly attenuation stats rebuild.
const analyticsRefreshCron = "0 3 * * *"

// Daemon is the main cellar process. It connects to a chat platform via an
// Adapter, watches fermentations, posts alerts and digests, and answers
// read-only commands.
type Daemon struct {
	db             *gorm.DB
	cfg            *config.Config
	adapter        Adapter
	statusProvider StatusProvider
	out            io.Writer
}

// DaemonOpts holds parameters for creating a new Daemon.
type DaemonOpts struct {
	DB             *gorm.DB
	Config         *config.Config
	Adapter        Adapter
	StatusProvider StatusProvider // optional; defaults to a direct database query
	Out            io.Writer      // defaults to os.Stdout
}

// NewDaemon creates a Daemon with the given options.
func NewDaemon(opts DaemonOpts) (*Daemon, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("cellar: db is required")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("cellar: config is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("cellar: adapter is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Daemon{
		db:             opts.DB,
		cfg:            opts.Config,
		adapter:        opts.Adapter,
		statusProvider: opts.StatusProvider,
		out:            out,
	}, nil
}

// Run starts the cellar daemon. It connects the adapter, builds the watcher
// and schedulers, and blocks until the context is cancelled. On shutdown it
// closes the adapter gracefully.
func (d *Daemon) Run(ctx context.Context) error {
	fmt.Fprintf(d.out, "Cellar connecting...\n")
	if err := d.adapter.Connect(ctx); err != nil {
		return fmt.Errorf("cellar: connect: %w", err)
	}

	// Extract bot user ID if the adapter supports it.
	var botUserID string
	if bui, ok := d.adapter.(BotUserIDer); ok {
		botUserID = bui.BotUserID()
	}

	// Resolve status provider.
	sp := d.statusProvider
	if sp == nil {
		sp = &defaultStatusProvider{db: d.db}
	}

	// Build CommandHandler.
	cmdHandler, err := NewCommandHandler(CommandHandlerOpts{
		DB:             d.db,
		StatusProvider: sp,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("cellar: build command handler: %w", err)
	}

	// Start listening for inbound messages.
	inbound, err := d.adapter.Listen(ctx)
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("cellar: listen: %w", err)
	}

	// Build and start Watcher.
	watcher, err := NewWatcher(WatcherOpts{
		DB:             d.db,
		StatusProvider: sp,
		PollInterval:   time.Duration(d.cfg.Cellar.PollIntervalSec) * time.Second,
		StuckAfter:     time.Duration(d.cfg.Cellar.StuckAfterHours) * time.Hour,
		StuckDelta:     d.cfg.Cellar.StuckDelta,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("cellar: build watcher: %w", err)
	}
	eventsCh := watcher.Run(ctx)

	// Start event dispatcher goroutine.
	go d.dispatchEvents(ctx, eventsCh)

	// Start digest scheduler goroutine.
	go d.runDigestScheduler(ctx, watcher)

	// Start the nightly analytics refresh goroutine.
	go d.runAnalyticsRefresh(ctx)

	fmt.Fprintf(d.out, "Cellar online\n")

	// Post online status.
	if err := d.adapter.Send(ctx, OutboundMessage{
		Text: "Cellar online",
	}); err != nil {
		log.Printf("cellar: send online message: %v", err)
	}

	// Main event loop: pump inbound messages until context is cancelled.
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(d.out, "Cellar shutting down...\n")
			d.sendShutdown()
			if err := d.adapter.Close(); err != nil {
				log.Printf("cellar: close adapter: %v", err)
			}
			fmt.Fprintf(d.out, "Cellar stopped\n")
			return nil

		case msg, ok := <-inbound:
			if !ok {
				// Adapter closed the channel.
				fmt.Fprintf(d.out, "Cellar inbound channel closed\n")
				return nil
			}
			d.route(ctx, cmdHandler, botUserID, msg)
		}
	}
}

// route classifies a single inbound message. Only commands get responses:
// a "!mt" prefix, or a bot @mention followed by a known command. Everything
// else is ignored.
func (d *Daemon) route(ctx context.Context, handler *CommandHandler, botUserID string, msg InboundMessage) {
	// Filter bot self-messages.
	if botUserID != "" && msg.UserID == botUserID {
		return
	}

	text := strings.TrimSpace(msg.Text)
	fmt.Fprintf(d.out, "cellar: recv [ch=%s user=%s] %q\n",
		msg.ChannelID, msg.UserName, truncate(text, 80))

	switch {
	case isCommand(text):
		d.respond(ctx, msg, handler.Execute(text))
	case extractMentionCommand(text) != "":
		d.respond(ctx, msg, handler.Execute(commandPrefix+" "+extractMentionCommand(text)))
	default:
		fmt.Fprintf(d.out, "cellar: ignore (not a command)\n")
	}
}

// respond sends a command response back to the originating channel/thread.
func (d *Daemon) respond(ctx context.Context, msg InboundMessage, response string) {
	if err := d.adapter.Send(ctx, OutboundMessage{
		ChannelID: msg.ChannelID,
		ThreadID:  msg.ThreadID,
		Text:      response,
	}); err != nil {
		log.Printf("cellar: send command response: %v", err)
	}
}

// dispatchEvents reads detected events from the watcher channel, filters
// them by config toggles, formats them, and sends to the chat platform.
func (d *Daemon) dispatchEvents(ctx context.Context, eventsCh <-chan DetectedEvent) {
	alertCfg := d.cfg.Cellar.Alerts
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			d.handleDetectedEvent(ctx, event, alertCfg)
		}
	}
}

// handleDetectedEvent processes a single detected event: applies config
// filters, formats, and sends via the adapter.
func (d *Daemon) handleDetectedEvent(ctx context.Context, event DetectedEvent, alertCfg config.AlertsConfig) {
	var formatted FormattedEvent

	switch event.Type {
	case EventPhaseChange:
		if !alertCfg.PhaseChanges {
			return
		}
		formatted = FormatSessionEvent(event)
	case EventStuckFermentation:
		if !alertCfg.StuckFermentation {
			return
		}
		formatted = FormatStuckEvent(event)
	case EventTempOutOfRange:
		if !alertCfg.Temperature {
			return
		}
		formatted = FormatTempEvent(event)
	case EventPulse, EventDailyDigest, EventWeeklyDigest:
		// Pulse and digest events are not gated by alert toggles.
		formatted = FormattedEvent{
			Title:    event.Title,
			Body:     event.Body,
			Severity: "info",
			Color:    ColorInfo,
		}
	default:
		return
	}

	if err := d.adapter.Send(ctx, OutboundMessage{
		Events: []FormattedEvent{formatted},
	}); err != nil {
		log.Printf("cellar: send event %s: %v", event.Type, err)
	}
}

// runDigestScheduler manages cron-based daily and weekly digest timers.
// It returns immediately if neither digest is enabled.
func (d *Daemon) runDigestScheduler(ctx context.Context, watcher *Watcher) {
	dailyCfg := d.cfg.Cellar.Digest.Daily
	weeklyCfg := d.cfg.Cellar.Digest.Weekly

	if !dailyCfg.Enabled && !weeklyCfg.Enabled {
		return
	}

	var dailyTimer, weeklyTimer *time.Timer
	if dailyCfg.Enabled && dailyCfg.Cron != "" {
		if d := nextCronDuration(dailyCfg.Cron); d > 0 {
			dailyTimer = time.NewTimer(d)
		}
	}
	if weeklyCfg.Enabled && weeklyCfg.Cron != "" {
		if d := nextCronDuration(weeklyCfg.Cron); d > 0 {
			weeklyTimer = time.NewTimer(d)
		}
	}

	defer func() {
		if dailyTimer != nil {
			dailyTimer.Stop()
		}
		if weeklyTimer != nil {
			weeklyTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timerChan(dailyTimer):
			d.fireDigest(ctx, watcher, "daily")
			if d := nextCronDuration(dailyCfg.Cron); d > 0 {
				dailyTimer.Reset(d)
			}
		case <-timerChan(weeklyTimer):
			d.fireDigest(ctx, watcher, "weekly")
			if d := nextCronDuration(weeklyCfg.Cron); d > 0 {
				weeklyTimer.Reset(d)
			}
		}
	}
}

// fireDigest builds and sends a single digest (daily or weekly).
func (d *Daemon) fireDigest(ctx context.Context, watcher *Watcher, kind string) {
	var event *DetectedEvent
	var err error

	switch kind {
	case "daily":
		event, err = watcher.BuildDailyDigest()
	case "weekly":
		event, err = watcher.BuildWeeklyDigest()
	}
	if err != nil {
		log.Printf("cellar: %s digest: %v", kind, err)
		return
	}
	if event == nil {
		// No activity. Suppress digest.
		return
	}

	formatted := FormattedEvent{
		Title:    event.Title,
		Body:     event.Body,
		Severity: "info",
		Color:    ColorInfo,
	}
	if err := d.adapter.Send(ctx, OutboundMessage{
		Events: []FormattedEvent{formatted},
	}); err != nil {
		log.Printf("cellar: send %s digest: %v", kind, err)
	}
}

// runAnalyticsRefresh rebuilds the attenuation stats on a nightly schedule,
// so digests and chat commands read from fresh aggregates.
func (d *Daemon) runAnalyticsRefresh(ctx context.Context) {
	timer := time.NewTimer(nextCronDuration(analyticsRefreshCron))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			n, err := analytics.RefreshStats(d.db)
			if err != nil {
				log.Printf("cellar: refresh attenuation stats: %v", err)
			} else if n > 0 {
				fmt.Fprintf(d.out, "cellar: refreshed %d attenuation stats\n", n)
			}
			timer.Reset(nextCronDuration(analyticsRefreshCron))
		}
	}
}

// timerChan returns the timer's channel, or nil if the timer is nil.
// A nil channel blocks forever in select, which is the desired behavior
// when a digest type is not enabled.
func timerChan(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

// sendShutdown posts a shutdown message to the adapter (best-effort).
func (d *Daemon) sendShutdown() {
	ctx := context.Background()
	if err := d.adapter.Send(ctx, OutboundMessage{
		Text: "Cellar shutting down",
	}); err != nil {
		log.Printf("cellar: send shutdown message: %v", err)
	}
}

// truncate returns s truncated to maxLen with "..." appended if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// isCommand returns true if the text starts with the command prefix.
func isCommand(text string) bool {
	return strings.HasPrefix(text, commandPrefix+" ") || text == commandPrefix
}

// discordMentionRe matches Discord mention formats: <@ID> or <@!ID>.
var discordMentionRe = regexp.MustCompile(`<@!?\d+>`)

// knownCommands is the set of top-level commands the CommandHandler supports.
var knownCommands = map[string]bool{
	"status":  true,
	"recipe":  true,
	"session": true,
	"help":    true,
}

// extractMentionCommand checks if the message is a bot @mention followed by
// a known command. Returns the command text (without the mention) if so,
// or empty string if not. Handles Discord <@ID> format and plain @name.
func extractMentionCommand(text string) string {
	// Strip Discord-style mentions: <@ID> or <@!ID>.
	stripped := discordMentionRe.ReplaceAllString(text, "")
	stripped = strings.TrimSpace(stripped)

	if stripped == "" {
		return ""
	}

	// Check if the first word is a known command.
	firstWord := strings.Fields(stripped)[0]
	if knownCommands[firstWord] {
		return stripped
	}

	return ""
}
