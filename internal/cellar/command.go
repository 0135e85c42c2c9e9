package cellar

import (
	"fmt"
	"strings"

	"github.com/zulandar/mashtun/internal/brewcalc"
	"github.com/zulandar/mashtun/internal/models"
	"github.com/zulandar/mashtun/internal/recipe"
	"github.com/zulandar/mashtun/internal/session"
	"gorm.io/gorm"
)

// commandPrefix is the prefix that triggers read-only command handling.
const commandPrefix = "!mt"

// CommandHandler processes read-only "!mt" commands from chat. All
// operations are queries; nothing in here mutates the database.
type CommandHandler struct {
	db             *gorm.DB
	statusProvider StatusProvider
}

// CommandHandlerOpts holds parameters for creating a CommandHandler.
type CommandHandlerOpts struct {
	DB             *gorm.DB
	StatusProvider StatusProvider // defaults to a direct database query
}

// NewCommandHandler creates a CommandHandler.
func NewCommandHandler(opts CommandHandlerOpts) (*CommandHandler, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("cellar: command handler: db is required")
	}
	sp := opts.StatusProvider
	if sp == nil {
		sp = &defaultStatusProvider{db: opts.DB}
	}
	return &CommandHandler{
		db:             opts.DB,
		statusProvider: sp,
	}, nil
}

// Execute parses and executes a "!mt" command string. Returns the
// response text to send back to the chat channel.
func (ch *CommandHandler) Execute(text string) string {
	args := parseCommand(text)
	if len(args) == 0 {
		return ch.helpText()
	}

	switch args[0] {
	case "status":
		return ch.cmdStatus()
	case "recipe":
		return ch.cmdRecipe(args[1:])
	case "session":
		return ch.cmdSession(args[1:])
	case "help":
		return ch.helpText()
	default:
		return fmt.Sprintf("Unknown command: `%s`\n\n%s", args[0], ch.helpText())
	}
}

// parseCommand strips the "!mt" prefix and splits the remaining text.
func parseCommand(text string) []string {
	text = strings.TrimSpace(text)
	if text == commandPrefix {
		return nil
	}
	text = strings.TrimPrefix(text, commandPrefix+" ")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return strings.Fields(text)
}

// cmdStatus returns the formatted cellar overview.
func (ch *CommandHandler) cmdStatus() string {
	info, err := ch.statusProvider.Status()
	if err != nil {
		return fmt.Sprintf("Error getting status: %v", err)
	}
	return FormatStatus(info)
}

// cmdRecipe shows details for a single recipe.
func (ch *CommandHandler) cmdRecipe(args []string) string {
	if len(args) == 0 {
		return "Usage: `!mt recipe <recipe-id>`"
	}
	r, err := recipe.Get(ch.db, args[0])
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return formatRecipeDetail(r)
}

// cmdSession shows details and fermentation progress for a single session.
func (ch *CommandHandler) cmdSession(args []string) string {
	if len(args) == 0 {
		return "Usage: `!mt session <session-id>`"
	}
	s, err := session.Get(ch.db, args[0])
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	prog, err := session.Progress(ch.db, args[0])
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return formatSessionDetail(s, prog)
}

// helpText returns usage information for all commands.
func (ch *CommandHandler) helpText() string {
	return "**Mashtun Commands**\n" +
		"`!mt status` — Cellar overview\n" +
		"`!mt recipe <id>` — Recipe details and metrics\n" +
		"`!mt session <id>` — Brew session progress\n" +
		"`!mt help` — This message"
}

// formatRecipeDetail formats a single recipe with metrics and grain bill.
func formatRecipeDetail(r *models.Recipe) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**%s** — %s\n", r.ID, r.Name))
	b.WriteString(fmt.Sprintf("Status: %s | Batch: %g %s | Boil: %g min | Efficiency: %g%%\n",
		r.Status, r.BatchSize, r.BatchUnit, r.BoilTime, r.Efficiency))
	if r.Style != "" {
		b.WriteString(fmt.Sprintf("Style: %s\n", r.Style))
	}
	if r.MetricsAt != nil {
		b.WriteString(fmt.Sprintf("OG %.3f  FG %.3f  ABV %.1f%%  IBU %.1f  SRM %.1f (%s)\n",
			r.OG, r.FG, r.ABV, r.IBU, r.SRM, brewcalc.SRMColor(r.SRM).Name))
		b.WriteString(fmt.Sprintf("Balance: %s\n", brewcalc.ClassifyBalance(r.IBU, r.OG)))
	}
	if len(r.Ingredients) > 0 {
		b.WriteString("\n")
		for _, line := range r.Ingredients {
			b.WriteString("  " + formatLine(line) + "\n")
		}
	}
	return b.String()
}

// formatLine renders one recipe ingredient line.
func formatLine(line models.RecipeIngredient) string {
	s := fmt.Sprintf("%g %s %s", line.Amount, line.Unit, line.Ingredient.Name)
	if line.Use != "" {
		s += fmt.Sprintf(" (%s %g %s)", line.Use, line.Time, line.TimeUnit)
	}
	return s
}

// formatSessionDetail formats a single session with fermentation progress.
func formatSessionDetail(s *models.BrewSession, prog *session.ProgressInfo) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**%s** — %s\n", s.ID, s.Recipe.Name))
	b.WriteString(fmt.Sprintf("Status: %s\n", s.Status))
	if prog.PlannedOG > 0 {
		b.WriteString(fmt.Sprintf("Planned: OG %.3f, FG %.3f\n", prog.PlannedOG, prog.PlannedFG))
	}
	if prog.MeasuredOG > 0 {
		b.WriteString(fmt.Sprintf("Measured OG: %.3f\n", prog.MeasuredOG))
	}
	if prog.CurrentGravity > 0 {
		line := fmt.Sprintf("Current: SG %.3f", prog.CurrentGravity)
		if prog.Attenuation > 0 {
			line += fmt.Sprintf(" (%.1f%% apparent attenuation)", prog.Attenuation)
		}
		b.WriteString(line + "\n")
	}
	if prog.ReadingCount > 0 && !prog.LastReadingAt.IsZero() {
		b.WriteString(fmt.Sprintf("Readings: %d, last at %s\n",
			prog.ReadingCount, prog.LastReadingAt.Format("Jan 2 15:04")))
	} else {
		b.WriteString("No readings logged yet.\n")
	}
	if s.Notes != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", s.Notes))
	}
	return b.String()
}
