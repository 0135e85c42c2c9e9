package share

import (
	"fmt"
	"strings"

	"github.com/zulandar/mashtun/internal/brewcalc"
	"github.com/zulandar/mashtun/internal/models"
)

// FormatMarkdown renders a recipe as a standalone markdown document:
// process parameters, the metric vitals with balance and color band, and
// the full ingredient bill in grain-bill order. A nil metrics argument
// omits the vitals section.
func FormatMarkdown(r *models.Recipe, lines []models.RecipeIngredient, m *brewcalc.Metrics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Name)
	if r.Style != "" {
		fmt.Fprintf(&b, "*%s*\n\n", r.Style)
	}

	b.WriteString("| Batch | Boil | Efficiency |\n")
	b.WriteString("| --- | --- | --- |\n")
	fmt.Fprintf(&b, "| %g %s | %g min | %g%% |\n\n", r.BatchSize, r.BatchUnit, r.BoilTime, r.Efficiency)

	if m != nil {
		band := brewcalc.SRMColor(m.SRM)
		b.WriteString("## Vitals\n\n")
		b.WriteString("| OG | FG | ABV | IBU | SRM | Balance |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
		fmt.Fprintf(&b, "| %.3f | %.3f | %.1f%% | %.1f | %.1f (%s) | %s |\n\n",
			m.OG, m.FG, m.ABV, m.IBU, m.SRM, band.Name, brewcalc.ClassifyBalance(m.IBU, m.OG))
		if m.Estimated {
			b.WriteString("*Some ingredient data was estimated; vitals are approximate.*\n\n")
		}
	}

	if len(lines) > 0 {
		b.WriteString("## Ingredients\n\n")
		b.WriteString("| Amount | Ingredient | Use |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, line := range lines {
			use := ""
			if line.Use != "" {
				use = fmt.Sprintf("%s, %g %s", line.Use, line.Time, line.TimeUnit)
			}
			fmt.Fprintf(&b, "| %g %s | %s | %s |\n", line.Amount, line.Unit, line.Ingredient.Name, use)
		}
		b.WriteString("\n")
	}

	if r.Notes != "" {
		b.WriteString("## Notes\n\n")
		b.WriteString(strings.TrimRight(r.Notes, "\n"))
		b.WriteString("\n")
	}

	return b.String()
}
