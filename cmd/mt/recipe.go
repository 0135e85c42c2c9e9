package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/mashtun/internal/brewcalc"
	"github.com/zulandar/mashtun/internal/recipe"
	"github.com/zulandar/mashtun/internal/units"
)

func newRecipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Recipe management commands",
	}

	cmd.AddCommand(newRecipeCreateCmd())
	cmd.AddCommand(newRecipeListCmd())
	cmd.AddCommand(newRecipeShowCmd())
	cmd.AddCommand(newRecipeCloneCmd())
	cmd.AddCommand(newRecipeSetCmd())
	cmd.AddCommand(newRecipeIngredientCmd())
	cmd.AddCommand(newRecipeMetricsCmd())
	cmd.AddCommand(newRecipeScaleCmd())
	return cmd
}

func newRecipeCreateCmd() *cobra.Command {
	var (
		configPath string
		name       string
		style      string
		batchSize  float64
		batchUnit  string
		boilTime   float64
		efficiency float64
		unitSystem string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new recipe",
		Long:  "Creates a new draft recipe with an auto-generated ID. Efficiency and the unit system default to the brewhouse configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipeCreate(cmd, configPath, recipe.CreateOpts{
				Name:       name,
				Style:      style,
				BatchSize:  batchSize,
				BatchUnit:  batchUnit,
				BoilTime:   boilTime,
				Efficiency: efficiency,
				Units:      unitSystem,
				Notes:      notes,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().StringVar(&name, "name", "", "recipe name (required)")
	cmd.Flags().StringVar(&style, "style", "", "beer style (e.g. American IPA)")
	cmd.Flags().Float64Var(&batchSize, "batch", 5, "batch size")
	cmd.Flags().StringVar(&batchUnit, "batch-unit", "", "batch volume unit (default gal or l per unit system)")
	cmd.Flags().Float64Var(&boilTime, "boil", 60, "boil time in minutes")
	cmd.Flags().Float64Var(&efficiency, "efficiency", 0, "mash efficiency percent (default from brewhouse config)")
	cmd.Flags().StringVar(&unitSystem, "units", "", "unit system, imperial or metric (default from brewhouse config)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runRecipeCreate(cmd *cobra.Command, configPath string, opts recipe.CreateOpts) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	// Unset process parameters fall back to the brewhouse defaults.
	if opts.Efficiency == 0 {
		opts.Efficiency = cfg.Efficiency
	}
	if opts.Units == "" {
		opts.Units = cfg.Units
	}

	r, err := recipe.Create(gormDB, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created recipe %s\n", r.ID)
	fmt.Fprintf(out, "Batch: %g %s, boil %g min, efficiency %g%%\n",
		r.BatchSize, r.BatchUnit, r.BoilTime, r.Efficiency)
	return nil
}

func newRecipeListCmd() *cobra.Command {
	var (
		configPath string
		status     string
		style      string
		name       string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes",
		Long:  "Lists recipes with optional filters. Output is formatted as a table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipeList(cmd, configPath, recipe.ListFilters{
				Status: status,
				Style:  style,
				Name:   name,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (draft, final, archived)")
	cmd.Flags().StringVar(&style, "style", "", "filter by style")
	cmd.Flags().StringVar(&name, "name", "", "filter by name substring")
	return cmd
}

func runRecipeList(cmd *cobra.Command, configPath string, filters recipe.ListFilters) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	recipes, err := recipe.List(gormDB, filters)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(recipes) == 0 {
		fmt.Fprintln(out, "No recipes found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTYLE\tSTATUS\tBATCH\tOG\tABV")
	for _, r := range recipes {
		style := r.Style
		if style == "" {
			style = "-"
		}
		og, abv := "-", "-"
		if r.MetricsAt != nil {
			og = formatGravity(r.OG)
			abv = fmt.Sprintf("%.1f%%", r.ABV)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g %s\t%s\t%s\n",
			r.ID, truncate(r.Name, 40), style, r.Status, r.BatchSize, r.BatchUnit, og, abv)
	}
	w.Flush()
	return nil
}

func newRecipeShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show recipe details",
		Long:  "Displays full details of a recipe including process parameters, the metric snapshot, and every ingredient line.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipeShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	return cmd
}

func runRecipeShow(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	r, err := recipe.Get(gormDB, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", r.ID)
	fmt.Fprintf(out, "Name:        %s\n", r.Name)
	if r.Style != "" {
		fmt.Fprintf(out, "Style:       %s\n", r.Style)
	}
	fmt.Fprintf(out, "Status:      %s\n", r.Status)
	fmt.Fprintf(out, "Batch:       %g %s\n", r.BatchSize, r.BatchUnit)
	fmt.Fprintf(out, "Boil:        %g min\n", r.BoilTime)
	fmt.Fprintf(out, "Efficiency:  %g%%\n", r.Efficiency)
	fmt.Fprintf(out, "Units:       %s\n", r.Units)
	fmt.Fprintf(out, "Created:     %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Updated:     %s\n", r.UpdatedAt.Format("2006-01-02 15:04:05"))

	if r.MetricsAt != nil {
		fmt.Fprintln(out, "\nVitals:")
		printMetrics(out, brewcalc.Metrics{
			OG: r.OG, FG: r.FG, ABV: r.ABV, IBU: r.IBU, SRM: r.SRM,
			Estimated: r.MetricsEstimated,
		})
	}

	if len(r.Ingredients) > 0 {
		fmt.Fprintln(out, "\nIngredients:")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  LINE\tAMOUNT\tINGREDIENT\tTYPE\tUSE")
		for _, ri := range r.Ingredients {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n",
				ri.ID, formatAmount(ri.Amount, ri.Unit), ri.Ingredient.Name,
				ri.Ingredient.Type, formatUse(ri.Use, ri.Time, ri.TimeUnit))
		}
		w.Flush()
	}

	if r.Notes != "" {
		fmt.Fprintf(out, "\nNotes:\n%s\n", r.Notes)
	}
	return nil
}

// printMetrics renders one vitals block: the five numbers plus the derived
// color band and balance label.
func printMetrics(out io.Writer, m brewcalc.Metrics) {
	band := brewcalc.SRMColor(m.SRM)
	fmt.Fprintf(out, "  OG:       %.3f\n", m.OG)
	fmt.Fprintf(out, "  FG:       %.3f\n", m.FG)
	fmt.Fprintf(out, "  ABV:      %.1f%%\n", m.ABV)
	fmt.Fprintf(out, "  IBU:      %.1f\n", m.IBU)
	fmt.Fprintf(out, "  SRM:      %.1f (%s)\n", m.SRM, band.Name)
	fmt.Fprintf(out, "  Balance:  %s\n", brewcalc.ClassifyBalance(m.IBU, m.OG))
	if m.Estimated {
		fmt.Fprintln(out, "  Note: some ingredient data was estimated; vitals are approximate.")
	}
}

func newRecipeCloneCmd() *cobra.Command {
	var (
		configPath string
		name       string
	)

	cmd := &cobra.Command{
		Use:   "clone <id>",
		Short: "Clone a recipe",
		Long:  "Copies a recipe and its ingredient lines into a new draft. Omitting --name appends \" (copy)\" to the source name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			clone, err := recipe.Clone(gormDB, args[0], name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cloned %s into %s (%s)\n", args[0], clone.ID, clone.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().StringVar(&name, "name", "", "name for the clone")
	return cmd
}

func newRecipeSetCmd() *cobra.Command {
	var (
		configPath string
		name       string
		style      string
		status     string
		batchSize  float64
		boilTime   float64
		efficiency float64
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update recipe fields",
		Long:  "Updates recipe fields. Status transitions are validated, and changing a process parameter recomputes the vitals.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates := make(map[string]interface{})

			if cmd.Flags().Changed("name") {
				updates["name"] = name
			}
			if cmd.Flags().Changed("style") {
				updates["style"] = style
			}
			if cmd.Flags().Changed("status") {
				updates["status"] = status
			}
			if cmd.Flags().Changed("batch") {
				updates["batch_size"] = batchSize
			}
			if cmd.Flags().Changed("boil") {
				updates["boil_time"] = boilTime
			}
			if cmd.Flags().Changed("efficiency") {
				updates["efficiency"] = efficiency
			}
			if cmd.Flags().Changed("notes") {
				updates["notes"] = notes
			}

			if len(updates) == 0 {
				return fmt.Errorf("no fields to update; use --name, --style, --status, --batch, --boil, --efficiency, or --notes")
			}

			return runRecipeSet(cmd, configPath, args[0], updates)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&style, "style", "", "new style")
	cmd.Flags().StringVar(&status, "status", "", "new status (draft, final, archived)")
	cmd.Flags().Float64Var(&batchSize, "batch", 0, "new batch size")
	cmd.Flags().Float64Var(&boilTime, "boil", 0, "new boil time in minutes")
	cmd.Flags().Float64Var(&efficiency, "efficiency", 0, "new mash efficiency percent")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")
	return cmd
}

func runRecipeSet(cmd *cobra.Command, configPath, id string, updates map[string]interface{}) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := recipe.Update(gormDB, id, updates); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated recipe %s\n", id)
	return nil
}

func newRecipeIngredientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingredient",
		Short: "Manage recipe ingredient lines",
	}

	cmd.AddCommand(newRecipeIngredientAddCmd())
	cmd.AddCommand(newRecipeIngredientRmCmd())
	cmd.AddCommand(newRecipeIngredientSetCmd())
	return cmd
}

func newRecipeIngredientAddCmd() *cobra.Command {
	var (
		configPath   string
		ingredientID string
		amount       float64
		unit         string
		use          string
		lineTime     float64
		timeUnit     string
	)

	cmd := &cobra.Command{
		Use:   "add <recipe-id>",
		Short: "Add an ingredient line",
		Long:  "Appends an ingredient line to a recipe and recomputes its vitals. Use, time, and time unit only apply to hops.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			line, err := recipe.AddIngredient(gormDB, args[0], recipe.LineOpts{
				IngredientID: ingredientID,
				Amount:       amount,
				Unit:         unit,
				Use:          use,
				Time:         lineTime,
				TimeUnit:     timeUnit,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s of %s to %s (line %d)\n",
				formatAmount(line.Amount, line.Unit), ingredientID, args[0], line.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().StringVar(&ingredientID, "ingredient", "", "catalog ingredient ID (required)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount in the line's unit (required)")
	cmd.Flags().StringVar(&unit, "unit", "", "unit (default from the recipe's unit system)")
	cmd.Flags().StringVar(&use, "use", "", "hops: boil, whirlpool, or dry-hop (default boil)")
	cmd.Flags().Float64Var(&lineTime, "time", 0, "hops: boil/whirlpool minutes or dry-hop days")
	cmd.Flags().StringVar(&timeUnit, "time-unit", "", "hops: min or day (default from use)")
	cmd.MarkFlagRequired("ingredient")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func newRecipeIngredientRmCmd() *cobra.Command {
	var (
		configPath string
		lineID     uint
	)

	cmd := &cobra.Command{
		Use:   "rm <recipe-id>",
		Short: "Remove an ingredient line",
		Long:  "Deletes a line from a recipe and recomputes its vitals. Line IDs appear in recipe show.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := recipe.RemoveIngredient(gormDB, args[0], lineID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed line %d from %s\n", lineID, args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().UintVar(&lineID, "line", 0, "line ID to remove (required)")
	cmd.MarkFlagRequired("line")
	return cmd
}

func newRecipeIngredientSetCmd() *cobra.Command {
	var (
		configPath string
		lineID     uint
		amount     float64
	)

	cmd := &cobra.Command{
		Use:   "set <recipe-id>",
		Short: "Change a line's amount",
		Long:  "Changes an ingredient line's amount and recomputes the recipe's vitals.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := recipe.UpdateIngredientAmount(gormDB, args[0], lineID, amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated line %d of %s\n", lineID, args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().UintVar(&lineID, "line", 0, "line ID to update (required)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "new amount (required)")
	cmd.MarkFlagRequired("line")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func newRecipeMetricsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "metrics <id>",
		Short: "Recompute and show recipe vitals",
		Long:  "Recomputes OG, FG, ABV, IBU, and SRM from the current ingredient lines, stores the snapshot, and prints it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipeMetrics(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	return cmd
}

func runRecipeMetrics(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	m, err := recipe.Recompute(gormDB, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Vitals for %s:\n", id)
	printMetrics(out, *m)
	return nil
}

func newRecipeScaleCmd() *cobra.Command {
	var (
		configPath string
		batchSize  float64
		save       bool
		name       string
	)

	cmd := &cobra.Command{
		Use:   "scale <id>",
		Short: "Scale a recipe to a new batch size",
		Long: `Resizes a recipe to a new batch size, given in the recipe's own batch unit.
Fermentables and hops scale linearly; yeast packages round up to whole
packages. Without --save this only previews the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipeScale(cmd, configPath, args[0], batchSize, save, name)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().Float64Var(&batchSize, "batch", 0, "target batch size (required)")
	cmd.Flags().BoolVar(&save, "save", false, "persist the result as a new draft recipe")
	cmd.Flags().StringVar(&name, "name", "", "name for the saved copy (with --save)")
	cmd.MarkFlagRequired("batch")
	return cmd
}

func runRecipeScale(cmd *cobra.Command, configPath, id string, batchSize float64, save bool, name string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if save {
		scaled, err := recipe.SaveScaled(gormDB, id, batchSize, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved scaled recipe %s (%s)\n", scaled.ID, scaled.Name)
		fmt.Fprintf(out, "Batch: %g %s\n", scaled.BatchSize, scaled.BatchUnit)
		return nil
	}

	preview, err := recipe.Scale(gormDB, id, batchSize)
	if err != nil {
		return err
	}
	src := preview.Source

	fmt.Fprintf(out, "Scaling %s: %g %s → %g %s\n",
		src.Name, src.BatchSize, src.BatchUnit, batchSize, src.BatchUnit)

	// Amounts are rounded for display only; --save persists them raw.
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AMOUNT\tINGREDIENT\tUSE")
	for _, line := range preview.Lines {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			formatAmount(units.Round(line.Amount, 2), string(line.Unit)), line.Name,
			formatUse(string(line.Use), line.Time, string(line.TimeUnit)))
	}
	w.Flush()

	fmt.Fprintln(out, "\nProjected vitals:")
	printMetrics(out, preview.Metrics)
	fmt.Fprintln(out, "\nPreview only. Re-run with --save to persist.")
	return nil
}
