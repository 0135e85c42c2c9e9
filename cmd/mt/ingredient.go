package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/mashtun/internal/catalog"
	"github.com/zulandar/mashtun/internal/models"
)

func newIngredientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ingredient",
		Aliases: []string{"ing"},
		Short:   "Ingredient catalog commands",
	}

	cmd.AddCommand(newIngredientAddCmd())
	cmd.AddCommand(newIngredientListCmd())
	cmd.AddCommand(newIngredientShowCmd())
	cmd.AddCommand(newIngredientSetCmd())
	return cmd
}

func newIngredientAddCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		ingType     string
		origin      string
		notes       string
		potential   float64
		lovibond    float64
		alphaAcid   float64
		attenuation float64
		minTemp     float64
		maxTemp     float64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an ingredient to the catalog",
		Long:  "Adds a catalog ingredient with an auto-generated ID. Only the attributes matching the type are validated: potential and lovibond for fermentables, alpha for hops, attenuation and temperature range for yeast.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngredientAdd(cmd, configPath, catalog.CreateOpts{
				Name:        name,
				Type:        ingType,
				Origin:      origin,
				Notes:       notes,
				Potential:   potential,
				Lovibond:    lovibond,
				AlphaAcid:   alphaAcid,
				Attenuation: attenuation,
				MinTemp:     minTemp,
				MaxTemp:     maxTemp,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().StringVar(&name, "name", "", "ingredient name (required)")
	cmd.Flags().StringVar(&ingType, "type", "", "ingredient type (grain, hop, yeast, other) (required)")
	cmd.Flags().StringVar(&origin, "origin", "", "origin (country or yeast lab)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().Float64Var(&potential, "potential", 0, "fermentables: gravity points per pound per gallon")
	cmd.Flags().Float64Var(&lovibond, "lovibond", 0, "fermentables: color in °L")
	cmd.Flags().Float64Var(&alphaAcid, "alpha", 0, "hops: alpha acid percent")
	cmd.Flags().Float64Var(&attenuation, "attenuation", 0, "yeast: published attenuation percent")
	cmd.Flags().Float64Var(&minTemp, "min-temp", 0, "yeast: minimum fermentation temperature (°F)")
	cmd.Flags().Float64Var(&maxTemp, "max-temp", 0, "yeast: maximum fermentation temperature (°F)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("type")
	return cmd
}

func runIngredientAdd(cmd *cobra.Command, configPath string, opts catalog.CreateOpts) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	ing, err := catalog.Create(gormDB, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (%s)\n", ing.Type, ing.Name, ing.ID)
	return nil
}

func newIngredientListCmd() *cobra.Command {
	var (
		configPath string
		ingType    string
		name       string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog ingredients",
		Long:  "Lists ingredients with optional filters. Output is formatted as a table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngredientList(cmd, configPath, catalog.ListFilters{
				Type: ingType,
				Name: name,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().StringVar(&ingType, "type", "", "filter by type (grain, hop, yeast, other)")
	cmd.Flags().StringVar(&name, "name", "", "filter by name substring")
	return cmd
}

func runIngredientList(cmd *cobra.Command, configPath string, filters catalog.ListFilters) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	ings, err := catalog.List(gormDB, filters)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(ings) == 0 {
		fmt.Fprintln(out, "No ingredients found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tORIGIN\tATTRIBUTES")
	for _, ing := range ings {
		origin := ing.Origin
		if origin == "" {
			origin = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			ing.ID, truncate(ing.Name, 30), ing.Type, origin, ingredientAttributes(ing))
	}
	w.Flush()
	return nil
}

// ingredientAttributes summarizes the type-specific attributes in one cell.
func ingredientAttributes(ing models.Ingredient) string {
	switch ing.Type {
	case "grain", "other":
		return fmt.Sprintf("%g ppg, %g °L", ing.Potential, ing.Lovibond)
	case "hop":
		return fmt.Sprintf("%g%% AA", ing.AlphaAcid)
	case "yeast":
		parts := []string{}
		if ing.Attenuation > 0 {
			parts = append(parts, fmt.Sprintf("%g%% attenuation", ing.Attenuation))
		}
		if ing.MinTemp > 0 || ing.MaxTemp > 0 {
			parts = append(parts, fmt.Sprintf("%g-%g °F", ing.MinTemp, ing.MaxTemp))
		}
		if len(parts) == 0 {
			return "-"
		}
		return strings.Join(parts, ", ")
	default:
		return "-"
	}
}

func newIngredientShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show ingredient details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngredientShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	return cmd
}

func runIngredientShow(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	ing, err := catalog.Get(gormDB, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", ing.ID)
	fmt.Fprintf(out, "Name:        %s\n", ing.Name)
	fmt.Fprintf(out, "Type:        %s\n", ing.Type)
	if ing.Origin != "" {
		fmt.Fprintf(out, "Origin:      %s\n", ing.Origin)
	}
	switch ing.Type {
	case "grain", "other":
		fmt.Fprintf(out, "Potential:   %g ppg\n", ing.Potential)
		fmt.Fprintf(out, "Color:       %g °L\n", ing.Lovibond)
	case "hop":
		fmt.Fprintf(out, "Alpha Acid:  %g%%\n", ing.AlphaAcid)
	case "yeast":
		if ing.Attenuation > 0 {
			fmt.Fprintf(out, "Attenuation: %g%%\n", ing.Attenuation)
		}
		if ing.MinTemp > 0 || ing.MaxTemp > 0 {
			fmt.Fprintf(out, "Temp Range:  %g-%g °F\n", ing.MinTemp, ing.MaxTemp)
		}
	}
	fmt.Fprintf(out, "Created:     %s\n", ing.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Updated:     %s\n", ing.UpdatedAt.Format("2006-01-02 15:04:05"))

	if ing.Notes != "" {
		fmt.Fprintf(out, "\nNotes:\n%s\n", ing.Notes)
	}
	return nil
}

func newIngredientSetCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		origin      string
		notes       string
		potential   float64
		lovibond    float64
		alphaAcid   float64
		attenuation float64
		minTemp     float64
		maxTemp     float64
	)

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update ingredient attributes",
		Long:  "Updates catalog ingredient fields. The merged result is re-validated against the type's allowed ranges.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates := make(map[string]interface{})

			if cmd.Flags().Changed("name") {
				updates["name"] = name
			}
			if cmd.Flags().Changed("origin") {
				updates["origin"] = origin
			}
			if cmd.Flags().Changed("notes") {
				updates["notes"] = notes
			}
			if cmd.Flags().Changed("potential") {
				updates["potential"] = potential
			}
			if cmd.Flags().Changed("lovibond") {
				updates["lovibond"] = lovibond
			}
			if cmd.Flags().Changed("alpha") {
				updates["alpha_acid"] = alphaAcid
			}
			if cmd.Flags().Changed("attenuation") {
				updates["attenuation"] = attenuation
			}
			if cmd.Flags().Changed("min-temp") {
				updates["min_temp"] = minTemp
			}
			if cmd.Flags().Changed("max-temp") {
				updates["max_temp"] = maxTemp
			}

			if len(updates) == 0 {
				return fmt.Errorf("no fields to update; use --name, --origin, --notes, --potential, --lovibond, --alpha, --attenuation, --min-temp, or --max-temp")
			}

			return runIngredientSet(cmd, configPath, args[0], updates)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&origin, "origin", "", "new origin")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")
	cmd.Flags().Float64Var(&potential, "potential", 0, "new gravity potential (ppg)")
	cmd.Flags().Float64Var(&lovibond, "lovibond", 0, "new color (°L)")
	cmd.Flags().Float64Var(&alphaAcid, "alpha", 0, "new alpha acid percent")
	cmd.Flags().Float64Var(&attenuation, "attenuation", 0, "new published attenuation percent")
	cmd.Flags().Float64Var(&minTemp, "min-temp", 0, "new minimum temperature (°F)")
	cmd.Flags().Float64Var(&maxTemp, "max-temp", 0, "new maximum temperature (°F)")
	return cmd
}

func runIngredientSet(cmd *cobra.Command, configPath, id string, updates map[string]interface{}) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := catalog.Update(gormDB, id, updates); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated ingredient %s\n", id)
	return nil
}
