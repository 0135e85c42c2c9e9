package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/mashtun/internal/session"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"brew"},
		Short:   "Brew session commands",
		Long:    "Sessions track a recipe from brew day through fermentation to the finished beer.",
	}

	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionLogCmd())
	cmd.AddCommand(newSessionSetStatusCmd())
	cmd.AddCommand(newSessionFinishCmd())
	return cmd
}

func newSessionStartCmd() *cobra.Command {
	var (
		configPath string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "start <recipe-id>",
		Short: "Start a brew session",
		Long:  "Creates a planned session for a recipe, capturing its current OG as the fermentation target.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			s, err := session.Start(gormDB, args[0], session.StartOpts{Notes: notes})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Started session %s for %s\n", s.ID, s.RecipeID)
			fmt.Fprintf(out, "Planned OG: %s\n", formatGravity(s.PlannedOG))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	return cmd
}

func newSessionListCmd() *cobra.Command {
	var (
		configPath string
		status     string
		recipeID   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List brew sessions",
		Long:  "Lists sessions with optional filters. Output is formatted as a table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionList(cmd, configPath, session.ListFilters{
				Status:   status,
				RecipeID: recipeID,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&recipeID, "recipe", "", "filter by recipe ID")
	return cmd
}

func runSessionList(cmd *cobra.Command, configPath string, filters session.ListFilters) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	sessions, err := session.List(gormDB, filters)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRECIPE\tSTATUS\tPLANNED OG\tMEASURED OG\tFG\tBREWED")
	for _, s := range sessions {
		brewed := "-"
		if s.BrewedAt != nil {
			brewed = s.BrewedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.RecipeID, s.Status, formatGravity(s.PlannedOG),
			formatGravity(s.MeasuredOG), formatGravity(s.MeasuredFG), brewed)
	}
	w.Flush()
	return nil
}

func newSessionShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show session details",
		Long:  "Displays full details of a session including fermentation progress and every gravity reading.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	return cmd
}

func runSessionShow(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	s, err := session.Get(gormDB, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:           %s\n", s.ID)
	fmt.Fprintf(out, "Recipe:       %s (%s)\n", s.Recipe.Name, s.RecipeID)
	fmt.Fprintf(out, "Status:       %s\n", s.Status)
	fmt.Fprintf(out, "Planned OG:   %s\n", formatGravity(s.PlannedOG))
	if s.MeasuredOG > 0 {
		fmt.Fprintf(out, "Measured OG:  %s\n", formatGravity(s.MeasuredOG))
	}
	if s.MeasuredFG > 0 {
		fmt.Fprintf(out, "Measured FG:  %s\n", formatGravity(s.MeasuredFG))
	}
	if s.YeastID != "" {
		fmt.Fprintf(out, "Yeast:        %s\n", s.YeastID)
	}
	fmt.Fprintf(out, "Created:      %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
	if s.BrewedAt != nil {
		fmt.Fprintf(out, "Brewed:       %s\n", s.BrewedAt.Format("2006-01-02 15:04:05"))
	}
	if s.CompletedAt != nil {
		fmt.Fprintf(out, "Completed:    %s\n", s.CompletedAt.Format("2006-01-02 15:04:05"))
	}

	prog, err := session.Progress(gormDB, id)
	if err == nil && prog.ReadingCount > 0 {
		fmt.Fprintln(out, "\nFermentation:")
		fmt.Fprintf(out, "  Current:      %s\n", formatGravity(prog.CurrentGravity))
		if prog.Attenuation > 0 {
			fmt.Fprintf(out, "  Attenuation:  %.1f%%\n", prog.Attenuation)
		}
		if prog.PlannedFG > 0 {
			fmt.Fprintf(out, "  Target FG:    %s\n", formatGravity(prog.PlannedFG))
		}
		fmt.Fprintf(out, "  Readings:     %d (last %s)\n",
			prog.ReadingCount, prog.LastReadingAt.Format("2006-01-02 15:04"))
	}

	if len(s.Readings) > 0 {
		fmt.Fprintln(out, "\nReadings:")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  TAKEN\tGRAVITY\tTEMP\tSOURCE")
		for _, rd := range s.Readings {
			temp := "-"
			if rd.Temperature != 0 {
				temp = fmt.Sprintf("%g °%s", rd.Temperature, strings.ToUpper(rd.TempUnit))
			}
			fmt.Fprintf(w, "  %s\t%.3f\t%s\t%s\n",
				rd.TakenAt.Format("2006-01-02 15:04"), rd.Gravity, temp, rd.Source)
		}
		w.Flush()
	}

	if s.Notes != "" {
		fmt.Fprintf(out, "\nNotes:\n%s\n", s.Notes)
	}
	return nil
}

func newSessionLogCmd() *cobra.Command {
	var (
		configPath string
		gravity    float64
		temp       float64
		tempUnit   string
		source     string
	)

	cmd := &cobra.Command{
		Use:   "log <id>",
		Short: "Log a gravity reading",
		Long:  "Records a gravity measurement for an active session. The first reading becomes the session's measured OG.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			reading, err := session.LogReading(gormDB, args[0], session.ReadingOpts{
				Gravity:     gravity,
				Temperature: temp,
				TempUnit:    tempUnit,
				Source:      source,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %.3f for %s\n", reading.Gravity, args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().Float64Var(&gravity, "gravity", 0, "specific gravity reading (required)")
	cmd.Flags().Float64Var(&temp, "temp", 0, "temperature at reading time")
	cmd.Flags().StringVar(&tempUnit, "temp-unit", "", "temperature unit, f or c (default f)")
	cmd.Flags().StringVar(&source, "source", "", "reading source: manual, tilt, ispindel (default manual)")
	cmd.MarkFlagRequired("gravity")
	return cmd
}

func newSessionSetStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Transition a session's status",
		Long:  "Moves a session through its lifecycle: planned, brewing, fermenting, stuck, conditioning, completed, dumped. Use finish to complete a session with a final gravity.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := session.Transition(gormDB, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s is now %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	return cmd
}

func newSessionFinishCmd() *cobra.Command {
	var (
		configPath string
		fg         float64
	)

	cmd := &cobra.Command{
		Use:   "finish <id>",
		Short: "Complete a session with its final gravity",
		Long:  "Records the measured final gravity and completes the session. When the batch has a measured OG and a yeast, the observed attenuation feeds the analytics corpus.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			s, err := session.Finish(gormDB, args[0], fg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Completed session %s\n", s.ID)
			if s.MeasuredOG > 1 {
				att := session.ApparentAttenuation(s.MeasuredOG, s.MeasuredFG)
				fmt.Fprintf(out, "Apparent attenuation: %.1f%%\n", att)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().Float64Var(&fg, "fg", 0, "measured final gravity (required)")
	cmd.MarkFlagRequired("fg")
	return cmd
}
