package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/mashtun/internal/analytics"
	"github.com/zulandar/mashtun/internal/api"
)

func newAnalyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Yeast performance analytics",
		Long:  "Analytics compare how yeasts actually attenuate in your brewhouse against the numbers the labs publish.",
	}

	cmd.AddCommand(newAnalyticsRefreshCmd())
	cmd.AddCommand(newAnalyticsYeastCmd())
	return cmd
}

func newAnalyticsRefreshCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Rebuild the attenuation stats cache",
		Long:  "Re-aggregates every yeast's observed attenuation samples into the stats cache. Finished sessions add samples, not stats; run this to fold them in.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			n, err := analytics.RefreshStats(gormDB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Refreshed attenuation stats for %d yeasts\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	return cmd
}

func newAnalyticsYeastCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "yeast",
		Short: "Show observed yeast attenuation vs published",
		Long:  "Lists every yeast with cached attenuation stats: the observed average, sample count, confidence, and how it compares to the published number.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyticsYeast(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	return cmd
}

func runAnalyticsYeast(cmd *cobra.Command, configPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	rows, err := api.YeastStats(gormDB)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No attenuation stats yet. Finish a session, then run analytics refresh.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tYEAST\tPUBLISHED\tOBSERVED\tSAMPLES\tCONFIDENCE\tVS PUBLISHED")
	for _, row := range rows {
		published := "-"
		if row.Published > 0 {
			published = fmt.Sprintf("%g%%", row.Published)
		}
		delta := row.Delta
		if delta == "" {
			delta = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f%%\t%d\t%s\t%s\n",
			row.IngredientID, truncate(row.Name, 30), published,
			row.Observed, row.SampleCount, row.Confidence, delta)
	}
	w.Flush()
	return nil
}
