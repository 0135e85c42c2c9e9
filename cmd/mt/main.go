package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mt",
		Short: "Mashtun — homebrew recipe manager",
		Long:  "Mashtun manages beer recipes, predicts their vitals, and tracks fermentations.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newIngredientCmd())
	cmd.AddCommand(newRecipeCmd())
	cmd.AddCommand(newSessionCmd())
	cmd.AddCommand(newAnalyticsCmd())
	cmd.AddCommand(newCellarCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newShareCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mt %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
