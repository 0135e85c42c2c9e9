package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zulandar/mashtun/internal/brewcalc"
	"github.com/zulandar/mashtun/internal/recipe"
	"github.com/zulandar/mashtun/internal/share"
	"golang.org/x/term"
)

func newShareCmd() *cobra.Command {
	var (
		configPath string
		public     bool
	)

	cmd := &cobra.Command{
		Use:   "share <recipe-id>",
		Short: "Publish a recipe as a GitHub Gist",
		Long: `Publishes a recipe as a single-file markdown gist: grain bill, hop
schedule, and vitals. Gists are secret by default, reachable by URL but
unlisted; --public lists the gist on your profile. The GitHub token comes
from share.github_token in the config, or an interactive prompt when
running in a terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShare(cmd, configPath, args[0], public)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	cmd.Flags().BoolVar(&public, "public", false, "make the gist public")
	return cmd
}

func runShare(cmd *cobra.Command, configPath, id string, public bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	r, err := recipe.Get(gormDB, id)
	if err != nil {
		return err
	}

	// Share the stored snapshot; compute one first when the recipe has
	// lines but has never been through the engine.
	var m *brewcalc.Metrics
	if r.MetricsAt != nil {
		m = &brewcalc.Metrics{
			OG: r.OG, FG: r.FG, ABV: r.ABV, IBU: r.IBU, SRM: r.SRM,
			Estimated: r.MetricsEstimated,
		}
	} else if len(r.Ingredients) > 0 {
		m, err = recipe.Recompute(gormDB, id)
		if err != nil {
			return err
		}
	}

	token := cfg.Share.GitHubToken
	if token == "" {
		token, err = promptToken(cmd, configPath)
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	pub, err := share.NewPublisher(ctx, share.PublisherOpts{Token: token})
	if err != nil {
		return err
	}

	url, err := pub.Publish(ctx, share.RecipeGist(r, m, public))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	visibility := "secret"
	if public {
		visibility = "public"
	}
	fmt.Fprintf(out, "Published %s as a %s gist\n", r.Name, visibility)
	fmt.Fprintln(out, url)
	return nil
}

// promptToken reads a GitHub token without echo. Paths with no terminal
// (pipes, CI) get an error pointing at the config key instead of a hang.
func promptToken(cmd *cobra.Command, configPath string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("share: no github token configured; set share.github_token in %s", configPath)
	}

	fmt.Fprint(cmd.OutOrStdout(), "GitHub token (gist scope): ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("share: read token: %w", err)
	}
	if len(b) == 0 {
		return "", fmt.Errorf("share: github token is required")
	}
	return string(b), nil
}
