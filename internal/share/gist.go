// Package share publishes recipes as GitHub Gists. The markdown body is
// self-contained: anyone with the link can read the full grain bill and
// vitals without running anything.
package share

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v68/github"
	"github.com/zulandar/mashtun/internal/brewcalc"
	"github.com/zulandar/mashtun/internal/models"
	"golang.org/x/oauth2"
)

// gistClient abstracts the GitHub Gists API methods we use, enabling test
// mocks. *github.GistsService satisfies it directly.
type gistClient interface {
	Create(ctx context.Context, gist *github.Gist) (*github.Gist, *github.Response, error)
}

// Publisher creates gists on behalf of a GitHub user.
type Publisher struct {
	client gistClient
}

// PublisherOpts holds parameters for creating a Publisher.
type PublisherOpts struct {
	Token string // GitHub personal access token with the gist scope
	// For testing: inject a mock client instead of the real GitHub API.
	Client gistClient
}

// NewPublisher creates a gist Publisher authenticated with a personal
// access token.
func NewPublisher(ctx context.Context, opts PublisherOpts) (*Publisher, error) {
	if opts.Client != nil {
		return &Publisher{client: opts.Client}, nil
	}
	if opts.Token == "" {
		return nil, fmt.Errorf("share: github token is required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	tc := oauth2.NewClient(ctx, ts)
	return &Publisher{client: github.NewClient(tc).Gists}, nil
}

// PublishOpts describes one gist: a single markdown file plus visibility.
type PublishOpts struct {
	Filename    string // default: recipe.md
	Description string
	Content     string
	Public      bool // secret gists are still reachable by URL, just unlisted
}

// Publish creates the gist and returns its HTML URL.
func (p *Publisher) Publish(ctx context.Context, opts PublishOpts) (string, error) {
	if opts.Content == "" {
		return "", fmt.Errorf("share: nothing to publish: content is empty")
	}
	filename := opts.Filename
	if filename == "" {
		filename = "recipe.md"
	}

	gist := &github.Gist{
		Description: github.String(opts.Description),
		Public:      github.Bool(opts.Public),
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(filename): {Content: github.String(opts.Content)},
		},
	}

	created, _, err := p.client.Create(ctx, gist)
	if err != nil {
		return "", fmt.Errorf("share: create gist: %w", err)
	}
	return created.GetHTMLURL(), nil
}

// RecipeGist builds the publish options for a recipe: a slug filename, a
// description from name and style, and the formatted markdown body. Metrics
// may be nil when the recipe has never been computed.
func RecipeGist(r *models.Recipe, m *brewcalc.Metrics, public bool) PublishOpts {
	desc := r.Name
	if r.Style != "" {
		desc = fmt.Sprintf("%s (%s)", r.Name, r.Style)
	}
	return PublishOpts{
		Filename:    slug(r.Name) + ".md",
		Description: desc,
		Content:     FormatMarkdown(r, r.Ingredients, m),
		Public:      public,
	}
}

// slug lowercases a name and collapses everything outside [a-z0-9] into
// single hyphens.
func slug(name string) string {
	var b strings.Builder
	pending := false
	for _, c := range strings.ToLower(name) {
		isAlnum := (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
		if !isAlnum {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte('-')
			pending = false
		}
		b.WriteRune(c)
	}
	if b.Len() == 0 {
		return "recipe"
	}
	return b.String()
}
