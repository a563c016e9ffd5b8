// Package cli implements the sercha-wiki command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-wiki/internal/logger"
)

// version is set by Execute from the build.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services are the application services the commands run against.
type Services struct {
	// Settings reads and writes configuration.
	Settings driving.SettingsService

	// NewSession creates a search session. Nil when the wiki is not configured.
	NewSession func() driving.SearchSession

	// Summary generates summaries. Nil when no LLM is configured.
	Summary driving.SummaryService

	// Stats reports persistent cache statistics.
	Stats func(ctx context.Context) (domain.CacheStats, error)

	// Origin is the wiki base URL.
	Origin string

	// WatchPrompts starts reloading prompt files on change.
	// Long-running commands call it; it may be nil.
	WatchPrompts func(ctx context.Context) error
}

// Options are the global flags handed to the bootstrap function.
type Options struct {
	ConfigDir string
	Verbose   bool
}

// BootstrapFunc builds the services once flags are parsed.
// The returned function releases them.
type BootstrapFunc func(opts Options) (*Services, func(), error)

var (
	settingsService driving.SettingsService
	newSession      func() driving.SearchSession
	summaryService  driving.SummaryService
	cacheStats      func(ctx context.Context) (domain.CacheStats, error)
	wikiOrigin      string
	watchPrompts    func(ctx context.Context) error

	bootstrap BootstrapFunc
	release   func()
)

var errWikiNotConfigured = errors.New(
	"wiki not configured: run 'sercha-wiki settings set wiki.base_url <url>' and 'sercha-wiki settings token'")

var (
	errSettingsNotConfigured = errors.New("settings service not configured")
	errSummaryNotConfigured  = errors.New("summary service not configured")
)

var rootCmd = &cobra.Command{
	Use:   "sercha-wiki",
	Short: "Search your wiki and summarise what you find",
	Long: `sercha-wiki searches a Confluence wiki, groups results under the pages
they live in, and summarises pages with the LLM of your choice.

Summaries and follow-up conversations are cached locally, so reopening a
page never calls the model twice.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if release != nil {
			release()
			release = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.sercha-wiki)")
}

// SetServices installs the services used by every command.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settingsService = s.Settings
	newSession = s.NewSession
	summaryService = s.Summary
	cacheStats = s.Stats
	wikiOrigin = s.Origin
	watchPrompts = s.WatchPrompts
}

// SetBootstrap registers the function that builds services after flags are parsed.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil {
		return nil
	}

	services, cleanup, err := bootstrap(Options{ConfigDir: configDir, Verbose: verbose})
	if err != nil {
		return err
	}
	SetServices(services)
	release = cleanup
	return nil
}

func requireSession() (driving.SearchSession, error) {
	if newSession == nil {
		return nil, errWikiNotConfigured
	}
	return newSession(), nil
}

func requireSummary() (driving.SummaryService, error) {
	if summaryService == nil {
		return nil, errSummaryNotConfigured
	}
	return summaryService, nil
}

func summaryKey(contentID string) domain.SummaryKey {
	return domain.SummaryKey{ContentID: contentID, Origin: wikiOrigin}
}
