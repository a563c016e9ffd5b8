package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sercha-wiki/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-wiki/internal/connectors/confluence"
	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-wiki/internal/core/services"
	"github.com/custodia-labs/sercha-wiki/internal/logger"
	"github.com/custodia-labs/sercha-wiki/internal/normalisers/html"
)

// bootstrap wires adapters into the core services for one command run.
func bootstrap(opts cli.Options) (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	svc := &cli.Services{Settings: settingsService}

	var client *confluence.Client
	if settings.Wiki.IsConfigured() {
		client, err = confluence.NewClient(confluence.ConfigFromSettings(settings.Wiki))
		if err != nil {
			logger.Warn("wiki client disabled: %v", err)
			client = nil
		}
	}
	if client != nil {
		svc.Origin = client.Origin()
		fetcherOpts := services.FetcherOptions{
			PageSize:  settings.Wiki.PageSize,
			RetryOnce: settings.Search.RetryOnce,
		}
		svc.NewSession = func() driving.SearchSession {
			return services.NewSearchSession(client, services.NewQueryBuilder(), fetcherOpts)
		}
	}

	var (
		summaryStore      driven.SummaryStore
		conversationStore driven.ConversationStore
	)
	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		logger.Warn("summary cache is memory-only: %v", err)
		store = nil
		summaryStore = memory.NewSummaryStore()
		conversationStore = memory.NewConversationStore()
	} else {
		logger.Debug("summary cache at %s", store.Path())
		summaryStore = store.SummaryStore()
		conversationStore = store.ConversationStore()
	}

	cache := services.NewSummaryCache(summaryStore)
	conversations := services.NewConversationService(conversationStore)

	if store != nil {
		svc.Stats = func(ctx context.Context) (domain.CacheStats, error) {
			stats, err := store.Stats(ctx)
			if err != nil {
				return domain.CacheStats{}, err
			}
			stats.Degraded = cache.Degraded()
			return stats, nil
		}
	}

	llm := ai.Initialise(&settings.LLM, false)
	for _, w := range llm.Warnings {
		logger.Debug("llm: %s", w)
	}

	if client != nil {
		summary := services.NewSummaryService(client, html.New(), llm.LLMService, cache, conversations,
			services.SummaryOptions{
				MaxBodyChars: settings.Summary.MaxBodyChars,
				MaxTokens:    settings.Summary.MaxTokens,
			})

		promptDir := ""
		if opts.ConfigDir != "" {
			promptDir = filepath.Join(opts.ConfigDir, "prompts")
		}
		prompts, err := file.NewPromptStore(promptDir, services.DefaultPrompts())
		if err != nil {
			logger.Warn("using built-in prompts: %v", err)
		} else {
			summary.SetPromptStore(prompts)
			svc.WatchPrompts = file.NewPromptWatcher(prompts, nil).Watch
		}
		svc.Summary = summary
	}

	release := func() {
		llm.Close()
		if store != nil {
			if err := store.Close(); err != nil {
				logger.Debug("close cache: %v", err)
			}
		}
	}

	return svc, release, nil
}
