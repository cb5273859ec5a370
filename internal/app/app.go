// Package app wires configuration into a ready search pipeline. It is shared by
// the HTTP server and the command-line client.
package app

import (
	"context"
	"fmt"

	"projectsearch/internal/cache"
	"projectsearch/internal/config"
	"projectsearch/internal/dataset"
	"projectsearch/internal/logger"
	"projectsearch/internal/metrics"
	"projectsearch/internal/repository"
	"projectsearch/internal/service"
	"projectsearch/internal/utils"
)

// App holds the wired pipeline and the resources it owns
type App struct {
	Dataset *dataset.Dataset
	Service *service.SearchService

	closers []func() error
}

// New loads the dataset and builds the pipeline. Optional dependencies that fail to
// connect are logged and left out.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{}

	var repo *repository.PostgresRepository
	if cfg.Dataset.Source == "postgres" || cfg.PostgreSQL.LogSearches {
		r, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		switch {
		case err == nil:
			repo = r
			a.closers = append(a.closers, r.Close)
			log.Info("connected to PostgreSQL", map[string]interface{}{"host": cfg.PostgreSQL.Host})
		case cfg.Dataset.Source == "postgres":
			return nil, fmt.Errorf("connect to dataset database: %w", err)
		default:
			metrics.DependencyErrors.WithLabelValues("postgres").Inc()
			log.Warn("search log database unavailable, search logging disabled", map[string]interface{}{"error": err.Error()})
		}
	}

	ds, err := loadDataset(ctx, cfg, repo)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Dataset = ds
	log.Info("dataset loaded", map[string]interface{}{
		"source":     cfg.Dataset.Source,
		"projects":   ds.Len(),
		"cities":     len(ds.Cities()),
		"localities": len(ds.Localities()),
	})

	var modelParser service.QueryParser
	if cfg.OpenAI.Enabled {
		client, err := service.NewOpenAIClient(&cfg.OpenAI, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init model client: %w", err)
		}
		modelParser = service.NewModelParser(client, cfg.OpenAI.Timeout, cfg.OpenAI.MaxRetries, log)
		log.Info("external model parser enabled", map[string]interface{}{
			"api_base": cfg.OpenAI.APIBase,
			"model":    cfg.OpenAI.ChatModel,
			"timeout":  cfg.OpenAI.Timeout.String(),
		})
	} else {
		log.Warn("external model parser disabled, set OPENAI_API_KEY to enable it", nil)
	}

	selector := service.NewParserSelector(service.NewRuleBasedParser(ds), modelParser, log)
	matcher := utils.NewMatcher(cfg.Ranking.FuzzyEnabled)
	engine := service.NewSearchEngine(
		service.WithWeights(service.WeightsFromConfig(cfg.Ranking), matcher),
		service.WithRelaxationLadder(service.DefaultRelaxationLadder(cfg.Ranking.BudgetTolerance)),
	)

	opts := []service.ServiceOption{service.WithTopK(cfg.Search.DefaultTopK, cfg.Search.MaxTopK)}
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			metrics.DependencyErrors.WithLabelValues("redis").Inc()
			log.Warn("response cache unavailable, continuing without it", map[string]interface{}{"error": err.Error()})
		} else {
			opts = append(opts, service.WithCache(rc))
			a.closers = append(a.closers, rc.Close)
			log.Info("response cache enabled", map[string]interface{}{"addr": cfg.Redis.Addr, "ttl": cfg.Redis.TTL.String()})
		}
	}
	if repo != nil && cfg.PostgreSQL.LogSearches {
		opts = append(opts, service.WithSearchLog(repo))
	}

	a.Service = service.NewSearchService(ds, selector, engine, log, opts...)
	return a, nil
}

func loadDataset(ctx context.Context, cfg *config.Config, repo *repository.PostgresRepository) (*dataset.Dataset, error) {
	if cfg.Dataset.Source == "postgres" {
		rows, err := repo.LoadProjects(ctx)
		if err != nil {
			return nil, fmt.Errorf("load projects: %w", err)
		}
		return dataset.New(rows)
	}
	return dataset.LoadCSVDir(cfg.Dataset.Dir)
}

// Close waits for pending search logs and releases connections
func (a *App) Close() error {
	if a.Service != nil {
		a.Service.Wait()
	}
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
