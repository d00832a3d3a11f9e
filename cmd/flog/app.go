package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dfryer1193/flog/blog/application"
	"github.com/dfryer1193/flog/blog/domain"
	"github.com/dfryer1193/flog/blog/persistence"
	"github.com/dfryer1193/flog/blog/source"
	"github.com/dfryer1193/flog/internal/config"
	"github.com/dfryer1193/flog/internal/metrics"
	"github.com/dfryer1193/flog/internal/rest"
	"github.com/dfryer1193/flog/shared/db/sqlite"
	gh "github.com/dfryer1193/flog/shared/github"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

// app holds the wired dependencies of a running flog.
type app struct {
	cfg      *config.Config
	database *sqlite.SQLiteDB
	registry *prometheus.Registry
	metrics  *metrics.Collector
	engine   *application.SyncEngine
	services rest.Services
}

func newApp(cfg *config.Config) (*app, error) {
	database := sqlite.NewSQLiteDB(sqlite.SQLiteConfig{Path: cfg.Database.Path})
	if err := database.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", database.Path(), err)
	}

	src, err := newSource(cfg)
	if err != nil {
		database.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	postRepo := persistence.NewPostRepository(database.DB())
	commentRepo := persistence.NewCommentRepository(database.DB())
	platformRepo := persistence.NewPlatformRepository(database.DB())

	engine := application.NewSyncEngine(src, postRepo, application.WithSyncObserver(collector))
	renderer := application.NewMarkdownRenderer(cfg.Server.BaseURL)

	return &app{
		cfg:      cfg,
		database: database,
		registry: registry,
		metrics:  collector,
		engine:   engine,
		services: rest.Services{
			Posts:    application.NewPostService(postRepo, renderer),
			Comments: application.NewCommentService(commentRepo, postRepo),
			Platform: application.NewPlatformService(platformRepo, domain.Platform{
				Title:       cfg.Platform.Title,
				Description: cfg.Platform.Description,
				Footer:      cfg.Platform.Footer,
			}),
			Stats:  application.NewStatsService(postRepo, commentRepo),
			Syncer: engine,
		},
	}, nil
}

func newSource(cfg *config.Config) (domain.FileSource, error) {
	switch cfg.Posts.Source {
	case config.SourceGithub:
		client := gh.NewClient(cfg.Github.Token)
		src := gh.NewGithubSource(client, cfg.Github.Owner, cfg.Github.Repo, cfg.Github.Ref, cfg.Github.Dir)
		log.Info().Str("repo", src.GetRepoFullName()).Str("ref", src.Ref()).Msg("Reading posts from GitHub")
		return src, nil
	case config.SourceLocal:
		log.Info().Str("dir", cfg.Posts.Dir).Msg("Reading posts from local directory")
		return source.NewDirSource(cfg.Posts.Dir), nil
	default:
		return nil, fmt.Errorf("unknown posts source %q", cfg.Posts.Source)
	}
}

func (a *app) health(ctx context.Context) error {
	if a.database.DB() == nil {
		return errors.New("database closed")
	}
	return a.database.DB().PingContext(ctx)
}

func (a *app) Close() error {
	return a.database.Close()
}
