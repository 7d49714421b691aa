package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"cafedash/internal/config"
	"cafedash/internal/dashboard"
	"cafedash/internal/dataset"
	"cafedash/internal/normalize"
	"cafedash/internal/ordering"
	"cafedash/internal/server"
	"cafedash/internal/sheets"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg       *config.Config
	reader    sheets.Reader
	remote    sheets.SpreadsheetReader
	loader    *dataset.Loader
	dashboard *dashboard.Service
	composer  *ordering.Composer
	webhook   *ordering.WebhookClient
	metrics   *server.Metrics
	redis     *redis.Client
}

// newApp builds the sheet source, the optional row cache and everything on
// top of them. metrics may be nil.
func newApp(ctx context.Context, cfg *config.Config, metrics *server.Metrics, log zerolog.Logger) (*app, error) {
	const op = "newApp"

	a := &app{cfg: cfg, metrics: metrics, composer: ordering.NewComposer()}

	limiter := rate.NewLimiter(rate.Limit(cfg.SheetsRPS), cfg.SheetsBurst)
	switch cfg.Source {
	case config.SourceAPI:
		svc, err := sheets.NewSheetsService(ctx, cfg.SheetID, cfg.Credentials, limiter)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.reader, a.remote = svc, svc
	case config.SourceGViz:
		client, err := sheets.NewGVizClient(cfg.SheetID, nil, limiter)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.reader, a.remote = client, client
	case config.SourceXLSX:
		a.reader = sheets.NewXLSXReader(cfg.XLSXFile)
	default:
		return nil, fmt.Errorf("%s: %w: got %q", op, config.ErrInvalidSource, cfg.Source)
	}

	if cfg.CacheEnabled() {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, rows will be read uncached until it recovers")
		}
		a.reader = sheets.NewCachedReader(a.reader, a.redis, cfg.CacheTTL, "cafedash")
	}

	aliases, err := normalize.LoadAliases(cfg.AliasesFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.loader = dataset.NewLoader(a.reader, normalize.New(aliases), cfg.Sheets, dataset.NewMetrics(metrics.Registerer()))
	a.dashboard = dashboard.NewService(a.loader)
	if cfg.RequireWebhook() == nil {
		a.webhook = ordering.NewWebhookClient(cfg.OrderWebhookURL, cfg.WebhookTimeout)
	}

	log.Debug().
		Str("source", cfg.Source).
		Bool("cache", a.redis != nil).
		Bool("webhook", a.webhook != nil).
		Msg("Components wired")
	return a, nil
}

func (a *app) serverDeps() server.Deps {
	return server.Deps{
		Reader:    a.reader,
		Remote:    a.remote,
		Loader:    a.loader,
		Dashboard: a.dashboard,
		Composer:  a.composer,
		Webhook:   a.webhook,
		Metrics:   a.metrics,
	}
}

// Close releases the Redis connection, if any.
func (a *app) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
