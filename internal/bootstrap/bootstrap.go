// Package bootstrap connects the backing stores and assembles the matching
// service from configuration. It is shared by the worker manager and
// matchctl.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"jobmatch-workers/internal/common/config"
	"jobmatch-workers/internal/common/database"
	"jobmatch-workers/internal/common/logger"
	"jobmatch-workers/internal/matching"
	"jobmatch-workers/internal/matching/cache"
	"jobmatch-workers/internal/snapshot"
)

type ConnectOptions struct {
	Attempts     int
	InitialDelay time.Duration
}

// Stores holds the open store clients. Redis is nil with the memory cache
// driver; Elasticsearch is nil unless jobs come from the search index.
type Stores struct {
	Postgres      *database.PostgresClient
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient
}

// ConnectStores opens every store the matching configuration needs,
// retrying each connection with exponential backoff.
func ConnectStores(ctx context.Context, cfg *config.Config, opts ConnectOptions, log logger.Logger) (*Stores, error) {
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 2 * time.Second
	}

	stores := &Stores{}

	err := RetryWithBackoff(ctx, func() error {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return err
		}
		stores.Postgres = pg
		return nil
	}, opts.Attempts, opts.InitialDelay, log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	log.Info("PostgreSQL connected successfully", nil)

	if cfg.Matching.CacheDriver == config.CacheDriverRedis {
		err = RetryWithBackoff(ctx, func() error {
			rc, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			if err := rc.Ping(ctx); err != nil {
				rc.Close()
				return err
			}
			stores.Redis = rc
			return nil
		}, opts.Attempts, opts.InitialDelay, log, "Redis connection")
		if err != nil {
			stores.Close()
			return nil, err
		}
		log.Info("Redis connected successfully", nil)
	}

	if cfg.Matching.JobSource == config.JobSourceElasticsearch {
		err = RetryWithBackoff(ctx, func() error {
			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := es.Ping(ctx); err != nil {
				return err
			}
			stores.Elasticsearch = es
			return nil
		}, opts.Attempts, opts.InitialDelay, log, "Elasticsearch connection")
		if err != nil {
			stores.Close()
			return nil, err
		}
		log.Info("Elasticsearch connected successfully", nil)
	}

	return stores, nil
}

// Ready pings every open store.
func (s *Stores) Ready(ctx context.Context) error {
	if s.Postgres != nil {
		if err := s.Postgres.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if s.Elasticsearch != nil {
		if err := s.Elasticsearch.Ping(ctx); err != nil {
			return fmt.Errorf("elasticsearch: %w", err)
		}
	}
	return nil
}

func (s *Stores) Close() {
	if s.Redis != nil {
		s.Redis.Close()
	}
	if s.Postgres != nil {
		s.Postgres.Close()
	}
}

// NewMatchService builds the scorer, the snapshot loader and the result
// cache selected by cfg.
func NewMatchService(cfg config.MatchingConfig, stores *Stores, log logger.Logger) (*matching.Service, error) {
	scorer, err := matching.NewScorer(cfg.Weights)
	if err != nil {
		return nil, err
	}

	loader, err := NewSnapshotLoader(cfg, stores, log)
	if err != nil {
		return nil, err
	}

	resultCache, err := NewResultCache(cfg, stores)
	if err != nil {
		return nil, err
	}

	return matching.NewService(scorer, loader, resultCache, cfg.ServiceConfig(), log), nil
}

// NewSnapshotLoader always reads candidates from Postgres. Jobs come from
// Postgres or, with the elasticsearch job source, from the jobs index.
func NewSnapshotLoader(cfg config.MatchingConfig, stores *Stores, log logger.Logger) (matching.SnapshotLoader, error) {
	if stores == nil || stores.Postgres == nil {
		return nil, fmt.Errorf("postgres is required for candidate snapshots")
	}
	pgLoader := snapshot.NewPostgresLoader(stores.Postgres.DB, cfg.WorkHistoryDepth, log)

	switch cfg.JobSource {
	case "", config.JobSourcePostgres:
		return pgLoader, nil
	case config.JobSourceElasticsearch:
		if stores.Elasticsearch == nil {
			return nil, fmt.Errorf("elasticsearch job source selected but no elasticsearch client")
		}
		return &snapshot.Composite{
			Jobs:       snapshot.NewElasticsearchJobLoader(stores.Elasticsearch.Client, cfg.JobsIndex, log),
			Candidates: pgLoader,
		}, nil
	default:
		return nil, fmt.Errorf("unknown job source %q", cfg.JobSource)
	}
}

func NewResultCache(cfg config.MatchingConfig, stores *Stores) (*matching.ResultCache, error) {
	switch cfg.CacheDriver {
	case "", config.CacheDriverMemory:
		return matching.NewResultCache(cache.NewMemoryStore(), cfg.CacheTTL), nil
	case config.CacheDriverRedis:
		if stores == nil || stores.Redis == nil {
			return nil, fmt.Errorf("redis cache driver selected but no redis client")
		}
		return matching.NewResultCache(cache.NewRedisStore(stores.Redis.Client), cfg.CacheTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.CacheDriver)
	}
}

// RetryWithBackoff runs operation until it succeeds, doubling the delay
// after each failure.
func RetryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: %w", operationName, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
