package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobmatch-workers/internal/common/config"
	"jobmatch-workers/internal/common/database"
	"jobmatch-workers/internal/common/logger"
	"jobmatch-workers/internal/matching"
	"jobmatch-workers/internal/snapshot"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgres(t *testing.T) (*database.PostgresClient, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &database.PostgresClient{DB: db}, mock
}

func newMiniRedis(t *testing.T) *database.RedisClient {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })
	return rc
}

func newElasticsearch(t *testing.T) *database.ElasticsearchClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	es, err := database.NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func TestNewSnapshotLoader(t *testing.T) {
	pg, _ := newMockPostgres(t)
	log := logger.NewTestLogger(t)
	cfg := config.DefaultMatchingConfig()

	t.Run("postgres job source", func(t *testing.T) {
		loader, err := NewSnapshotLoader(cfg, &Stores{Postgres: pg}, log)
		require.NoError(t, err)
		assert.IsType(t, &snapshot.PostgresLoader{}, loader)
	})

	t.Run("elasticsearch job source", func(t *testing.T) {
		esCfg := cfg
		esCfg.JobSource = config.JobSourceElasticsearch

		loader, err := NewSnapshotLoader(esCfg, &Stores{Postgres: pg, Elasticsearch: newElasticsearch(t)}, log)
		require.NoError(t, err)

		composite, ok := loader.(*snapshot.Composite)
		require.True(t, ok)
		assert.IsType(t, &snapshot.ElasticsearchJobLoader{}, composite.Jobs)
		assert.IsType(t, &snapshot.PostgresLoader{}, composite.Candidates)
	})

	t.Run("elasticsearch source without client", func(t *testing.T) {
		esCfg := cfg
		esCfg.JobSource = config.JobSourceElasticsearch

		_, err := NewSnapshotLoader(esCfg, &Stores{Postgres: pg}, log)
		assert.Error(t, err)
	})

	t.Run("postgres is required", func(t *testing.T) {
		_, err := NewSnapshotLoader(cfg, &Stores{}, log)
		assert.Error(t, err)
	})

	t.Run("unknown source", func(t *testing.T) {
		badCfg := cfg
		badCfg.JobSource = "mongodb"

		_, err := NewSnapshotLoader(badCfg, &Stores{Postgres: pg}, log)
		assert.Error(t, err)
	})
}

func TestNewResultCache(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultMatchingConfig()

	t.Run("memory", func(t *testing.T) {
		memCfg := cfg
		memCfg.CacheDriver = config.CacheDriverMemory

		rc, err := NewResultCache(memCfg, nil)
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, rc.TTL())
	})

	t.Run("redis", func(t *testing.T) {
		redisCfg := cfg
		redisCfg.CacheDriver = config.CacheDriverRedis

		rc, err := NewResultCache(redisCfg, &Stores{Redis: newMiniRedis(t)})
		require.NoError(t, err)

		require.NoError(t, rc.Put(ctx, "job-1", "cand-1", &matching.MatchResult{Score: 77}, 0))
		got, found, err := rc.Get(ctx, "job-1", "cand-1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 77, got.Score)
	})

	t.Run("redis driver without client", func(t *testing.T) {
		redisCfg := cfg
		redisCfg.CacheDriver = config.CacheDriverRedis

		_, err := NewResultCache(redisCfg, &Stores{})
		assert.Error(t, err)
	})
}

func TestNewMatchService(t *testing.T) {
	pg, _ := newMockPostgres(t)
	log := logger.NewTestLogger(t)

	cfg := config.DefaultMatchingConfig()
	cfg.CacheDriver = config.CacheDriverMemory

	service, err := NewMatchService(cfg, &Stores{Postgres: pg}, log)
	require.NoError(t, err)
	assert.Equal(t, cfg.BatchConcurrency, service.Config().BatchConcurrency)

	cfg.Weights.Skills = 0.9
	_, err = NewMatchService(cfg, &Stores{Postgres: pg}, log)
	assert.ErrorIs(t, err, matching.ErrInvalidWeights)
}

func TestStores_Ready(t *testing.T) {
	pg, mock := newMockPostgres(t)
	stores := &Stores{Postgres: pg, Redis: newMiniRedis(t), Elasticsearch: newElasticsearch(t)}

	mock.ExpectPing()
	assert.NoError(t, stores.Ready(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection reset"))
	err := stores.Ready(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetryWithBackoff(t *testing.T) {
	log := logger.NewTestLogger(t)

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		}, 5, time.Millisecond, log, "test operation")

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			return errors.New("down")
		}, 3, time.Millisecond, log, "test operation")

		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Contains(t, err.Error(), "failed after 3 attempts")
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return errors.New("down")
		}, 5, time.Hour, log, "test operation")

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestConnectStores_PostgresUnreachable(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Postgres: config.PostgresConfig{
			Host: "127.0.0.1", Port: 1, Database: "jobs", User: "test", SSLMode: "disable",
		}},
		Matching: config.DefaultMatchingConfig(),
	}

	_, err := ConnectStores(context.Background(), cfg, ConnectOptions{Attempts: 2, InitialDelay: time.Millisecond}, logger.NewTestLogger(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PostgreSQL connection failed after 2 attempts")
}
