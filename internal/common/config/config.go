// internal/common/config/config.go
package config

import (
	"fmt"
	"time"

	"jobmatch-workers/internal/matching"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Matching MatchingConfig          `mapstructure:"matching"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetAddresses returns the configured addresses, falling back to URL.
func (e ElasticsearchConfig) GetAddresses() []string {
	if len(e.Addresses) > 0 {
		return e.Addresses
	}
	if e.URL != "" {
		return []string{e.URL}
	}
	return nil
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

const (
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"

	JobSourcePostgres      = "postgres"
	JobSourceElasticsearch = "elasticsearch"
)

// MatchingConfig configures the matching engine, its cache and the batch
// evaluator.
type MatchingConfig struct {
	Weights          matching.Weights `mapstructure:"weights"`
	CacheTTL         time.Duration    `mapstructure:"cache_ttl" validate:"gt=0"`
	CacheDriver      string           `mapstructure:"cache_driver" validate:"oneof=redis memory"`
	BatchConcurrency int              `mapstructure:"batch_concurrency" validate:"gte=1,lte=256"`
	MaxBatchSize     int              `mapstructure:"max_batch_size" validate:"gte=1,lte=500"`
	JobSource        string           `mapstructure:"job_source" validate:"oneof=postgres elasticsearch"`
	JobsIndex        string           `mapstructure:"jobs_index" validate:"required"`
	WorkHistoryDepth int              `mapstructure:"work_history_depth" validate:"gte=1"`
	MetricsAddress   string           `mapstructure:"metrics_address" validate:"required"`
}

// ServiceConfig returns the settings consumed by matching.Service.
func (m MatchingConfig) ServiceConfig() matching.ServiceConfig {
	return matching.ServiceConfig{
		CacheTTL:         m.CacheTTL,
		BatchConcurrency: m.BatchConcurrency,
		MaxBatchSize:     m.MaxBatchSize,
	}
}
