// Package main implements matchctl, an operator CLI for scoring job and
// candidate pairs and managing cached match results.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"jobmatch-workers/internal/bootstrap"
	"jobmatch-workers/internal/common/config"
	"jobmatch-workers/internal/common/logger"
	"jobmatch-workers/internal/matching"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "matchctl",
	Short:         "Inspect and manage job/candidate match scores",
	Long:          "matchctl scores job and candidate pairs with the same stores, weights and cache the match workers use, and drops cached results.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config file (defaults to configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level written to stderr")
}

// matchService is what the commands need from matching.Service.
type matchService interface {
	GetMatchScore(ctx context.Context, jobID, candidateID string) (*matching.MatchResult, error)
	GetMatchScoresForJobs(ctx context.Context, jobIDs []string, candidateID string) map[string]*matching.MatchResult
	InvalidateMatch(ctx context.Context, jobID, candidateID string) bool
	InvalidateCandidateMatches(ctx context.Context, candidateID string) int
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// openService connects the configured stores and returns the service with
// a function releasing them.
var openService = func(ctx context.Context) (matchService, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewStructured(logLevel, "console", "stderr")
	stores, err := bootstrap.ConnectStores(ctx, cfg, bootstrap.ConnectOptions{Attempts: 1}, log)
	if err != nil {
		return nil, nil, err
	}

	service, err := bootstrap.NewMatchService(cfg.Matching, stores, log)
	if err != nil {
		stores.Close()
		return nil, nil, err
	}
	return service, stores.Close, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, time.Minute)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
