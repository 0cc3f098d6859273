// internal/matching/service.go
package matching

import (
	"context"
	"fmt"
	"time"

	"jobmatch-workers/internal/common/logger"
	"jobmatch-workers/internal/common/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "jobmatch-workers/matching"

const (
	DefaultBatchConcurrency = 16
	DefaultMaxBatchSize     = 50
)

type ServiceConfig struct {
	CacheTTL         time.Duration
	BatchConcurrency int
	MaxBatchSize     int
}

func (c ServiceConfig) withDefaults() ServiceConfig {
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = DefaultBatchConcurrency
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	return c
}

// ScoreRecorder receives every produced score.
type ScoreRecorder interface {
	RecordMatchScore(ctx context.Context, score int)
}

// Service is the entry point used by workers and tools. The cache is
// optional: a nil cache scores every request from fresh snapshots.
//
// Invalidation is best effort. A score computed concurrently with an
// invalidation may reflect the old or the new profile and can stay cached
// for at most the cache TTL.
type Service struct {
	scorer   *Scorer
	loader   SnapshotLoader
	cache    *ResultCache
	config   ServiceConfig
	logger   logger.Logger
	tracer   trace.Tracer
	recorder ScoreRecorder
}

func NewService(scorer *Scorer, loader SnapshotLoader, cache *ResultCache, config ServiceConfig, log logger.Logger) *Service {
	return &Service{
		scorer: scorer,
		loader: loader,
		cache:  cache,
		config: config.withDefaults(),
		logger: log.WithFields(map[string]interface{}{"component": "matching"}),
		tracer: otel.Tracer(tracerName),
	}
}

// WithRecorder attaches a score recorder and returns the service.
func (s *Service) WithRecorder(r ScoreRecorder) *Service {
	s.recorder = r
	return s
}

func (s *Service) Config() ServiceConfig {
	return s.config
}

// GetMatchScore returns the match of one job and one candidate. A missing
// snapshot yields an error wrapping ErrNotFound.
func (s *Service) GetMatchScore(ctx context.Context, jobID, candidateID string) (*MatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "matching.GetMatchScore", trace.WithAttributes(
		attribute.String("job.id", jobID),
		attribute.String("candidate.id", candidateID),
	))
	defer span.End()

	result, err := s.scorePair(ctx, jobID, candidateID, func(ctx context.Context) (*CandidateSnapshot, error) {
		return s.loader.LoadCandidateSnapshot(ctx, candidateID)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("match.score", result.Score))
	return result, nil
}

type candidateFunc func(ctx context.Context) (*CandidateSnapshot, error)

func (s *Service) scorePair(ctx context.Context, jobID, candidateID string, loadCandidate candidateFunc) (*MatchResult, error) {
	if cached, ok := s.readCache(ctx, jobID, candidateID); ok {
		metrics.MatchResults.WithLabelValues("cache").Inc()
		return cached, nil
	}

	start := time.Now()

	job, err := s.loader.LoadJobSnapshot(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", jobID, err)
	}
	candidate, err := loadCandidate(ctx)
	if err != nil {
		return nil, fmt.Errorf("load candidate %s: %w", candidateID, err)
	}

	result := s.scorer.Score(job, candidate)
	metrics.MatchComputeDuration.Observe(time.Since(start).Seconds())
	metrics.MatchResults.WithLabelValues("computed").Inc()
	if s.recorder != nil {
		s.recorder.RecordMatchScore(ctx, result.Score)
	}

	s.writeCache(ctx, jobID, candidateID, result)

	s.logger.Debug("match score calculated", map[string]interface{}{
		"jobId":       jobID,
		"candidateId": candidateID,
		"score":       result.Score,
		"breakdown":   result.Breakdown,
	})
	return result, nil
}

func (s *Service) readCache(ctx context.Context, jobID, candidateID string) (*MatchResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	result, found, err := s.cache.Get(ctx, jobID, candidateID)
	if err != nil {
		metrics.MatchCacheErrors.WithLabelValues("get").Inc()
		s.logger.Warn("match cache read failed, computing", map[string]interface{}{
			"jobId":       jobID,
			"candidateId": candidateID,
			"error":       err.Error(),
		})
		return nil, false
	}
	return result, found
}

func (s *Service) writeCache(ctx context.Context, jobID, candidateID string, result *MatchResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, jobID, candidateID, result, s.config.CacheTTL); err != nil {
		metrics.MatchCacheErrors.WithLabelValues("put").Inc()
		s.logger.Warn("match cache write failed", map[string]interface{}{
			"jobId":       jobID,
			"candidateId": candidateID,
			"error":       err.Error(),
		})
	}
}

// InvalidateMatch drops the cached result of a single pair. It reports
// whether the store accepted the delete.
func (s *Service) InvalidateMatch(ctx context.Context, jobID, candidateID string) bool {
	if s.cache == nil {
		return false
	}
	if err := s.cache.Invalidate(ctx, jobID, candidateID); err != nil {
		metrics.MatchCacheErrors.WithLabelValues("invalidate").Inc()
		s.logger.Warn("match cache invalidation failed", map[string]interface{}{
			"jobId":       jobID,
			"candidateId": candidateID,
			"error":       err.Error(),
		})
		return false
	}
	return true
}

// InvalidateCandidateMatches drops every cached result for the candidate.
// Called whenever skills, work history, education or job preferences
// change. Failures are logged and reported as zero removed entries.
func (s *Service) InvalidateCandidateMatches(ctx context.Context, candidateID string) int {
	ctx, span := s.tracer.Start(ctx, "matching.InvalidateCandidateMatches", trace.WithAttributes(
		attribute.String("candidate.id", candidateID),
	))
	defer span.End()

	if s.cache == nil {
		return 0
	}
	removed, err := s.cache.InvalidateAllForCandidate(ctx, candidateID)
	if err != nil {
		metrics.MatchCacheErrors.WithLabelValues("invalidate_candidate").Inc()
		span.RecordError(err)
		s.logger.Warn("candidate match invalidation failed", map[string]interface{}{
			"candidateId": candidateID,
			"error":       err.Error(),
		})
		return 0
	}

	span.SetAttributes(attribute.Int("cache.removed", removed))
	s.logger.Info("candidate matches invalidated", map[string]interface{}{
		"candidateId": candidateID,
		"removed":     removed,
	})
	return removed
}
