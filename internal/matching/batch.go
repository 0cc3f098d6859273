// internal/matching/batch.go
package matching

import (
	"context"
	"strings"
	"sync"

	"jobmatch-workers/internal/common/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// GetMatchScoresForJobs scores every job for one candidate. Jobs are scored
// independently with bounded concurrency; a job that fails to score is
// logged and left out of the map. Blank and duplicate IDs are dropped and
// the list is capped at MaxBatchSize.
func (s *Service) GetMatchScoresForJobs(ctx context.Context, jobIDs []string, candidateID string) map[string]*MatchResult {
	ids := s.prepareBatch(jobIDs, candidateID)

	ctx, span := s.tracer.Start(ctx, "matching.GetMatchScoresForJobs", trace.WithAttributes(
		attribute.String("candidate.id", candidateID),
		attribute.Int("batch.requested", len(jobIDs)),
		attribute.Int("batch.size", len(ids)),
	))
	defer span.End()

	results := make(map[string]*MatchResult, len(ids))
	if len(ids) == 0 {
		return results
	}
	metrics.MatchBatchSize.Observe(float64(len(ids)))

	// The candidate snapshot is shared by every job of the batch.
	loadCandidate := sync.OnceValues(func() (*CandidateSnapshot, error) {
		return s.loader.LoadCandidateSnapshot(ctx, candidateID)
	})

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.config.BatchConcurrency)

	for _, jobID := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				s.omit(jobID, candidateID, err)
				return nil
			}

			result, err := s.scorePair(ctx, jobID, candidateID, func(context.Context) (*CandidateSnapshot, error) {
				return loadCandidate()
			})
			if err != nil {
				s.omit(jobID, candidateID, err)
				return nil
			}

			mu.Lock()
			results[jobID] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	span.SetAttributes(attribute.Int("batch.scored", len(results)))
	return results
}

func (s *Service) omit(jobID, candidateID string, err error) {
	metrics.MatchBatchOmitted.Inc()
	s.logger.Warn("job omitted from batch match", map[string]interface{}{
		"jobId":       jobID,
		"candidateId": candidateID,
		"error":       err.Error(),
	})
}

func (s *Service) prepareBatch(jobIDs []string, candidateID string) []string {
	seen := make(map[string]struct{}, len(jobIDs))
	ids := make([]string, 0, len(jobIDs))
	for _, id := range jobIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) > s.config.MaxBatchSize {
		s.logger.Warn("batch truncated to max batch size", map[string]interface{}{
			"candidateId":  candidateID,
			"requested":    len(ids),
			"maxBatchSize": s.config.MaxBatchSize,
		})
		ids = ids[:s.config.MaxBatchSize]
	}
	return ids
}
