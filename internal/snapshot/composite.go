// internal/snapshot/composite.go
package snapshot

import (
	"context"

	"jobmatch-workers/internal/matching"
)

type JobLoader interface {
	LoadJobSnapshot(ctx context.Context, jobID string) (*matching.JobSnapshot, error)
}

type CandidateLoader interface {
	LoadCandidateSnapshot(ctx context.Context, candidateID string) (*matching.CandidateSnapshot, error)
}

// Composite serves jobs and candidates from different sources, e.g. jobs
// from the search index and candidates from Postgres.
type Composite struct {
	Jobs       JobLoader
	Candidates CandidateLoader
}

var _ matching.SnapshotLoader = (*Composite)(nil)

func (c *Composite) LoadJobSnapshot(ctx context.Context, jobID string) (*matching.JobSnapshot, error) {
	return c.Jobs.LoadJobSnapshot(ctx, jobID)
}

func (c *Composite) LoadCandidateSnapshot(ctx context.Context, candidateID string) (*matching.CandidateSnapshot, error) {
	return c.Candidates.LoadCandidateSnapshot(ctx, candidateID)
}
