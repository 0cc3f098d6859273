// internal/matching/loader.go
package matching

import (
	"context"
	"errors"
)

// ErrNotFound is returned by loaders when a job or candidate snapshot does
// not exist.
var ErrNotFound = errors.New("SNAPSHOT_NOT_FOUND")

// SnapshotLoader assembles typed snapshots from the backing store.
type SnapshotLoader interface {
	LoadJobSnapshot(ctx context.Context, jobID string) (*JobSnapshot, error)
	LoadCandidateSnapshot(ctx context.Context, candidateID string) (*CandidateSnapshot, error)
}
