package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"jobmatch-workers/internal/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	results      map[string]*matching.MatchResult
	invalidated  []string
	candidateAll int
}

func (f *fakeService) GetMatchScore(_ context.Context, jobID, _ string) (*matching.MatchResult, error) {
	if r, ok := f.results[jobID]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("job %s: %w", jobID, matching.ErrNotFound)
}

func (f *fakeService) GetMatchScoresForJobs(_ context.Context, jobIDs []string, _ string) map[string]*matching.MatchResult {
	out := map[string]*matching.MatchResult{}
	for _, id := range jobIDs {
		if r, ok := f.results[id]; ok {
			out[id] = r
		}
	}
	return out
}

func (f *fakeService) InvalidateMatch(_ context.Context, jobID, candidateID string) bool {
	f.invalidated = append(f.invalidated, candidateID+"/"+jobID)
	return true
}

func (f *fakeService) InvalidateCandidateMatches(_ context.Context, candidateID string) int {
	f.invalidated = append(f.invalidated, candidateID+"/*")
	return f.candidateAll
}

// runCLI executes the root command against a fake service and resets the
// flag globals afterwards.
func runCLI(t *testing.T, service matchService, args ...string) (string, error) {
	t.Helper()

	original := openService
	openService = func(context.Context) (matchService, func(), error) {
		return service, func() {}, nil
	}
	t.Cleanup(func() {
		openService = original
		configPath = ""
		scoreJobID, scoreCandidateID = "", ""
		scoreManyCandidateID, scoreManyJobIDs = "", nil
		invalidateCandidateID, invalidateJobID = "", ""
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func fixtures() *fakeService {
	return &fakeService{results: map[string]*matching.MatchResult{
		"job-a": {Score: 64, Explanation: []string{"Good skills match"}},
		"job-b": {Score: 91, Explanation: []string{"Strong skills match"}},
		"job-c": {Score: 64, Explanation: []string{}},
	}}
}

func TestScoreCommand(t *testing.T) {
	out, err := runCLI(t, fixtures(), "score", "--job", "job-b", "--candidate", "cand-1")
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "job-b", body["jobId"])
	assert.Equal(t, float64(91), body["matchScore"])
}

func TestScoreCommand_NotFound(t *testing.T) {
	_, err := runCLI(t, fixtures(), "score", "--job", "job-x", "--candidate", "cand-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, matching.ErrNotFound)
}

func TestScoreManyCommand(t *testing.T) {
	out, err := runCLI(t, fixtures(), "score-many", "--candidate", "cand-1", "--jobs", "job-c,job-a,job-x,job-b")
	require.NoError(t, err)

	var body struct {
		Matches []rankedMatch `json:"matches"`
		Omitted []string      `json:"omitted"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))

	ids := make([]string, 0, len(body.Matches))
	for _, m := range body.Matches {
		ids = append(ids, m.JobID)
	}
	assert.Equal(t, []string{"job-b", "job-a", "job-c"}, ids)
	assert.Equal(t, []string{"job-x"}, body.Omitted)
}

func TestInvalidateCommand(t *testing.T) {
	t.Run("all for candidate", func(t *testing.T) {
		service := fixtures()
		service.candidateAll = 4

		out, err := runCLI(t, service, "invalidate", "--candidate", "cand-1")
		require.NoError(t, err)
		assert.Contains(t, out, `"invalidated": 4`)
		assert.Equal(t, []string{"cand-1/*"}, service.invalidated)
	})

	t.Run("single job", func(t *testing.T) {
		service := fixtures()

		out, err := runCLI(t, service, "invalidate", "--candidate", "cand-1", "--job", "job-a")
		require.NoError(t, err)
		assert.Contains(t, out, `"invalidated": 1`)
		assert.Equal(t, []string{"cand-1/job-a"}, service.invalidated)
	})
}

func writeConfig(t *testing.T, weights string) string {
	t.Helper()
	content := `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: jobmatch
    user: matcher
  redis:
    address: localhost:6379
matching:
  weights:
` + weights
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestWeightsCommand(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := writeConfig(t, `    skills: 0.5
    tech_stack: 0.2
    experience: 0.1
    location: 0.1
    salary: 0.05
    cultural_fit: 0.05
`)
		out, err := runCLI(t, fixtures(), "weights", "--config", path)
		require.NoError(t, err)

		var w matching.Weights
		require.NoError(t, json.Unmarshal([]byte(out), &w))
		assert.InDelta(t, 0.5, w.Skills, 1e-9)
		assert.InDelta(t, 0.05, w.CulturalFit, 1e-9)
	})

	t.Run("invalid sum", func(t *testing.T) {
		path := writeConfig(t, `    skills: 0.5
    tech_stack: 0.5
    experience: 0.5
    location: 0.1
    salary: 0.1
    cultural_fit: 0.1
`)
		_, err := runCLI(t, fixtures(), "weights", "--config", path)
		require.Error(t, err)
	})
}

func TestRegistryCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	t.Cleanup(func() { registryOut, registryPath = "", "configs/activity-registry.json" })

	out, err := runCLI(t, fixtures(), "registry", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 3 activities")

	out, err = runCLI(t, fixtures(), "registry", "validate", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Registry validation passed.")
}

func TestBuildRegistry(t *testing.T) {
	reg, err := buildRegistry(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "2026-10-19T00:00:00Z", reg.LastUpdated)
	activity, ok := reg.Find("calculate-match-score")
	require.True(t, ok)
	assert.Equal(t, "30s", activity.Timeout)
	assert.Equal(t, 3, activity.Retries)
	assert.Contains(t, activity.ErrorCodes, "MATCH_UNAVAILABLE")
	assert.Equal(t, []interface{}{"jobId", "candidateId"}, activity.InputSchema["required"])
}
