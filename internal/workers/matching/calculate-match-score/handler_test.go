package calculatematchscore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"jobmatch-workers/internal/common/config"
	"jobmatch-workers/internal/common/errors"
	"jobmatch-workers/internal/common/logger"
	"jobmatch-workers/internal/matching"
	"jobmatch-workers/internal/matching/cache"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Service Implementation
// ==========================

type MockService struct {
	mock.Mock
}

func (m *MockService) GetMatchScore(ctx context.Context, jobID, candidateID string) (*matching.MatchResult, error) {
	args := m.Called(ctx, jobID, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*matching.MatchResult), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "job-listing-process",
		ElementId:          "Activity_CalculateMatchScore",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func createTestHandler(t *testing.T, service MatchService) *Handler {
	t.Helper()
	handler, err := NewHandler(HandlerOptions{
		Service:      service,
		CustomConfig: DefaultConfig(),
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return handler
}

func sampleResult() *matching.MatchResult {
	return &matching.MatchResult{
		Score: 88,
		Breakdown: matching.Breakdown{
			Skills: 92, TechStack: 71, Experience: 100, Location: 100, Salary: 80, CulturalFit: 60,
		},
		Explanation: []string{"Strong skills match", "Experience level fits the role", "Location preferences align"},
	}
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	service := new(MockService)
	service.On("GetMatchScore", mock.Anything, "job-1", "cand-1").Return(sampleResult(), nil)

	handler := createTestHandler(t, service)
	output, err := handler.Execute(context.Background(), &Input{JobID: " job-1 ", CandidateID: "cand-1"})

	require.NoError(t, err)
	assert.Equal(t, "job-1", output.JobID)
	assert.Equal(t, "cand-1", output.CandidateID)
	assert.Equal(t, 88, output.MatchScore)
	assert.Equal(t, 92, output.Breakdown.Skills)
	assert.Len(t, output.Explanation, 3)
	service.AssertExpectations(t)
}

func TestHandler_Execute_BlankIDs(t *testing.T) {
	service := new(MockService)
	handler := createTestHandler(t, service)

	_, err := handler.Execute(context.Background(), &Input{JobID: "  ", CandidateID: "cand-1"})

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidMatchInput, stdErr.Code)
	service.AssertNotCalled(t, "GetMatchScore", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Execute_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      errors.ErrorCode
		retryable bool
	}{
		{
			name: "missing job",
			err:  fmt.Errorf("job job-1: %w", matching.ErrNotFound),
			code: errors.ErrCodeMatchUnavailable,
		},
		{
			name:      "store failure",
			err:       fmt.Errorf("connection refused"),
			code:      errors.ErrCodeSnapshotLoadFailed,
			retryable: true,
		},
		{
			name:      "deadline",
			err:       context.DeadlineExceeded,
			code:      errors.ErrCodeQueryTimeout,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			service.On("GetMatchScore", mock.Anything, "job-1", "cand-1").Return(nil, tt.err)

			handler := createTestHandler(t, service)
			_, err := handler.Execute(context.Background(), &Input{JobID: "job-1", CandidateID: "cand-1"})

			require.Error(t, err)
			stdErr := errors.Normalize(err)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}

func TestHandler_Execute_MatchUnavailableIsBPMNError(t *testing.T) {
	service := new(MockService)
	service.On("GetMatchScore", mock.Anything, "job-1", "cand-1").
		Return(nil, fmt.Errorf("candidate cand-1: %w", matching.ErrNotFound))

	handler := createTestHandler(t, service)
	_, err := handler.Execute(context.Background(), &Input{JobID: "job-1", CandidateID: "cand-1"})
	require.Error(t, err)

	bpmnErr := errors.ConvertToBPMNError(errors.Normalize(err))
	assert.Equal(t, "MATCH_UNAVAILABLE", bpmnErr.Code)
	assert.Equal(t, "match unavailable", bpmnErr.Message)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.Equal(t, "job-1", bpmnErr.ErrorVariables["jobId"])
	assert.Equal(t, "cand-1", bpmnErr.ErrorVariables["candidateId"])
}

// ==========================
// Input parsing
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	handler := createTestHandler(t, new(MockService))

	t.Run("valid with unrelated process variables", func(t *testing.T) {
		job := createMockJob(1, map[string]interface{}{
			"jobId":       "job-1",
			"candidateId": "cand-1",
			"pageNumber":  2,
		})

		input, err := handler.parseInput(job)

		require.NoError(t, err)
		assert.Equal(t, "job-1", input.JobID)
		assert.Equal(t, "cand-1", input.CandidateID)
	})

	t.Run("missing candidate", func(t *testing.T) {
		job := createMockJob(2, map[string]interface{}{"jobId": "job-1"})

		_, err := handler.parseInput(job)

		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidMatchInput, errors.Normalize(err).Code)
	})

	t.Run("wrong type", func(t *testing.T) {
		job := createMockJob(3, map[string]interface{}{"jobId": 42, "candidateId": "cand-1"})

		_, err := handler.parseInput(job)

		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidMatchInput, errors.Normalize(err).Code)
	})

	t.Run("malformed variables", func(t *testing.T) {
		job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 4, Variables: "{not json"}}

		_, err := handler.parseInput(job)

		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeParseError, errors.Normalize(err).Code)
	})
}

// ==========================
// Construction
// ==========================

func TestNewHandler(t *testing.T) {
	t.Run("requires service", func(t *testing.T) {
		_, err := NewHandler(HandlerOptions{CustomConfig: DefaultConfig(), Logger: logger.NewNoOpLogger()})
		assert.Error(t, err)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		_, err := NewHandler(HandlerOptions{
			Service:      new(MockService),
			CustomConfig: &Config{Enabled: true, MaxJobsActive: 0, Timeout: time.Second},
			Logger:       logger.NewNoOpLogger(),
		})
		assert.Error(t, err)
	})

	t.Run("reads worker settings from app config", func(t *testing.T) {
		appCfg := &config.Config{Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: false, MaxJobsActive: 4, Timeout: 5000},
		}}

		handler, err := NewHandler(HandlerOptions{
			AppConfig: appCfg,
			Service:   new(MockService),
			Logger:    logger.NewNoOpLogger(),
		})

		require.NoError(t, err)
		assert.False(t, handler.IsEnabled())
		assert.Equal(t, 4, handler.GetConfig().MaxJobsActive)
		assert.Equal(t, 5*time.Second, handler.GetConfig().Timeout)
		assert.Equal(t, TaskType, handler.GetTaskType())
	})

	t.Run("disabled worker skips registration", func(t *testing.T) {
		handler, err := NewHandler(HandlerOptions{
			Service:      new(MockService),
			CustomConfig: &Config{Enabled: false, MaxJobsActive: 1, Timeout: time.Second},
			Logger:       logger.NewNoOpLogger(),
		})
		require.NoError(t, err)
		assert.NoError(t, handler.Register())
		handler.Close()
	})
}

// ==========================
// With the matching service
// ==========================

type stubLoader struct {
	jobLoads atomic.Int32
}

func (l *stubLoader) LoadJobSnapshot(_ context.Context, jobID string) (*matching.JobSnapshot, error) {
	l.jobLoads.Add(1)
	if jobID != "job-1" {
		return nil, fmt.Errorf("job %s: %w", jobID, matching.ErrNotFound)
	}
	return &matching.JobSnapshot{
		ID:              "job-1",
		RequiredSkills:  []matching.RequiredSkill{{Name: "Go", RequiredLevel: 3, Mandatory: true}},
		ExperienceLevel: matching.LevelSenior,
		WorkArrangement: matching.ArrangementRemote,
		Location:        "Berlin",
	}, nil
}

func (l *stubLoader) LoadCandidateSnapshot(_ context.Context, candidateID string) (*matching.CandidateSnapshot, error) {
	return &matching.CandidateSnapshot{
		ID:                      candidateID,
		Skills:                  []matching.CandidateSkill{{Name: "go", Proficiency: 4}},
		YearsExperience:         6,
		WorkLocationPreferences: []matching.WorkArrangement{matching.ArrangementRemote},
	}, nil
}

func TestHandler_Execute_WithMatchingService(t *testing.T) {
	scorer, err := matching.NewScorer(matching.DefaultWeights())
	require.NoError(t, err)

	loader := &stubLoader{}
	resultCache := matching.NewResultCache(cache.NewMemoryStore(), time.Hour)
	service := matching.NewService(scorer, loader, resultCache, matching.ServiceConfig{}, logger.NewTestLogger(t))
	handler := createTestHandler(t, service)

	first, err := handler.Execute(context.Background(), &Input{JobID: "job-1", CandidateID: "cand-1"})
	require.NoError(t, err)
	second, err := handler.Execute(context.Background(), &Input{JobID: "job-1", CandidateID: "cand-1"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), loader.jobLoads.Load(), "second call must be served from cache")
	assert.GreaterOrEqual(t, first.MatchScore, 0)
	assert.LessOrEqual(t, first.MatchScore, 100)
	assert.LessOrEqual(t, len(first.Explanation), matching.MaxExplanations)

	_, err = handler.Execute(context.Background(), &Input{JobID: "job-404", CandidateID: "cand-1"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMatchUnavailable, errors.Normalize(err).Code)
}
