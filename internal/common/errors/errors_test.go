package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"jobmatch-workers/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMatchError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      ErrorCode
		retryable bool
	}{
		{"missing job", fmt.Errorf("load job j1: %w", matching.ErrNotFound), ErrCodeMatchUnavailable, false},
		{"deadline", fmt.Errorf("load candidate: %w", context.DeadlineExceeded), ErrCodeQueryTimeout, true},
		{"store failure", stderrors.New("connection refused"), ErrCodeSnapshotLoadFailed, true},
		{"already standard", NewInvalidMatchInputError("jobId missing"), ErrCodeInvalidMatchInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdErr := FromMatchError("j1", "c1", tt.err)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}

func TestConvertToBPMNError_MatchUnavailable(t *testing.T) {
	stdErr := NewMatchUnavailableError("job-1", "cand-1", matching.ErrNotFound)

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "MATCH_UNAVAILABLE", bpmnErr.Code)
	assert.Equal(t, "match unavailable", bpmnErr.Message)
	assert.Equal(t, 0, bpmnErr.Retries)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "job-1", vars["jobId"])
	assert.Equal(t, "cand-1", vars["candidateId"])
	assert.Equal(t, "MATCH_UNAVAILABLE", vars["originalErrorCode"])
}

func TestConvertToBPMNError_Retryable(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewSnapshotLoadFailedError(stderrors.New("boom")))
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 3, bpmnErr.Retries)

	bpmnErr = ConvertToBPMNError(&StandardError{Code: "SOMETHING_ELSE", Message: "x"})
	assert.Equal(t, "SOMETHING_ELSE", bpmnErr.Code)
	assert.Equal(t, 0, bpmnErr.Retries)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "MATCHING", GetErrorCategory(ErrCodeMatchUnavailable))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidMatchInput))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeParseError))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeSnapshotLoadFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeElasticsearchConnectionFailed))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeSnapshotLoadFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeQueryTimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeMatchUnavailable))
	assert.False(t, IsRetryableErrorCode(ErrCodeCacheUnavailable))
}

func TestNormalize(t *testing.T) {
	wrapped := fmt.Errorf("execute: %w", NewParseError(stderrors.New("bad json")))
	assert.Equal(t, ErrCodeParseError, Normalize(wrapped).Code)

	plain := Normalize(stderrors.New("nil pointer"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "nil pointer", plain.Details)
}

func TestRetriesFor(t *testing.T) {
	job := func(retries int32) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: retries}}
	}
	assert.Equal(t, int32(1), retriesFor(job(2), 3))
	assert.Equal(t, int32(3), retriesFor(job(10), 3))
	assert.Equal(t, int32(3), retriesFor(job(0), 3))
}
