package scorejoblisting

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"jobmatch-workers/internal/common/camunda"
	"jobmatch-workers/internal/common/config"
	"jobmatch-workers/internal/common/errors"
	"jobmatch-workers/internal/common/logger"
	"jobmatch-workers/internal/common/metrics"
	"jobmatch-workers/internal/common/observability"
	"jobmatch-workers/internal/common/validation"
	"jobmatch-workers/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "score-job-listing"

// BatchService is the part of matching.Service this worker needs.
type BatchService interface {
	GetMatchScoresForJobs(ctx context.Context, jobIDs []string, candidateID string) map[string]*matching.MatchResult
}

type Handler struct {
	config        *Config
	logger        logger.Logger
	camunda       *camunda.Client
	service       BatchService
	errorHandler  *errors.ErrorHandler
	observability *observability.Observability
	jobWorker     *camunda.Worker
}

type HandlerOptions struct {
	AppConfig     *config.Config
	Camunda       *camunda.Client
	Service       BatchService
	CustomConfig  *Config
	Logger        logger.Logger
	Observability *observability.Observability
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Service == nil {
		return nil, fmt.Errorf("match service is required for %s", TaskType)
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}
	loggerInstance = loggerInstance.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:        workerConfig,
		logger:        loggerInstance,
		camunda:       opts.Camunda,
		service:       opts.Service,
		errorHandler:  errors.NewErrorHandler(loggerInstance),
		observability: opts.Observability,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err, startTime)
		return
	}

	h.logger.Info("Scoring job listing", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"candidateId":        input.CandidateID,
		"jobCount":           len(input.JobIDs),
	})

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err, startTime)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		h.observability.RecordJobProcessed(ctx, TaskType, "complete_failed")
		return
	}

	duration := time.Since(startTime)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(duration.Seconds())
	h.observability.RecordJobProcessed(ctx, TaskType, "completed")
	h.observability.RecordJobDuration(ctx, TaskType, duration, "completed")

	h.logger.Info("Job listing scored", map[string]interface{}{
		"jobKey":       job.GetKey(),
		"evaluationId": output.EvaluationID,
		"scored":       output.Scored,
		"omitted":      output.Omitted,
		"durationMs":   duration.Milliseconds(),
	})
}

// Execute scores a page of jobs for one candidate. Jobs that cannot be
// scored are dropped from the result; the job itself only fails on bad
// input.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	candidateID := strings.TrimSpace(input.CandidateID)
	if candidateID == "" {
		return nil, errors.NewInvalidMatchInputError("candidateId must not be blank")
	}

	jobIDs := distinctIDs(input.JobIDs)
	matches := h.service.GetMatchScoresForJobs(ctx, jobIDs, candidateID)
	if matches == nil {
		matches = map[string]*matching.MatchResult{}
	}

	ranked := make([]string, 0, len(matches))
	for _, id := range jobIDs {
		if _, ok := matches[id]; ok {
			ranked = append(ranked, id)
		}
	}
	if input.SortByMatchScore {
		rankByScore(ranked, matches)
	}

	return &Output{
		EvaluationID: uuid.New().String(),
		CandidateID:  candidateID,
		Matches:      matches,
		RankedJobIDs: ranked,
		Requested:    len(jobIDs),
		Scored:       len(matches),
		Omitted:      len(jobIDs) - len(matches),
	}, nil
}

// rankByScore orders by score, highest first, then by job ID.
func rankByScore(ids []string, matches map[string]*matching.MatchResult) {
	slices.SortStableFunc(ids, func(a, b string) int {
		if c := cmp.Compare(matches[b].Score, matches[a].Score); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

func distinctIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewParseError(err)
	}

	validationResult := validation.ValidateInput(variables, GetInputSchema())
	if !validationResult.Valid {
		return nil, errors.NewInvalidMatchInputError(strings.Join(validationResult.GetErrorMessages(), "; "))
	}

	input := &Input{
		CandidateID: variables["candidateId"].(string),
	}

	if jobIDs, ok := variables["jobIds"].([]interface{}); ok {
		input.JobIDs = make([]string, 0, len(jobIDs))
		for _, id := range jobIDs {
			if idStr, ok := id.(string); ok {
				input.JobIDs = append(input.JobIDs, idStr)
			}
		}
	}

	if sortByScore, ok := variables["sortByMatchScore"].(bool); ok {
		input.SortByMatchScore = sortByScore
	}

	return input, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, startTime time.Time) {
	code := errors.Normalize(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.observability.RecordJobProcessed(ctx, TaskType, "failed")
	h.observability.RecordJobDuration(ctx, TaskType, time.Since(startTime), "failed")

	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Register() error {
	if !h.config.Enabled {
		h.logger.Info("Worker is disabled, skipping registration", nil)
		return nil
	}
	if h.camunda == nil {
		return fmt.Errorf("camunda client is required to register %s", TaskType)
	}

	h.jobWorker = camunda.StartWorker(h.camunda.GetClient(), camunda.WorkerOptions{
		TaskType:      TaskType,
		MaxJobsActive: h.config.MaxJobsActive,
		Timeout:       h.config.Timeout,
	}, h, h.logger)
	return nil
}

func (h *Handler) Close() {
	if h.jobWorker != nil {
		h.jobWorker.Stop()
		h.jobWorker = nil
	}
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()

	if appConfig != nil {
		if workerCfg, exists := appConfig.Workers[TaskType]; exists {
			cfg.Enabled = workerCfg.Enabled
			if workerCfg.MaxJobsActive > 0 {
				cfg.MaxJobsActive = workerCfg.MaxJobsActive
			}
			if workerCfg.Timeout > 0 {
				cfg.Timeout = time.Duration(workerCfg.Timeout) * time.Millisecond
			}
		}
	}

	return cfg
}
