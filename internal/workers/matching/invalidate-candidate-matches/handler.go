package invalidatecandidatematches

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobmatch-workers/internal/common/camunda"
	"jobmatch-workers/internal/common/config"
	"jobmatch-workers/internal/common/errors"
	"jobmatch-workers/internal/common/logger"
	"jobmatch-workers/internal/common/metrics"
	"jobmatch-workers/internal/common/observability"
	"jobmatch-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "invalidate-candidate-matches"

// Invalidator drops cached match results. Both calls are best effort.
type Invalidator interface {
	InvalidateMatch(ctx context.Context, jobID, candidateID string) bool
	InvalidateCandidateMatches(ctx context.Context, candidateID string) int
}

type Handler struct {
	config        *Config
	logger        logger.Logger
	camunda       *camunda.Client
	service       Invalidator
	errorHandler  *errors.ErrorHandler
	observability *observability.Observability
	jobWorker     *camunda.Worker
}

type HandlerOptions struct {
	AppConfig     *config.Config
	Camunda       *camunda.Client
	Service       Invalidator
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
		code := errors.Normalize(err).Code
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
		h.observability.RecordJobProcessed(ctx, TaskType, "failed")
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output := h.Execute(ctx, input)

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
}

// Execute never fails: cache errors are logged by the service and count
// as nothing removed.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	candidateID := strings.TrimSpace(input.CandidateID)
	jobID := strings.TrimSpace(input.JobID)

	output := &Output{CandidateID: candidateID}
	if jobID != "" {
		if h.service.InvalidateMatch(ctx, jobID, candidateID) {
			output.Invalidated = 1
		}
	} else {
		output.Invalidated = h.service.InvalidateCandidateMatches(ctx, candidateID)
	}

	h.logger.Info("Candidate matches invalidated", map[string]interface{}{
		"candidateId": candidateID,
		"jobId":       jobID,
		"invalidated": output.Invalidated,
	})
	return output
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

	input := &Input{CandidateID: variables["candidateId"].(string)}
	if jobID, ok := variables["jobId"].(string); ok {
		input.JobID = jobID
	}
	if strings.TrimSpace(input.CandidateID) == "" {
		return nil, errors.NewInvalidMatchInputError("candidateId must not be blank")
	}
	return input, nil
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
