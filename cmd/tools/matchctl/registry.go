package main

import (
	"fmt"
	"time"

	"jobmatch-workers/internal/common/errors"
	"jobmatch-workers/internal/common/validation"
	cms "jobmatch-workers/internal/workers/matching/calculate-match-score"
	icm "jobmatch-workers/internal/workers/matching/invalidate-candidate-matches"
	sjl "jobmatch-workers/internal/workers/matching/score-job-listing"
	"jobmatch-workers/pkg/registry"

	"github.com/spf13/cobra"
)

const registryVersion = "1.0.0"

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Generate the activity registry of the matching workers",
	Long:  "Builds the activity registry from the worker schemas and writes it to --out, or to stdout when --out is empty.",
	RunE:  runRegistry,
}

var registryValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a registry file against the matching workers",
	RunE:  runRegistryValidate,
}

var (
	registryOut  string
	registryPath string
)

func init() {
	registryCmd.Flags().StringVarP(&registryOut, "out", "o", "", "Path of the registry JSON file to write")
	registryValidateCmd.Flags().StringVar(&registryPath, "path", "configs/activity-registry.json", "Path to registry file")

	registryCmd.AddCommand(registryValidateCmd)
	rootCmd.AddCommand(registryCmd)
}

type activityDef struct {
	taskType    string
	displayName string
	description string
	timeout     time.Duration
	input       validation.JSONSchema
	output      validation.JSONSchema
	errorCodes  []errors.ErrorCode
	retries     int
	tags        []string
}

func activityDefs() []activityDef {
	return []activityDef{
		{
			taskType:    cms.TaskType,
			displayName: "Calculate Match Score",
			description: "Scores one job posting against one candidate profile and explains the strongest factors.",
			timeout:     cms.DefaultConfig().Timeout,
			input:       cms.GetInputSchema(),
			output:      cms.GetOutputSchema(),
			errorCodes: []errors.ErrorCode{
				errors.ErrCodeMatchUnavailable,
				errors.ErrCodeSnapshotLoadFailed,
				errors.ErrCodeInvalidMatchInput,
				errors.ErrCodeQueryTimeout,
			},
			retries: errors.GetRetryCount(errors.ErrCodeSnapshotLoadFailed),
			tags:    []string{"matching"},
		},
		{
			taskType:    sjl.TaskType,
			displayName: "Score Job Listing",
			description: "Scores a page of job postings for one candidate; jobs that cannot be scored are omitted.",
			timeout:     sjl.DefaultConfig().Timeout,
			input:       sjl.GetInputSchema(),
			output:      sjl.GetOutputSchema(),
			errorCodes:  []errors.ErrorCode{errors.ErrCodeInvalidMatchInput},
			tags:        []string{"matching", "batch"},
		},
		{
			taskType:    icm.TaskType,
			displayName: "Invalidate Candidate Matches",
			description: "Drops cached match results after a candidate profile change.",
			timeout:     icm.DefaultConfig().Timeout,
			input:       icm.GetInputSchema(),
			output:      icm.GetOutputSchema(),
			errorCodes:  []errors.ErrorCode{errors.ErrCodeInvalidMatchInput},
			tags:        []string{"matching", "cache"},
		},
	}
}

func buildRegistry(now time.Time) (*registry.ActivityRegistry, error) {
	reg := &registry.ActivityRegistry{
		Version:     registryVersion,
		LastUpdated: now.UTC().Format(time.RFC3339),
	}

	for _, def := range activityDefs() {
		input, err := registry.SchemaMap(def.input)
		if err != nil {
			return nil, fmt.Errorf("input schema of %s: %w", def.taskType, err)
		}
		output, err := registry.SchemaMap(def.output)
		if err != nil {
			return nil, fmt.Errorf("output schema of %s: %w", def.taskType, err)
		}

		codes := make([]string, 0, len(def.errorCodes))
		for _, c := range def.errorCodes {
			codes = append(codes, string(c))
		}

		reg.Activities = append(reg.Activities, registry.Activity{
			ID:                   def.taskType,
			DisplayName:          def.displayName,
			Description:          def.description,
			Category:             "matching",
			Version:              registryVersion,
			TaskType:             def.taskType,
			ImplementationStatus: "completed",
			InputSchema:          input,
			OutputSchema:         output,
			ErrorCodes:           codes,
			Timeout:              def.timeout.String(),
			Retries:              def.retries,
			Tags:                 def.tags,
		})
	}

	return reg, reg.Validate()
}

func runRegistry(cmd *cobra.Command, _ []string) error {
	reg, err := buildRegistry(time.Now())
	if err != nil {
		return fmt.Errorf("failed to build registry: %w", err)
	}
	if registryOut == "" {
		return writeJSON(cmd.OutOrStdout(), reg)
	}
	if err := reg.Save(registryOut); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d activities to %s\n", len(reg.Activities), registryOut)
	return nil
}

// runRegistryValidate checks the file is well formed and lists exactly the
// task types this binary serves.
func runRegistryValidate(cmd *cobra.Command, _ []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}

	defs := activityDefs()
	for _, def := range defs {
		if _, ok := reg.Find(def.taskType); !ok {
			return fmt.Errorf("registry validation failed: task type %q is missing", def.taskType)
		}
	}
	if len(reg.Activities) != len(defs) {
		return fmt.Errorf("registry validation failed: %d activities listed, %d served", len(reg.Activities), len(defs))
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Registry validation passed.")
	return nil
}
