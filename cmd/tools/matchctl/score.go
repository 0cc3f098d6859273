package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one job against one candidate",
	RunE:  runScore,
}

var (
	scoreJobID       string
	scoreCandidateID string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreJobID, "job", "j", "", "Job posting ID (required)")
	scoreCmd.Flags().StringVar(&scoreCandidateID, "candidate", "", "Candidate ID (required)")

	if err := scoreCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}
	if err := scoreCmd.MarkFlagRequired("candidate"); err != nil {
		panic(fmt.Sprintf("failed to mark candidate flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	service, release, err := openService(ctx)
	if err != nil {
		return err
	}
	defer release()

	jobID := strings.TrimSpace(scoreJobID)
	candidateID := strings.TrimSpace(scoreCandidateID)

	result, err := service.GetMatchScore(ctx, jobID, candidateID)
	if err != nil {
		return fmt.Errorf("failed to score job %s for candidate %s: %w", jobID, candidateID, err)
	}

	return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
		"jobId":       jobID,
		"candidateId": candidateID,
		"matchScore":  result.Score,
		"breakdown":   result.Breakdown,
		"explanation": result.Explanation,
	})
}
