package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Drop cached match results for a candidate",
	Long:  "Drops every cached match result for the candidate, or only the one for --job when given.",
	RunE:  runInvalidate,
}

var (
	invalidateCandidateID string
	invalidateJobID       string
)

func init() {
	invalidateCmd.Flags().StringVar(&invalidateCandidateID, "candidate", "", "Candidate ID (required)")
	invalidateCmd.Flags().StringVarP(&invalidateJobID, "job", "j", "", "Only drop the result for this job")

	if err := invalidateCmd.MarkFlagRequired("candidate"); err != nil {
		panic(fmt.Sprintf("failed to mark candidate flag as required: %v", err))
	}

	rootCmd.AddCommand(invalidateCmd)
}

func runInvalidate(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	candidateID := strings.TrimSpace(invalidateCandidateID)
	if candidateID == "" {
		return fmt.Errorf("candidate must not be blank")
	}

	service, release, err := openService(ctx)
	if err != nil {
		return err
	}
	defer release()

	invalidated := 0
	if jobID := strings.TrimSpace(invalidateJobID); jobID != "" {
		if service.InvalidateMatch(ctx, jobID, candidateID) {
			invalidated = 1
		}
	} else {
		invalidated = service.InvalidateCandidateMatches(ctx, candidateID)
	}

	return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
		"candidateId": candidateID,
		"invalidated": invalidated,
	})
}
