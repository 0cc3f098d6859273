package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var scoreManyCmd = &cobra.Command{
	Use:   "score-many",
	Short: "Score a list of jobs for one candidate",
	Long:  "Scores every job for the candidate and prints the results ranked by score. Jobs that cannot be scored are listed under omitted.",
	RunE:  runScoreMany,
}

var (
	scoreManyCandidateID string
	scoreManyJobIDs      []string
)

func init() {
	scoreManyCmd.Flags().StringVar(&scoreManyCandidateID, "candidate", "", "Candidate ID (required)")
	scoreManyCmd.Flags().StringSliceVar(&scoreManyJobIDs, "jobs", nil, "Comma separated job posting IDs (required)")

	if err := scoreManyCmd.MarkFlagRequired("candidate"); err != nil {
		panic(fmt.Sprintf("failed to mark candidate flag as required: %v", err))
	}
	if err := scoreManyCmd.MarkFlagRequired("jobs"); err != nil {
		panic(fmt.Sprintf("failed to mark jobs flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreManyCmd)
}

type rankedMatch struct {
	JobID       string   `json:"jobId"`
	MatchScore  int      `json:"matchScore"`
	Explanation []string `json:"explanation"`
}

func runScoreMany(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	service, release, err := openService(ctx)
	if err != nil {
		return err
	}
	defer release()

	candidateID := strings.TrimSpace(scoreManyCandidateID)
	results := service.GetMatchScoresForJobs(ctx, scoreManyJobIDs, candidateID)

	ranked := make([]rankedMatch, 0, len(results))
	for jobID, result := range results {
		ranked = append(ranked, rankedMatch{JobID: jobID, MatchScore: result.Score, Explanation: result.Explanation})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].MatchScore != ranked[j].MatchScore {
			return ranked[i].MatchScore > ranked[j].MatchScore
		}
		return ranked[i].JobID < ranked[j].JobID
	})

	omitted := []string{}
	seen := make(map[string]bool, len(scoreManyJobIDs))
	for _, jobID := range scoreManyJobIDs {
		jobID = strings.TrimSpace(jobID)
		if jobID == "" || seen[jobID] {
			continue
		}
		seen[jobID] = true
		if _, ok := results[jobID]; !ok {
			omitted = append(omitted, jobID)
		}
	}

	return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
		"candidateId": candidateID,
		"matches":     ranked,
		"omitted":     omitted,
	})
}
