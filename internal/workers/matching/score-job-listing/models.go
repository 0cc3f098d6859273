package scorejoblisting

import "jobmatch-workers/internal/matching"

type Input struct {
	CandidateID      string   `json:"candidateId"`
	JobIDs           []string `json:"jobIds"`
	SortByMatchScore bool     `json:"sortByMatchScore"`
}

// Output carries one result per scored job. Jobs that could not be scored
// are absent from Matches and RankedJobIDs and counted in Omitted.
type Output struct {
	EvaluationID string                           `json:"evaluationId"`
	CandidateID  string                           `json:"candidateId"`
	Matches      map[string]*matching.MatchResult `json:"matches"`
	RankedJobIDs []string                         `json:"rankedJobIds"`
	Requested    int                              `json:"requested"`
	Scored       int                              `json:"scored"`
	Omitted      int                              `json:"omitted"`
}
