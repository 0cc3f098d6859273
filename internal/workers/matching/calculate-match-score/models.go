package calculatematchscore

import "jobmatch-workers/internal/matching"

type Input struct {
	JobID       string `json:"jobId"`
	CandidateID string `json:"candidateId"`
}

type Output struct {
	JobID       string             `json:"jobId"`
	CandidateID string             `json:"candidateId"`
	MatchScore  int                `json:"matchScore"`
	Breakdown   matching.Breakdown `json:"breakdown"`
	Explanation []string           `json:"explanation"`
}
