package invalidatecandidatematches

type Input struct {
	CandidateID string `json:"candidateId"`
	JobID       string `json:"jobId,omitempty"`
}

type Output struct {
	CandidateID string `json:"candidateId"`
	Invalidated int    `json:"invalidated"`
}
