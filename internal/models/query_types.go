// internal/models/query_types.go
package models

// QueryType names a snapshot query; used as the query label in logs and
// load errors.
type QueryType string

const (
	QueryTypeJob             QueryType = "job"
	QueryTypeJobSkills       QueryType = "job_skills"
	QueryTypeCandidate       QueryType = "candidate"
	QueryTypeCandidateSkills QueryType = "candidate_skills"
	QueryTypeWorkHistory     QueryType = "work_history"
	QueryTypeJobDocument     QueryType = "job_document"
)
