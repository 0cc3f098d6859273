// internal/models/candidate.go
package models

import "time"

type CandidateRecord struct {
	ID                      string   `json:"id"`
	YearsExperience         float64  `json:"yearsExperience"`
	WorkLocationPreferences []string `json:"workLocationPreferences"`
	OpenToRelocation        bool     `json:"openToRelocation"`
	PreferredLocations      []string `json:"preferredLocations"`
	SalaryExpectationMin    *float64 `json:"salaryExpectationMin,omitempty"`
	SalaryExpectationMax    *float64 `json:"salaryExpectationMax,omitempty"`
}

type CandidateSkillRecord struct {
	SkillName   string `json:"skillName"`
	Proficiency int    `json:"proficiency"`
}

// WorkHistoryRecord is one position from the candidate's work history. The
// tech stack of a candidate is the union over their most recent positions.
type WorkHistoryRecord struct {
	ID         string    `json:"id"`
	Company    string    `json:"company,omitempty"`
	StartDate  time.Time `json:"startDate"`
	Models     []string  `json:"models"`
	Frameworks []string  `json:"frameworks"`
	Languages  []string  `json:"languages"`
}
