// internal/models/job.go
package models

// JobRecord is a job listing as stored in the jobs table or indexed in the
// jobs search index.
type JobRecord struct {
	ID                   string           `json:"id"`
	CompanyID            string           `json:"companyId,omitempty"`
	Title                string           `json:"title,omitempty"`
	ExperienceLevel      string           `json:"experienceLevel"`
	WorkArrangement      string           `json:"workArrangement"`
	Location             string           `json:"location"`
	SalaryMin            *float64         `json:"salaryMin,omitempty"`
	SalaryMax            *float64         `json:"salaryMax,omitempty"`
	PrimaryModels        []string         `json:"primaryModels"`
	Frameworks           []string         `json:"frameworks"`
	ProgrammingLanguages []string         `json:"programmingLanguages"`
	CompanyBenefits      []string         `json:"companyBenefits"`
	RequiredSkills       []JobSkillRecord `json:"requiredSkills"`
}

type JobSkillRecord struct {
	SkillName     string `json:"skillName"`
	RequiredLevel int    `json:"requiredLevel"`
	IsMandatory   bool   `json:"isMandatory"`
}
