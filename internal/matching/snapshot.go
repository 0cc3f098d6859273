// internal/matching/snapshot.go
package matching

// ExperienceLevel is the seniority a job posting asks for.
type ExperienceLevel string

const (
	LevelEntry     ExperienceLevel = "entry"
	LevelJunior    ExperienceLevel = "junior"
	LevelMid       ExperienceLevel = "mid"
	LevelSenior    ExperienceLevel = "senior"
	LevelLead      ExperienceLevel = "lead"
	LevelPrincipal ExperienceLevel = "principal"
)

// WorkArrangement is where the work happens.
type WorkArrangement string

const (
	ArrangementRemote WorkArrangement = "remote"
	ArrangementHybrid WorkArrangement = "hybrid"
	ArrangementOnsite WorkArrangement = "onsite"
)

type RequiredSkill struct {
	Name          string `json:"name"`
	RequiredLevel int    `json:"requiredLevel"`
	Mandatory     bool   `json:"mandatory"`
}

type CandidateSkill struct {
	Name        string `json:"name"`
	Proficiency int    `json:"proficiency"`
}

// JobSnapshot is the scoring-relevant view of a job posting. It is never
// mutated once built.
type JobSnapshot struct {
	ID                   string          `json:"id"`
	RequiredSkills       []RequiredSkill `json:"requiredSkills"`
	PrimaryModels        []string        `json:"primaryModels"`
	Frameworks           []string        `json:"frameworks"`
	ProgrammingLanguages []string        `json:"programmingLanguages"`
	ExperienceLevel      ExperienceLevel `json:"experienceLevel"`
	WorkArrangement      WorkArrangement `json:"workArrangement"`
	Location             string          `json:"location"`
	SalaryMin            *float64        `json:"salaryMin,omitempty"`
	SalaryMax            *float64        `json:"salaryMax,omitempty"`
	CompanyBenefits      []string        `json:"companyBenefits"`
}

// CandidateSnapshot is the scoring-relevant view of a candidate profile.
// Models, frameworks and languages come from the most recent work history.
type CandidateSnapshot struct {
	ID                      string            `json:"id"`
	Skills                  []CandidateSkill  `json:"skills"`
	Models                  []string          `json:"models"`
	Frameworks              []string          `json:"frameworks"`
	Languages               []string          `json:"languages"`
	YearsExperience         float64           `json:"yearsExperience"`
	WorkLocationPreferences []WorkArrangement `json:"workLocationPreferences"`
	OpenToRelocation        bool              `json:"openToRelocation"`
	PreferredLocations      []string          `json:"preferredLocations"`
	SalaryExpectationMin    *float64          `json:"salaryExpectationMin,omitempty"`
	SalaryExpectationMax    *float64          `json:"salaryExpectationMax,omitempty"`
}

// PreferredBenefits is the fixed reference list used by the cultural-fit
// factor. It is not derived from the candidate profile.
// TODO: source this from candidate job preferences once the profile stores benefit priorities.
var PreferredBenefits = []string{
	"health insurance",
	"remote work",
	"flexible hours",
	"professional development",
	"equity",
}

// accepts reports whether the candidate listed the given arrangement.
func (c *CandidateSnapshot) accepts(a WorkArrangement) bool {
	for _, p := range c.WorkLocationPreferences {
		if WorkArrangement(normalize(string(p))) == a {
			return true
		}
	}
	return false
}

func (c *CandidateSnapshot) hasPreferenceData() bool {
	return len(c.WorkLocationPreferences) > 0 || len(nonBlank(c.PreferredLocations)) > 0 || c.OpenToRelocation
}
