// internal/matching/result.go
package matching

// Factor identifies one of the six scoring dimensions.
type Factor string

const (
	FactorSkills      Factor = "skills"
	FactorTechStack   Factor = "techStack"
	FactorExperience  Factor = "experience"
	FactorLocation    Factor = "location"
	FactorSalary      Factor = "salary"
	FactorCulturalFit Factor = "culturalFit"
)

// Factors lists every factor in tie-break order.
var Factors = []Factor{
	FactorSkills,
	FactorTechStack,
	FactorExperience,
	FactorLocation,
	FactorSalary,
	FactorCulturalFit,
}

// MaxExplanations bounds the explanation list of a MatchResult.
const MaxExplanations = 3

type Breakdown struct {
	Skills      int `json:"skills"`
	TechStack   int `json:"techStack"`
	Experience  int `json:"experience"`
	Location    int `json:"location"`
	Salary      int `json:"salary"`
	CulturalFit int `json:"culturalFit"`
}

// Get returns the sub-score of a factor.
func (b Breakdown) Get(f Factor) int {
	switch f {
	case FactorSkills:
		return b.Skills
	case FactorTechStack:
		return b.TechStack
	case FactorExperience:
		return b.Experience
	case FactorLocation:
		return b.Location
	case FactorSalary:
		return b.Salary
	case FactorCulturalFit:
		return b.CulturalFit
	}
	return 0
}

// MatchResult is the scored, explained comparison of one job and one
// candidate. It is cached verbatim.
type MatchResult struct {
	Score       int       `json:"score"`
	Breakdown   Breakdown `json:"breakdown"`
	Explanation []string  `json:"explanation"`
}
