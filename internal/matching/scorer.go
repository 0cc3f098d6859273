// internal/matching/scorer.go
package matching

import (
	"fmt"
	"math"
)

// Scorer computes match results. It holds no mutable state and is safe for
// concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer validates the weights and returns a Scorer using them.
func NewScorer(weights Weights) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("new scorer: %w", err)
	}
	return &Scorer{weights: weights}, nil
}

func (s *Scorer) Weights() Weights {
	return s.weights
}

// evaluation keeps the unrounded sub-scores and the counts the explanation
// templates need.
type evaluation struct {
	scores map[Factor]float64

	requiredSkills int
	matchedSkills  int

	jobModels     int
	matchedModels int

	level      ExperienceLevel
	levelKnown bool
	years      float64

	arrangement    WorkArrangement
	location       string
	hasPreferences bool

	salaryKnown     bool
	salaryShortfall float64

	benefitsKnown   bool
	matchedBenefits int
}

// Score compares a job and a candidate. It performs no I/O and returns the
// same result for the same snapshots.
func (s *Scorer) Score(job *JobSnapshot, candidate *CandidateSnapshot) *MatchResult {
	ev := evaluate(job, candidate)

	var total float64
	for _, f := range Factors {
		total += ev.scores[f] * s.weights.of(f)
	}

	return &MatchResult{
		Score: roundScore(total),
		Breakdown: Breakdown{
			Skills:      roundScore(ev.scores[FactorSkills]),
			TechStack:   roundScore(ev.scores[FactorTechStack]),
			Experience:  roundScore(ev.scores[FactorExperience]),
			Location:    roundScore(ev.scores[FactorLocation]),
			Salary:      roundScore(ev.scores[FactorSalary]),
			CulturalFit: roundScore(ev.scores[FactorCulturalFit]),
		},
		Explanation: explain(ev, s.weights),
	}
}

func evaluate(job *JobSnapshot, candidate *CandidateSnapshot) *evaluation {
	ev := &evaluation{
		scores:         make(map[Factor]float64, len(Factors)),
		requiredSkills: len(distinctRequiredSkills(job.RequiredSkills)),
		jobModels:      len(toSet(job.PrimaryModels)),
		level:          job.ExperienceLevel,
		years:          candidate.YearsExperience,
		arrangement:    WorkArrangement(normalize(string(job.WorkArrangement))),
		location:       job.Location,
		hasPreferences: candidate.hasPreferenceData(),
	}

	ev.scores[FactorSkills], ev.matchedSkills = calculateSkillsFit(job, candidate)
	ev.scores[FactorTechStack], ev.matchedModels = calculateTechStackFit(job, candidate)
	ev.scores[FactorExperience], ev.levelKnown = calculateExperienceFit(job.ExperienceLevel, candidate.YearsExperience)
	ev.scores[FactorLocation] = calculateLocationFit(job, candidate)
	ev.scores[FactorSalary], ev.salaryShortfall, ev.salaryKnown = calculateSalaryFit(job, candidate)
	ev.scores[FactorCulturalFit], ev.matchedBenefits, ev.benefitsKnown = calculateCulturalFit(job)

	return ev
}

func roundScore(v float64) int {
	return int(math.Round(clamp(v, 0, 100)))
}
