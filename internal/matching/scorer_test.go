// internal/matching/scorer_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultWeights())
	require.NoError(t, err)
	return s
}

func createTestJob() *JobSnapshot {
	return &JobSnapshot{
		ID: "job-1",
		RequiredSkills: []RequiredSkill{
			{Name: "Python", RequiredLevel: 5, Mandatory: true},
		},
		ExperienceLevel: LevelSenior,
		WorkArrangement: ArrangementRemote,
	}
}

func createTestCandidate() *CandidateSnapshot {
	return &CandidateSnapshot{
		ID:                      "cand-1",
		Skills:                  []CandidateSkill{{Name: "Python", Proficiency: 5}},
		YearsExperience:         4,
		WorkLocationPreferences: []WorkArrangement{ArrangementRemote},
	}
}

func TestScorer_EndToEndExample(t *testing.T) {
	result := newTestScorer(t).Score(createTestJob(), createTestCandidate())

	assert.Equal(t, Breakdown{
		Skills:      100,
		TechStack:   100,
		Experience:  70,
		Location:    100,
		Salary:      50,
		CulturalFit: 50,
	}, result.Breakdown)
	// 40 + 20 + 10.5 + 10 + 5 + 2.5
	assert.Equal(t, 88, result.Score)
	assert.Len(t, result.Explanation, MaxExplanations)
}

func TestScorer_Deterministic(t *testing.T) {
	s := newTestScorer(t)
	job := &JobSnapshot{
		RequiredSkills: []RequiredSkill{
			{Name: "Go", RequiredLevel: 4, Mandatory: true},
			{Name: "SQL", RequiredLevel: 3},
			{Name: "Kubernetes", RequiredLevel: 3},
		},
		PrimaryModels:        []string{"GPT-4", "Llama", "Claude"},
		Frameworks:           []string{"PyTorch"},
		ProgrammingLanguages: []string{"Go", "Python"},
		ExperienceLevel:      LevelMid,
		WorkArrangement:      ArrangementOnsite,
		Location:             "Berlin, Germany",
		SalaryMin:            ptr(70000),
		SalaryMax:            ptr(90000),
		CompanyBenefits:      []string{"Health insurance", "Equity"},
	}
	cand := &CandidateSnapshot{
		Skills:                  []CandidateSkill{{Name: "go", Proficiency: 3}, {Name: "sql", Proficiency: 5}},
		Models:                  []string{"llama", "Mistral"},
		Frameworks:              []string{"pytorch", "jax"},
		Languages:               []string{"python"},
		YearsExperience:         7.5,
		WorkLocationPreferences: []WorkArrangement{ArrangementOnsite},
		PreferredLocations:      []string{"berlin"},
		SalaryExpectationMin:    ptr(85000),
		SalaryExpectationMax:    ptr(95000),
	}

	first := s.Score(job, cand)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, s.Score(job, cand))
	}
}

func TestScorer_Bounds(t *testing.T) {
	s := newTestScorer(t)
	cases := []struct {
		name string
		job  *JobSnapshot
		cand *CandidateSnapshot
	}{
		{"all empty", &JobSnapshot{}, &CandidateSnapshot{}},
		{"empty candidate", createTestJob(), &CandidateSnapshot{}},
		{"empty job", &JobSnapshot{}, createTestCandidate()},
		{
			"malformed values",
			&JobSnapshot{
				RequiredSkills:  []RequiredSkill{{Name: "Go", RequiredLevel: -2}, {Name: "Rust", RequiredLevel: 0}},
				ExperienceLevel: "wizard",
				WorkArrangement: "space",
				SalaryMin:       ptr(200000),
				SalaryMax:       ptr(100000),
			},
			&CandidateSnapshot{
				Skills:               []CandidateSkill{{Name: "Go", Proficiency: -3}, {Name: "Rust", Proficiency: 99}},
				YearsExperience:      -4,
				SalaryExpectationMin: ptr(-1),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := s.Score(tc.job, tc.cand)
			assert.GreaterOrEqual(t, r.Score, 0)
			assert.LessOrEqual(t, r.Score, 100)
			for _, f := range Factors {
				v := r.Breakdown.Get(f)
				assert.GreaterOrEqual(t, v, 0, f)
				assert.LessOrEqual(t, v, 100, f)
			}
			assert.Len(t, r.Explanation, MaxExplanations)
		})
	}
}

func TestScorer_VacuousMatch(t *testing.T) {
	s := newTestScorer(t)
	job := &JobSnapshot{ExperienceLevel: LevelJunior}

	for _, cand := range []*CandidateSnapshot{
		{},
		{Skills: []CandidateSkill{{Name: "Go", Proficiency: 1}}},
		{Models: []string{"GPT-4"}, Frameworks: []string{"TensorFlow"}, Languages: []string{"Java"}},
	} {
		r := s.Score(job, cand)
		assert.Equal(t, 100, r.Breakdown.Skills)
	}

	r := s.Score(job, &CandidateSnapshot{})
	assert.Equal(t, 100, r.Breakdown.TechStack)
}

func TestScorer_WeightsAreInjected(t *testing.T) {
	w := Weights{Skills: 0.5, TechStack: 0.1, Experience: 0.1, Location: 0.1, Salary: 0.1, CulturalFit: 0.1}
	s, err := NewScorer(w)
	require.NoError(t, err)

	// 50 + 10 + 7 + 10 + 5 + 5
	r := s.Score(createTestJob(), createTestCandidate())
	assert.Equal(t, 87, r.Score)
	assert.Equal(t, w, s.Weights())
}

func TestNewScorer_RejectsInvalidWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
	}{
		{"zero weight", Weights{Skills: 0.45, TechStack: 0.2, Experience: 0.15, Location: 0.1, Salary: 0.1, CulturalFit: 0}},
		{"negative weight", Weights{Skills: 0.5, TechStack: 0.2, Experience: 0.15, Location: 0.1, Salary: 0.1, CulturalFit: -0.05}},
		{"sum below one", Weights{Skills: 0.3, TechStack: 0.2, Experience: 0.15, Location: 0.1, Salary: 0.1, CulturalFit: 0.05}},
		{"above one", Weights{Skills: 1.5, TechStack: 0.2, Experience: 0.15, Location: 0.1, Salary: 0.1, CulturalFit: 0.05}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScorer(tt.weights)
			assert.ErrorIs(t, err, ErrInvalidWeights)
		})
	}

	assert.NoError(t, DefaultWeights().Validate())
}
