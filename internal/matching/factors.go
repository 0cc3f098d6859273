// internal/matching/factors.go
package matching

import (
	"math"
	"strings"
)

const neutralScore = 50.0

type yearRange struct {
	min, max float64
}

var experienceRanges = map[ExperienceLevel]yearRange{
	LevelEntry:     {0, 1},
	LevelJunior:    {1, 3},
	LevelMid:       {3, 6},
	LevelSenior:    {6, 10},
	LevelLead:      {8, 15},
	LevelPrincipal: {10, 99},
}

// experiencePenaltyPerYear is subtracted for every year outside the range.
const experiencePenaltyPerYear = 15.0

// Tech stack category weights.
const (
	modelsShare     = 0.5
	frameworksShare = 0.3
	languagesShare  = 0.2
)

func calculateSkillsFit(job *JobSnapshot, candidate *CandidateSnapshot) (score float64, matched int) {
	if len(job.RequiredSkills) == 0 {
		return 100, 0
	}
	if len(candidate.Skills) == 0 {
		return 0, 0
	}

	proficiency := make(map[string]int, len(candidate.Skills))
	for _, s := range candidate.Skills {
		name := normalize(s.Name)
		if name == "" {
			continue
		}
		if p, ok := proficiency[name]; !ok || s.Proficiency > p {
			proficiency[name] = s.Proficiency
		}
	}

	var earned, total float64
	for _, req := range distinctRequiredSkills(job.RequiredSkills) {
		weight := 1.0
		if req.Mandatory {
			weight = 2.0
		}
		total += weight

		p, ok := proficiency[normalize(req.Name)]
		if !ok {
			continue
		}
		matched++
		earned += weight * proficiencyRatio(p, req.RequiredLevel)
	}

	return earned / total * 100, matched
}

// distinctRequiredSkills folds case-insensitive duplicates into one entry
// that is mandatory if any duplicate is and asks for the highest level.
func distinctRequiredSkills(required []RequiredSkill) []RequiredSkill {
	out := make([]RequiredSkill, 0, len(required))
	index := make(map[string]int, len(required))
	for _, req := range required {
		name := normalize(req.Name)
		i, seen := index[name]
		if !seen {
			index[name] = len(out)
			out = append(out, req)
			continue
		}
		out[i].Mandatory = out[i].Mandatory || req.Mandatory
		out[i].RequiredLevel = max(out[i].RequiredLevel, req.RequiredLevel)
	}
	return out
}

func proficiencyRatio(proficiency, required int) float64 {
	if proficiency <= 0 {
		return 0
	}
	if required <= 0 {
		return 1
	}
	return clamp(float64(proficiency)/float64(required), 0, 1)
}

func calculateTechStackFit(job *JobSnapshot, candidate *CandidateSnapshot) (score float64, matchedModels int) {
	models := jaccard(job.PrimaryModels, candidate.Models)
	frameworks := jaccard(job.Frameworks, candidate.Frameworks)
	languages := jaccard(job.ProgrammingLanguages, candidate.Languages)

	score = (models*modelsShare + frameworks*frameworksShare + languages*languagesShare) * 100
	return score, len(intersect(toSet(job.PrimaryModels), toSet(candidate.Models)))
}

// jaccard is |A∩B| / |A∪B| over case-insensitive element sets. Two empty
// sets are a perfect match; exactly one empty set is no match.
func jaccard(a, b []string) float64 {
	setA, setB := toSet(a), toSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	inter := len(intersect(setA, setB))
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

func calculateExperienceFit(level ExperienceLevel, years float64) (float64, bool) {
	r, ok := experienceRanges[ExperienceLevel(normalize(string(level)))]
	if !ok {
		return neutralScore, false
	}
	if years < 0 {
		years = 0
	}

	var distance float64
	switch {
	case years < r.min:
		distance = r.min - years
	case years > r.max:
		distance = years - r.max
	default:
		return 100, true
	}
	return math.Max(100-distance*experiencePenaltyPerYear, 0), true
}

func calculateLocationFit(job *JobSnapshot, candidate *CandidateSnapshot) float64 {
	if !candidate.hasPreferenceData() {
		return neutralScore
	}

	switch WorkArrangement(normalize(string(job.WorkArrangement))) {
	case ArrangementRemote:
		if candidate.accepts(ArrangementRemote) {
			return 100
		}
		return 80
	case ArrangementHybrid:
		if candidate.accepts(ArrangementHybrid) || candidate.accepts(ArrangementRemote) {
			return 90
		}
		if candidate.accepts(ArrangementOnsite) {
			return 70
		}
		return 50
	case ArrangementOnsite:
		if !candidate.accepts(ArrangementOnsite) && !candidate.OpenToRelocation {
			return 20
		}
		if locationMatches(job.Location, candidate.PreferredLocations) {
			return 100
		}
		if candidate.OpenToRelocation {
			return 60
		}
		return 30
	}
	return neutralScore
}

// locationMatches checks substring containment in either direction.
func locationMatches(jobLocation string, preferred []string) bool {
	jl := normalize(jobLocation)
	if jl == "" {
		return false
	}
	for _, p := range preferred {
		pl := normalize(p)
		if pl == "" {
			continue
		}
		if strings.Contains(jl, pl) || strings.Contains(pl, jl) {
			return true
		}
	}
	return false
}

// calculateSalaryFit returns the score and the percent shortfall of the
// job midpoint against the candidate midpoint (0 when met).
func calculateSalaryFit(job *JobSnapshot, candidate *CandidateSnapshot) (score, shortfall float64, known bool) {
	jobMid, ok := midpoint(job.SalaryMin, job.SalaryMax)
	if !ok {
		return neutralScore, 0, false
	}
	candidateMid, ok := midpoint(candidate.SalaryExpectationMin, candidate.SalaryExpectationMax)
	if !ok {
		return neutralScore, 0, false
	}

	if jobMid >= candidateMid {
		return 100, 0, true
	}

	shortfall = (candidateMid - jobMid) * 100 / candidateMid
	switch {
	case shortfall <= 10:
		return 90, shortfall, true
	case shortfall <= 20:
		return 70, shortfall, true
	case shortfall <= 30:
		return 50, shortfall, true
	}
	return math.Max(30-shortfall, 0), shortfall, true
}

// midpoint of a salary range; a single bound stands in for the range.
// Non-positive bounds are absent and an inverted range is no data.
func midpoint(lower, upper *float64) (float64, bool) {
	lo, hasLo := positive(lower)
	hi, hasHi := positive(upper)
	switch {
	case hasLo && hasHi:
		if lo > hi {
			return 0, false
		}
		return (lo + hi) / 2, true
	case hasLo:
		return lo, true
	case hasHi:
		return hi, true
	}
	return 0, false
}

func positive(v *float64) (float64, bool) {
	if v == nil || *v <= 0 || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

func calculateCulturalFit(job *JobSnapshot) (score float64, matched int, known bool) {
	benefits := make([]string, 0, len(job.CompanyBenefits))
	for _, b := range job.CompanyBenefits {
		if n := normalize(b); n != "" {
			benefits = append(benefits, n)
		}
	}
	if len(benefits) == 0 {
		return neutralScore, 0, false
	}

	for _, keyword := range PreferredBenefits {
		for _, b := range benefits {
			if strings.Contains(b, keyword) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(PreferredBenefits)) * 100, matched, true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if n := normalize(v); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}
