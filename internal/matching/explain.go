// internal/matching/explain.go
package matching

import (
	"fmt"
	"sort"
	"strconv"
)

type contribution struct {
	factor Factor
	value  float64
}

// explain ranks factors by weighted contribution and renders a sentence for
// each of the top MaxExplanations. Ties keep Factors order.
func explain(ev *evaluation, weights Weights) []string {
	contributions := make([]contribution, 0, len(Factors))
	for _, f := range Factors {
		contributions = append(contributions, contribution{
			factor: f,
			value:  ev.scores[f] * weights.of(f),
		})
	}
	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].value > contributions[j].value
	})

	out := make([]string, 0, MaxExplanations)
	for _, c := range contributions[:MaxExplanations] {
		out = append(out, describe(c.factor, ev))
	}
	return out
}

func describe(f Factor, ev *evaluation) string {
	score := ev.scores[f]
	switch f {
	case FactorSkills:
		return describeSkills(score, ev)
	case FactorTechStack:
		return describeTechStack(score, ev)
	case FactorExperience:
		return describeExperience(score, ev)
	case FactorLocation:
		return describeLocation(score, ev)
	case FactorSalary:
		return describeSalary(score, ev)
	case FactorCulturalFit:
		return describeCulturalFit(score, ev)
	}
	return ""
}

func describeSkills(score float64, ev *evaluation) string {
	if ev.requiredSkills == 0 {
		return "No specific skills are required for this role"
	}
	counts := fmt.Sprintf("you have %d of %d required skills", ev.matchedSkills, ev.requiredSkills)
	switch {
	case score >= 80:
		return "Strong skills match: " + counts
	case score >= 60:
		return "Good skills match: " + counts
	case score >= 40:
		return "Partial skills match: " + counts
	}
	return "Limited skills match: " + counts
}

func describeTechStack(score float64, ev *evaluation) string {
	var lead string
	switch {
	case score >= 80:
		lead = "Excellent tech stack alignment"
	case score >= 60:
		lead = "Good tech stack overlap"
	case score >= 40:
		lead = "Some tech stack overlap"
	default:
		lead = "Tech stack differs from your recent experience"
	}
	if ev.jobModels == 0 {
		return lead
	}
	return fmt.Sprintf("%s with %d of %d primary models", lead, ev.matchedModels, ev.jobModels)
}

func describeExperience(score float64, ev *evaluation) string {
	if !ev.levelKnown {
		return "Experience level requirements are not specified"
	}
	r := experienceRanges[ExperienceLevel(normalize(string(ev.level)))]
	years := strconv.FormatFloat(ev.years, 'f', -1, 64)
	level := normalize(string(ev.level))
	switch {
	case score >= 90:
		return fmt.Sprintf("Your %s years of experience fits the %s level", years, level)
	case score >= 70:
		return fmt.Sprintf("Your %s years of experience is close to the %s level (%g-%g years)", years, level, r.min, r.max)
	case score >= 50:
		return fmt.Sprintf("Your %s years of experience is somewhat outside the %s level (%g-%g years)", years, level, r.min, r.max)
	}
	return fmt.Sprintf("Your %s years of experience differs significantly from the %s level (%g-%g years)", years, level, r.min, r.max)
}

func describeLocation(score float64, ev *evaluation) string {
	if !ev.hasPreferences {
		return "Add work location preferences to your profile for a better location match"
	}
	arrangement := string(ev.arrangement)
	if arrangement == "" {
		arrangement = "unspecified"
	}
	if ev.arrangement == ArrangementOnsite && normalize(ev.location) != "" {
		arrangement = "onsite in " + ev.location
	}
	switch {
	case score >= 90:
		return fmt.Sprintf("Work arrangement (%s) matches your preferences", arrangement)
	case score >= 70:
		return fmt.Sprintf("Work arrangement (%s) is compatible with your preferences", arrangement)
	case score >= 50:
		return fmt.Sprintf("Work arrangement (%s) partially fits your preferences", arrangement)
	}
	return fmt.Sprintf("Work arrangement (%s) does not match your preferences", arrangement)
}

func describeSalary(score float64, ev *evaluation) string {
	if !ev.salaryKnown {
		return "Salary information is not available for comparison"
	}
	if ev.salaryShortfall == 0 {
		return "Salary range meets or exceeds your expectations"
	}
	switch {
	case score >= 90:
		return fmt.Sprintf("Salary range is within %.0f%% of your expectations", ev.salaryShortfall)
	case score >= 70:
		return fmt.Sprintf("Salary range is slightly below your expectations (%.0f%% short)", ev.salaryShortfall)
	case score >= 50:
		return fmt.Sprintf("Salary range is below your expectations (%.0f%% short)", ev.salaryShortfall)
	}
	return fmt.Sprintf("Salary range is well below your expectations (%.0f%% short)", ev.salaryShortfall)
}

func describeCulturalFit(score float64, ev *evaluation) string {
	if !ev.benefitsKnown {
		return "Company benefits are not listed"
	}
	counts := fmt.Sprintf("%d of %d key benefits", ev.matchedBenefits, len(PreferredBenefits))
	switch {
	case score >= 90:
		return "Excellent benefits package with " + counts
	case score >= 70:
		return "Good benefits package with " + counts
	case score >= 50:
		return "Offers " + counts
	}
	return "Few key benefits offered: " + counts
}
