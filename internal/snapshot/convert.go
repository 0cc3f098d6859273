// internal/snapshot/convert.go
package snapshot

import (
	"strings"

	"jobmatch-workers/internal/matching"
	"jobmatch-workers/internal/models"
)

// JobFromRecord builds the typed job snapshot. Enumerations are lower-cased
// and carried through even when unknown; the scorer treats unknown values
// as neutral.
func JobFromRecord(rec *models.JobRecord) *matching.JobSnapshot {
	skills := make([]matching.RequiredSkill, 0, len(rec.RequiredSkills))
	for _, s := range rec.RequiredSkills {
		if strings.TrimSpace(s.SkillName) == "" {
			continue
		}
		skills = append(skills, matching.RequiredSkill{
			Name:          s.SkillName,
			RequiredLevel: s.RequiredLevel,
			Mandatory:     s.IsMandatory,
		})
	}

	return &matching.JobSnapshot{
		ID:                   rec.ID,
		RequiredSkills:       skills,
		PrimaryModels:        copyStrings(rec.PrimaryModels),
		Frameworks:           copyStrings(rec.Frameworks),
		ProgrammingLanguages: copyStrings(rec.ProgrammingLanguages),
		ExperienceLevel:      matching.ExperienceLevel(lower(rec.ExperienceLevel)),
		WorkArrangement:      matching.WorkArrangement(lower(rec.WorkArrangement)),
		Location:             strings.TrimSpace(rec.Location),
		SalaryMin:            positive(rec.SalaryMin),
		SalaryMax:            positive(rec.SalaryMax),
		CompanyBenefits:      copyStrings(rec.CompanyBenefits),
	}
}

// CandidateFromRecords builds the typed candidate snapshot. The tech stack is
// the union of the given work history, which callers limit to the most
// recent positions.
func CandidateFromRecords(rec *models.CandidateRecord, skills []models.CandidateSkillRecord, history []models.WorkHistoryRecord) *matching.CandidateSnapshot {
	c := &matching.CandidateSnapshot{
		ID:                   rec.ID,
		YearsExperience:      rec.YearsExperience,
		OpenToRelocation:     rec.OpenToRelocation,
		PreferredLocations:   copyStrings(rec.PreferredLocations),
		SalaryExpectationMin: positive(rec.SalaryExpectationMin),
		SalaryExpectationMax: positive(rec.SalaryExpectationMax),
		Skills:               make([]matching.CandidateSkill, 0, len(skills)),
	}
	if c.YearsExperience < 0 {
		c.YearsExperience = 0
	}

	for _, p := range rec.WorkLocationPreferences {
		if p = lower(p); p != "" {
			c.WorkLocationPreferences = append(c.WorkLocationPreferences, matching.WorkArrangement(p))
		}
	}

	for _, s := range skills {
		if strings.TrimSpace(s.SkillName) == "" {
			continue
		}
		c.Skills = append(c.Skills, matching.CandidateSkill{Name: s.SkillName, Proficiency: s.Proficiency})
	}

	modelSet, frameworks, languages := newUnion(), newUnion(), newUnion()
	for _, h := range history {
		modelSet.add(h.Models...)
		frameworks.add(h.Frameworks...)
		languages.add(h.Languages...)
	}
	c.Models = modelSet.items
	c.Frameworks = frameworks.items
	c.Languages = languages.items

	return c
}

// union keeps first-seen order and drops case-insensitive duplicates.
type union struct {
	seen  map[string]struct{}
	items []string
}

func newUnion() *union {
	return &union{seen: map[string]struct{}{}, items: []string{}}
}

func (u *union) add(values ...string) {
	for _, v := range values {
		key := lower(v)
		if key == "" {
			continue
		}
		if _, ok := u.seen[key]; ok {
			continue
		}
		u.seen[key] = struct{}{}
		u.items = append(u.items, strings.TrimSpace(v))
	}
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	out := *v
	return &out
}

func copyStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
