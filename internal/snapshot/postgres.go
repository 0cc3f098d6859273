// internal/snapshot/postgres.go
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jobmatch-workers/internal/common/logger"
	"jobmatch-workers/internal/matching"
	"jobmatch-workers/internal/models"

	"github.com/lib/pq"
)

// DefaultWorkHistoryDepth is how many recent positions feed the candidate's
// tech stack.
const DefaultWorkHistoryDepth = 3

var ErrLoadFailed = errors.New("SNAPSHOT_LOAD_FAILED")

const (
	jobQuery = `
		SELECT j.id, j.experience_level, j.work_arrangement, j.location,
		       j.salary_min, j.salary_max, j.primary_models, j.frameworks,
		       j.programming_languages, COALESCE(c.benefits, '{}')
		FROM jobs j
		LEFT JOIN companies c ON c.id = j.company_id
		WHERE j.id = $1`

	jobSkillsQuery = `
		SELECT skill_name, required_level, is_mandatory
		FROM job_skills
		WHERE job_id = $1
		ORDER BY is_mandatory DESC, skill_name`

	candidateQuery = `
		SELECT id, years_experience, work_location_preferences, open_to_relocation,
		       preferred_locations, salary_expectation_min, salary_expectation_max
		FROM candidates
		WHERE id = $1`

	candidateSkillsQuery = `
		SELECT skill_name, proficiency
		FROM candidate_skills
		WHERE candidate_id = $1`

	workHistoryQuery = `
		SELECT id, company, start_date, models, frameworks, languages
		FROM work_history
		WHERE candidate_id = $1
		ORDER BY start_date DESC
		LIMIT $2`
)

// PostgresLoader reads job and candidate snapshots from the relational store.
type PostgresLoader struct {
	db           *sql.DB
	historyDepth int
	logger       logger.Logger
}

func NewPostgresLoader(db *sql.DB, historyDepth int, log logger.Logger) *PostgresLoader {
	if historyDepth <= 0 {
		historyDepth = DefaultWorkHistoryDepth
	}
	return &PostgresLoader{
		db:           db,
		historyDepth: historyDepth,
		logger:       log.WithFields(map[string]interface{}{"component": "snapshot.postgres"}),
	}
}

func (l *PostgresLoader) LoadJobSnapshot(ctx context.Context, jobID string) (*matching.JobSnapshot, error) {
	rec, err := l.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return JobFromRecord(rec), nil
}

func (l *PostgresLoader) loadJob(ctx context.Context, jobID string) (*models.JobRecord, error) {
	var (
		rec                  models.JobRecord
		level, arrangement   sql.NullString
		location             sql.NullString
		salaryMin, salaryMax sql.NullFloat64
		primaryModels, fws   pq.StringArray
		languages, benefits  pq.StringArray
	)

	err := l.db.QueryRowContext(ctx, jobQuery, jobID).Scan(
		&rec.ID, &level, &arrangement, &location,
		&salaryMin, &salaryMax, &primaryModels, &fws,
		&languages, &benefits,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", jobID, matching.ErrNotFound)
	}
	if err != nil {
		return nil, queryError(models.QueryTypeJob, err)
	}

	rec.ExperienceLevel = level.String
	rec.WorkArrangement = arrangement.String
	rec.Location = location.String
	rec.SalaryMin = nullFloat(salaryMin)
	rec.SalaryMax = nullFloat(salaryMax)
	rec.PrimaryModels = primaryModels
	rec.Frameworks = fws
	rec.ProgrammingLanguages = languages
	rec.CompanyBenefits = benefits

	rows, err := l.db.QueryContext(ctx, jobSkillsQuery, jobID)
	if err != nil {
		return nil, queryError(models.QueryTypeJobSkills, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.JobSkillRecord
		var level sql.NullInt64
		if err := rows.Scan(&s.SkillName, &level, &s.IsMandatory); err != nil {
			return nil, queryError(models.QueryTypeJobSkills, err)
		}
		s.RequiredLevel = int(level.Int64)
		rec.RequiredSkills = append(rec.RequiredSkills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(models.QueryTypeJobSkills, err)
	}

	return &rec, nil
}

func (l *PostgresLoader) LoadCandidateSnapshot(ctx context.Context, candidateID string) (*matching.CandidateSnapshot, error) {
	var (
		rec                  models.CandidateRecord
		years                sql.NullFloat64
		arrangements, places pq.StringArray
		salaryMin, salaryMax sql.NullFloat64
	)

	err := l.db.QueryRowContext(ctx, candidateQuery, candidateID).Scan(
		&rec.ID, &years, &arrangements, &rec.OpenToRelocation,
		&places, &salaryMin, &salaryMax,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("candidate %s: %w", candidateID, matching.ErrNotFound)
	}
	if err != nil {
		return nil, queryError(models.QueryTypeCandidate, err)
	}

	rec.YearsExperience = years.Float64
	rec.WorkLocationPreferences = arrangements
	rec.PreferredLocations = places
	rec.SalaryExpectationMin = nullFloat(salaryMin)
	rec.SalaryExpectationMax = nullFloat(salaryMax)

	skills, err := l.loadCandidateSkills(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	history, err := l.loadWorkHistory(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("candidate snapshot loaded", map[string]interface{}{
		"candidateId": candidateID,
		"skills":      len(skills),
		"positions":   len(history),
	})
	return CandidateFromRecords(&rec, skills, history), nil
}

func (l *PostgresLoader) loadCandidateSkills(ctx context.Context, candidateID string) ([]models.CandidateSkillRecord, error) {
	rows, err := l.db.QueryContext(ctx, candidateSkillsQuery, candidateID)
	if err != nil {
		return nil, queryError(models.QueryTypeCandidateSkills, err)
	}
	defer rows.Close()

	var skills []models.CandidateSkillRecord
	for rows.Next() {
		var s models.CandidateSkillRecord
		var proficiency sql.NullInt64
		if err := rows.Scan(&s.SkillName, &proficiency); err != nil {
			return nil, queryError(models.QueryTypeCandidateSkills, err)
		}
		s.Proficiency = int(proficiency.Int64)
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(models.QueryTypeCandidateSkills, err)
	}
	return skills, nil
}

func (l *PostgresLoader) loadWorkHistory(ctx context.Context, candidateID string) ([]models.WorkHistoryRecord, error) {
	rows, err := l.db.QueryContext(ctx, workHistoryQuery, candidateID, l.historyDepth)
	if err != nil {
		return nil, queryError(models.QueryTypeWorkHistory, err)
	}
	defer rows.Close()

	var history []models.WorkHistoryRecord
	for rows.Next() {
		var (
			h                    models.WorkHistoryRecord
			company              sql.NullString
			mdls, fws, languages pq.StringArray
		)
		if err := rows.Scan(&h.ID, &company, &h.StartDate, &mdls, &fws, &languages); err != nil {
			return nil, queryError(models.QueryTypeWorkHistory, err)
		}
		h.Company = company.String
		h.Models = mdls
		h.Frameworks = fws
		h.Languages = languages
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(models.QueryTypeWorkHistory, err)
	}
	return history, nil
}

func queryError(q models.QueryType, err error) error {
	return fmt.Errorf("%w: %s query: %v", ErrLoadFailed, q, err)
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
