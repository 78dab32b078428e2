package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	errx "github.com/headhunter-core/server/internal/core/error"
	logx "github.com/headhunter-core/server/pkg/logger"
)

// maxRows bounds every listing query; the tool adapters cap payloads further.
const maxRows = 50

type PostgresConfig struct {
	DSN            string `envconfig:"POSTGRES_DSN"`
	MaxConnections int    `split_words:"true" default:"10"`
	MaxIdle        int    `split_words:"true" default:"5"`
}

// PostgresCandidateStore implements CandidateStore on top of database/sql.
type PostgresCandidateStore struct {
	db *sql.DB
}

func NewPostgresCandidateStore(cfg PostgresConfig) (*PostgresCandidateStore, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresCandidateStore{db: db}, nil
}

// NewPostgresCandidateStoreFromDB wraps an existing connection, used by tests.
func NewPostgresCandidateStoreFromDB(db *sql.DB) *PostgresCandidateStore {
	return &PostgresCandidateStore{db: db}
}

func (s *PostgresCandidateStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresCandidateStore) Close() error {
	return s.db.Close()
}

const candidateSelect = `SELECT c.id, c.name, c.age, c.location, c.current_position, c.experience_years, c.summary,
	p.desired_salary_min, p.desired_salary_max, p.work_type, p.industries, p.availability_status
FROM candidates c
LEFT JOIN candidate_preferences p ON p.candidate_id = c.id`

func (s *PostgresCandidateStore) SearchBySkills(ctx context.Context, f SkillFilter) ([]Candidate, error) {
	patterns := make([]string, 0, len(f.Skills))
	for _, skill := range f.Skills {
		patterns = append(patterns, "%"+strings.TrimSpace(skill)+"%")
	}

	query := `SELECT DISTINCT ` + strings.TrimPrefix(candidateSelect, "SELECT ") + `
JOIN candidate_skills s ON s.candidate_id = c.id
WHERE c.status = 'active' AND s.skill_name ILIKE ANY($1)`
	args := []any{pq.Array(patterns)}

	if f.MinExperience > 0 {
		args = append(args, f.MinExperience)
		query += fmt.Sprintf(" AND s.experience_years >= $%d", len(args))
	}
	if f.Proficiency != "" {
		args = append(args, f.Proficiency)
		query += fmt.Sprintf(" AND s.proficiency_level = $%d", len(args))
	}
	query += fmt.Sprintf(" ORDER BY c.id LIMIT %d", maxRows)

	return s.queryCandidates(ctx, query, args...)
}

func (s *PostgresCandidateStore) SearchByLocation(ctx context.Context, location string, exactMatch bool) ([]Candidate, error) {
	var (
		query string
		arg   string
	)
	if exactMatch {
		query = candidateSelect + " WHERE c.status = 'active' AND c.location = $1"
		arg = location
	} else {
		query = candidateSelect + " WHERE c.status = 'active' AND c.location ILIKE $1"
		arg = "%" + location + "%"
	}
	query += fmt.Sprintf(" ORDER BY c.id LIMIT %d", maxRows)

	return s.queryCandidates(ctx, query, arg)
}

func (s *PostgresCandidateStore) SearchBySalaryRange(ctx context.Context, minSalary, maxSalary int) ([]Candidate, error) {
	query := candidateSelect + fmt.Sprintf(` WHERE c.status = 'active'
AND p.desired_salary_min <= $1 AND p.desired_salary_max >= $2
ORDER BY c.id LIMIT %d`, maxRows)

	return s.queryCandidates(ctx, query, maxSalary, minSalary)
}

func (s *PostgresCandidateStore) SearchByWorkType(ctx context.Context, workType string) ([]Candidate, error) {
	query := candidateSelect + fmt.Sprintf(` WHERE c.status = 'active' AND p.work_type = $1
ORDER BY c.id LIMIT %d`, maxRows)

	return s.queryCandidates(ctx, query, workType)
}

func (s *PostgresCandidateStore) SearchByIndustry(ctx context.Context, industry string) ([]Candidate, error) {
	query := candidateSelect + fmt.Sprintf(` WHERE c.status = 'active' AND $1 = ANY(p.industries)
ORDER BY c.id LIMIT %d`, maxRows)

	return s.queryCandidates(ctx, query, industry)
}

func (s *PostgresCandidateStore) SearchByAvailability(ctx context.Context, status string) ([]Candidate, error) {
	query := candidateSelect + fmt.Sprintf(` WHERE c.status = 'active' AND p.availability_status = $1
ORDER BY c.id LIMIT %d`, maxRows)

	return s.queryCandidates(ctx, query, status)
}

func (s *PostgresCandidateStore) GetCandidate(ctx context.Context, id int64) (*Candidate, error) {
	query := candidateSelect + " WHERE c.id = $1"

	candidates, err := s.queryCandidates(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return &candidates[0], nil
}

func (s *PostgresCandidateStore) ComplexSearch(ctx context.Context, f ComplexFilter) ([]Candidate, error) {
	query := candidateSelect
	var (
		conds = []string{"c.status = 'active'"}
		args  []any
	)

	if len(f.Skills) > 0 {
		patterns := make([]string, 0, len(f.Skills))
		for _, skill := range f.Skills {
			patterns = append(patterns, "%"+strings.TrimSpace(skill)+"%")
		}
		query = `SELECT DISTINCT ` + strings.TrimPrefix(candidateSelect, "SELECT ") + `
JOIN candidate_skills s ON s.candidate_id = c.id`
		args = append(args, pq.Array(patterns))
		conds = append(conds, fmt.Sprintf("s.skill_name ILIKE ANY($%d)", len(args)))
	}
	if f.Location != "" {
		args = append(args, "%"+f.Location+"%")
		conds = append(conds, fmt.Sprintf("c.location ILIKE $%d", len(args)))
	}
	if f.MinAge > 0 {
		args = append(args, f.MinAge)
		conds = append(conds, fmt.Sprintf("c.age >= $%d", len(args)))
	}
	if f.MaxAge > 0 {
		args = append(args, f.MaxAge)
		conds = append(conds, fmt.Sprintf("c.age <= $%d", len(args)))
	}
	if f.SalaryMin > 0 {
		args = append(args, f.SalaryMin)
		conds = append(conds, fmt.Sprintf("p.desired_salary_max >= $%d", len(args)))
	}
	if f.SalaryMax > 0 {
		args = append(args, f.SalaryMax)
		conds = append(conds, fmt.Sprintf("p.desired_salary_min <= $%d", len(args)))
	}
	if f.WorkType != "" {
		args = append(args, f.WorkType)
		conds = append(conds, fmt.Sprintf("p.work_type = $%d", len(args)))
	}
	if f.Industry != "" {
		args = append(args, f.Industry)
		conds = append(conds, fmt.Sprintf("$%d = ANY(p.industries)", len(args)))
	}
	if f.Availability != "" {
		args = append(args, f.Availability)
		conds = append(conds, fmt.Sprintf("p.availability_status = $%d", len(args)))
	}

	query += " WHERE " + strings.Join(conds, " AND ")
	query += fmt.Sprintf(" ORDER BY c.id LIMIT %d", maxRows)

	return s.queryCandidates(ctx, query, args...)
}

func (s *PostgresCandidateStore) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM candidates WHERE status = 'active'`)
	if err := row.Scan(&stats.TotalCandidates); err != nil {
		return nil, errx.WrapPostgres(err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT location, COUNT(*) FROM candidates
WHERE status = 'active' GROUP BY location ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	defer rows.Close()
	for rows.Next() {
		var lc LocationCount
		if err := rows.Scan(&lc.Location, &lc.Count); err != nil {
			return nil, errx.WrapPostgres(err)
		}
		stats.LocationDistribution = append(stats.LocationDistribution, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapPostgres(err)
	}

	skillRows, err := s.db.QueryContext(ctx, `SELECT s.skill_name, COUNT(*) FROM candidate_skills s
JOIN candidates c ON c.id = s.candidate_id
WHERE c.status = 'active' GROUP BY s.skill_name ORDER BY COUNT(*) DESC LIMIT 10`)
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	defer skillRows.Close()
	for skillRows.Next() {
		var sc SkillCount
		if err := skillRows.Scan(&sc.Skill, &sc.Count); err != nil {
			return nil, errx.WrapPostgres(err)
		}
		stats.TopSkills = append(stats.TopSkills, sc)
	}
	if err := skillRows.Err(); err != nil {
		return nil, errx.WrapPostgres(err)
	}

	workRows, err := s.db.QueryContext(ctx, `SELECT p.work_type, COUNT(*) FROM candidate_preferences p
JOIN candidates c ON c.id = p.candidate_id
WHERE c.status = 'active' GROUP BY p.work_type`)
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	defer workRows.Close()
	for workRows.Next() {
		var wc WorkTypeCount
		if err := workRows.Scan(&wc.WorkType, &wc.Count); err != nil {
			return nil, errx.WrapPostgres(err)
		}
		stats.WorkTypeDistribution = append(stats.WorkTypeDistribution, wc)
	}
	if err := workRows.Err(); err != nil {
		return nil, errx.WrapPostgres(err)
	}

	return stats, nil
}

// queryCandidates runs one candidate listing query and hydrates skills with a
// second query keyed by the collected ids.
func (s *PostgresCandidateStore) queryCandidates(ctx context.Context, query string, args ...any) ([]Candidate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logx.Error().Err(err).Msg("candidate query failed")
		return nil, errx.WrapPostgres(err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var (
			c           Candidate
			age         sql.NullInt64
			position    sql.NullString
			summary     sql.NullString
			salaryMin   sql.NullInt64
			salaryMax   sql.NullInt64
			workType    sql.NullString
			industries  pq.StringArray
			availStatus sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &age, &c.Location, &position, &c.ExperienceYears, &summary,
			&salaryMin, &salaryMax, &workType, &industries, &availStatus); err != nil {
			return nil, errx.WrapPostgres(err)
		}
		c.Age = int(age.Int64)
		c.CurrentPosition = position.String
		c.Summary = summary.String
		c.Preference = Preference{
			SalaryMin:    int(salaryMin.Int64),
			SalaryMax:    int(salaryMax.Int64),
			WorkType:     workType.String,
			Industries:   industries,
			Availability: availStatus.String,
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapPostgres(err)
	}

	if err := s.loadSkills(ctx, candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (s *PostgresCandidateStore) loadSkills(ctx context.Context, candidates []Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(candidates))
	byID := make(map[int64]*Candidate, len(candidates))
	for i := range candidates {
		ids = append(ids, candidates[i].ID)
		byID[candidates[i].ID] = &candidates[i]
	}

	rows, err := s.db.QueryContext(ctx, `SELECT candidate_id, skill_name, experience_years, proficiency_level
FROM candidate_skills WHERE candidate_id = ANY($1) ORDER BY candidate_id, skill_name`, pq.Array(ids))
	if err != nil {
		return errx.WrapPostgres(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			candidateID int64
			skill       Skill
			proficiency sql.NullString
		)
		if err := rows.Scan(&candidateID, &skill.Name, &skill.ExperienceYears, &proficiency); err != nil {
			return errx.WrapPostgres(err)
		}
		skill.Proficiency = proficiency.String
		if c, ok := byID[candidateID]; ok {
			c.Skills = append(c.Skills, skill)
		}
	}
	return errx.WrapPostgres(rows.Err())
}

var _ CandidateStore = (*PostgresCandidateStore)(nil)
