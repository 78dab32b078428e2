package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var candidateColumns = []string{
	"id", "name", "age", "location", "current_position", "experience_years", "summary",
	"desired_salary_min", "desired_salary_max", "work_type", "industries", "availability_status",
}

func candidateRow(mockRows *sqlmock.Rows, id int64, name, location string) *sqlmock.Rows {
	return mockRows.AddRow(id, name, 31, location, "Backend Engineer", 5, "summary",
		7000, 9000, "remote", "{Technology,Fintech}", "actively_looking")
}

func skillRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"candidate_id", "skill_name", "experience_years", "proficiency_level"}).
		AddRow(1, "Python", 5, "advanced").
		AddRow(1, "AWS", 3, "intermediate")
}

func TestSearchBySkills(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgresCandidateStoreFromDB(db)

	mock.ExpectQuery(`SELECT DISTINCT c\.id, .+ JOIN candidate_skills s ON .+ s\.skill_name ILIKE ANY\(\$1\) AND s\.experience_years >= \$2`).
		WithArgs(sqlmock.AnyArg(), 3).
		WillReturnRows(candidateRow(sqlmock.NewRows(candidateColumns), 1, "김지훈", "서울"))
	mock.ExpectQuery(`SELECT candidate_id, skill_name, .+ FROM candidate_skills WHERE candidate_id = ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(skillRows())

	candidates, err := s.SearchBySkills(context.Background(), SkillFilter{Skills: []string{"Python"}, MinExperience: 3})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "김지훈", candidates[0].Name)
	assert.Equal(t, []string{"Technology", "Fintech"}, candidates[0].Preference.Industries)
	require.Len(t, candidates[0].Skills, 2)
	assert.Equal(t, "Python", candidates[0].Skills[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchByLocationFuzzy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgresCandidateStoreFromDB(db)

	mock.ExpectQuery(`c\.location ILIKE \$1`).
		WithArgs("%서울%").
		WillReturnRows(candidateRow(sqlmock.NewRows(candidateColumns), 1, "김지훈", "서울 강남구"))
	mock.ExpectQuery(`FROM candidate_skills`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(skillRows())

	candidates, err := s.SearchByLocation(context.Background(), "서울", false)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchByLocationExact(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgresCandidateStoreFromDB(db)

	mock.ExpectQuery(`c\.location = \$1`).
		WithArgs("부산").
		WillReturnRows(sqlmock.NewRows(candidateColumns))

	candidates, err := s.SearchByLocation(context.Background(), "부산", true)
	require.NoError(t, err)
	assert.Empty(t, candidates)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchBySalaryRangeOverlap(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgresCandidateStoreFromDB(db)

	// range overlap: candidate min <= requested max, candidate max >= requested min
	mock.ExpectQuery(`p\.desired_salary_min <= \$1 AND p\.desired_salary_max >= \$2`).
		WithArgs(10000, 7000).
		WillReturnRows(candidateRow(sqlmock.NewRows(candidateColumns), 1, "김지훈", "서울"))
	mock.ExpectQuery(`FROM candidate_skills`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(skillRows())

	candidates, err := s.SearchBySalaryRange(context.Background(), 7000, 10000)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCandidateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgresCandidateStoreFromDB(db)

	mock.ExpectQuery(`WHERE c\.id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(candidateColumns))

	candidate, err := s.GetCandidate(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, candidate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestComplexSearchBuildsAllConditions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgresCandidateStoreFromDB(db)

	mock.ExpectQuery(`SELECT DISTINCT .+ s\.skill_name ILIKE ANY\(\$1\) AND c\.location ILIKE \$2 AND p\.desired_salary_max >= \$3 AND p\.work_type = \$4 AND \$5 = ANY\(p\.industries\)`).
		WithArgs(sqlmock.AnyArg(), "%서울%", 7000, "remote", "Fintech").
		WillReturnRows(candidateRow(sqlmock.NewRows(candidateColumns), 1, "김지훈", "서울"))
	mock.ExpectQuery(`FROM candidate_skills`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(skillRows())

	candidates, err := s.ComplexSearch(context.Background(), ComplexFilter{
		Skills:    []string{"Python"},
		Location:  "서울",
		SalaryMin: 7000,
		WorkType:  "remote",
		Industry:  "Fintech",
	})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatistics(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgresCandidateStoreFromDB(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM candidates`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(`SELECT location, COUNT\(\*\) FROM candidates`).
		WillReturnRows(sqlmock.NewRows([]string{"location", "count"}).
			AddRow("서울", 30).AddRow("부산", 12))
	mock.ExpectQuery(`SELECT s\.skill_name, COUNT\(\*\) FROM candidate_skills`).
		WillReturnRows(sqlmock.NewRows([]string{"skill_name", "count"}).
			AddRow("Python", 20).AddRow("React", 15))
	mock.ExpectQuery(`SELECT p\.work_type, COUNT\(\*\) FROM candidate_preferences`).
		WillReturnRows(sqlmock.NewRows([]string{"work_type", "count"}).
			AddRow("remote", 25).AddRow("hybrid", 17))

	stats, err := s.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, stats.TotalCandidates)
	require.Len(t, stats.LocationDistribution, 2)
	assert.Equal(t, "서울", stats.LocationDistribution[0].Location)
	assert.Equal(t, "Python", stats.TopSkills[0].Skill)
	assert.Equal(t, 25, stats.WorkTypeDistribution[0].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryErrorWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgresCandidateStoreFromDB(db)

	mock.ExpectQuery(`p\.work_type = \$1`).
		WithArgs("remote").
		WillReturnError(assert.AnError)

	_, err = s.SearchByWorkType(context.Background(), "remote")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
