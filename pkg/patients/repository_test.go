package patients

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type RepositoryTestSuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	repo *Repository
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) SetupTest() {
	sqlDB, mock, err := sqlmock.New()
	s.Require().NoError(err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	s.Require().NoError(err)
	s.mock = mock
	s.repo = NewRepository(db)
}

func (s *RepositoryTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

var patientColumns = []string{"id", "name", "age", "gender", "risk_score", "risk_level", "admission_date"}

func (s *RepositoryTestSuite) TestListFiltersAndSorts() {
	rows := sqlmock.NewRows(patientColumns).
		AddRow("PAT-1000001", "Ada Smith", 72, "F", 81, "Critical", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	s.mock.ExpectQuery(`SELECT \* FROM "patients" WHERE name ILIKE \$1 AND risk_level = \$2 ORDER BY risk_score DESC LIMIT`).
		WillReturnRows(rows)

	out, err := s.repo.List(context.Background(), ListQuery{Limit: 10, Search: "smith", RiskLevel: "Critical", SortBy: SortRiskDesc})
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal("Ada Smith", out[0].Name)
	s.Equal(81, out[0].RiskScore)
}

func (s *RepositoryTestSuite) TestListAllLevelsDefaultsToNewest() {
	s.mock.ExpectQuery(`SELECT \* FROM "patients" ORDER BY admission_date DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows(patientColumns))

	out, err := s.repo.List(context.Background(), ListQuery{Limit: 10, RiskLevel: "All"})
	s.NoError(err)
	s.Empty(out)
}

func (s *RepositoryTestSuite) TestGetNotFound() {
	s.mock.ExpectQuery(`SELECT \* FROM "patients" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(patientColumns))

	_, err := s.repo.Get(context.Background(), "PAT-0")
	s.ErrorIs(err, ErrNotFound)
}

func (s *RepositoryTestSuite) TestCreate() {
	s.mock.ExpectExec(`INSERT INTO "patients"`).WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.repo.Create(context.Background(), &Patient{ID: "PAT-1234567", Name: "Grace Hopper"})
	s.NoError(err)
}

func (s *RepositoryTestSuite) TestLatestAdmissionDate() {
	latest := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	s.mock.ExpectQuery(`SELECT MAX\(admission_date\) FROM "patients"`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(latest))

	got, ok, err := s.repo.LatestAdmissionDate(context.Background())
	s.Require().NoError(err)
	s.True(ok)
	s.True(latest.Equal(got))
}

func (s *RepositoryTestSuite) TestLatestAdmissionDateEmpty() {
	s.mock.ExpectQuery(`SELECT MAX\(admission_date\) FROM "patients"`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	_, ok, err := s.repo.LatestAdmissionDate(context.Background())
	s.NoError(err)
	s.False(ok)
}

func (s *RepositoryTestSuite) TestDailyAdmissions() {
	from := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"day", "count"}).
		AddRow(time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), 5).
		AddRow(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), 8)
	s.mock.ExpectQuery(`SELECT date\(admission_date\) AS day, COUNT\(\*\) AS count FROM "patients" WHERE admission_date >= \$1 AND admission_date <= \$2 GROUP BY .*day.* ORDER BY day ASC`).
		WithArgs(from, to).
		WillReturnRows(rows)

	obs, err := s.repo.DailyAdmissions(context.Background(), from, to)
	s.Require().NoError(err)
	s.Require().Len(obs, 2)
	s.Equal(5, obs[0].Count)
	s.Equal(8, obs[1].Count)
	s.Equal(10, obs[1].Date.Day())
}

func (s *RepositoryTestSuite) TestCountAdmittedSince() {
	since := time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC)
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "patients" WHERE admission_date >= \$1`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := s.repo.CountAdmittedSince(context.Background(), since)
	s.NoError(err)
	s.Equal(42, n)
}

func (s *RepositoryTestSuite) TestRiskDistribution() {
	rows := sqlmock.NewRows([]string{"risk_level", "count"}).
		AddRow("Low", 10).
		AddRow("moderate", 4).
		AddRow("", 1)
	s.mock.ExpectQuery(`SELECT COALESCE\(risk_level, ''\) AS risk_level, COUNT\(\*\) AS count FROM "patients" GROUP BY .*risk_level`).
		WillReturnRows(rows)

	dist, err := s.repo.RiskDistribution(context.Background())
	s.Require().NoError(err)
	s.Equal(map[string]int{"Low": 10, "moderate": 4, "": 1}, dist)
}
