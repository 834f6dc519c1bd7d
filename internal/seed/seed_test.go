package seed

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/coursecatalog/internal/app/models"
	"github.com/yigit/coursecatalog/internal/app/repositories/memstore"
)

func TestCatalogTables(t *testing.T) {
	respondents := 40
	data := &memstore.Data{
		Courses:   []models.CourseRecord{{CourseID: "15-122", Name: "Principles of Imperative Computation", Units: "12"}},
		Schedules: []models.SessionOffering{{CourseID: "15-122", Year: 2023, Semester: models.SemesterFall}},
		FCEs:      []models.EvaluationRecord{{CourseID: "15-122", Year: 2023, Semester: models.SemesterFall, NumRespondents: &respondents}},
	}

	tables := catalogTables(data)
	require.Len(t, tables, 4)
	assert.Equal(t, []string{"courses", "schedules", "fces", "syllabi"},
		[]string{tables[0].name, tables[1].name, tables[2].name, tables[3].name})

	for _, table := range tables {
		for _, row := range table.rows {
			assert.Len(t, row, len(table.columns), table.name)
		}
	}
	assert.Equal(t, "fall", tables[1].rows[0][2])
	assert.Equal(t, &respondents, tables[2].rows[0][7])
	assert.Empty(t, tables[3].rows)
}

func TestDescribeCopyError(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "courses_course_id_key"}
	err := describeCopyError("courses", dup)
	assert.Contains(t, err.Error(), "course id twice")
	assert.True(t, errors.Is(err, dup))

	err = describeCopyError("schedules", &pgconn.PgError{Code: "23514"})
	assert.Contains(t, err.Error(), "invalid row in schedules")

	err = describeCopyError("fces", errors.New("conn reset"))
	assert.Equal(t, "failed to copy fces: conn reset", err.Error())
}
