package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/coursecatalog/internal/app/catalog"
	"github.com/yigit/coursecatalog/internal/app/models"
)

func TestBuildCourseQueries_NoFilters(t *testing.T) {
	plan := catalog.Compile(catalog.ParseRequest(catalog.Params{}))
	count, page := buildCourseQueries(plan)

	countSQL, countArgs, err := count.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT count(*) FROM courses c", countSQL)
	assert.Empty(t, countArgs)

	pageSQL, pageArgs, err := page.ToSql()
	require.NoError(t, err)
	assert.Contains(t, pageSQL, "0::float8 AS score")
	assert.Contains(t, pageSQL, "ORDER BY c.id LIMIT 10 OFFSET 0")
	assert.NotContains(t, pageSQL, "WHERE")
	assert.Empty(t, pageArgs)
}

func TestBuildCourseQueries_AllStages(t *testing.T) {
	plan := catalog.Compile(catalog.ParseRequest(catalog.Params{
		Departments: []string{"Computer Science", "Mathematical Sciences"},
		Keywords:    "algorithms",
		UnitsMin:    "9",
		UnitsMax:    "12",
		Levels:      []string{"2", "3"},
		Sessions:    []string{`{"year":2023,"semester":"fall"}`, `{"year":2024,"semester":"spring"}`},
		Page:        "2",
	}))
	count, page := buildCourseQueries(plan)

	countSQL, countArgs, err := count.ToSql()
	require.NoError(t, err)
	assert.Contains(t, countSQL, "c.department IN ($1,$2)")
	assert.Contains(t, countSQL, "c.search_vector @@ websearch_to_tsquery('english', $3)")
	assert.Contains(t, countSQL, "THEN c.units::numeric END) >= $4")
	assert.Contains(t, countSQL, "THEN c.units::numeric END) <= $5")
	assert.Contains(t, countSQL, "substr(split_part(c.course_id, '-', 2), 1, 1) IN ($6,$7)")
	assert.Contains(t, countSQL, "s.year = $8 AND s.semester = $9")
	assert.Contains(t, countSQL, " OR EXISTS")
	assert.Equal(t, []any{
		"Computer Science", "Mathematical Sciences", "algorithms", 9, 12, "2", "3",
		2023, string(models.SemesterFall), 2024, string(models.SemesterSpring),
	}, countArgs)

	pageSQL, pageArgs, err := page.ToSql()
	require.NoError(t, err)
	assert.Contains(t, pageSQL, "ts_rank(c.search_vector, websearch_to_tsquery('english', $1))::float8 AS score")
	assert.Contains(t, pageSQL, "ORDER BY score DESC, c.id LIMIT 10 OFFSET 10")
	require.Len(t, pageArgs, len(countArgs)+1)
	assert.Equal(t, "algorithms", pageArgs[0])
}

func TestBuildCourseQueries_ZeroMinimumIsNotFiltered(t *testing.T) {
	plan := catalog.Compile(catalog.ParseRequest(catalog.Params{UnitsMin: "0"}))
	count, _ := buildCourseQueries(plan)

	countSQL, _, err := count.ToSql()
	require.NoError(t, err)
	assert.NotContains(t, countSQL, "units")
}

func TestBuildFCEQuery(t *testing.T) {
	sqlStr, args, err := buildFCEQuery(FCEFilter{CourseIDs: []string{"15-122"}, Instructor: "Cervesato, Iliano"}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "f.course_id IN ($1)")
	assert.Contains(t, sqlStr, "lower(f.instructor) = lower($2)")
	assert.Contains(t, sqlStr, "ORDER BY f.id")
	assert.Equal(t, []any{"15-122", "Cervesato, Iliano"}, args)

	sqlStr, args, err = buildFCEQuery(FCEFilter{}).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sqlStr, "WHERE")
	assert.Empty(t, args)
}

func TestBuildCourseQueries_HugePageSaturatesOffset(t *testing.T) {
	plan := catalog.Compile(catalog.ParseRequest(catalog.Params{Page: "922337203685477582"}))
	_, page := buildCourseQueries(plan)

	pageSQL, _, err := page.ToSql()
	require.NoError(t, err)
	assert.Contains(t, pageSQL, "LIMIT 10 OFFSET 9223372036854775807")
	assert.True(t, pastLastPage(plan, 9))
}

func TestPastLastPage(t *testing.T) {
	first := catalog.Compile(catalog.ParseRequest(catalog.Params{}))
	second := catalog.Compile(catalog.ParseRequest(catalog.Params{Page: "2"}))

	assert.True(t, pastLastPage(first, 0))
	assert.False(t, pastLastPage(first, 1))
	assert.True(t, pastLastPage(second, 10))
	assert.False(t, pastLastPage(second, 11))
}
