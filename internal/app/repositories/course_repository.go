package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/coursecatalog/internal/app/catalog"
	"github.com/yigit/coursecatalog/internal/app/models"
	"github.com/yigit/coursecatalog/internal/pkg/apperrors"
	"github.com/yigit/coursecatalog/internal/pkg/logger"
)

const (
	// textSearchConfig is the Postgres text search configuration used for keywords.
	textSearchConfig = "english"

	// numericUnits yields the units as numeric when they are a plain decimal, NULL otherwise.
	// A NULL never satisfies a range comparison, so unparseable units drop out of an active range.
	numericUnits = `(CASE WHEN c.units ~ '^[0-9]+(\.[0-9]+){0,1}$' THEN c.units::numeric END)`

	// courseLevel is the first digit of the number part of the course id.
	courseLevel = `substr(split_part(c.course_id, '-', 2), 1, 1)`

	sessionExists = `EXISTS (SELECT 1 FROM schedules s WHERE s.course_id = c.course_id AND s.year = ? AND s.semester = ?)`
)

// CourseRepository runs catalog plans against Postgres.
type CourseRepository struct {
	DB *pgxpool.Pool
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{DB: db}
}

// applyCourseFilters adds every filter stage of plan to b. It is shared by the
// count and page queries so both see the same matches.
func applyCourseFilters(b squirrel.SelectBuilder, plan *catalog.Plan) squirrel.SelectBuilder {
	if len(plan.Departments) > 0 {
		b = b.Where(squirrel.Eq{"c.department": plan.Departments})
	}
	if plan.HasKeywords() {
		b = b.Where("c.search_vector @@ websearch_to_tsquery('"+textSearchConfig+"', ?)", plan.Keywords)
	}
	if plan.UnitsMin != nil {
		b = b.Where(numericUnits+" >= ?", *plan.UnitsMin)
	}
	if plan.UnitsMax != nil {
		b = b.Where(numericUnits+" <= ?", *plan.UnitsMax)
	}
	if len(plan.Levels) > 0 {
		b = b.Where(squirrel.Eq{courseLevel: plan.Levels})
	}
	if len(plan.Sessions) > 0 {
		or := make(squirrel.Or, 0, len(plan.Sessions))
		for _, s := range plan.Sessions {
			or = append(or, squirrel.Expr(sessionExists, s.Year, string(s.Semester)))
		}
		b = b.Where(or)
	}
	return b
}

// buildCourseQueries returns the count and page queries for plan.
func buildCourseQueries(plan *catalog.Plan) (count squirrel.SelectBuilder, page squirrel.SelectBuilder) {
	count = applyCourseFilters(
		squirrel.Select("count(*)").From("courses c").PlaceholderFormat(squirrel.Dollar),
		plan,
	)

	page = squirrel.Select("c.course_id", "c.name", "c.department", "c.units", "c.description", "c.prereqs").
		From("courses c").
		PlaceholderFormat(squirrel.Dollar)
	if plan.HasKeywords() {
		page = page.Column(squirrel.Expr(
			"ts_rank(c.search_vector, websearch_to_tsquery('"+textSearchConfig+"', ?))::float8 AS score", plan.Keywords,
		)).OrderBy("score DESC", "c.id")
	} else {
		page = page.Column("0::float8 AS score").OrderBy("c.id")
	}
	page = applyCourseFilters(page, plan).Offset(plan.Offset).Limit(plan.Limit)
	return count, page
}

func scanCourse(row pgx.Row, withScore bool) (*models.CourseRecord, error) {
	var c models.CourseRecord
	dest := []any{&c.CourseID, &c.Name, &c.Department, &c.Units, &c.Description, &c.Prereqs}
	if withScore {
		dest = append(dest, &c.Score)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &c, nil
}

// pastLastPage reports whether plan's offset skips every one of total matches.
func pastLastPage(plan *catalog.Plan, total int64) bool {
	return total <= 0 || plan.Offset >= uint64(total)
}

// FindCourses executes plan and returns one page of matches and the total match count.
func (r *CourseRepository) FindCourses(ctx context.Context, plan *catalog.Plan) ([]models.CourseRecord, int64, error) {
	countBuilder, pageBuilder := buildCourseQueries(plan)

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building course count SQL")
		return nil, 0, err
	}

	var total int64
	if err := r.DB.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing course count query")
		return nil, 0, err
	}

	// Pages past the end still report the total.
	if pastLastPage(plan, total) {
		return []models.CourseRecord{}, total, nil
	}

	pageSQL, pageArgs, err := pageBuilder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building course page SQL")
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing course page query")
		return nil, 0, err
	}
	defer rows.Close()

	courses := make([]models.CourseRecord, 0, plan.Limit)
	for rows.Next() {
		c, err := scanCourse(rows, true)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning course row")
			return nil, 0, err
		}
		courses = append(courses, *c)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating course rows")
		return nil, 0, err
	}

	return courses, total, nil
}

// FindSchedules returns the offerings of the given courses.
func (r *CourseRepository) FindSchedules(ctx context.Context, courseIDs []string) ([]models.SessionOffering, error) {
	if len(courseIDs) == 0 {
		return []models.SessionOffering{}, nil
	}

	sqlStr, args, err := squirrel.Select("course_id", "year", "semester", "lectures", "sections").
		From("schedules").
		Where(squirrel.Eq{"course_id": courseIDs}).
		OrderBy("id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building schedules SQL")
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing schedules query")
		return nil, err
	}
	defer rows.Close()

	var offerings []models.SessionOffering
	for rows.Next() {
		var o models.SessionOffering
		if err := rows.Scan(&o.CourseID, &o.Year, &o.Semester, &o.Lectures, &o.Sections); err != nil {
			logger.Error().Err(err).Msg("Error scanning schedule row")
			return nil, err
		}
		offerings = append(offerings, o)
	}
	return offerings, rows.Err()
}

// FindEvaluations returns the evaluation rows of the given courses.
func (r *CourseRepository) FindEvaluations(ctx context.Context, courseIDs []string) ([]models.EvaluationRecord, error) {
	if len(courseIDs) == 0 {
		return []models.EvaluationRecord{}, nil
	}
	return queryFCEs(ctx, r.DB, FCEFilter{CourseIDs: courseIDs})
}

// GetCourseByID retrieves a single course without relations.
func (r *CourseRepository) GetCourseByID(ctx context.Context, courseID string) (*models.CourseRecord, error) {
	sqlStr, args, err := squirrel.Select("c.course_id", "c.name", "c.department", "c.units", "c.description", "c.prereqs").
		From("courses c").
		Where(squirrel.Eq{"c.course_id": courseID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get course SQL")
		return nil, err
	}

	course, err := scanCourse(r.DB.QueryRow(ctx, sqlStr, args...), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Str("courseId", courseID).Msg("Error scanning course")
		return nil, err
	}
	return course, nil
}

// ListCourseSummaries lists every course ordered by id.
func (r *CourseRepository) ListCourseSummaries(ctx context.Context) ([]models.CourseSummary, error) {
	rows, err := r.DB.Query(ctx, `SELECT course_id, name, department FROM courses ORDER BY course_id`)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing course list query")
		return nil, err
	}
	defer rows.Close()

	summaries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.CourseSummary])
	if err != nil {
		return nil, fmt.Errorf("failed to collect course summaries: %w", err)
	}
	return summaries, nil
}
