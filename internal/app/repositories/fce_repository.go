package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/coursecatalog/internal/app/models"
	"github.com/yigit/coursecatalog/internal/pkg/logger"
)

// FCERepository reads course evaluation rows.
type FCERepository struct {
	DB *pgxpool.Pool
}

// NewFCERepository creates a new instance of FCERepository.
func NewFCERepository(db *pgxpool.Pool) *FCERepository {
	return &FCERepository{DB: db}
}

func buildFCEQuery(filter FCEFilter) squirrel.SelectBuilder {
	b := squirrel.Select(
		"f.course_id", "f.course_name", "f.department", "f.instructor", "f.year", "f.semester", "f.section",
		"f.num_respondents", "f.possible_respondents", "f.response_rate", "f.hrs_per_week", "f.rating",
	).From("fces f").
		OrderBy("f.id").
		PlaceholderFormat(squirrel.Dollar)

	if len(filter.CourseIDs) > 0 {
		b = b.Where(squirrel.Eq{"f.course_id": filter.CourseIDs})
	}
	if filter.Instructor != "" {
		b = b.Where("lower(f.instructor) = lower(?)", filter.Instructor)
	}
	return b
}

// queryFCEs is shared with CourseRepository, which attaches evaluations to search pages.
func queryFCEs(ctx context.Context, db *pgxpool.Pool, filter FCEFilter) ([]models.EvaluationRecord, error) {
	sqlStr, args, err := buildFCEQuery(filter).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building FCE SQL")
		return nil, err
	}

	rows, err := db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing FCE query")
		return nil, err
	}
	defer rows.Close()

	var records []models.EvaluationRecord
	for rows.Next() {
		var f models.EvaluationRecord
		err := rows.Scan(
			&f.CourseID, &f.CourseName, &f.Department, &f.Instructor, &f.Year, &f.Semester, &f.Section,
			&f.NumRespondents, &f.PossibleRespondents, &f.ResponseRate, &f.HrsPerWeek, &f.Rating,
		)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning FCE row")
			return nil, err
		}
		records = append(records, f)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating FCE rows")
		return nil, err
	}
	return records, nil
}

// FindFCEs returns evaluation rows matching filter in insertion order.
func (r *FCERepository) FindFCEs(ctx context.Context, filter FCEFilter) ([]models.EvaluationRecord, error) {
	return queryFCEs(ctx, r.DB, filter)
}

// ListInstructors lists distinct instructors with the departments they taught in.
func (r *FCERepository) ListInstructors(ctx context.Context) ([]models.Instructor, error) {
	const query = `
	SELECT instructor,
	       COALESCE(array_agg(DISTINCT department ORDER BY department) FILTER (WHERE department <> ''), '{}')
	FROM fces
	WHERE instructor <> ''
	GROUP BY instructor
	ORDER BY instructor`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing instructor list query")
		return nil, err
	}
	defer rows.Close()

	instructors := []models.Instructor{}
	for rows.Next() {
		var inst models.Instructor
		if err := rows.Scan(&inst.Name, &inst.Departments); err != nil {
			logger.Error().Err(err).Msg("Error scanning instructor row")
			return nil, err
		}
		instructors = append(instructors, inst)
	}
	return instructors, rows.Err()
}
