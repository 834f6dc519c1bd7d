package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/coursecatalog/internal/app/repositories/memstore"
	"github.com/yigit/coursecatalog/internal/db"
	"github.com/yigit/coursecatalog/internal/pkg/dberrors"
)

// LoadCatalog copies a catalog fixture into an empty database. When the
// courses table already has rows nothing is written.
func LoadCatalog(ctx context.Context, database *db.PostgresDB, data *memstore.Data, lgr zerolog.Logger) error {
	var existing int64
	if err := database.Pool.QueryRow(ctx, `SELECT count(*) FROM courses`).Scan(&existing); err != nil {
		return fmt.Errorf("failed to count courses: %w", err)
	}
	if existing > 0 {
		lgr.Info().Int64("courses", existing).Msg("Catalog already loaded, skipping seed")
		return nil
	}

	err := database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, table := range catalogTables(data) {
			n, err := tx.CopyFrom(ctx, pgx.Identifier{table.name}, table.columns, pgx.CopyFromRows(table.rows))
			if err != nil {
				return describeCopyError(table.name, err)
			}
			lgr.Info().Str("table", table.name).Int64("rows", n).Msg("Seeded table")
		}
		return nil
	})
	if err != nil {
		lgr.Error().Err(err).Msg("Error seeding catalog")
		return err
	}
	return nil
}

func describeCopyError(table string, err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "courses_course_id_key"):
		return fmt.Errorf("fixture lists a course id twice: %w", err)
	case dberrors.IsCheckViolation(err):
		return fmt.Errorf("fixture has an invalid row in %s: %w", table, err)
	}
	return fmt.Errorf("failed to copy %s: %w", table, err)
}

type tableRows struct {
	name    string
	columns []string
	rows    [][]any
}

// catalogTables lays the fixture out as rows per table, in load order.
func catalogTables(data *memstore.Data) []tableRows {
	courses := tableRows{name: "courses", columns: []string{"course_id", "name", "department", "units", "description", "prereqs"}}
	for _, c := range data.Courses {
		courses.rows = append(courses.rows, []any{c.CourseID, c.Name, c.Department, c.Units, c.Description, c.Prereqs})
	}

	schedules := tableRows{name: "schedules", columns: []string{"course_id", "year", "semester", "lectures", "sections"}}
	for _, s := range data.Schedules {
		schedules.rows = append(schedules.rows, []any{s.CourseID, s.Year, string(s.Semester), s.Lectures, s.Sections})
	}

	fces := tableRows{name: "fces", columns: []string{
		"course_id", "course_name", "department", "instructor", "year", "semester", "section",
		"num_respondents", "possible_respondents", "response_rate", "hrs_per_week", "rating",
	}}
	for _, f := range data.FCEs {
		fces.rows = append(fces.rows, []any{
			f.CourseID, f.CourseName, f.Department, f.Instructor, f.Year, string(f.Semester), f.Section,
			f.NumRespondents, f.PossibleRespondents, f.ResponseRate, f.HrsPerWeek, f.Rating,
		})
	}

	syllabi := tableRows{name: "syllabi", columns: []string{"course_id", "year", "semester", "section", "url"}}
	for _, s := range data.Syllabi {
		syllabi.rows = append(syllabi.rows, []any{s.CourseID, s.Year, string(s.Semester), s.Section, s.URL})
	}

	return []tableRows{courses, schedules, fces, syllabi}
}
