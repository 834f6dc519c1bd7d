package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/coursecatalog/internal/app/catalog"
	"github.com/yigit/coursecatalog/internal/app/models"
)

// CourseStore is the course side of the record store.
type CourseStore interface {
	catalog.RecordStore
	GetCourseByID(ctx context.Context, courseID string) (*models.CourseRecord, error)
	ListCourseSummaries(ctx context.Context) ([]models.CourseSummary, error)
}

// FCEFilter narrows evaluation lookups. Empty fields do not filter.
type FCEFilter struct {
	CourseIDs  []string
	Instructor string
}

// FCEStore reads evaluation rows.
type FCEStore interface {
	FindFCEs(ctx context.Context, filter FCEFilter) ([]models.EvaluationRecord, error)
	ListInstructors(ctx context.Context) ([]models.Instructor, error)
}

// SyllabusStore reads published syllabi.
type SyllabusStore interface {
	ListSyllabi(ctx context.Context) ([]models.Syllabus, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	CourseRepository   CourseStore
	FCERepository      FCEStore
	SyllabusRepository SyllabusStore
}

// NewRepositories initializes the Postgres-backed repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		CourseRepository:   NewCourseRepository(db),
		FCERepository:      NewFCERepository(db),
		SyllabusRepository: NewSyllabusRepository(db),
	}
}
