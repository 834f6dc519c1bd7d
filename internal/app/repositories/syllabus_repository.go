package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/coursecatalog/internal/app/models"
	"github.com/yigit/coursecatalog/internal/pkg/logger"
)

// SyllabusRepository reads published syllabus links.
type SyllabusRepository struct {
	DB *pgxpool.Pool
}

// NewSyllabusRepository creates a new instance of SyllabusRepository.
func NewSyllabusRepository(db *pgxpool.Pool) *SyllabusRepository {
	return &SyllabusRepository{DB: db}
}

// ListSyllabi lists every syllabus ordered by course.
func (r *SyllabusRepository) ListSyllabi(ctx context.Context) ([]models.Syllabus, error) {
	rows, err := r.DB.Query(ctx, `SELECT course_id, year, semester, section, url FROM syllabi ORDER BY course_id, id`)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing syllabus list query")
		return nil, err
	}
	defer rows.Close()

	syllabi := []models.Syllabus{}
	for rows.Next() {
		var s models.Syllabus
		if err := rows.Scan(&s.CourseID, &s.Year, &s.Semester, &s.Section, &s.URL); err != nil {
			logger.Error().Err(err).Msg("Error scanning syllabus row")
			return nil, err
		}
		syllabi = append(syllabi, s)
	}
	return syllabi, rows.Err()
}
