package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yigit/coursecatalog/internal/app/catalog"
	"github.com/yigit/coursecatalog/internal/app/models"
	"github.com/yigit/coursecatalog/internal/app/repositories"
	"github.com/yigit/coursecatalog/internal/pkg/apperrors"
	"github.com/yigit/coursecatalog/internal/pkg/logger"
	"github.com/yigit/coursecatalog/internal/pkg/snapshot"
)

// CourseService defines the course catalog operations
type CourseService interface {
	// Search runs a catalog search. It only fails on storage faults.
	Search(ctx context.Context, params catalog.Params, authorized bool) (*catalog.Result, error)
	// GetCourse returns one course with its schedules, and its evaluations
	// when authorized.
	GetCourse(ctx context.Context, courseID string, authorized bool) (*models.CourseRecord, error)
	// ListCourses returns the cached course listing.
	ListCourses(ctx context.Context) ([]models.CourseSummary, error)
}

type courseServiceImpl struct {
	engine *catalog.Engine
	repo   repositories.CourseStore
	cache  *snapshot.Cache
	ttl    time.Duration
}

// NewCourseService creates a new course service instance
func NewCourseService(engine *catalog.Engine, repo repositories.CourseStore, cache *snapshot.Cache, ttl time.Duration) CourseService {
	return &courseServiceImpl{
		engine: engine,
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
	}
}

func (s *courseServiceImpl) Search(ctx context.Context, params catalog.Params, authorized bool) (*catalog.Result, error) {
	return s.engine.Search(ctx, catalog.ParseRequest(params), authorized)
}

func (s *courseServiceImpl) GetCourse(ctx context.Context, courseID string, authorized bool) (*models.CourseRecord, error) {
	courseID = models.NormalizeCourseID(courseID)
	if courseID == "" {
		return nil, apperrors.NewBadRequestError("course id is required")
	}

	course, err := s.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
	}

	ids := []string{course.CourseID}
	schedules, err := s.repo.FindSchedules(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
	}
	course.Schedules = schedules

	if authorized {
		evaluations, err := s.repo.FindEvaluations(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
		}
		course.FCEs = evaluations
	}

	return course, nil
}

func (s *courseServiceImpl) ListCourses(ctx context.Context) ([]models.CourseSummary, error) {
	return snapshot.GetOrCompute(ctx, s.cache, KeyCourses, s.ttl, func(ctx context.Context) ([]models.CourseSummary, error) {
		courses, err := s.repo.ListCourseSummaries(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Error listing courses")
			return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
		}
		return courses, nil
	})
}
