package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yigit/coursecatalog/internal/app/models"
	"github.com/yigit/coursecatalog/internal/pkg/apperrors"
	"github.com/yigit/coursecatalog/internal/pkg/helpers"
	"github.com/yigit/coursecatalog/internal/pkg/logger"
	"github.com/yigit/coursecatalog/internal/pkg/metrics"
)

// RecordStore is the storage capability the engine runs plans against.
type RecordStore interface {
	// FindCourses executes every filter stage of the plan and returns the
	// requested page together with the total number of matches.
	FindCourses(ctx context.Context, plan *Plan) ([]models.CourseRecord, int64, error)
	// FindSchedules returns all offerings of the given courses.
	FindSchedules(ctx context.Context, courseIDs []string) ([]models.SessionOffering, error)
	// FindEvaluations returns all evaluation rows of the given courses.
	FindEvaluations(ctx context.Context, courseIDs []string) ([]models.EvaluationRecord, error)
}

// Result is one page of search results.
type Result struct {
	Items      []models.CourseRecord `json:"courses"`
	Page       int                   `json:"page"`
	TotalPages int                   `json:"totalPages"`
	TotalItems int64                 `json:"totalItems"`
}

// Engine answers catalog searches.
type Engine struct {
	store RecordStore
}

// NewEngine creates a new Engine
func NewEngine(store RecordStore) *Engine {
	return &Engine{store: store}
}

// Search compiles req into a plan and executes it. Evaluations are only
// attached when the caller is authorized. Storage faults are returned
// wrapped in apperrors.ErrQueryFailed and no partial page is returned.
func (e *Engine) Search(ctx context.Context, req Request, authorized bool) (*Result, error) {
	start := time.Now()
	result, err := e.search(ctx, req, authorized)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordCatalogSearch(status, time.Since(start))
	return result, err
}

func (e *Engine) search(ctx context.Context, req Request, authorized bool) (*Result, error) {
	for _, dropped := range req.Dropped {
		field := "unknown"
		var ce *apperrors.CustomError
		if errors.As(dropped, &ce) {
			if f, ok := ce.Details["field"].(string); ok {
				field = f
			}
		}
		metrics.RecordDroppedFilter(field)
		logger.Debug().Err(dropped).Str("field", field).Msg("Dropping unusable search filter value")
	}

	plan := Compile(req)

	courses, total, err := e.store.FindCourses(ctx, plan)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing catalog search plan")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
	}
	if courses == nil {
		courses = []models.CourseRecord{}
	}

	if err := e.attach(ctx, courses, req.IncludeSchedules, req.IncludeEvaluations && authorized); err != nil {
		return nil, err
	}

	return &Result{
		Items:      courses,
		Page:       plan.Page,
		TotalPages: helpers.TotalPages(total, helpers.CatalogPageSize),
		TotalItems: total,
	}, nil
}

// attach joins schedules and evaluations onto the page in place.
func (e *Engine) attach(ctx context.Context, courses []models.CourseRecord, schedules, evaluations bool) error {
	if len(courses) == 0 || (!schedules && !evaluations) {
		return nil
	}

	ids := make([]string, len(courses))
	index := make(map[string]int, len(courses))
	for i, c := range courses {
		ids[i] = c.CourseID
		index[c.CourseID] = i
	}

	if schedules {
		offerings, err := e.store.FindSchedules(ctx, ids)
		if err != nil {
			logger.Error().Err(err).Msg("Error loading schedules for search page")
			return fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
		}
		for _, o := range offerings {
			if i, ok := index[o.CourseID]; ok {
				courses[i].Schedules = append(courses[i].Schedules, o)
			}
		}
	}

	if evaluations {
		records, err := e.store.FindEvaluations(ctx, ids)
		if err != nil {
			logger.Error().Err(err).Msg("Error loading evaluations for search page")
			return fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
		}
		for _, r := range records {
			if i, ok := index[r.CourseID]; ok {
				courses[i].FCEs = append(courses[i].FCEs, r)
			}
		}
	}

	return nil
}
