package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/coursecatalog/internal/app/fce"
	"github.com/yigit/coursecatalog/internal/app/models"
	"github.com/yigit/coursecatalog/internal/app/repositories"
	"github.com/yigit/coursecatalog/internal/pkg/apperrors"
	"github.com/yigit/coursecatalog/internal/pkg/logger"
)

// FCEQuery selects the evaluation rows an FCE operation works on.
type FCEQuery struct {
	CourseIDs  []string
	Instructor string
}

// FCEService defines the evaluation operations
type FCEService interface {
	GetEvaluations(ctx context.Context, q FCEQuery) ([]models.EvaluationRecord, error)
	// Summarize returns nil when no record falls inside the window.
	Summarize(ctx context.Context, q FCEQuery, w fce.Window) (*fce.Summary, error)
	SummarizeByInstructor(ctx context.Context, q FCEQuery, w fce.Window) ([]fce.GroupSummary, error)
	SummarizeByCourse(ctx context.Context, q FCEQuery, w fce.Window) ([]fce.GroupSummary, error)
}

type fceServiceImpl struct {
	repo repositories.FCEStore
}

// NewFCEService creates a new FCE service instance
func NewFCEService(repo repositories.FCEStore) FCEService {
	return &fceServiceImpl{repo: repo}
}

// validateQuery requires at least one selector so a request never reduces
// the whole evaluation table.
func (s *fceServiceImpl) validateQuery(q FCEQuery) (repositories.FCEFilter, error) {
	filter := repositories.FCEFilter{Instructor: strings.TrimSpace(q.Instructor)}
	for _, id := range q.CourseIDs {
		if id = models.NormalizeCourseID(id); id != "" {
			filter.CourseIDs = append(filter.CourseIDs, id)
		}
	}
	if len(filter.CourseIDs) == 0 && filter.Instructor == "" {
		return filter, apperrors.NewBadRequestError("a course id or an instructor is required")
	}
	return filter, nil
}

func (s *fceServiceImpl) GetEvaluations(ctx context.Context, q FCEQuery) ([]models.EvaluationRecord, error) {
	filter, err := s.validateQuery(q)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.FindFCEs(ctx, filter)
	if err != nil {
		logger.Error().Err(err).Strs("courseIds", filter.CourseIDs).Str("instructor", filter.Instructor).Msg("Error loading evaluations")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
	}
	if records == nil {
		records = []models.EvaluationRecord{}
	}
	return records, nil
}

func (s *fceServiceImpl) Summarize(ctx context.Context, q FCEQuery, w fce.Window) (*fce.Summary, error) {
	records, err := s.GetEvaluations(ctx, q)
	if err != nil {
		return nil, err
	}
	return fce.Aggregate(records, w), nil
}

func (s *fceServiceImpl) SummarizeByInstructor(ctx context.Context, q FCEQuery, w fce.Window) ([]fce.GroupSummary, error) {
	records, err := s.GetEvaluations(ctx, q)
	if err != nil {
		return nil, err
	}
	return fce.AggregateGroups(records, w, fce.ByInstructor), nil
}

func (s *fceServiceImpl) SummarizeByCourse(ctx context.Context, q FCEQuery, w fce.Window) ([]fce.GroupSummary, error) {
	records, err := s.GetEvaluations(ctx, q)
	if err != nil {
		return nil, err
	}
	return fce.AggregateGroups(records, w, fce.ByCourse), nil
}
