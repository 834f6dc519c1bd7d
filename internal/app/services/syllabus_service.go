package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/coursecatalog/internal/app/models"
	"github.com/yigit/coursecatalog/internal/app/repositories"
	"github.com/yigit/coursecatalog/internal/pkg/apperrors"
	"github.com/yigit/coursecatalog/internal/pkg/snapshot"
)

// SyllabusService serves the syllabus listing
type SyllabusService interface {
	ListSyllabi(ctx context.Context) ([]models.Syllabus, error)
}

type syllabusServiceImpl struct {
	repo  repositories.SyllabusStore
	cache *snapshot.Cache
	ttl   time.Duration
}

// NewSyllabusService creates a new syllabus service instance
func NewSyllabusService(repo repositories.SyllabusStore, cache *snapshot.Cache, ttl time.Duration) SyllabusService {
	return &syllabusServiceImpl{repo: repo, cache: cache, ttl: ttl}
}

func (s *syllabusServiceImpl) ListSyllabi(ctx context.Context) ([]models.Syllabus, error) {
	return snapshot.GetOrCompute(ctx, s.cache, KeySyllabi, s.ttl, func(ctx context.Context) ([]models.Syllabus, error) {
		syllabi, err := s.repo.ListSyllabi(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
		}
		return syllabi, nil
	})
}
