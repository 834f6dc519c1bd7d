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

// InstructorService serves the instructor listing
type InstructorService interface {
	ListInstructors(ctx context.Context) ([]models.Instructor, error)
}

type instructorServiceImpl struct {
	repo  repositories.FCEStore
	cache *snapshot.Cache
	ttl   time.Duration
}

// NewInstructorService creates a new instructor service instance
func NewInstructorService(repo repositories.FCEStore, cache *snapshot.Cache, ttl time.Duration) InstructorService {
	return &instructorServiceImpl{repo: repo, cache: cache, ttl: ttl}
}

func (s *instructorServiceImpl) ListInstructors(ctx context.Context) ([]models.Instructor, error) {
	return snapshot.GetOrCompute(ctx, s.cache, KeyInstructors, s.ttl, func(ctx context.Context) ([]models.Instructor, error) {
		instructors, err := s.repo.ListInstructors(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
		}
		return instructors, nil
	})
}
