package services

import (
	"time"

	"github.com/yigit/coursecatalog/internal/app/catalog"
	"github.com/yigit/coursecatalog/internal/app/repositories"
	"github.com/yigit/coursecatalog/internal/pkg/snapshot"
)

// Snapshot keys of the listings served through the cache.
const (
	KeyCourses     = "courses:all"
	KeySyllabi     = "syllabi:all"
	KeyInstructors = "instructors:all"
)

// DefaultListingTTL is used when no listing TTL is configured.
const DefaultListingTTL = 24 * time.Hour

// Services holds all the service instances
type Services struct {
	Course     CourseService
	Syllabus   SyllabusService
	Instructor InstructorService
	FCE        FCEService
}

// NewServices builds every service over repos. Listings are cached in cache
// for listingTTL.
func NewServices(repos *repositories.Repositories, cache *snapshot.Cache, listingTTL time.Duration) *Services {
	if listingTTL <= 0 {
		listingTTL = DefaultListingTTL
	}
	engine := catalog.NewEngine(repos.CourseRepository)
	return &Services{
		Course:     NewCourseService(engine, repos.CourseRepository, cache, listingTTL),
		Syllabus:   NewSyllabusService(repos.SyllabusRepository, cache, listingTTL),
		Instructor: NewInstructorService(repos.FCERepository, cache, listingTTL),
		FCE:        NewFCEService(repos.FCERepository),
	}
}
