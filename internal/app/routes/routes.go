package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/coursecatalog/internal/app/controllers"
	"github.com/yigit/coursecatalog/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Course  *controllers.CourseController
	Listing *controllers.ListingController
	FCE     *controllers.FCEController
	Health  *controllers.HealthController
}

// SetupRouter configures all application routes. rateLimiter may be nil.
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
) {
	// withLimit appends the rate limiter after any auth middleware so
	// authorized callers are keyed by subject.
	withLimit := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		if rateLimiter != nil {
			handlers = append(handlers, rateLimiter.Handler())
		}
		return handlers
	}

	v1 := router.Group("/api/v1")
	v1.GET("/health", ctrl.Health.Health)

	// --- Public listings ---
	public := v1.Group("", withLimit()...)
	{
		public.GET("/courses", ctrl.Course.ListCourses)
		public.GET("/syllabi", ctrl.Listing.ListSyllabi)
		public.GET("/instructors", ctrl.Listing.ListInstructors)
	}

	// --- Catalog, evaluations attached for authenticated callers ---
	catalog := v1.Group("/courses", withLimit(authMiddleware.OptionalAuth())...)
	{
		catalog.GET("/search", ctrl.Course.SearchCourses)
		catalog.GET("/:courseID", ctrl.Course.GetCourse)
	}

	// --- Evaluations, authentication required ---
	fces := v1.Group("/fces", withLimit(authMiddleware.JWTAuth())...)
	{
		fces.GET("", ctrl.FCE.GetEvaluations)
		fces.GET("/summary", ctrl.FCE.Summarize)
		fces.GET("/summary/instructors", ctrl.FCE.SummarizeByInstructor)
		fces.GET("/summary/courses", ctrl.FCE.SummarizeByCourse)
	}
}
