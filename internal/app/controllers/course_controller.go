package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursecatalog/internal/app/models/dto"
	"github.com/yigit/coursecatalog/internal/app/services"
	"github.com/yigit/coursecatalog/internal/middleware"
)

// CourseController handles catalog endpoints
type CourseController struct {
	courseService services.CourseService
}

// NewCourseController creates a new course controller
func NewCourseController(courseService services.CourseService) *CourseController {
	return &CourseController{
		courseService: courseService,
	}
}

// SearchCourses runs a catalog search
// @Summary Search the course catalog
// @Description Filters by department, keywords, units range, level and session, 10 courses per page. Unusable filter values are ignored. Evaluations are only attached for authenticated callers.
// @Tags courses
// @Produce json
// @Param department query []string false "Department name, repeatable" collectionFormat(multi)
// @Param keywords query string false "Free-text keywords"
// @Param unitsMin query string false "Minimum units (integer)"
// @Param unitsMax query string false "Maximum units (integer)"
// @Param level query []string false "First digit of the course number, repeatable" collectionFormat(multi)
// @Param session query []string false "JSON session such as {\"year\":2023,\"semester\":\"fall\"}, repeatable" collectionFormat(multi)
// @Param page query string false "1-based page number"
// @Param schedules query bool false "Attach schedules"
// @Param fces query bool false "Attach evaluations (requires authentication)"
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CourseSearchResponse} "Courses retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid query"
// @Failure 500 {object} dto.APIResponse "Query failed"
// @Router /courses/search [get]
func (c *CourseController) SearchCourses(ctx *gin.Context) {
	var query dto.CourseSearchQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}

	result, err := c.courseService.Search(ctx.Request.Context(), query.ToParams(), middleware.IsAuthorized(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Courses retrieved successfully"))
}

// GetCourse retrieves one course
// @Summary Get course by id
// @Description Returns a course with its schedules. Evaluations are attached for authenticated callers.
// @Tags courses
// @Produce json
// @Param courseID path string true "Course id, e.g. 15-122 or 15122"
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.CourseRecord} "Course retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid course id"
// @Failure 404 {object} dto.APIResponse "Course not found"
// @Failure 500 {object} dto.APIResponse "Query failed"
// @Router /courses/{courseID} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	var uri struct {
		CourseID string `uri:"courseID" binding:"required,courseid"`
	}
	if err := ctx.ShouldBindUri(&uri); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	course, err := c.courseService.GetCourse(ctx.Request.Context(), uri.CourseID, middleware.IsAuthorized(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course, "Course retrieved successfully"))
}

// ListCourses lists every course
// @Summary List all courses
// @Description Cached listing of course id, name and department
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.CourseSummary} "Courses retrieved successfully"
// @Failure 503 {object} dto.APIResponse "Listing temporarily unavailable"
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.courseService.ListCourses(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(courses, "Courses retrieved successfully"))
}
