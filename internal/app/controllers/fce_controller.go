package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursecatalog/internal/app/fce"
	"github.com/yigit/coursecatalog/internal/app/models/dto"
	"github.com/yigit/coursecatalog/internal/app/services"
	"github.com/yigit/coursecatalog/internal/middleware"
)

// FCEController handles course evaluation endpoints. Every route requires authentication.
type FCEController struct {
	fceService services.FCEService
}

// NewFCEController creates a new FCE controller
func NewFCEController(fceService services.FCEService) *FCEController {
	return &FCEController{
		fceService: fceService,
	}
}

func (c *FCEController) bind(ctx *gin.Context) (services.FCEQuery, fce.Window, bool) {
	var query dto.FCEQuery
	if !middleware.BindQuery(ctx, &query) {
		return services.FCEQuery{}, fce.Window{}, false
	}
	q := services.FCEQuery{CourseIDs: query.CourseIDs, Instructor: query.Instructor}
	return q, fce.ParseWindow(query.Semesters, query.NumSemesters), true
}

// GetEvaluations returns raw evaluation rows
// @Summary Get evaluations
// @Tags fces
// @Produce json
// @Security BearerAuth
// @Param courseID query []string false "Course id, repeatable" collectionFormat(multi)
// @Param instructor query string false "Instructor name as printed on evaluations"
// @Success 200 {object} dto.APIResponse{data=[]models.EvaluationRecord} "Evaluations retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Neither course id nor instructor given"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 500 {object} dto.APIResponse "Query failed"
// @Router /fces [get]
func (c *FCEController) GetEvaluations(ctx *gin.Context) {
	q, _, ok := c.bind(ctx)
	if !ok {
		return
	}

	records, err := c.fceService.GetEvaluations(ctx.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(records, "Evaluations retrieved successfully"))
}

// Summarize reduces evaluations to one windowed summary
// @Summary Summarize evaluations
// @Description Weighted summary over the most recent terms. summary is null when the window holds no data.
// @Tags fces
// @Produce json
// @Security BearerAuth
// @Param courseID query []string false "Course id, repeatable" collectionFormat(multi)
// @Param instructor query string false "Instructor name"
// @Param semesters query string false "Counted semester types, e.g. spring,fall (default all)"
// @Param numSemesters query int false "Number of recent terms (default 2)"
// @Success 200 {object} dto.APIResponse{data=dto.FCESummaryResponse} "Summary computed successfully"
// @Failure 400 {object} dto.APIResponse "Neither course id nor instructor given"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Router /fces/summary [get]
func (c *FCEController) Summarize(ctx *gin.Context) {
	q, w, ok := c.bind(ctx)
	if !ok {
		return
	}

	summary, err := c.fceService.Summarize(ctx.Request.Context(), q, w)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FCESummaryResponse{
		Summary:          summary,
		Window:           w,
		RatingCategories: fce.RatingCategories,
	}, "Summary computed successfully"))
}

// SummarizeByInstructor reduces evaluations per instructor
// @Summary Summarize evaluations per instructor
// @Tags fces
// @Produce json
// @Security BearerAuth
// @Param courseID query []string false "Course id, repeatable" collectionFormat(multi)
// @Param instructor query string false "Instructor name"
// @Param semesters query string false "Counted semester types"
// @Param numSemesters query int false "Number of recent terms (default 2)"
// @Success 200 {object} dto.APIResponse{data=dto.FCEGroupSummaryResponse} "Summaries computed successfully"
// @Router /fces/summary/instructors [get]
func (c *FCEController) SummarizeByInstructor(ctx *gin.Context) {
	c.summarizeGroups(ctx, c.fceService.SummarizeByInstructor)
}

// SummarizeByCourse reduces evaluations per course
// @Summary Summarize evaluations per course
// @Tags fces
// @Produce json
// @Security BearerAuth
// @Param courseID query []string false "Course id, repeatable" collectionFormat(multi)
// @Param instructor query string false "Instructor name"
// @Param semesters query string false "Counted semester types"
// @Param numSemesters query int false "Number of recent terms (default 2)"
// @Success 200 {object} dto.APIResponse{data=dto.FCEGroupSummaryResponse} "Summaries computed successfully"
// @Router /fces/summary/courses [get]
func (c *FCEController) SummarizeByCourse(ctx *gin.Context) {
	c.summarizeGroups(ctx, c.fceService.SummarizeByCourse)
}

type groupSummarizer func(ctx context.Context, q services.FCEQuery, w fce.Window) ([]fce.GroupSummary, error)

func (c *FCEController) summarizeGroups(ctx *gin.Context, summarize groupSummarizer) {
	q, w, ok := c.bind(ctx)
	if !ok {
		return
	}

	groups, err := summarize(ctx.Request.Context(), q, w)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FCEGroupSummaryResponse{
		Groups:           groups,
		Window:           w,
		RatingCategories: fce.RatingCategories,
	}, "Summaries computed successfully"))
}
