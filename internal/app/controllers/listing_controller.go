package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursecatalog/internal/app/models/dto"
	"github.com/yigit/coursecatalog/internal/app/services"
	"github.com/yigit/coursecatalog/internal/middleware"
)

// ListingController serves the cached syllabus and instructor listings
type ListingController struct {
	syllabusService   services.SyllabusService
	instructorService services.InstructorService
}

// NewListingController creates a new listing controller
func NewListingController(syllabusService services.SyllabusService, instructorService services.InstructorService) *ListingController {
	return &ListingController{
		syllabusService:   syllabusService,
		instructorService: instructorService,
	}
}

// ListSyllabi lists published syllabi
// @Summary List syllabi
// @Tags listings
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Syllabus} "Syllabi retrieved successfully"
// @Failure 503 {object} dto.APIResponse "Listing temporarily unavailable"
// @Router /syllabi [get]
func (c *ListingController) ListSyllabi(ctx *gin.Context) {
	syllabi, err := c.syllabusService.ListSyllabi(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(syllabi, "Syllabi retrieved successfully"))
}

// ListInstructors lists instructors found in evaluations
// @Summary List instructors
// @Tags listings
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Instructor} "Instructors retrieved successfully"
// @Failure 503 {object} dto.APIResponse "Listing temporarily unavailable"
// @Router /instructors [get]
func (c *ListingController) ListInstructors(ctx *gin.Context) {
	instructors, err := c.instructorService.ListInstructors(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(instructors, "Instructors retrieved successfully"))
}
