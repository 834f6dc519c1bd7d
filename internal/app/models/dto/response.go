package dto

import (
	"time"

	"github.com/yigit/coursecatalog/internal/app/catalog"
	"github.com/yigit/coursecatalog/internal/app/fce"
)

// APIResponse is the envelope of every API response
type APIResponse struct {
	Success   bool         `json:"success" example:"true"`
	Message   string       `json:"message,omitempty" example:"Courses retrieved successfully"`
	Data      interface{}  `json:"data"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewSuccessResponse wraps data in a successful envelope
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// CourseSearchResponse is one page of catalog search results
type CourseSearchResponse = catalog.Result

// FCESummaryResponse carries a windowed summary. Summary is null when the
// window holds no data.
type FCESummaryResponse struct {
	Summary          *fce.Summary `json:"summary"`
	Window           fce.Window   `json:"window"`
	RatingCategories []string     `json:"ratingCategories"`
}

// FCEGroupSummaryResponse carries one summary per instructor or course.
type FCEGroupSummaryResponse struct {
	Groups           []fce.GroupSummary `json:"groups"`
	Window           fce.Window         `json:"window"`
	RatingCategories []string           `json:"ratingCategories"`
}

// HealthResponse reports liveness and snapshot ages.
type HealthResponse struct {
	Status    string               `json:"status" example:"ok"`
	Snapshots map[string]time.Time `json:"snapshots"`
}
