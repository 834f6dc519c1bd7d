package dto

import (
	"github.com/yigit/coursecatalog/internal/app/catalog"
	"github.com/yigit/coursecatalog/internal/pkg/helpers"
)

// CourseSearchQuery is the query string of a catalog search. Values are kept
// raw: unusable filter values are dropped by the engine, never rejected.
type CourseSearchQuery struct {
	Departments        []string `form:"department"`
	Keywords           string   `form:"keywords" binding:"max=200"`
	UnitsMin           string   `form:"unitsMin"`
	UnitsMax           string   `form:"unitsMax"`
	Levels             []string `form:"level"`
	Sessions           []string `form:"session"`
	Page               string   `form:"page"`
	IncludeSchedules   string   `form:"schedules"`
	IncludeEvaluations string   `form:"fces"`
}

// FCEQuery is the query string of the evaluation endpoints.
type FCEQuery struct {
	CourseIDs    []string `form:"courseID" binding:"dive,courseid"`
	Instructor   string   `form:"instructor" binding:"max=200"`
	Semesters    []string `form:"semesters"`
	NumSemesters string   `form:"numSemesters"`
}

// ToParams converts the query into engine parameters.
func (q CourseSearchQuery) ToParams() catalog.Params {
	return catalog.Params{
		Departments:        q.Departments,
		Keywords:           q.Keywords,
		UnitsMin:           q.UnitsMin,
		UnitsMax:           q.UnitsMax,
		Levels:             q.Levels,
		Sessions:           q.Sessions,
		Page:               q.Page,
		IncludeSchedules:   helpers.ParseBool(q.IncludeSchedules),
		IncludeEvaluations: helpers.ParseBool(q.IncludeEvaluations),
	}
}
