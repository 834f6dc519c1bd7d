package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yigit/coursecatalog/internal/app/models"
	"github.com/yigit/coursecatalog/internal/pkg/helpers"
)

// unitsPattern accepts plain non-negative decimals such as "12" or "4.5".
var unitsPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ParseUnits converts the free-form units text into a number.
func ParseUnits(units string) (float64, bool) {
	units = strings.TrimSpace(units)
	if !unitsPattern.MatchString(units) {
		return 0, false
	}
	v, err := strconv.ParseFloat(units, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Plan is the compiled form of a Request. Stores execute its stages in
// declaration order: department, keywords, units, level, session, page.
type Plan struct {
	Departments []string
	Keywords    string
	UnitsMin    *int
	UnitsMax    *int
	Levels      []string
	Sessions    []models.Session

	Page   int
	Offset uint64
	Limit  uint64
}

// Compile builds the query plan for req.
func Compile(req Request) *Plan {
	p := &Plan{
		Departments: req.Departments,
		Keywords:    req.Keywords,
		Levels:      req.Levels,
		Sessions:    req.Sessions,
		Page:        req.Page,
	}
	if req.UnitsMin.Supplied() {
		v := req.UnitsMin.Value
		p.UnitsMin = &v
	}
	if req.UnitsMax.Supplied() {
		v := req.UnitsMax.Value
		p.UnitsMax = &v
	}
	p.Offset, p.Limit = helpers.CalculateOffsetLimit(req.Page, helpers.CatalogPageSize)
	return p
}

// HasKeywords reports whether the relevance stage is active. When it is,
// results are ordered by descending score.
func (p *Plan) HasKeywords() bool { return p.Keywords != "" }

// HasUnitsRange reports whether at least one units bound was supplied.
func (p *Plan) HasUnitsRange() bool { return p.UnitsMin != nil || p.UnitsMax != nil }

// MatchDepartment is the department stage.
func (p *Plan) MatchDepartment(c *models.CourseRecord) bool {
	if len(p.Departments) == 0 {
		return true
	}
	for _, d := range p.Departments {
		if c.Department == d {
			return true
		}
	}
	return false
}

// MatchUnits is the units range stage. Records whose units do not parse
// never match an active range.
func (p *Plan) MatchUnits(c *models.CourseRecord) bool {
	if !p.HasUnitsRange() {
		return true
	}
	units, ok := ParseUnits(c.Units)
	if !ok {
		return false
	}
	if p.UnitsMin != nil && units < float64(*p.UnitsMin) {
		return false
	}
	if p.UnitsMax != nil && units > float64(*p.UnitsMax) {
		return false
	}
	return true
}

// MatchLevel is the level stage: the first digit of the course number must
// be one of the requested levels.
func (p *Plan) MatchLevel(c *models.CourseRecord) bool {
	if len(p.Levels) == 0 {
		return true
	}
	number := models.CourseNumber(c.CourseID)
	if number == "" {
		return false
	}
	for _, level := range p.Levels {
		if number[:1] == level {
			return true
		}
	}
	return false
}

// MatchSessions is the session stage: at least one offering must equal any
// requested session.
func (p *Plan) MatchSessions(offerings []models.SessionOffering) bool {
	if len(p.Sessions) == 0 {
		return true
	}
	for _, o := range offerings {
		for _, s := range p.Sessions {
			if o.Session() == s {
				return true
			}
		}
	}
	return false
}
