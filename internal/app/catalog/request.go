package catalog

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/yigit/coursecatalog/internal/app/models"
	"github.com/yigit/coursecatalog/internal/pkg/apperrors"
	"github.com/yigit/coursecatalog/internal/pkg/helpers"
)

// Params is the flat query-parameter bag handed over by the HTTP layer.
// Every value is raw and unvalidated.
type Params struct {
	Departments        []string
	Keywords           string
	UnitsMin           string
	UnitsMax           string
	Levels             []string
	Sessions           []string
	Page               string
	IncludeSchedules   bool
	IncludeEvaluations bool
}

// BoundState distinguishes a missing bound from one that failed to parse.
type BoundState int

const (
	BoundAbsent BoundState = iota
	BoundInvalid
	BoundValid
)

// Bound is one side of the units range.
type Bound struct {
	State BoundState
	Value int
}

// ParseBound reads an integer bound. Blank input is absent, anything else
// that is not an integer is invalid.
func ParseBound(raw string) Bound {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Bound{State: BoundAbsent}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return Bound{State: BoundInvalid}
	}
	return Bound{State: BoundValid, Value: v}
}

// Supplied reports whether the bound takes part in range filtering.
//
// Compatibility: a valid bound of 0 is treated exactly like an absent one,
// so unitsMin=0 never excludes records with unparseable units.
func (b Bound) Supplied() bool {
	return b.State == BoundValid && b.Value != 0
}

// Request is a validated search request. Each filter dimension is optional;
// a nil or empty slice means the dimension is absent.
type Request struct {
	Departments        []string
	Keywords           string
	UnitsMin           Bound
	UnitsMax           Bound
	Levels             []string
	Sessions           []models.Session
	Page               int
	IncludeSchedules   bool
	IncludeEvaluations bool

	// Dropped collects the filter values that were present but unusable.
	Dropped []error
}

// ParseRequest turns raw parameters into a Request. It never fails: values
// that cannot be interpreted are dropped and recorded in Request.Dropped.
func ParseRequest(p Params) Request {
	req := Request{
		Departments:        helpers.SplitList(p.Departments),
		Keywords:           strings.TrimSpace(p.Keywords),
		UnitsMin:           ParseBound(p.UnitsMin),
		UnitsMax:           ParseBound(p.UnitsMax),
		Page:               helpers.ParsePage(p.Page),
		IncludeSchedules:   p.IncludeSchedules,
		IncludeEvaluations: p.IncludeEvaluations,
	}

	if req.UnitsMin.State == BoundInvalid {
		req.Dropped = append(req.Dropped, apperrors.NewInvalidFilterError("unitsMin", p.UnitsMin))
	}
	if req.UnitsMax.State == BoundInvalid {
		req.Dropped = append(req.Dropped, apperrors.NewInvalidFilterError("unitsMax", p.UnitsMax))
	}

	for _, level := range helpers.SplitList(p.Levels) {
		if len(level) != 1 || level[0] < '0' || level[0] > '9' {
			req.Dropped = append(req.Dropped, apperrors.NewInvalidFilterError("levels", level))
			continue
		}
		req.Levels = appendUnique(req.Levels, level)
	}

	for _, raw := range p.Sessions {
		session, err := DecodeSession(raw)
		if err != nil {
			req.Dropped = append(req.Dropped, apperrors.NewInvalidFilterError("session", raw))
			continue
		}
		req.Sessions = append(req.Sessions, session)
	}

	return req
}

// sessionDescriptor is the JSON shape of an encoded session filter value,
// e.g. {"year":2023,"semester":"fall"}.
type sessionDescriptor struct {
	Year     *int             `json:"year"`
	Semester *models.Semester `json:"semester"`
}

// DecodeSession decodes one encoded session descriptor.
func DecodeSession(raw string) (models.Session, error) {
	var d sessionDescriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return models.Session{}, err
	}
	if d.Year == nil || d.Semester == nil {
		return models.Session{}, apperrors.ErrInvalidFilterValue
	}
	return models.Session{Year: *d.Year, Semester: *d.Semester}, nil
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
