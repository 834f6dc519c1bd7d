package fce

import (
	"strconv"
	"strings"

	"github.com/yigit/coursecatalog/internal/app/models"
	"github.com/yigit/coursecatalog/internal/pkg/helpers"
)

// DefaultNumSemesters is the number of recent terms a window keeps when the
// caller does not say otherwise.
const DefaultNumSemesters = 2

// DefaultWindow counts every semester type and keeps the two most recent terms.
func DefaultWindow() Window {
	return Window{
		CountedSemesters: append([]models.Semester(nil), models.AllSemesters...),
		NumSemesters:     DefaultNumSemesters,
	}
}

// ParseWindow reads a window from query values. Unknown semester names are
// dropped; if none remain every semester type is counted. A missing or
// malformed count falls back to DefaultNumSemesters.
func ParseWindow(semesters []string, numSemesters string) Window {
	w := DefaultWindow()

	var counted []models.Semester
	seen := make(map[models.Semester]bool)
	for _, raw := range helpers.SplitList(semesters) {
		s, err := models.ParseSemester(raw)
		if err != nil || seen[s] {
			continue
		}
		seen[s] = true
		counted = append(counted, s)
	}
	if len(counted) > 0 {
		w.CountedSemesters = counted
	}

	if n, err := strconv.Atoi(strings.TrimSpace(numSemesters)); err == nil && n > 0 {
		w.NumSemesters = n
	}
	return w
}
