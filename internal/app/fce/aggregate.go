// Package fce reduces faculty course evaluation rows into windowed summaries.
package fce

import (
	"math"
	"sort"

	"github.com/yigit/coursecatalog/internal/app/models"
	"github.com/yigit/coursecatalog/internal/pkg/metrics"
)

// RatingCategories labels the components of EvaluationRecord.Rating.
var RatingCategories = []string{
	"Interest in student learning",
	"Clearly explain course requirements",
	"Clear learning objectives & goals",
	"Instructor provides feedback to students to improve",
	"Demonstrate importance of subject matter",
	"Explains subject matter of course",
	"Show respect for all students",
	"Overall teaching rate",
	"Overall course rate",
}

// Window selects which terms feed a summary.
type Window struct {
	// CountedSemesters restricts the semester types considered.
	CountedSemesters []models.Semester `json:"semesters"`
	// NumSemesters is how many of the most recent distinct terms to keep.
	NumSemesters int `json:"numSemesters"`
}

// Summary is the reduction of the records inside a window. Nil statistics
// mean there was no usable data for them, which is different from zero.
type Summary struct {
	CourseID            string           `json:"courseNum"`
	Instructor          string           `json:"instructor"`
	Sessions            []models.Session `json:"sessions"`
	RecordCount         int              `json:"count"`
	NumRespondents      int              `json:"numRespondents"`
	PossibleRespondents int              `json:"totalStudents"`
	HrsPerWeek          *float64         `json:"hrsPerWeek"`
	Rating              []*float64       `json:"rating"`
	ResponseRate        *float64         `json:"responseRate"`
}

// SelectSessions returns the window's terms present in records, most recent first.
func SelectSessions(records []models.EvaluationRecord, w Window) []models.Session {
	if w.NumSemesters <= 0 {
		return nil
	}

	counted := make(map[models.Semester]bool, len(w.CountedSemesters))
	for _, s := range w.CountedSemesters {
		counted[s] = true
	}

	seen := make(map[models.Session]bool)
	var sessions []models.Session
	for _, r := range records {
		s := r.Session()
		if !counted[s.Semester] || seen[s] {
			continue
		}
		seen[s] = true
		sessions = append(sessions, s)
	}

	sort.Slice(sessions, func(i, j int) bool { return sessions[j].Before(sessions[i]) })
	if len(sessions) > w.NumSemesters {
		sessions = sessions[:w.NumSemesters]
	}
	return sessions
}

// Filter keeps the records whose term is one of sessions, preserving order.
func Filter(records []models.EvaluationRecord, sessions []models.Session) []models.EvaluationRecord {
	if len(sessions) == 0 {
		return nil
	}
	keep := make(map[models.Session]bool, len(sessions))
	for _, s := range sessions {
		keep[s] = true
	}
	var out []models.EvaluationRecord
	for _, r := range records {
		if keep[r.Session()] {
			out = append(out, r)
		}
	}
	return out
}

// Aggregate reduces records under window w. It returns nil when no record
// falls inside the window.
//
// Numeric statistics are means weighted by numRespondents; records without a
// positive respondent count carry no weight. A missing rating component only
// removes that record from that component's mean.
func Aggregate(records []models.EvaluationRecord, w Window) *Summary {
	sessions := SelectSessions(records, w)
	selected := Filter(records, sessions)
	if len(selected) == 0 {
		metrics.RecordAggregation(true)
		return nil
	}
	metrics.RecordAggregation(false)

	summary := &Summary{
		Sessions:    sessions,
		RecordCount: len(selected),
	}

	components := 0
	for _, r := range selected {
		if len(r.Rating) > components {
			components = len(r.Rating)
		}
	}
	ratingSums := make([]float64, components)
	ratingWeights := make([]float64, components)

	var hrsSum, hrsWeight float64
	// latest labels the summary: the most recent record that carries weight,
	// or the most recent selected record when none does.
	var latest, latestSelected *models.EvaluationRecord

	for i := range selected {
		r := &selected[i]
		if latestSelected == nil || latestSelected.Session().Before(r.Session()) {
			latestSelected = r
		}

		if r.PossibleRespondents != nil && *r.PossibleRespondents > 0 {
			summary.PossibleRespondents += *r.PossibleRespondents
		}

		if r.NumRespondents == nil || *r.NumRespondents <= 0 {
			continue
		}
		weight := float64(*r.NumRespondents)
		summary.NumRespondents += *r.NumRespondents
		if latest == nil || latest.Session().Before(r.Session()) {
			latest = r
		}

		if usable(r.HrsPerWeek) {
			hrsSum += *r.HrsPerWeek * weight
			hrsWeight += weight
		}
		for c, score := range r.Rating {
			if !usable(score) {
				continue
			}
			ratingSums[c] += *score * weight
			ratingWeights[c] += weight
		}
	}

	if latest == nil {
		latest = latestSelected
	}
	summary.CourseID = latest.CourseID
	summary.Instructor = latest.Instructor
	summary.HrsPerWeek = ratio(hrsSum, hrsWeight)
	summary.Rating = make([]*float64, components)
	for c := range ratingSums {
		summary.Rating[c] = ratio(ratingSums[c], ratingWeights[c])
	}
	summary.ResponseRate = ratio(float64(summary.NumRespondents), float64(summary.PossibleRespondents))

	return summary
}

func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func ratio(num, den float64) *float64 {
	if den <= 0 {
		return nil
	}
	v := num / den
	return &v
}
