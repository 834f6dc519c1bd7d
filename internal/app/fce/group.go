package fce

import (
	"sort"

	"github.com/yigit/coursecatalog/internal/app/models"
)

// GroupBy picks the grouping label of a record.
type GroupBy func(r models.EvaluationRecord) string

// ByInstructor groups records per instructor.
func ByInstructor(r models.EvaluationRecord) string { return r.Instructor }

// ByCourse groups records per course.
func ByCourse(r models.EvaluationRecord) string { return r.CourseID }

// GroupSummary is the summary of one group.
type GroupSummary struct {
	Key     string   `json:"key"`
	Summary *Summary `json:"summary"`
}

// AggregateGroups splits records by key and aggregates each group under w.
// Each group selects its own most recent terms. Groups with no data in the
// window are left out. Results are ordered by their latest term, most recent
// first, then by key.
func AggregateGroups(records []models.EvaluationRecord, w Window, key GroupBy) []GroupSummary {
	groups := make(map[string][]models.EvaluationRecord)
	var order []string
	for _, r := range records {
		k := key(r)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	out := make([]GroupSummary, 0, len(order))
	for _, k := range order {
		if s := Aggregate(groups[k], w); s != nil {
			out = append(out, GroupSummary{Key: k, Summary: s})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Summary.Sessions[0], out[j].Summary.Sessions[0]
		if a != b {
			return b.Before(a)
		}
		return out[i].Key < out[j].Key
	})
	return out
}
