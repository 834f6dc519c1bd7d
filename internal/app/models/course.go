package models

import "strings"

// CourseIDSeparator joins the department code and the course number.
const CourseIDSeparator = "-"

// CourseRecord is a read-only projection of one catalog entry.
type CourseRecord struct {
	CourseID    string  `json:"courseID" db:"course_id"`
	Name        string  `json:"name" db:"name"`
	Department  string  `json:"department" db:"department"`
	Units       string  `json:"units" db:"units"` // Free-form text, e.g. "12", "3-12", "VAR"
	Description string  `json:"desc" db:"description"`
	Prereqs     *string `json:"prereqString,omitempty" db:"prereqs"` // Nullable
	Score       float64 `json:"-" db:"score"`                        // Relevance, only set by keyword searches

	// Relations (populated when requested)
	Schedules []SessionOffering  `json:"schedules,omitempty"`
	FCEs      []EvaluationRecord `json:"fces,omitempty"`
}

// CourseSummary is the lightweight shape used by the "all courses" listing.
type CourseSummary struct {
	CourseID   string `json:"courseID" db:"course_id"`
	Name       string `json:"name" db:"name"`
	Department string `json:"department" db:"department"`
}

// NormalizeCourseID rewrites a bare id such as "15122" to "15-122".
// Ids that already contain the separator, and ids shorter than five
// characters, are returned unchanged.
func NormalizeCourseID(id string) string {
	id = strings.TrimSpace(id)
	if strings.Contains(id, CourseIDSeparator) || len(id) < 5 {
		return id
	}
	return id[:2] + CourseIDSeparator + id[2:]
}

// CourseNumber returns the numeric segment of a canonical course id.
func CourseNumber(courseID string) string {
	_, number, found := strings.Cut(courseID, CourseIDSeparator)
	if !found {
		return ""
	}
	return number
}
