package models

// Syllabus links a course offering to its published syllabus document.
type Syllabus struct {
	CourseID string   `json:"number" db:"course_id"`
	Year     int      `json:"year" db:"year"`
	Semester Semester `json:"season" db:"semester"`
	Section  string   `json:"section" db:"section"`
	URL      string   `json:"url" db:"url"`
}

// Instructor is one entry of the instructors listing, derived from evaluation rows.
type Instructor struct {
	Name        string   `json:"name" db:"instructor"`
	Departments []string `json:"departments,omitempty"`
}
