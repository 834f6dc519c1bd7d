package models

// EvaluationRecord is one faculty course evaluation row. Rows are append-only
// and have no identity beyond (courseID, instructor, year, semester, section).
type EvaluationRecord struct {
	CourseID            string     `json:"courseNum" db:"course_id"`
	CourseName          string     `json:"courseName,omitempty" db:"course_name"`
	Department          string     `json:"department,omitempty" db:"department"`
	Instructor          string     `json:"instructor" db:"instructor"`
	Year                int        `json:"year" db:"year"`
	Semester            Semester   `json:"semester" db:"semester"`
	Section             string     `json:"section" db:"section"`
	NumRespondents      *int       `json:"numRespondents" db:"num_respondents"`
	PossibleRespondents *int       `json:"totalStudents" db:"possible_respondents"`
	ResponseRate        *float64   `json:"responseRate" db:"response_rate"`
	HrsPerWeek          *float64   `json:"hrsPerWeek" db:"hrs_per_week"`
	Rating              []*float64 `json:"rating" db:"rating"` // nil components are missing scores
}

// Session returns the term of the evaluation.
func (r EvaluationRecord) Session() Session {
	return Session{Year: r.Year, Semester: r.Semester}
}
