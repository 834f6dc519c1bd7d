package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Semester is the term type of a session.
type Semester string

// Semester constants
const (
	SemesterSpring Semester = "spring"
	SemesterSummer Semester = "summer"
	SemesterFall   Semester = "fall"
)

// AllSemesters lists the semesters in their order within a calendar year.
var AllSemesters = []Semester{SemesterSpring, SemesterSummer, SemesterFall}

// ParseSemester accepts any casing of spring, summer or fall.
func ParseSemester(s string) (Semester, error) {
	switch Semester(strings.ToLower(strings.TrimSpace(s))) {
	case SemesterSpring:
		return SemesterSpring, nil
	case SemesterSummer:
		return SemesterSummer, nil
	case SemesterFall:
		return SemesterFall, nil
	}
	return "", fmt.Errorf("unknown semester %q", s)
}

// Rank orders semesters inside one year: Spring < Summer < Fall.
// Unknown values rank below Spring.
func (s Semester) Rank() int {
	switch s {
	case SemesterSpring:
		return 1
	case SemesterSummer:
		return 2
	case SemesterFall:
		return 3
	}
	return 0
}

// UnmarshalJSON normalizes casing and rejects unknown semesters.
func (s *Semester) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSemester(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Session identifies one academic term.
type Session struct {
	Year     int      `json:"year"`
	Semester Semester `json:"semester"`
}

// Before reports whether s is strictly earlier than other.
func (s Session) Before(other Session) bool {
	if s.Year != other.Year {
		return s.Year < other.Year
	}
	return s.Semester.Rank() < other.Semester.Rank()
}

func (s Session) String() string {
	return fmt.Sprintf("%s %d", s.Semester, s.Year)
}

// Meeting is one lecture or section block of an offering.
type Meeting struct {
	Name        string   `json:"name"`
	Instructors []string `json:"instructors,omitempty"`
	Times       []string `json:"times,omitempty"`
	Location    string   `json:"location,omitempty"`
}

// SessionOffering is a course offered in a given term.
type SessionOffering struct {
	CourseID string    `json:"courseID" db:"course_id"`
	Year     int       `json:"year" db:"year"`
	Semester Semester  `json:"semester" db:"semester"`
	Lectures []Meeting `json:"lectures,omitempty" db:"lectures"`
	Sections []Meeting `json:"sections,omitempty" db:"sections"`
}

// Session returns the term of the offering.
func (o SessionOffering) Session() Session {
	return Session{Year: o.Year, Semester: o.Semester}
}
