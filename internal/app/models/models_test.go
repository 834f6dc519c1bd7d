package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCourseID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"15122", "15-122"},
		{"15-122", "15-122"},
		{"021127", "02-1127"},
		{"1512", "1512"},
		{" 76101 ", "76-101"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeCourseID(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeCourseID(got), "normalization must be idempotent")
		})
	}
}

func TestCourseNumber(t *testing.T) {
	assert.Equal(t, "122", CourseNumber("15-122"))
	assert.Equal(t, "", CourseNumber("15122"))
}

func TestSemesterRankAndSessionOrder(t *testing.T) {
	assert.Less(t, SemesterSpring.Rank(), SemesterSummer.Rank())
	assert.Less(t, SemesterSummer.Rank(), SemesterFall.Rank())

	spring := Session{Year: 2023, Semester: SemesterSpring}
	fall := Session{Year: 2023, Semester: SemesterFall}
	nextSpring := Session{Year: 2024, Semester: SemesterSpring}

	assert.True(t, spring.Before(fall))
	assert.True(t, fall.Before(nextSpring))
	assert.False(t, fall.Before(fall))
}

func TestSemesterUnmarshalJSON(t *testing.T) {
	var s Session
	require.NoError(t, json.Unmarshal([]byte(`{"year":2023,"semester":"FALL"}`), &s))
	assert.Equal(t, Session{Year: 2023, Semester: SemesterFall}, s)

	err := json.Unmarshal([]byte(`{"year":2023,"semester":"winter"}`), &s)
	assert.Error(t, err)
}
