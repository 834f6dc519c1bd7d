// Package memstore is an in-memory record store. It serves the
// "memory" database driver and stands in for Postgres in tests.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/yigit/coursecatalog/internal/app/catalog"
	"github.com/yigit/coursecatalog/internal/app/models"
	"github.com/yigit/coursecatalog/internal/app/repositories"
	"github.com/yigit/coursecatalog/internal/pkg/apperrors"
	"github.com/yigit/coursecatalog/internal/pkg/helpers"
)

// Data is the full content of a store, also the JSON fixture format.
type Data struct {
	Courses   []models.CourseRecord     `json:"courses"`
	Schedules []models.SessionOffering  `json:"schedules"`
	FCEs      []models.EvaluationRecord `json:"fces"`
	Syllabi   []models.Syllabus         `json:"syllabi"`
}

// LoadFile reads a JSON fixture. Course ids are normalized on load.
func LoadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	for i := range data.Courses {
		data.Courses[i].CourseID = models.NormalizeCourseID(data.Courses[i].CourseID)
	}
	for i := range data.Schedules {
		data.Schedules[i].CourseID = models.NormalizeCourseID(data.Schedules[i].CourseID)
	}
	for i := range data.FCEs {
		data.FCEs[i].CourseID = models.NormalizeCourseID(data.FCEs[i].CourseID)
	}
	for i := range data.Syllabi {
		data.Syllabi[i].CourseID = models.NormalizeCourseID(data.Syllabi[i].CourseID)
	}
	return &data, nil
}

// Store serves every repository interface from memory.
type Store struct {
	mu   sync.RWMutex
	data Data
	// fail, when set, is returned by every read. Used to simulate outages.
	fail error
}

// New creates a store over data. The store keeps data's slices; callers must
// not modify them afterwards.
func New(data *Data) *Store {
	s := &Store{}
	if data != nil {
		s.data = *data
	}
	return s
}

// NewRepositories exposes one Store through the repository container.
func NewRepositories(s *Store) *repositories.Repositories {
	return &repositories.Repositories{
		CourseRepository:   s,
		FCERepository:      s,
		SyllabusRepository: s,
	}
}

// SetFailure makes every subsequent read fail with err; nil restores service.
func (s *Store) SetFailure(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

// AddEvaluations appends evaluation rows.
func (s *Store) AddEvaluations(records ...models.EvaluationRecord) {
	s.mu.Lock()
	s.data.FCEs = append(s.data.FCEs, records...)
	s.mu.Unlock()
}

type scored struct {
	course models.CourseRecord
	score  float64
}

// FindCourses applies the plan stage by stage in its fixed order.
func (s *Store) FindCourses(ctx context.Context, plan *catalog.Plan) ([]models.CourseRecord, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, 0, err
	}

	offerings := make(map[string][]models.SessionOffering)
	if len(plan.Sessions) > 0 {
		for _, o := range s.data.Schedules {
			offerings[o.CourseID] = append(offerings[o.CourseID], o)
		}
	}
	tokens := keywordTokens(plan.Keywords)

	var matched []scored
	for i := range s.data.Courses {
		c := &s.data.Courses[i]
		if !plan.MatchDepartment(c) {
			continue
		}
		score := 0.0
		if plan.HasKeywords() {
			var ok bool
			if score, ok = relevance(c, tokens); !ok {
				continue
			}
		}
		if !plan.MatchUnits(c) || !plan.MatchLevel(c) || !plan.MatchSessions(offerings[c.CourseID]) {
			continue
		}
		course := *c
		course.Score = score
		course.Schedules = nil
		course.FCEs = nil
		matched = append(matched, scored{course: course, score: score})
	}

	if plan.HasKeywords() {
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].score > matched[j].score })
	}

	total := len(matched)
	start, end := helpers.CalculateSliceIndices(plan.Page, int(plan.Limit), total)
	page := make([]models.CourseRecord, 0, end-start)
	for _, m := range matched[start:end] {
		page = append(page, m.course)
	}
	return page, int64(total), nil
}

// FindSchedules returns the offerings of the given courses in store order.
func (s *Store) FindSchedules(ctx context.Context, courseIDs []string) ([]models.SessionOffering, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	want := set(courseIDs)
	var out []models.SessionOffering
	for _, o := range s.data.Schedules {
		if want[o.CourseID] {
			out = append(out, o)
		}
	}
	return out, nil
}

// FindEvaluations returns the evaluation rows of the given courses.
func (s *Store) FindEvaluations(ctx context.Context, courseIDs []string) ([]models.EvaluationRecord, error) {
	return s.FindFCEs(ctx, repositories.FCEFilter{CourseIDs: courseIDs})
}

// FindFCEs returns evaluation rows matching filter.
func (s *Store) FindFCEs(ctx context.Context, filter repositories.FCEFilter) ([]models.EvaluationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	want := set(filter.CourseIDs)
	var out []models.EvaluationRecord
	for _, r := range s.data.FCEs {
		if len(want) > 0 && !want[r.CourseID] {
			continue
		}
		if filter.Instructor != "" && !strings.EqualFold(r.Instructor, filter.Instructor) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// GetCourseByID returns one course without relations.
func (s *Store) GetCourseByID(ctx context.Context, courseID string) (*models.CourseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	for _, c := range s.data.Courses {
		if c.CourseID == courseID {
			course := c
			course.Schedules = nil
			course.FCEs = nil
			return &course, nil
		}
	}
	return nil, apperrors.ErrCourseNotFound
}

// ListCourseSummaries lists every course ordered by id.
func (s *Store) ListCourseSummaries(ctx context.Context) ([]models.CourseSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	out := make([]models.CourseSummary, 0, len(s.data.Courses))
	for _, c := range s.data.Courses {
		out = append(out, models.CourseSummary{CourseID: c.CourseID, Name: c.Name, Department: c.Department})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

// ListSyllabi lists every syllabus ordered by course and term.
func (s *Store) ListSyllabi(ctx context.Context) ([]models.Syllabus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	out := append([]models.Syllabus(nil), s.data.Syllabi...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

// ListInstructors lists distinct instructor names with the departments they taught in.
func (s *Store) ListInstructors(ctx context.Context) ([]models.Instructor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	depts := make(map[string]map[string]bool)
	for _, r := range s.data.FCEs {
		if r.Instructor == "" {
			continue
		}
		if depts[r.Instructor] == nil {
			depts[r.Instructor] = make(map[string]bool)
		}
		if r.Department != "" {
			depts[r.Instructor][r.Department] = true
		}
	}

	out := make([]models.Instructor, 0, len(depts))
	for name, ds := range depts {
		inst := models.Instructor{Name: name}
		for d := range ds {
			inst.Departments = append(inst.Departments, d)
		}
		sort.Strings(inst.Departments)
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.fail
}

func set(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}

func keywordTokens(keywords string) []string {
	return strings.FieldsFunc(strings.ToLower(keywords), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

// relevance scores a course against keyword tokens. Every token must occur
// somewhere in the id, name or description. Name hits weigh double, an exact
// id hit weighs five.
func relevance(c *models.CourseRecord, tokens []string) (float64, bool) {
	if len(tokens) == 0 {
		return 0, true
	}
	id := strings.ToLower(c.CourseID)
	name := strings.ToLower(c.Name)
	desc := strings.ToLower(c.Description)

	var score float64
	for _, tok := range tokens {
		hit := 0.0
		if tok == id || models.NormalizeCourseID(tok) == id {
			hit += 5
		}
		hit += 2 * float64(strings.Count(name, tok))
		hit += float64(strings.Count(desc, tok))
		if hit == 0 {
			return 0, false
		}
		score += hit
	}
	return score, true
}
