package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/coursecatalog/internal/app/controllers"
	"github.com/yigit/coursecatalog/internal/app/models"
	"github.com/yigit/coursecatalog/internal/app/repositories/memstore"
	"github.com/yigit/coursecatalog/internal/app/routes"
	"github.com/yigit/coursecatalog/internal/app/services"
	"github.com/yigit/coursecatalog/internal/middleware"
	"github.com/yigit/coursecatalog/internal/pkg/auth"
	"github.com/yigit/coursecatalog/internal/pkg/snapshot"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type testServer struct {
	router *gin.Engine
	store  *memstore.Store
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	store := memstore.New(&memstore.Data{
		Courses: []models.CourseRecord{
			{CourseID: "15-122", Name: "Principles of Imperative Computation", Department: "Computer Science", Units: "12", Description: "Imperative programming and data structures."},
			{CourseID: "15-213", Name: "Introduction to Computer Systems", Department: "Computer Science", Units: "12", Description: "Systems programming in C."},
			{CourseID: "21-127", Name: "Concepts of Mathematics", Department: "Mathematical Sciences", Units: "10", Description: "Proofs and logic."},
		},
		Schedules: []models.SessionOffering{
			{CourseID: "15-122", Year: 2023, Semester: models.SemesterFall},
			{CourseID: "21-127", Year: 2024, Semester: models.SemesterSpring},
		},
		FCEs: []models.EvaluationRecord{
			{CourseID: "15-122", Department: "Computer Science", Instructor: "Cervesato, Iliano", Year: 2023, Semester: models.SemesterFall,
				NumRespondents: intPtr(100), PossibleRespondents: intPtr(200), HrsPerWeek: floatPtr(10)},
			{CourseID: "15-213", Department: "Computer Science", Instructor: "Mowry, Todd", Year: 2023, Semester: models.SemesterFall,
				NumRespondents: intPtr(80), PossibleRespondents: intPtr(100), HrsPerWeek: floatPtr(15)},
		},
		Syllabi: []models.Syllabus{
			{CourseID: "15-122", Year: 2023, Semester: models.SemesterFall, Section: "A", URL: "https://example.edu/15122.pdf"},
		},
	})

	cache := snapshot.New()
	svc := services.NewServices(memstore.NewRepositories(store), cache, time.Hour)
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", TokenIssuer: "coursecatalog"})
	token, err := jwtService.IssueToken("student-1", time.Hour)
	require.NoError(t, err)

	router := gin.New()
	routes.SetupRouter(router, routes.Controllers{
		Course:  controllers.NewCourseController(svc.Course),
		Listing: controllers.NewListingController(svc.Syllabus, svc.Instructor),
		FCE:     controllers.NewFCEController(svc.FCE),
		Health:  controllers.NewHealthController(cache),
	}, middleware.NewAuthMiddleware(jwtService), nil)

	return &testServer{router: router, store: store, token: token}
}

func (s *testServer) get(t *testing.T, path string, authorized bool) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorized {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

type searchPage struct {
	Courses []struct {
		CourseID  string            `json:"courseID"`
		Schedules []json.RawMessage `json:"schedules"`
		FCEs      []json.RawMessage `json:"fces"`
	} `json:"courses"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
	TotalItems int64 `json:"totalItems"`
}

func TestSearchCourses(t *testing.T) {
	s := newTestServer(t)

	t.Run("department filter", func(t *testing.T) {
		code, env := s.get(t, "/api/v1/courses/search?department=Computer+Science", false)
		require.Equal(t, http.StatusOK, code)

		var page searchPage
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Equal(t, int64(2), page.TotalItems)
		assert.Equal(t, 1, page.TotalPages)
		require.Len(t, page.Courses, 2)
		assert.Equal(t, "15-122", page.Courses[0].CourseID)
	})

	t.Run("malformed filters are ignored", func(t *testing.T) {
		q := url.Values{}
		q.Set("unitsMin", "abc")
		q.Set("page", "zero")
		q.Add("session", "not json")
		code, env := s.get(t, "/api/v1/courses/search?"+q.Encode(), false)
		require.Equal(t, http.StatusOK, code)

		var page searchPage
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Equal(t, int64(3), page.TotalItems)
		assert.Equal(t, 1, page.Page)
	})

	t.Run("session filter", func(t *testing.T) {
		q := url.Values{}
		q.Add("session", `{"year":2024,"semester":"spring"}`)
		code, env := s.get(t, "/api/v1/courses/search?"+q.Encode(), false)
		require.Equal(t, http.StatusOK, code)

		var page searchPage
		require.NoError(t, json.Unmarshal(env.Data, &page))
		require.Len(t, page.Courses, 1)
		assert.Equal(t, "21-127", page.Courses[0].CourseID)
	})

	t.Run("evaluations need a token", func(t *testing.T) {
		_, env := s.get(t, "/api/v1/courses/search?department=Computer+Science&fces=true&schedules=true", false)
		var page searchPage
		require.NoError(t, json.Unmarshal(env.Data, &page))
		require.NotEmpty(t, page.Courses)
		assert.Empty(t, page.Courses[0].FCEs)
		assert.Len(t, page.Courses[0].Schedules, 1)

		_, env = s.get(t, "/api/v1/courses/search?department=Computer+Science&fces=true", true)
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Len(t, page.Courses[0].FCEs, 1)
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/courses/search", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		s := newTestServer(t)
		s.store.SetFailure(assert.AnError)
		code, env := s.get(t, "/api/v1/courses/search", false)
		assert.Equal(t, http.StatusInternalServerError, code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "SRV_002", env.Error.Code)
	})
}

func TestGetCourse(t *testing.T) {
	s := newTestServer(t)

	code, env := s.get(t, "/api/v1/courses/15122", false)
	require.Equal(t, http.StatusOK, code)
	var course struct {
		CourseID  string            `json:"courseID"`
		Schedules []json.RawMessage `json:"schedules"`
		FCEs      []json.RawMessage `json:"fces"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &course))
	assert.Equal(t, "15-122", course.CourseID)
	assert.Len(t, course.Schedules, 1)
	assert.Empty(t, course.FCEs)

	_, env = s.get(t, "/api/v1/courses/15-122", true)
	require.NoError(t, json.Unmarshal(env.Data, &course))
	assert.Len(t, course.FCEs, 1)

	code, env = s.get(t, "/api/v1/courses/99-999", false)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "RES_001", env.Error.Code)

	code, _ = s.get(t, "/api/v1/courses/not-a-course", false)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListings(t *testing.T) {
	s := newTestServer(t)

	code, env := s.get(t, "/api/v1/courses", false)
	require.Equal(t, http.StatusOK, code)
	var courses []models.CourseSummary
	require.NoError(t, json.Unmarshal(env.Data, &courses))
	assert.Len(t, courses, 3)

	code, env = s.get(t, "/api/v1/syllabi", false)
	require.Equal(t, http.StatusOK, code)
	var syllabi []models.Syllabus
	require.NoError(t, json.Unmarshal(env.Data, &syllabi))
	assert.Len(t, syllabi, 1)

	code, env = s.get(t, "/api/v1/instructors", false)
	require.Equal(t, http.StatusOK, code)
	var instructors []models.Instructor
	require.NoError(t, json.Unmarshal(env.Data, &instructors))
	require.Len(t, instructors, 2)
	assert.Equal(t, "Cervesato, Iliano", instructors[0].Name)

	code, env = s.get(t, "/api/v1/health", false)
	require.Equal(t, http.StatusOK, code)
	var health struct {
		Snapshots map[string]time.Time `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Contains(t, health.Snapshots, services.KeyCourses)
	assert.Contains(t, health.Snapshots, services.KeySyllabi)
	assert.Contains(t, health.Snapshots, services.KeyInstructors)
}

func TestListingServedFromSnapshotDuringOutage(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.get(t, "/api/v1/courses", false)
	require.Equal(t, http.StatusOK, code)

	s.store.SetFailure(assert.AnError)
	code, _ = s.get(t, "/api/v1/courses", false)
	assert.Equal(t, http.StatusOK, code)

	code, env := s.get(t, "/api/v1/syllabi", false)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SRV_004", env.Error.Code)
}

func TestEvaluationRoutes(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.get(t, "/api/v1/fces?courseID=15-122", false)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.get(t, "/api/v1/fces", true)
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)

	code, env = s.get(t, "/api/v1/fces?courseID=15-122", true)
	require.Equal(t, http.StatusOK, code)
	var records []models.EvaluationRecord
	require.NoError(t, json.Unmarshal(env.Data, &records))
	assert.Len(t, records, 1)

	code, env = s.get(t, "/api/v1/fces/summary?instructor=cervesato,+iliano", true)
	require.Equal(t, http.StatusOK, code)
	var summary struct {
		Summary *struct {
			NumRespondents int      `json:"numRespondents"`
			ResponseRate   *float64 `json:"responseRate"`
		} `json:"summary"`
		RatingCategories []string `json:"ratingCategories"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	require.NotNil(t, summary.Summary)
	assert.Equal(t, 100, summary.Summary.NumRespondents)
	assert.NotEmpty(t, summary.RatingCategories)

	code, _ = s.get(t, "/api/v1/fces/summary/courses?instructor=Mowry,+Todd", true)
	require.Equal(t, http.StatusOK, code)

	code, env = s.get(t, "/api/v1/fces/summary/instructors?courseID=15-122&courseID=15-213", true)
	require.Equal(t, http.StatusOK, code)
	var groups struct {
		Groups []struct {
			Key string `json:"key"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &groups))
	assert.Len(t, groups.Groups, 2)
}
