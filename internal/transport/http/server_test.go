package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	transport "github.com/goliatone/go-staffdesk/internal/transport/http"
	"github.com/goliatone/go-staffdesk/pkg/email"
	"github.com/goliatone/go-staffdesk/pkg/jobform"
	"github.com/goliatone/go-staffdesk/pkg/model"
	"github.com/goliatone/go-staffdesk/pkg/render"
	"github.com/goliatone/go-staffdesk/pkg/testsupport"
)

const csrfToken = "test-token"

type memoryStore struct {
	mu        sync.Mutex
	jobs      map[string]model.Job
	defaults  map[string]map[string]string
	attendees map[string]model.Attendee
	nextID    int
}

func newMemoryStore(t *testing.T) *memoryStore {
	job := testsupport.ExistingJob(t)
	minor := testsupport.MinorAttendee()
	return &memoryStore{
		jobs:      map[string]model.Job{job.ID: job},
		defaults:  map[string]map[string]string{},
		attendees: map[string]model.Attendee{minor.ID: minor},
	}
}

func (s *memoryStore) GetJob(_ context.Context, id string) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return model.Job{}, model.ErrJobNotFound
	}
	return job, nil
}

func (s *memoryStore) SaveJob(_ context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.IsNew || job.ID == "" {
		s.nextID++
		job.ID = fmt.Sprintf("job-new-%d", s.nextID)
	}
	job.IsNew = false
	s.jobs[job.ID] = *job
	return nil
}

func (s *memoryStore) DeleteJob(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return model.ErrJobNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *memoryStore) ListDepartments(context.Context) ([]model.Department, error) {
	return testsupport.Departments(), nil
}

func (s *memoryStore) DeptRoles(context.Context) (model.DeptRoles, error) {
	return testsupport.DeptRoles(), nil
}

func (s *memoryStore) GetDefaults(_ context.Context, departmentID string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaults[departmentID], nil
}

func (s *memoryStore) SaveDefaults(_ context.Context, departmentID string, defaults map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[departmentID] = defaults
	return nil
}

func (s *memoryStore) GetAttendee(_ context.Context, id string) (model.Attendee, error) {
	a, ok := s.attendees[id]
	if !ok {
		return model.Attendee{}, model.ErrAttendeeNotFound
	}
	return a, nil
}

func newRouter(t *testing.T, store *memoryStore) http.Handler {
	t.Helper()

	event := testsupport.Event(t)
	form, err := jobform.New(event)
	require.NoError(t, err)
	ageConsent, err := email.NewAgeConsent(event)
	require.NoError(t, err)

	router, err := transport.NewRouter(transport.Config{
		Event:       event,
		Renderers:   render.NewRegistry(form, email.NewPreview(ageConsent)),
		Jobs:        store,
		Departments: store,
		Defaults:    store,
		Attendees:   store,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	return router
}

func postForm(target string, values url.Values) *http.Request {
	values.Set(render.CSRFFieldName, csrfToken)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: transport.CSRFCookieName, Value: csrfToken})
	return req
}

func validSubmission() url.Values {
	return url.Values{
		"type":               {"regular"},
		"name":               {"Badge Check"},
		"description":        {"Check badges at the door."},
		"start_time":         {"2026-05-01 10:00:00"},
		"duration":           {"2"},
		"slots":              {"3"},
		"weight":             {"1.5"},
		"department_id":      {testsupport.DeptArcade},
		"required_roles_ids": {"role-tech"},
	}
}

func TestJobForm_ExistingJobIssuesCSRFCookie(t *testing.T) {
	router := newRouter(t, newMemoryStore(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/form?id=job-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "Edit Job: Cabinet Unload")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, transport.CSRFCookieName, cookies[0].Name)
	assert.Contains(t, body, cookies[0].Value)
}

func TestJobForm_NewJobUsesDepartmentDefaults(t *testing.T) {
	store := newMemoryStore(t)
	store.defaults[testsupport.DeptTechOps] = map[string]string{"name": "Radio Watch", "duration": "4"}
	router := newRouter(t, store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/form?department_id="+testsupport.DeptTechOps+"&message=Hello", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Add a New Job")
	assert.Contains(t, body, "Radio Watch")
	assert.Contains(t, body, "Hello")
}

func TestJobForm_NoDepartmentUsesFirstDepartmentDefaults(t *testing.T) {
	store := newMemoryStore(t)
	store.defaults[testsupport.DeptArcade] = map[string]string{"name": "Cabinet Dusting", "slots": "5"}
	router := newRouter(t, store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/form", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Add a New Job")
	assert.Contains(t, body, "Cabinet Dusting")
}

func TestJobForm_NotFound(t *testing.T) {
	router := newRouter(t, newMemoryStore(t))

	for _, target := range []string{"/jobs/form?id=missing", "/jobs/form?department_id=nope"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
}

func TestSaveJob_RejectsMissingCSRF(t *testing.T) {
	store := newMemoryStore(t)
	router := newRouter(t, store)

	req := httptest.NewRequest(http.MethodPost, "/jobs/form", strings.NewReader(validSubmission().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, store.jobs, 1)
}

func TestSaveJob_NewJobRedirectsAndCapturesDefaults(t *testing.T) {
	store := newMemoryStore(t)
	router := newRouter(t, store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm("/jobs/form", validSubmission()))

	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/jobs/index?department_id=dept-arcade&message=Job+saved", rec.Header().Get("Location"))

	require.Len(t, store.jobs, 2)
	saved, err := store.GetJob(context.Background(), "job-new-1")
	require.NoError(t, err)
	assert.Equal(t, "Badge Check", saved.Name)
	assert.Equal(t, []string{"role-tech"}, saved.RequiredRoleIDs)

	defaults := store.defaults[testsupport.DeptArcade]
	assert.Equal(t, "Badge Check", defaults["name"])
	assert.Equal(t, "2", defaults["duration"])
	assert.Equal(t, "role-tech", defaults["required_roles_ids"])
}

func TestSaveJob_ExistingJobFromSchedule(t *testing.T) {
	store := newMemoryStore(t)
	router := newRouter(t, store)

	values := url.Values{
		"id":            {"job-1"},
		"type":          {"setup"},
		"name":          {"Cabinet Unload (day 2)"},
		"start_time":    {"2026-04-30 10:00:00"},
		"duration":      {"3"},
		"slots":         {"4"},
		"weight":        {"1.5"},
		"department_id": {testsupport.DeptArcade},
	}
	values.Set(jobform.FromScheduleField, "1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm("/jobs/form", values))

	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/jobs/schedule?department_id=dept-arcade"))

	saved, err := store.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Cabinet Unload (day 2)", saved.Name)
	assert.Len(t, saved.Shifts, 2)
	assert.Empty(t, store.defaults, "defaults are only captured for new jobs")
}

func TestSaveJob_InvalidSubmissionRerendersWithErrors(t *testing.T) {
	store := newMemoryStore(t)
	router := newRouter(t, store)

	values := validSubmission()
	values.Set("name", "")
	values.Set("description", "kept on error")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm("/jobs/form", values))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Name is required")
	assert.Contains(t, body, "kept on error")
	assert.Contains(t, body, "Add a New Job")
	assert.Len(t, store.jobs, 1)
}

func TestDeleteJob(t *testing.T) {
	store := newMemoryStore(t)
	router := newRouter(t, store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm("/jobs/delete", url.Values{"id": {"job-1"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/jobs/index?department_id=dept-arcade&message=Job+deleted", rec.Header().Get("Location"))
	assert.Empty(t, store.jobs)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, postForm("/jobs/delete", url.Values{"id": {"job-1"}}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, postForm("/jobs/delete", url.Values{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAgeConsentPreview(t *testing.T) {
	router := newRouter(t, newMemoryStore(t))
	attendee := testsupport.MinorAttendee()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/emails/age_consent?id="+attendee.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Robin,")
	assert.Contains(t, rec.Body.String(), "preregistration/confirm?id="+attendee.ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/emails/age_consent?id=missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/emails/age_consent", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaticHealthAndRoles(t *testing.T) {
	router := newRouter(t, newMemoryStore(t))

	cases := []struct {
		target string
		want   string
	}{
		{"/static/" + jobform.ScriptName, "syncRoleGroups"},
		{"/health", "ok"},
		{"/api/departments/" + testsupport.DeptArcade + "/roles", `"role-tech"`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))
		require.Equal(t, http.StatusOK, rec.Code, tc.target)
		assert.Contains(t, rec.Body.String(), tc.want, tc.target)
	}
}

func TestNewRouter_RequiresJobFormRenderer(t *testing.T) {
	store := newMemoryStore(t)
	_, err := transport.NewRouter(transport.Config{
		Event:       testsupport.Event(t),
		Renderers:   render.NewRegistry(),
		Jobs:        store,
		Departments: store,
	})
	assert.Error(t, err)
}
