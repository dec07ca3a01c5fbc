package http

import (
	"cmp"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-staffdesk/pkg/jobform"
	"github.com/goliatone/go-staffdesk/pkg/model"
	"github.com/goliatone/go-staffdesk/pkg/render"
)

const (
	msgJobSaved   = "Job saved"
	msgJobDeleted = "Job deleted"
)

// handleJobForm renders the form for ?id=<job> or a new job in
// ?department_id=<dept>.
func (s *Server) handleJobForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var job model.Job
	if id := strings.TrimSpace(query.Get("id")); id != "" {
		existing, err := s.cfg.Jobs.GetJob(ctx, id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		job = existing
	} else {
		job = model.NewJob(strings.TrimSpace(query.Get("department_id")))
	}

	input, err := s.formInput(r, job, query.Get(jobform.FromScheduleField) != "")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, ok := input.DeptRoles[job.DepartmentID]; job.DepartmentID != "" && !ok {
		s.fail(w, r, model.ErrDepartmentNotFound)
		return
	}
	s.renderForm(w, r, http.StatusOK, input, render.RenderOptions{
		Message: query.Get("message"),
		Theme:   s.cfg.Theme,
	})
}

// handleSaveJob validates and stores a submission. Invalid submissions are
// rendered again with their errors.
func (s *Server) handleSaveJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, StatusError{Code: http.StatusBadRequest, Err: err})
		return
	}
	form := r.PostForm
	fromSchedule := form.Get(jobform.FromScheduleField) != ""

	var existing *model.Job
	if id := strings.TrimSpace(form.Get(render.IDFieldName)); id != "" {
		job, err := s.cfg.Jobs.GetJob(ctx, id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		existing = &job
	}

	deptRoles, err := s.cfg.Departments.DeptRoles(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	job, err := jobform.ParseSubmission(form, s.cfg.Event, deptRoles, existing)
	var verr *jobform.ValidationError
	if errors.As(err, &verr) {
		original := model.NewJob(form.Get("department_id"))
		if existing != nil {
			original = *existing
		}
		input, ierr := s.formInput(r, original, fromSchedule)
		if ierr != nil {
			s.fail(w, r, ierr)
			return
		}
		input.Defaults = nil
		s.renderForm(w, r, http.StatusBadRequest, input, render.RenderOptions{
			Values: jobform.Values(form),
			Errors: verr.Options(),
			Theme:  s.cfg.Theme,
		})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	isNew := job.IsNew
	if err := s.cfg.Jobs.SaveJob(ctx, &job); err != nil {
		s.fail(w, r, err)
		return
	}
	if isNew && s.cfg.Defaults != nil {
		defaults := jobform.DefaultsFromJob(job, s.cfg.Event.JobDefaults())
		if err := s.cfg.Defaults.SaveDefaults(ctx, job.DepartmentID, defaults); err != nil {
			s.logger.Warn("save job defaults", zap.String("department_id", job.DepartmentID), zap.Error(err))
		}
	}

	s.logger.Info("job saved",
		zap.String("job_id", job.ID),
		zap.String("department_id", job.DepartmentID),
		zap.Bool("new", isNew))
	redirectToList(w, r, job.DepartmentID, fromSchedule, msgJobSaved)
}

// handleDeleteJob removes a job and returns to the department list.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, StatusError{Code: http.StatusBadRequest, Err: err})
		return
	}
	id := strings.TrimSpace(r.PostForm.Get(render.IDFieldName))
	if id == "" {
		s.fail(w, r, StatusError{Code: http.StatusBadRequest, Err: errors.New("missing job id")})
		return
	}

	job, err := s.cfg.Jobs.GetJob(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.cfg.Jobs.DeleteJob(ctx, id); err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info("job deleted", zap.String("job_id", id), zap.String("department_id", job.DepartmentID))
	redirectToList(w, r, job.DepartmentID, r.PostForm.Get(jobform.FromScheduleField) != "", msgJobDeleted)
}

func (s *Server) formInput(r *http.Request, job model.Job, fromSchedule bool) (jobform.Input, error) {
	ctx := r.Context()

	departments, err := s.cfg.Departments.ListDepartments(ctx)
	if err != nil {
		return jobform.Input{}, err
	}
	deptRoles, err := s.cfg.Departments.DeptRoles(ctx)
	if err != nil {
		return jobform.Input{}, err
	}
	if job.IsNew && job.DepartmentID == "" {
		job.DepartmentID = defaultDepartment(departments)
	}
	input := jobform.Input{
		Job:          job,
		DeptRoles:    deptRoles,
		Departments:  departments,
		FromSchedule: fromSchedule,
		CSRF:         CSRFFromContext,
	}
	if job.IsNew && job.DepartmentID != "" && s.cfg.Defaults != nil {
		defaults, err := s.cfg.Defaults.GetDefaults(ctx, job.DepartmentID)
		if err != nil {
			return jobform.Input{}, err
		}
		input.Defaults = defaults
	}
	return input, nil
}

// defaultDepartment is the department a new job starts in when none is
// given: the first one by name.
func defaultDepartment(departments []model.Department) string {
	if len(departments) == 0 {
		return ""
	}
	first := slices.MinFunc(departments, func(a, b model.Department) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID, b.ID))
	})
	return first.ID
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, input jobform.Input, opts render.RenderOptions) {
	body, err := s.jobForm.Render(r.Context(), input, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeHTML(w, status, s.jobForm.ContentType(), body)
}

// redirectToList sends the browser back to the page the edit started from,
// relative to /jobs/.
func redirectToList(w http.ResponseWriter, r *http.Request, departmentID string, fromSchedule bool, message string) {
	page := "index"
	if fromSchedule {
		page = "schedule"
	}
	query := url.Values{"department_id": {departmentID}}
	if message != "" {
		query.Set("message", message)
	}
	http.Redirect(w, r, page+"?"+query.Encode(), http.StatusSeeOther)
}
