// Package http exposes the job form, the email preview and the static assets
// over net/http.
package http

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-staffdesk/components/deptroles"
	"github.com/goliatone/go-staffdesk/pkg/config"
	"github.com/goliatone/go-staffdesk/pkg/email"
	"github.com/goliatone/go-staffdesk/pkg/jobform"
	"github.com/goliatone/go-staffdesk/pkg/model"
	"github.com/goliatone/go-staffdesk/pkg/render"
)

// JobStore persists jobs.
type JobStore interface {
	GetJob(ctx context.Context, id string) (model.Job, error)
	SaveJob(ctx context.Context, job *model.Job) error
	DeleteJob(ctx context.Context, id string) error
}

// DepartmentStore lists departments and their roles.
type DepartmentStore interface {
	ListDepartments(ctx context.Context) ([]model.Department, error)
	DeptRoles(ctx context.Context) (model.DeptRoles, error)
}

// DefaultsStore keeps the job defaults remembered per department.
type DefaultsStore interface {
	GetDefaults(ctx context.Context, departmentID string) (map[string]string, error)
	SaveDefaults(ctx context.Context, departmentID string, defaults map[string]string) error
}

// AttendeeStore loads attendees for the email preview.
type AttendeeStore interface {
	GetAttendee(ctx context.Context, id string) (model.Attendee, error)
}

// Config wires the router.
type Config struct {
	Event *config.Event
	// Renderers must hold jobform.RendererName; email.PreviewName enables
	// the age consent preview route.
	Renderers   *render.Registry
	Jobs        JobStore
	Departments DepartmentStore
	Defaults    DefaultsStore
	Attendees   AttendeeStore
	Theme       *theme.RendererConfig
	Logger      *zap.Logger
	// Assets defaults to the job form runtime assets.
	Assets        fs.FS
	SecureCookies bool
}

// Server holds the handler dependencies.
type Server struct {
	cfg     Config
	jobForm render.Renderer
	preview render.Renderer
	logger  *zap.Logger
}

// NewServer validates cfg.
func NewServer(cfg Config) (*Server, error) {
	switch {
	case cfg.Event == nil:
		return nil, errors.New("http: event config is required")
	case cfg.Renderers == nil:
		return nil, errors.New("http: renderer registry is required")
	case cfg.Jobs == nil || cfg.Departments == nil:
		return nil, errors.New("http: job and department stores are required")
	}

	jobForm, err := cfg.Renderers.Get(jobform.RendererName)
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, jobForm: jobForm, logger: cfg.Logger}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if preview, err := cfg.Renderers.Get(email.PreviewName); err == nil {
		s.preview = preview
	}
	if s.cfg.Assets == nil {
		s.cfg.Assets = jobform.AssetsFS()
	}
	return s, nil
}

// Routes returns the router wrapped in the CSRF and logging middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /jobs/form", s.handleJobForm)
	mux.HandleFunc("POST /jobs/form", s.handleSaveJob)
	mux.HandleFunc("POST /jobs/delete", s.handleDeleteJob)
	if s.preview != nil && s.cfg.Attendees != nil {
		mux.HandleFunc("GET /emails/age_consent", s.handleAgeConsentPreview)
	}
	mux.Handle("GET "+jobform.DefaultAssetsPrefix, http.StripPrefix(jobform.DefaultAssetsPrefix, http.FileServerFS(s.cfg.Assets)))
	mux.HandleFunc("GET /health", HealthHandler)

	roles := deptroles.New(deptroles.WithSource(s.cfg.Departments))
	if _, err := roles.RegisterRoutes(mux, ""); err != nil {
		s.logger.Error("register department roles route", zap.Error(err))
	}

	return RequestLogger(CSRF(mux, s.cfg.SecureCookies), s.logger)
}

// NewRouter is NewServer followed by Routes.
func NewRouter(cfg Config) (http.Handler, error) {
	s, err := NewServer(cfg)
	if err != nil {
		return nil, err
	}
	return s.Routes(), nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	http.Error(w, http.StatusText(code), code)
}

func writeHTML(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
