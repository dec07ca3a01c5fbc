package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/AlecAivazis/survey/v2"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-staffdesk/internal/logging"
	"github.com/goliatone/go-staffdesk/internal/storage/postgres"
	transport "github.com/goliatone/go-staffdesk/internal/transport/http"
	"github.com/goliatone/go-staffdesk/pkg/clients/gmailclient"
	"github.com/goliatone/go-staffdesk/pkg/config"
	"github.com/goliatone/go-staffdesk/pkg/email"
	"github.com/goliatone/go-staffdesk/pkg/jobform"
	"github.com/goliatone/go-staffdesk/pkg/render"
	"github.com/goliatone/go-staffdesk/pkg/render/template"
)

// Backend is the storage the commands run against.
type Backend struct {
	Jobs        transport.JobStore
	Departments transport.DepartmentStore
	Defaults    transport.DefaultsStore
	Attendees   transport.AttendeeStore
	Consent     email.Store
	Migrate     func(ctx context.Context) ([]string, error)
	Close       func()
}

// AppContext holds the dependencies shared by the commands. Fields left nil
// are filled in by Init; tests set them up front.
type AppContext struct {
	Ctx        context.Context
	Env        string
	ConfigPath string
	Cfg        *config.Config
	Logger     *zap.Logger

	// OpenBackend connects to storage. Defaults to postgres.
	OpenBackend func(ctx context.Context, cfg *config.Config) (*Backend, error)
	// NewSender builds the mail sender. Defaults to the Gmail API client.
	NewSender func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (email.Sender, error)
	// Confirm asks the operator a yes/no question. Defaults to a survey prompt.
	Confirm func(message, help string) (bool, error)
	// Now is the clock used by the email automation.
	Now func() time.Time

	logFile *logging.Logger
}

// NewAppContext returns an AppContext wired to the production backends.
func NewAppContext() *AppContext {
	return &AppContext{
		Ctx:         context.Background(),
		OpenBackend: OpenPostgres,
		NewSender:   NewGmailSender,
		Confirm:     SurveyConfirm,
		Now:         time.Now,
	}
}

// Init loads the configuration and builds the logger. Console logs go to
// stderr so command output on stdout stays clean.
func (app *AppContext) Init(stderr io.Writer) error {
	if app.Ctx == nil {
		app.Ctx = context.Background()
	}
	if app.Now == nil {
		app.Now = time.Now
	}
	if app.OpenBackend == nil {
		app.OpenBackend = OpenPostgres
	}
	if app.NewSender == nil {
		app.NewSender = NewGmailSender
	}
	if app.Confirm == nil {
		app.Confirm = SurveyConfirm
	}

	if app.Cfg == nil {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		app.Cfg = cfg
	}

	if app.Logger == nil {
		logger, err := logging.New(app.Env, app.Cfg.Log, stderr)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		app.logFile = logger
		app.Logger = logger.Logger
	}
	app.Logger.Debug("configuration loaded",
		zap.String("environment", app.Env),
		zap.String("event", app.Cfg.Event.EventNameAndYear()))
	return nil
}

// Close flushes the logger.
func (app *AppContext) Close() {
	if app.logFile != nil {
		_ = app.logFile.Close()
		return
	}
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
}

// Backend opens the configured storage.
func (app *AppContext) Backend() (*Backend, error) {
	backend, err := app.OpenBackend(app.Ctx, app.Cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if backend.Close == nil {
		backend.Close = func() {}
	}
	return backend, nil
}

// Theme converts the theme section of the config.
func (app *AppContext) Theme() *theme.RendererConfig {
	t := app.Cfg.Theme
	if t.Name == "" && t.Variant == "" && len(t.Tokens) == 0 && len(t.CSSVars) == 0 {
		return nil
	}
	return &theme.RendererConfig{
		Theme:   t.Name,
		Variant: t.Variant,
		Tokens:  t.Tokens,
		CSSVars: t.CSSVars,
	}
}

// Renderers builds the job form renderer and the age consent email, both
// honouring the template override directory.
func (app *AppContext) Renderers() (*jobform.Renderer, *email.AgeConsent, error) {
	dir := app.Cfg.Server.TemplatesDir

	form, err := jobform.New(&app.Cfg.Event, jobform.WithTemplatesDir(dir))
	if err != nil {
		return nil, nil, err
	}
	ageConsent, err := email.NewAgeConsent(&app.Cfg.Event, email.WithTemplatesDir(dir))
	if err != nil {
		return nil, nil, err
	}
	return form, ageConsent, nil
}

// Registry registers the job form and the age consent preview.
func Registry(form *jobform.Renderer, ageConsent *email.AgeConsent) (*render.Registry, error) {
	registry := render.NewRegistry()
	if err := registry.Register(form); err != nil {
		return nil, err
	}
	if err := registry.Register(email.NewPreview(ageConsent)); err != nil {
		return nil, err
	}
	return registry, nil
}

// templateCaches resets every engine that caches parsed templates.
type templateCaches []template.TemplateRenderer

func (c templateCaches) Reset() {
	for _, engine := range c {
		if resetter, ok := engine.(template.Resetter); ok {
			resetter.Reset()
		}
	}
}

// OpenPostgres connects to cfg.Database.URL.
func OpenPostgres(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database url is not set (database.url or %s)", config.DatabaseURLEnv)
	}
	db, err := postgres.Open(ctx, cfg.Database.URL, 0)
	if err != nil {
		return nil, err
	}
	store := postgres.NewStore(db)
	return &Backend{
		Jobs:        store.Jobs,
		Departments: store.Departments,
		Defaults:    store.Defaults,
		Attendees:   store.Attendees,
		Consent:     store.Consent(),
		Migrate:     db.RunMigrations,
		Close:       db.Close,
	}, nil
}

// NewGmailSender authorises the Gmail API client from the configured files.
func NewGmailSender(ctx context.Context, cfg *config.Config, logger *zap.Logger) (email.Sender, error) {
	if cfg.Email.CredentialsFile == "" || cfg.Email.TokenFile == "" {
		return nil, errors.New("email.credentialsFile and email.tokenFile are required to send mail")
	}
	client, err := gmailclient.NewFromFiles(ctx, cfg.Email.CredentialsFile, cfg.Email.TokenFile,
		gmailclient.WithFrom(cfg.Email.Sender),
		gmailclient.WithInterval(cfg.Email.Interval),
		gmailclient.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// SurveyConfirm prompts on the terminal, defaulting to no.
func SurveyConfirm(message, help string) (bool, error) {
	var ok bool
	prompt := &survey.Confirm{
		Message: message,
		Help:    help,
		Default: false,
	}
	if err := survey.AskOne(prompt, &ok, survey.WithStdio(os.Stdin, os.Stdout, os.Stderr)); err != nil {
		return false, err
	}
	return ok, nil
}
