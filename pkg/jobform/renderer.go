package jobform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-staffdesk/pkg/config"
	"github.com/goliatone/go-staffdesk/pkg/render"
	rendertemplate "github.com/goliatone/go-staffdesk/pkg/render/template"
	"github.com/goliatone/go-staffdesk/pkg/render/template/gotemplate"
	"github.com/goliatone/go-staffdesk/pkg/visibility"
)

// RendererName is the registry name of the job form renderer.
const RendererName = "job_form"

const templateName = "job_form.html"

// Option configures a Renderer.
type Option func(*rendererConfig)

type rendererConfig struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	evaluator        visibility.Evaluator
	icons            map[string]string
	assetsPrefix     string
}

// WithTemplatesFS replaces the embedded template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *rendererConfig) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from dir before falling back to the
// embedded bundle, so single templates can be overridden.
func WithTemplatesDir(dir string) Option {
	return func(cfg *rendererConfig) {
		cfg.templatesDir = strings.TrimSpace(dir)
	}
}

// WithTemplateRenderer injects a template engine. Template options are
// ignored when set.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *rendererConfig) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithEvaluator swaps the rule evaluator used for option and role group
// selection.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(cfg *rendererConfig) {
		if eval != nil {
			cfg.evaluator = eval
		}
	}
}

// WithIcons overrides header icons by name. Markup is sanitized.
func WithIcons(icons map[string]string) Option {
	return func(cfg *rendererConfig) {
		cfg.icons = icons
	}
}

// WithAssetsPrefix sets the URL prefix the page's assets are served under.
func WithAssetsPrefix(prefix string) Option {
	return func(cfg *rendererConfig) {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			return
		}
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		cfg.assetsPrefix = prefix
	}
}

// Renderer renders Input values into the job form page.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	build     buildConfig
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the job form renderer for event.
func New(event *config.Event, options ...Option) (*Renderer, error) {
	if event == nil {
		return nil, errors.New("jobform renderer: event config is required")
	}
	cfg := rendererConfig{
		templateFS:   TemplatesFS(),
		evaluator:    defaultEvaluator,
		assetsPrefix: DefaultAssetsPrefix,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engineOpts := []gotemplate.Option{
			gotemplate.WithName("jobform"),
			gotemplate.WithFS(cfg.templateFS),
		}
		if cfg.templatesDir != "" {
			engineOpts = append(engineOpts, gotemplate.WithBaseDir(cfg.templatesDir))
		}
		engine, err := gotemplate.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("jobform renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates: renderer,
		build: buildConfig{
			event:        event,
			evaluator:    cfg.evaluator,
			icons:        buildIcons(cfg.icons),
			assetsPrefix: cfg.assetsPrefix,
		},
	}, nil
}

// Templates returns the underlying template engine, for cache resets.
func (r *Renderer) Templates() rendertemplate.TemplateRenderer {
	return r.templates
}

func (r *Renderer) Name() string {
	return RendererName
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render accepts an Input or *Input.
func (r *Renderer) Render(ctx context.Context, view any, opts render.RenderOptions) ([]byte, error) {
	var input Input
	switch v := view.(type) {
	case Input:
		input = v
	case *Input:
		if v == nil {
			return nil, fmt.Errorf("jobform renderer: %w: nil input", render.ErrUnsupportedView)
		}
		input = *v
	default:
		return nil, fmt.Errorf("jobform renderer: %w: %T", render.ErrUnsupportedView, view)
	}

	data, err := r.BuildView(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	result, err := r.templates.RenderTemplate(templateName, data)
	if err != nil {
		return nil, fmt.Errorf("jobform renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// BuildView resolves input with this renderer's settings.
func (r *Renderer) BuildView(ctx context.Context, input Input, opts render.RenderOptions) (View, error) {
	return buildView(ctx, r.build, input, opts)
}
