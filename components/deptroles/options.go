package deptroles

import (
	"context"
	"net/http"

	"github.com/goliatone/go-staffdesk/pkg/model"
)

// Source loads the department to role options map.
type Source interface {
	DeptRoles(ctx context.Context) (model.DeptRoles, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (model.DeptRoles, error)

func (f SourceFunc) DeptRoles(ctx context.Context) (model.DeptRoles, error) {
	return f(ctx)
}

// Static serves a fixed map.
func Static(deptRoles model.DeptRoles) Source {
	return SourceFunc(func(context.Context) (model.DeptRoles, error) {
		return deptRoles, nil
	})
}

// GuardFunc authorises a request before roles are served. A returned
// HTTPError picks the status; any other error yields 403.
type GuardFunc func(r *http.Request) error

// Options configures the handler. RoutePath is a ServeMux pattern whose
// PathParam wildcard carries the department id; QueryParam is the fallback
// when the route has no wildcard.
type Options struct {
	RoutePath   string
	PathParam   string
	QueryParam  string
	SearchParam string
	Guard       GuardFunc

	Source Source
}

// OptionFn mutates Options.
type OptionFn func(*Options)

// DefaultOptions serves /api/departments/{id}/roles with no source.
func DefaultOptions() Options {
	return Options{
		RoutePath:   "/api/departments/{id}/roles",
		PathParam:   "id",
		QueryParam:  "department_id",
		SearchParam: "q",
	}
}

// NewOptions applies fns over DefaultOptions and restores any route or
// parameter name left empty.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/api/departments/{id}/roles"
	}
	if opts.PathParam == "" {
		opts.PathParam = "id"
	}
	if opts.QueryParam == "" {
		opts.QueryParam = "department_id"
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	return opts
}

// WithRoutePath overrides the route pattern.
func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

// WithSearchParam renames the filter query parameter.
func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SearchParam = name
	}
}

// WithGuard installs an authorisation check.
func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithSource sets where role options are loaded from.
func WithSource(source Source) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Source = source
	}
}
