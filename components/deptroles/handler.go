package deptroles

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-staffdesk/pkg/model"
)

// HTTPError lets guard and source errors choose their response status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an error with the HTTP status it should produce.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

// StatusCode defaults to 500 when Code is unset.
func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type rolesResponse struct {
	DepartmentID string             `json:"department_id"`
	Data         []model.RoleOption `json:"data"`
}

// Handler is an alias for NewHandler.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

// NewHandler returns the role options handler configured by fns.
func NewHandler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds the handler from an Options value produced by
// NewOptions.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeError(w, err, http.StatusForbidden)
				return
			}
		}
		if opts.Source == nil {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}

		deptID := strings.TrimSpace(r.PathValue(opts.PathParam))
		if deptID == "" {
			deptID = strings.TrimSpace(r.URL.Query().Get(opts.QueryParam))
		}
		if deptID == "" {
			writeError(w, StatusError{Code: http.StatusBadRequest}, http.StatusBadRequest)
			return
		}

		deptRoles, err := opts.Source.DeptRoles(r.Context())
		if err != nil {
			writeError(w, err, http.StatusInternalServerError)
			return
		}
		roles, ok := deptRoles[deptID]
		if !ok {
			writeError(w, StatusError{Code: http.StatusNotFound, Err: model.ErrDepartmentNotFound}, http.StatusNotFound)
			return
		}

		results := FilterRoles(roles, r.URL.Query().Get(opts.SearchParam))

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}

		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(true)
		_ = enc.Encode(rolesResponse{DepartmentID: deptID, Data: results})
	})
}

// FilterRoles keeps roles whose label contains query, ignoring case. The
// result is never nil.
func FilterRoles(roles []model.RoleOption, query string) []model.RoleOption {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]model.RoleOption, 0, len(roles))
	for _, role := range roles {
		if query == "" || strings.Contains(strings.ToLower(role.Label), query) {
			out = append(out, role)
		}
	}
	return out
}

func writeError(w http.ResponseWriter, err error, fallback int) {
	code := fallback
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
	}
	http.Error(w, http.StatusText(code), code)
}
