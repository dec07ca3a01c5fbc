package http

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"

	"github.com/goliatone/go-staffdesk/pkg/render"
)

// CSRFCookieName holds the double-submit token.
const CSRFCookieName = render.CSRFFieldName

type csrfKey struct{}

// CSRF issues a token cookie when missing and rejects unsafe requests whose
// csrf_token form field does not match the cookie.
func CSRF(next http.Handler, secure bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if cookie, err := r.Cookie(CSRFCookieName); err == nil {
			token = cookie.Value
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			if token == "" {
				token = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}
		default:
			submitted := r.FormValue(render.CSRFFieldName)
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
				http.Error(w, "invalid csrf token", http.StatusForbidden)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey{}, token)))
	})
}

// CSRFFromContext implements render.CSRFProvider over the token CSRF stored
// in the request context.
var CSRFFromContext render.CSRFProvider = render.CSRFProviderFunc(func(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
})
