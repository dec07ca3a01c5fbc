package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-staffdesk/pkg/render"
)

// handleAgeConsentPreview renders the age consent email for ?id=<attendee>.
func (s *Server) handleAgeConsentPreview(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		s.fail(w, r, StatusError{Code: http.StatusBadRequest, Err: errors.New("missing attendee id")})
		return
	}

	attendee, err := s.cfg.Attendees.GetAttendee(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	body, err := s.preview.Render(r.Context(), attendee, render.RenderOptions{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, s.preview.ContentType(), body)
}
