package staffdesk

import (
	"io/fs"

	"github.com/goliatone/go-staffdesk/pkg/email"
	"github.com/goliatone/go-staffdesk/pkg/jobform"
)

// EmbeddedTemplates exposes the built-in job form templates so callers can
// copy them into an override directory without importing the renderer
// package directly.
func EmbeddedTemplates() fs.FS {
	return jobform.TemplatesFS()
}

// EmailTemplates exposes the built-in age consent email templates.
func EmailTemplates() fs.FS {
	return email.TemplatesFS()
}
