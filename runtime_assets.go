package staffdesk

import (
	"io/fs"

	"github.com/goliatone/go-staffdesk/pkg/jobform"
)

// RuntimeAssetsFS exposes the job form script and stylesheet so Go
// applications embedding the form can serve them.
//
// Typical mount:
//
//	mux.Handle("/static/",
//	  http.StripPrefix("/static/",
//	    http.FileServerFS(staffdesk.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return jobform.AssetsFS()
}
