// Package template defines the template engine seam used by the job form and
// email renderers. The pongo2 implementation lives in the gotemplate
// subpackage.
package template
