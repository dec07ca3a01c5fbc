// Package gotemplate implements template.TemplateRenderer on top of pongo2.
// Templates load from an optional override directory first and an fs.FS
// second, so deployments can replace individual embedded templates.
package gotemplate
