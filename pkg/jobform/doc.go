// Package jobform renders the admin page used to create, edit and delete
// jobs, and validates what that page submits.
//
// The page is built in two steps. BuildView resolves everything that depends
// on the job and the event calendar (which start times are offered, which
// department role group is enabled, whether a delete action exists) into a
// View; the Renderer then feeds that View to the job_form template.
package jobform
