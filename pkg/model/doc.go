// Package model defines the event-staffing records rendered by the admin
// surface: attendees, departments and their roles, jobs and the shifts that
// fill them. Persistence lives elsewhere; values here carry json tags that
// match the template variable names (job.db_id, attendee.first_name, ...)
// because the template engine receives them through a JSON round trip.
package model
