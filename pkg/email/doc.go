// Package email renders automated attendee emails and sends the ones that
// are due.
//
// The only email today is the age consent notice: attendees who will be
// under 18 when the event starts are told how to get a parental consent
// form signed, and how to correct their birth date if it is wrong.
package email
