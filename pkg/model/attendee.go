package model

import "time"

// ConsentAge is the age an attendee must have reached at the start of the
// event to attend without a parental consent form.
const ConsentAge = 18

// Attendee is a registered event attendee.
type Attendee struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	BirthDate time.Time `json:"birthdate"`
}

// FullName joins the first and last name.
func (a Attendee) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}

// AgeAt returns the attendee's age in whole years on the given day. A zero
// birth date yields -1.
func (a Attendee) AgeAt(at time.Time) int {
	if a.BirthDate.IsZero() {
		return -1
	}
	at = at.In(a.BirthDate.Location())
	age := at.Year() - a.BirthDate.Year()
	if at.Month() < a.BirthDate.Month() ||
		(at.Month() == a.BirthDate.Month() && at.Day() < a.BirthDate.Day()) {
		age--
	}
	return age
}

// NeedsAgeConsent reports whether the attendee will be under ConsentAge when
// the event starts. Attendees without a birth date are not flagged.
func (a Attendee) NeedsAgeConsent(epoch time.Time) bool {
	age := a.AgeAt(epoch)
	return age >= 0 && age < ConsentAge
}

// SentEmail records an automated email already delivered to a record, keyed
// the same way the automation checks for duplicates.
type SentEmail struct {
	Ident   string    `json:"ident"`
	Model   string    `json:"model"`
	FKID    string    `json:"fk_id"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	SentAt  time.Time `json:"sent_at"`
}
