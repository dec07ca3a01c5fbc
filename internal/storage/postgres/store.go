package postgres

import "github.com/goliatone/go-staffdesk/pkg/email"

// Store groups the repositories over one DB.
type Store struct {
	DB          *DB
	Jobs        *JobRepository
	Departments *DepartmentRepository
	Attendees   *AttendeeRepository
	Emails      *EmailRepository
	Defaults    *DefaultsRepository
}

func NewStore(db *DB) *Store {
	return &Store{
		DB:          db,
		Jobs:        NewJobRepository(db),
		Departments: NewDepartmentRepository(db),
		Attendees:   NewAttendeeRepository(db),
		Emails:      NewEmailRepository(db),
		Defaults:    NewDefaultsRepository(db),
	}
}

// ConsentStore is the view of the store the age consent automation uses.
type ConsentStore struct {
	*AttendeeRepository
	*EmailRepository
}

var _ email.Store = ConsentStore{}

// Consent returns the age consent automation store.
func (s *Store) Consent() ConsentStore {
	return ConsentStore{AttendeeRepository: s.Attendees, EmailRepository: s.Emails}
}
