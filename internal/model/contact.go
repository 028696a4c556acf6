package model

import "time"

// Contact message subjects and inbox statuses.
const (
	SubjectQuote    = "quote"
	SubjectService  = "service"
	SubjectSupport  = "support"
	SubjectFeedback = "feedback"
	SubjectOther    = "other"
)

const (
	ContactNew        = "new"
	ContactRead       = "read"
	ContactInProgress = "in-progress"
	ContactResolved   = "resolved"
	ContactClosed     = "closed"
)

// ValidSubject reports whether s is a recognised contact subject.
func ValidSubject(s string) bool {
	switch s {
	case SubjectQuote, SubjectService, SubjectSupport, SubjectFeedback, SubjectOther:
		return true
	}
	return false
}

// ValidContactStatus reports whether s is a recognised inbox status.
func ValidContactStatus(s string) bool {
	switch s {
	case ContactNew, ContactRead, ContactInProgress, ContactResolved, ContactClosed:
		return true
	}
	return false
}

// Contact represents one message submitted through the contact form,
// as stored in the `contacts` table.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – sender's name.
//  Email     – sender's email address.
//  Phone     – sender's phone number (optional).
//  Subject   – one of the Subject* constants.
//  Message   – message body.
//  Status    – inbox workflow status, starts at "new".
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Contact struct {
	ID        uint64    // contacts.id
	Name      string    // contacts.name
	Email     string    // contacts.email
	Phone     string    // contacts.phone
	Subject   string    // contacts.subject
	Message   string    // contacts.message
	Status    string    // contacts.status
	CreatedAt time.Time // contacts.created_at
	UpdatedAt time.Time // contacts.updated_at
}
