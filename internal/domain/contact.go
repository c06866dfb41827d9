package domain

import (
	"context"
	"time"
)

// Field identifies one input of the contact form
type Field string

const (
	FieldFirstName Field = "firstName"
	FieldLastName  Field = "lastName"
	FieldEmail     Field = "email"
	FieldMessage   Field = "message"
)

// Fields lists every form input in display order
var Fields = []Field{FieldFirstName, FieldLastName, FieldEmail, FieldMessage}

// Validation messages shown to the user, keyed by the failing field
const (
	MsgFirstNameTooShort = "firstName must have at least 5 characters."
	MsgLastNameRequired  = "lastName is a required field."
	MsgEmailInvalid      = "email must be a valid email address."
)

// ParseField maps a wire name to a Field
func ParseField(name string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// FieldValues holds the current, possibly invalid, text of the four inputs
type FieldValues struct {
	FirstName string `json:"firstName" form:"firstName" validate:"min=5"`
	LastName  string `json:"lastName" form:"lastName" validate:"required"`
	Email     string `json:"email" form:"email" validate:"email_address"`
	Message   string `json:"message" form:"message"`
}

// Get returns the value of a single field
func (v FieldValues) Get(f Field) string {
	switch f {
	case FieldFirstName:
		return v.FirstName
	case FieldLastName:
		return v.LastName
	case FieldEmail:
		return v.Email
	case FieldMessage:
		return v.Message
	}
	return ""
}

// With returns a copy of v with field f replaced
func (v FieldValues) With(f Field, value string) FieldValues {
	switch f {
	case FieldFirstName:
		v.FirstName = value
	case FieldLastName:
		v.LastName = value
	case FieldEmail:
		v.Email = value
	case FieldMessage:
		v.Message = value
	}
	return v
}

// ValidationErrors maps a failing field to its message.
// Only fields that currently fail their rule have an entry.
type ValidationErrors map[Field]string

// Clone returns an independent copy; nil stays nil
func (e ValidationErrors) Clone() ValidationErrors {
	if e == nil {
		return nil
	}
	out := make(ValidationErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Phase is the logical phase of the submission state machine
type Phase string

const (
	PhaseEditing   Phase = "EDITING"
	PhaseSubmitted Phase = "SUBMITTED"
)

// FormState is the complete state of one contact form instance.
// Submitted is nil until the first successful submission.
type FormState struct {
	Phase     Phase
	Values    FieldValues
	Errors    ValidationErrors
	Submitted *FieldValues
}

// Event is an input to the form state machine
type Event interface {
	isEvent()
}

// FieldChanged is raised whenever the user edits an input
type FieldChanged struct {
	Field Field
	Value string
}

// SubmitPressed is raised by the explicit submit action
type SubmitPressed struct{}

func (FieldChanged) isEvent()  {}
func (SubmitPressed) isEvent() {}

// FormSession is a FormState owned by one client
type FormSession struct {
	ID        string
	State     FormState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContactFormRepository keeps live form sessions
type ContactFormRepository interface {
	Create(ctx context.Context, session *FormSession) error
	GetByID(ctx context.Context, id string) (*FormSession, error)
	// Update runs fn against the stored session while holding it exclusively,
	// then stores the returned state.
	Update(ctx context.Context, id string, fn func(FormState) FormState) (*FormSession, error)
	Delete(ctx context.Context, id string) error
}

// ContactFormUsecase drives contact form sessions
type ContactFormUsecase interface {
	// Open mounts a fresh form in its initial state
	Open(ctx context.Context) (*FormSession, error)
	Get(ctx context.Context, id string) (*FormSession, error)
	Dispatch(ctx context.Context, id string, event Event) (*FormSession, error)
	ChangeField(ctx context.Context, id string, field Field, value string) (*FormSession, error)
	Submit(ctx context.Context, id string) (*FormSession, error)
	// Discard unmounts the form and destroys its state
	Discard(ctx context.Context, id string) error
}
