package domain

// Display identifiers of the submitted-values panel
const (
	DisplayFirstName = "firstnameDisplay"
	DisplayLastName  = "lastnameDisplay"
	DisplayEmail     = "emailDisplay"
	DisplayMessage   = "messageDisplay"
)

// ErrorPrefix precedes every rendered validation message
const ErrorPrefix = "Error: "

// FieldLabels maps each field to the label of its input
var FieldLabels = map[Field]string{
	FieldFirstName: "First Name",
	FieldLastName:  "Last Name",
	FieldEmail:     "Email",
	FieldMessage:   "Message",
}

// DisplayItem is one entry of the submitted-values panel
type DisplayItem struct {
	TestID string `json:"testId"`
	Field  Field  `json:"field"`
	Value  string `json:"value"`
}

// FormView is what the rendering layer consumes
type FormView struct {
	SessionID   string           `json:"sessionId"`
	Phase       Phase            `json:"phase"`
	Values      FieldValues      `json:"values"`
	Errors      []string         `json:"errors"`
	FieldErrors map[Field]string `json:"fieldErrors"`
	Submitted   bool             `json:"submitted"`
	Display     []DisplayItem    `json:"display,omitempty"`
}

// NewFormView renders a session into its presentation model
func NewFormView(s *FormSession) FormView {
	view := FormView{
		SessionID:   s.ID,
		Phase:       s.State.Phase,
		Values:      s.State.Values,
		Errors:      []string{},
		FieldErrors: map[Field]string{},
	}

	for _, f := range Fields {
		if msg, ok := s.State.Errors[f]; ok {
			view.Errors = append(view.Errors, ErrorPrefix+msg)
			view.FieldErrors[f] = ErrorPrefix + msg
		}
	}

	if sub := s.State.Submitted; sub != nil {
		view.Submitted = true
		view.Display = []DisplayItem{
			{TestID: DisplayFirstName, Field: FieldFirstName, Value: sub.FirstName},
			{TestID: DisplayLastName, Field: FieldLastName, Value: sub.LastName},
			{TestID: DisplayEmail, Field: FieldEmail, Value: sub.Email},
			{TestID: DisplayMessage, Field: FieldMessage, Value: sub.Message},
		}
	}

	return view
}
