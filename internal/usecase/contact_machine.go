package usecase

import "contact-form-service/internal/domain"

// FormMachine holds the transition rules of the contact form.
// Transitions never mutate their input state.
type FormMachine struct {
	validator *ContactValidator
	// validateOnChange surfaces a field's error as soon as it is edited
	validateOnChange bool
}

func NewFormMachine(validator *ContactValidator, validateOnChange bool) *FormMachine {
	return &FormMachine{
		validator:        validator,
		validateOnChange: validateOnChange,
	}
}

// Initial is the state of a freshly mounted form
func (m *FormMachine) Initial() domain.FormState {
	return domain.FormState{
		Phase:  domain.PhaseEditing,
		Errors: domain.ValidationErrors{},
	}
}

// Reduce applies one event. Unknown events leave the state as is.
func (m *FormMachine) Reduce(state domain.FormState, event domain.Event) domain.FormState {
	switch e := event.(type) {
	case domain.FieldChanged:
		return m.OnFieldChange(state, e.Field, e.Value)
	case domain.SubmitPressed:
		return m.OnSubmit(state)
	}
	return state
}

// OnFieldChange stores the new value and returns to EDITING. The last
// submitted snapshot stays visible.
func (m *FormMachine) OnFieldChange(state domain.FormState, field domain.Field, value string) domain.FormState {
	next := domain.FormState{
		Phase:     domain.PhaseEditing,
		Values:    state.Values.With(field, value),
		Errors:    state.Errors.Clone(),
		Submitted: state.Submitted,
	}
	if next.Errors == nil {
		next.Errors = domain.ValidationErrors{}
	}

	msg, failing := m.validator.ValidateField(next.Values, field)
	switch {
	case !failing:
		delete(next.Errors, field)
	case m.validateOnChange:
		next.Errors[field] = msg
	}
	return next
}

// OnSubmit re-runs every rule. With no failures the values are snapshotted
// into Submitted; otherwise Submitted is left untouched.
func (m *FormMachine) OnSubmit(state domain.FormState) domain.FormState {
	errs := m.validator.Validate(state.Values)
	if len(errs) > 0 {
		return domain.FormState{
			Phase:     domain.PhaseEditing,
			Values:    state.Values,
			Errors:    errs,
			Submitted: state.Submitted,
		}
	}

	snapshot := state.Values
	return domain.FormState{
		Phase:     domain.PhaseSubmitted,
		Values:    state.Values,
		Errors:    domain.ValidationErrors{},
		Submitted: &snapshot,
	}
}
