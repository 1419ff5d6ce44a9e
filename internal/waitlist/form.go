// Package waitlist implements the seven-step waitlist form as a stepper over
// plain data. The same step definitions back the step catalog endpoint and
// the replay of client submissions.
//
// A Form is owned by a single caller and is not safe for concurrent use.
package waitlist

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNotMultiSelect is returned by Toggle for fields that hold one value.
	ErrNotMultiSelect = errors.New("waitlist: field is not multi-select")
	// ErrNotSingleValue is returned by Set for multi-select fields.
	ErrNotSingleValue = errors.New("waitlist: field is not single-valued")
	// ErrNotFinalStep is returned by Submit before the last step.
	ErrNotFinalStep = errors.New("waitlist: submit is only allowed on the final step")
)

// State is the accumulated form data plus the current step. Multi-select
// fields keep insertion order without duplicates.
type State struct {
	Step              int      `json:"step"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	CurrentRole       string   `json:"currentRole"`
	ExperienceLevel   string   `json:"experienceLevel"`
	JobSearchPain     []string `json:"jobSearchPain"`
	ResumeChallenges  []string `json:"resumeChallenges"`
	CareerGoals       string   `json:"careerGoals"`
	PreferredFeatures []string `json:"preferredFeatures"`
}

func initialState() State {
	return State{
		Step:              1,
		JobSearchPain:     []string{},
		ResumeChallenges:  []string{},
		PreferredFeatures: []string{},
	}
}

func (s State) clone() State {
	s.JobSearchPain = slices.Clone(s.JobSearchPain)
	s.ResumeChallenges = slices.Clone(s.ResumeChallenges)
	s.PreferredFeatures = slices.Clone(s.PreferredFeatures)
	return s
}

// Form is the waitlist stepper.
type Form struct {
	state    State
	onSubmit func(State)
}

// New returns a form on step 1 with every field empty. onSubmit receives
// the final state when Submit succeeds; it may be nil.
func New(onSubmit func(State)) *Form {
	return &Form{state: initialState(), onSubmit: onSubmit}
}

// State returns a snapshot the caller may keep or modify.
func (f *Form) State() State { return f.state.clone() }

// Step is the current page number in [1, TotalSteps].
func (f *Form) Step() int { return f.state.Step }

// Advance moves to the next step. It is a no-op on the last step.
func (f *Form) Advance() {
	if f.state.Step < TotalSteps {
		f.state.Step++
	}
}

// Retreat moves to the previous step. It is a no-op on the first step.
func (f *Form) Retreat() {
	if f.state.Step > 1 {
		f.state.Step--
	}
}

func (f *Form) multi(field Field) *[]string {
	switch field {
	case FieldJobSearchPain:
		return &f.state.JobSearchPain
	case FieldResumeChallenges:
		return &f.state.ResumeChallenges
	case FieldPreferredFeatures:
		return &f.state.PreferredFeatures
	}
	return nil
}

func (f *Form) single(field Field) *string {
	switch field {
	case FieldName:
		return &f.state.Name
	case FieldEmail:
		return &f.state.Email
	case FieldCurrentRole:
		return &f.state.CurrentRole
	case FieldExperienceLevel:
		return &f.state.ExperienceLevel
	case FieldCareerGoals:
		return &f.state.CareerGoals
	}
	return nil
}

// Toggle adds value to a multi-select field when absent and removes it when
// present.
func (f *Form) Toggle(field Field, value string) error {
	set := f.multi(field)
	if set == nil {
		return fmt.Errorf("%w: %s", ErrNotMultiSelect, field)
	}
	if i := slices.Index(*set, value); i >= 0 {
		*set = slices.Delete(*set, i, i+1)
		return nil
	}
	*set = append(*set, value)
	return nil
}

// Set assigns a single-value field.
func (f *Form) Set(field Field, value string) error {
	p := f.single(field)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrNotSingleValue, field)
	}
	*p = value
	return nil
}

// Submit hands the final state to the completion callback and resets the
// form. It fails on any step but the last.
func (f *Form) Submit() error {
	if f.state.Step != TotalSteps {
		return ErrNotFinalStep
	}
	final := f.state.clone()
	f.state = initialState()
	if f.onSubmit != nil {
		f.onSubmit(final)
	}
	return nil
}

// Close discards all state and returns the form to step 1.
func (f *Form) Close() {
	f.state = initialState()
}
