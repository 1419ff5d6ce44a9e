package waitlist

import (
	"fmt"
	"strings"

	"github.com/StoryBuilderAi/storybuilder/internal/validation"
)

// Submission is the payload a client posts after walking the form.
type Submission struct {
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	CurrentRole       string   `json:"currentRole"`
	ExperienceLevel   string   `json:"experienceLevel"`
	JobSearchPain     []string `json:"jobSearchPain"`
	ResumeChallenges  []string `json:"resumeChallenges"`
	CareerGoals       string   `json:"careerGoals"`
	PreferredFeatures []string `json:"preferredFeatures"`
}

// InvalidSubmissionError lists every problem found in a submission.
type InvalidSubmissionError struct {
	Problems []string
}

func (e *InvalidSubmissionError) Error() string {
	return "invalid waitlist submission: " + strings.Join(e.Problems, "; ")
}

// Validate checks the fields a server-side submission must carry: a name, a
// well-formed email and only known option values. The interactive form
// itself never blocks on these.
func (s Submission) Validate() error {
	var problems []string
	if strings.TrimSpace(s.Name) == "" {
		problems = append(problems, "name is required")
	}
	if !validation.Email(strings.TrimSpace(s.Email)) {
		problems = append(problems, "Invalid email format")
	}
	single := map[Field]string{FieldCurrentRole: s.CurrentRole, FieldExperienceLevel: s.ExperienceLevel}
	for _, f := range []Field{FieldCurrentRole, FieldExperienceLevel} {
		v := single[f]
		if d, _ := Lookup(f); v != "" && !d.HasOption(v) {
			problems = append(problems, fmt.Sprintf("%s: unknown option %q", f, v))
		}
	}
	multis := s.multiValues()
	for _, f := range []Field{FieldJobSearchPain, FieldResumeChallenges, FieldPreferredFeatures} {
		d, _ := Lookup(f)
		for _, v := range multis[f] {
			if !d.HasOption(v) {
				problems = append(problems, fmt.Sprintf("%s: unknown option %q", f, v))
			}
		}
	}
	if len(problems) > 0 {
		return &InvalidSubmissionError{Problems: problems}
	}
	return nil
}

func (s Submission) multiValues() map[Field][]string {
	return map[Field][]string{
		FieldJobSearchPain:     s.JobSearchPain,
		FieldResumeChallenges:  s.ResumeChallenges,
		FieldPreferredFeatures: s.PreferredFeatures,
	}
}

// Replay validates sub, then drives a fresh form through every step,
// writing each step's fields as the client would, and submits it on the
// last step. onSubmit receives the final state.
func Replay(sub Submission, onSubmit func(State)) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	singles := map[Field]string{
		FieldName:            strings.TrimSpace(sub.Name),
		FieldEmail:           strings.TrimSpace(sub.Email),
		FieldCurrentRole:     sub.CurrentRole,
		FieldExperienceLevel: sub.ExperienceLevel,
		FieldCareerGoals:     sub.CareerGoals,
	}
	multis := sub.multiValues()

	f := New(onSubmit)
	for _, step := range steps {
		for _, d := range step.Fields {
			if d.Kind == KindMulti {
				seen := map[string]bool{}
				for _, v := range multis[d.Field] {
					if seen[v] {
						continue
					}
					seen[v] = true
					if err := f.Toggle(d.Field, v); err != nil {
						return err
					}
				}
				continue
			}
			if err := f.Set(d.Field, singles[d.Field]); err != nil {
				return err
			}
		}
		f.Advance()
	}
	return f.Submit()
}
