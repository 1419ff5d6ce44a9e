package waitlist

// Field names a piece of waitlist form data. The values match the JSON keys
// clients send.
type Field string

const (
	FieldName              Field = "name"
	FieldEmail             Field = "email"
	FieldCurrentRole       Field = "currentRole"
	FieldExperienceLevel   Field = "experienceLevel"
	FieldJobSearchPain     Field = "jobSearchPain"
	FieldResumeChallenges  Field = "resumeChallenges"
	FieldCareerGoals       Field = "careerGoals"
	FieldPreferredFeatures Field = "preferredFeatures"
)

// Kind says how a field is edited.
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindChoice   Kind = "choice"
	KindMulti    Kind = "multi"
	KindLongText Kind = "longtext"
)

// Option is one selectable value of a choice or multi-select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldDef describes one input on a step. Required is a display marker
// only; it never blocks advancing.
type FieldDef struct {
	Field       Field    `json:"field"`
	Kind        Kind     `json:"kind"`
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder,omitempty"`
	Required    bool     `json:"required"`
	Options     []Option `json:"options,omitempty"`
}

// Step is the content template for one page of the form.
type Step struct {
	Number   int        `json:"number"`
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	Fields   []FieldDef `json:"fields"`
	Notes    []string   `json:"notes,omitempty"`
}

// TotalSteps is the number of pages in the form.
const TotalSteps = 7

func plain(values ...string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v, Label: v}
	}
	return out
}

var steps = []Step{
	{
		Number:   1,
		Title:    "Welcome to StoryBuilder!",
		Subtitle: "Let's get to know you better to personalize your experience",
		Fields: []FieldDef{
			{Field: FieldName, Kind: KindText, Label: "What's your name?", Placeholder: "Enter your full name", Required: true},
			{Field: FieldEmail, Kind: KindEmail, Label: "What's your email address?", Placeholder: "Enter your email", Required: true},
		},
	},
	{
		Number:   2,
		Title:    "Tell us about your current situation",
		Subtitle: "This helps us understand your background",
		Fields: []FieldDef{
			{Field: FieldCurrentRole, Kind: KindChoice, Label: "What's your current role or field?", Placeholder: "Select your current role", Required: true,
				Options: []Option{
					{"software-engineer", "Software Engineer"},
					{"data-scientist", "Data Scientist"},
					{"product-manager", "Product Manager"},
					{"marketing", "Marketing"},
					{"sales", "Sales"},
					{"designer", "Designer"},
					{"consultant", "Consultant"},
					{"student", "Student"},
					{"unemployed", "Currently Unemployed"},
					{"other", "Other"},
				}},
			{Field: FieldExperienceLevel, Kind: KindChoice, Label: "How many years of professional experience do you have?", Placeholder: "Select experience level", Required: true,
				Options: []Option{
					{"0-1", "0-1 years (Entry Level)"},
					{"2-3", "2-3 years (Junior)"},
					{"4-6", "4-6 years (Mid-level)"},
					{"7-10", "7-10 years (Senior)"},
					{"10+", "10+ years (Executive)"},
				}},
		},
	},
	{
		Number:   3,
		Title:    "What's your biggest job search challenge?",
		Subtitle: "Select all that apply",
		Fields: []FieldDef{
			{Field: FieldJobSearchPain, Kind: KindMulti, Label: "Job search challenges",
				Options: plain(
					"Getting past ATS systems",
					"Writing compelling cover letters",
					"Networking and connections",
					"Finding relevant job opportunities",
					"Interview preparation",
					"Salary negotiation",
					"Career direction uncertainty",
					"Time management during job search",
				)},
		},
	},
	{
		Number:   4,
		Title:    "What resume challenges do you face?",
		Subtitle: "Help us understand your resume pain points",
		Fields: []FieldDef{
			{Field: FieldResumeChallenges, Kind: KindMulti, Label: "Resume challenges",
				Options: plain(
					"Formatting and layout issues",
					"Writing impactful bullet points",
					"Quantifying achievements",
					"Tailoring for different roles",
					"Keeping it concise (1-2 pages)",
					"Highlighting relevant skills",
					"Addressing employment gaps",
					"Making it ATS-friendly",
				)},
		},
	},
	{
		Number:   5,
		Title:    "What are your career goals?",
		Subtitle: "Tell us what you're working towards",
		Fields: []FieldDef{
			{Field: FieldCareerGoals, Kind: KindLongText, Label: "Career goals",
				Placeholder: "Describe your career aspirations, goals, and what you hope to achieve in the next 1-2 years..."},
		},
	},
	{
		Number:   6,
		Title:    "Which StoryBuilder features interest you most?",
		Subtitle: "Select the features that would help you most",
		Fields: []FieldDef{
			{Field: FieldPreferredFeatures, Kind: KindMulti, Label: "Features",
				Options: plain(
					"AI Resume Analysis & Scoring",
					"Smart Job Matching",
					"ATS Optimization",
					"Cover Letter Generation",
					"Interview Preparation",
					"Career Coaching & Advice",
					"Skill Gap Analysis",
					"Salary Negotiation Tips",
				)},
		},
	},
	{
		Number:   7,
		Title:    "You're all set! 🎉",
		Subtitle: "Thank you for joining our waitlist. We'll notify you when StoryBuilder is ready!",
		Fields:   []FieldDef{},
		Notes: []string{
			"Early access to StoryBuilder beta",
			"Personalized career insights based on your responses",
			"Exclusive updates and tips via email",
		},
	},
}

// Steps returns the seven step definitions. The result is a copy and may be
// modified by the caller.
func Steps() []Step {
	out := make([]Step, len(steps))
	for i, s := range steps {
		s.Fields = append(make([]FieldDef, 0, len(s.Fields)), s.Fields...)
		for j := range s.Fields {
			s.Fields[j].Options = append([]Option(nil), s.Fields[j].Options...)
		}
		s.Notes = append([]string(nil), s.Notes...)
		out[i] = s
	}
	return out
}

// Lookup returns the definition of f.
func Lookup(f Field) (FieldDef, bool) {
	for _, s := range steps {
		for _, d := range s.Fields {
			if d.Field == f {
				return d, true
			}
		}
	}
	return FieldDef{}, false
}

// HasOption reports whether value is one of d's options. Fields without an
// option list accept anything.
func (d FieldDef) HasOption(value string) bool {
	if len(d.Options) == 0 {
		return true
	}
	for _, o := range d.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}
