package wizard

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/talkincode/storebuilder/config"
)

// Onboarding field keys.
const (
	FieldName       FieldKey = "name"
	FieldAge        FieldKey = "age"
	FieldOccupation FieldKey = "occupation"
	FieldHobby      FieldKey = "hobby"
	FieldDream      FieldKey = "dream"
	FieldGoal       FieldKey = "goal"
)

// DefaultOnboardingSteps is the questionnaire shown to new visitors.
func DefaultOnboardingSteps() []Step {
	return []Step{
		{
			Title: "What is your name?",
			Field: FieldName,
			Options: []Option{
				{Label: "John", Value: "john"},
				{Label: "Jane", Value: "jane"},
				{Label: "Other", Value: "other"},
			},
		},
		{
			Title: "How old are you?",
			Field: FieldAge,
			Options: []Option{
				{Label: "18-25", Value: "18-25"},
				{Label: "26-35", Value: "26-35"},
				{Label: "36+", Value: "36+"},
			},
		},
		{
			Title: "What is your occupation?",
			Field: FieldOccupation,
			Options: []Option{
				{Label: "Student", Value: "student"},
				{Label: "Professional", Value: "professional"},
				{Label: "Retired", Value: "retired"},
			},
		},
		{Title: "What is your favorite hobby?", Field: FieldHobby},
		{Title: "What is your dream?", Field: FieldDream},
		{Title: "What is your goal?", Field: FieldGoal},
	}
}

// StepsFromConfig converts configured steps; an empty list yields the defaults.
func StepsFromConfig(cfgs []config.StepConfig) []Step {
	if len(cfgs) == 0 {
		return DefaultOnboardingSteps()
	}
	steps := make([]Step, 0, len(cfgs))
	for _, c := range cfgs {
		s := Step{Title: c.Title, Field: FieldKey(c.Field)}
		for _, o := range c.Options {
			s.Options = append(s.Options, Option{Label: o.Label, Value: o.Value})
		}
		if c.When != nil {
			s.When = &Condition{
				Field:     FieldKey(c.When.Field),
				Equals:    c.When.Equals,
				NotEquals: c.When.NotEquals,
			}
		}
		steps = append(steps, s)
	}
	return steps
}

// Profile is the typed result of a completed onboarding run.
type Profile struct {
	Name       string `mapstructure:"name" json:"name"`
	Age        string `mapstructure:"age" json:"age"`
	Occupation string `mapstructure:"occupation" json:"occupation"`
	Hobby      string `mapstructure:"hobby" json:"hobby"`
	Dream      string `mapstructure:"dream" json:"dream"`
	Goal       string `mapstructure:"goal" json:"goal"`
}

// DecodeProfile maps an answer set onto a Profile. Unknown keys are ignored
// so custom flows can collect extra fields.
func DecodeProfile(answers Answers) (Profile, error) {
	raw := make(map[string]interface{}, len(answers))
	for k, v := range answers {
		raw[string(k)] = v
	}
	var p Profile
	if err := mapstructure.Decode(raw, &p); err != nil {
		return Profile{}, errors.Wrap(err, "decode onboarding profile")
	}
	return p, nil
}
