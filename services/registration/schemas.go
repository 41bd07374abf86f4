package registration

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"darisni/models"

	"github.com/go-playground/validator/v10"
)

// Step field sets. Each schema is an immutable value returned by SchemaFor;
// validation is synchronous and pure given the step's input values.

type credentialsStep struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Phone           string `json:"phone" validate:"required,dzphone"`
}

type identityStep struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	BirthDate string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Gender    string `json:"gender" validate:"required,oneof=male female"`
	Wilaya    string `json:"wilaya" validate:"required,wilaya"`
	Address   string `json:"address" validate:"required"`
}

type nationalIDStep struct {
	NationalID string `json:"nationalId" validate:"required,nin"`
}

type educationStep struct {
	EducationLevel string `json:"educationLevel" validate:"required,oneof=middle secondary undergraduate graduate"`
	Institution    string `json:"institution" validate:"required"`
}

type qualificationsStep struct {
	HighestDegree string `json:"highestDegree" validate:"required,oneof=licence master doctorate professor"`
	Affiliation   string `json:"affiliation" validate:"required"`
}

type backgroundStep struct {
	Bio      string `json:"bio" validate:"required,min=30"`
	LinkedIn string `json:"linkedin" validate:"omitempty,url"`
	Website  string `json:"website" validate:"omitempty,url"`
}

type consentStep struct {
	TermsAccepted bool `json:"termsAccepted" validate:"eq=true"`
	DataConsent   bool `json:"dataConsent" validate:"eq=true"`
}

// StepSchema declares what a wizard step requires to advance: a typed field
// set plus the logical names of files that must already be staged.
type StepSchema struct {
	Name          string
	RequiredFiles []string
	newTarget     func() any
}

// SchemaFor returns the schema for (step, role). It is a pure function; the
// returned value never depends on prior calls. ok is false when the step is
// out of range for the role.
func SchemaFor(step int, role models.Role) (StepSchema, bool) {
	if !role.Valid() || step < 1 || step > role.MaxSteps() {
		return StepSchema{}, false
	}

	consent := StepSchema{
		Name:      "consent",
		newTarget: func() any { return &consentStep{} },
	}

	switch step {
	case 1:
		return StepSchema{Name: "credentials", newTarget: func() any { return &credentialsStep{} }}, true
	case 2:
		return StepSchema{Name: "identity", newTarget: func() any { return &identityStep{} }}, true
	case 3:
		return StepSchema{
			Name:          "nationalId",
			RequiredFiles: []string{"nationalIdFront", "nationalIdBack"},
			newTarget:     func() any { return &nationalIDStep{} },
		}, true
	case 4:
		if role == models.RoleTeacher {
			return StepSchema{
				Name:          "qualifications",
				RequiredFiles: []string{"qualification"},
				newTarget:     func() any { return &qualificationsStep{} },
			}, true
		}
		return StepSchema{
			Name:          "education",
			RequiredFiles: []string{"studentCard"},
			newTarget:     func() any { return &educationStep{} },
		}, true
	case 5:
		if role == models.RoleTeacher {
			return StepSchema{Name: "background", newTarget: func() any { return &backgroundStep{} }}, true
		}
		return consent, true
	case 6:
		return consent, true
	}
	return StepSchema{}, false
}

// ValidationResult is the normal, expected outcome of a failed step submit.
// It is not an error: callers surface FieldErrors and stay on the step.
// On success Fields holds the canonical field set re-serialized from the
// typed step struct, so only the schema's declared keys are ever merged
// into the draft.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Fields      map[string]any    `json:"-"`
}

var (
	ninRegex     = regexp.MustCompile(`^\d{18}$`)
	dzPhoneRegex = regexp.MustCompile(`^(\+213|0)(5|6|7)\d{8}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("nin", func(fl validator.FieldLevel) bool {
		return ninRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("dzphone", func(fl validator.FieldLevel) bool {
		return dzPhoneRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("wilaya", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Field().String())
		if err != nil {
			return false
		}
		return n >= 1 && n <= 58
	})
	return v
}

var fieldErrorTexts = map[string]string{
	"required": "this field is required",
	"email":    "must be a valid email address",
	"min":      "too short",
	"eqfield":  "does not match",
	"eq":       "must be accepted",
	"oneof":    "not an accepted value",
	"datetime": "must be a date in YYYY-MM-DD format",
	"url":      "must be a valid URL",
	"nin":      "must be exactly 18 digits",
	"dzphone":  "must be a valid Algerian phone number",
	"wilaya":   "must be a wilaya code between 1 and 58",
}

// Validate checks the raw step input against the schema, including the
// presence of required staged files. Schema failure is a normal return
// state: it never panics and never propagates as an error.
func (s StepSchema) Validate(data map[string]any, staged map[string]models.StagedFile) ValidationResult {
	fieldErrs := make(map[string]string)

	target := s.newTarget()
	raw, err := json.Marshal(data)
	if err == nil {
		err = json.Unmarshal(raw, target)
	}
	if err != nil {
		// Shape mismatch (e.g. a number where a string belongs) reads as a
		// whole-step form error.
		fieldErrs["_form"] = "malformed step data"
		return ValidationResult{Valid: false, FieldErrors: fieldErrs}
	}

	if err := validate.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				msg, found := fieldErrorTexts[fe.Tag()]
				if !found {
					msg = "invalid value"
				}
				fieldErrs[fe.Field()] = msg
			}
		} else {
			fieldErrs["_form"] = "malformed step data"
		}
	}

	for _, fileField := range s.RequiredFiles {
		if _, ok := staged[fileField]; !ok {
			fieldErrs[fileField] = "this file is required"
		}
	}

	if len(fieldErrs) > 0 {
		return ValidationResult{Valid: false, FieldErrors: fieldErrs}
	}

	// Re-serialize the typed struct so unknown input keys never survive
	// validation: the draft only ever stores the schema's declared fields.
	fields := make(map[string]any)
	canonical, err := json.Marshal(target)
	if err == nil {
		err = json.Unmarshal(canonical, &fields)
	}
	if err != nil {
		fieldErrs["_form"] = "malformed step data"
		return ValidationResult{Valid: false, FieldErrors: fieldErrs}
	}
	return ValidationResult{Valid: true, Fields: fields}
}
