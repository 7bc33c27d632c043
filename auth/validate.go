package auth

import (
	"regexp"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// EmailPattern is the shape check applied before the storage layer gets a
// chance to reject the value. Deliberately loose: local@domain.tld.
var EmailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ConstraintMessages carries the user-facing message per failed rule.
type ConstraintMessages struct {
	Required string
	Min      string
	Max      string
	Pattern  string
}

// FieldConstraint is one row of the account constraint table: bounds and
// messages for a single field, decoupled from the storage schema.
type FieldConstraint struct {
	Field    string
	Required bool
	Min      int
	Max      int
	Pattern  *regexp.Regexp
	Messages ConstraintMessages
}

// Rules expands the constraint row into ozzo validation rules.
func (c FieldConstraint) Rules() []validation.Rule {
	var rules []validation.Rule
	if c.Required {
		rules = append(rules, validation.Required.Error(c.Messages.Required))
	}
	if c.Min > 0 {
		rules = append(rules, validation.RuneLength(c.Min, 0).Error(c.Messages.Min))
	}
	if c.Max > 0 {
		rules = append(rules, validation.RuneLength(0, c.Max).Error(c.Messages.Max))
	}
	if c.Pattern != nil {
		rules = append(rules, validation.Match(c.Pattern).Error(c.Messages.Pattern))
	}
	return rules
}

// AccountConstraints is the constraint table for signup fields. Bounds and
// messages mirror the product copy.
var AccountConstraints = []FieldConstraint{
	{
		Field:    "firstname",
		Required: true,
		Min:      3,
		Max:      30,
		Messages: ConstraintMessages{
			Required: "El nombre es obligatorio",
			Min:      "El nombre debe contener mínimo 3 caracteres",
			Max:      "El nombre debe contener máximo 30 caracteres",
		},
	},
	{
		Field:    "lastname",
		Required: true,
		Min:      3,
		Max:      30,
		Messages: ConstraintMessages{
			Required: "El apellido es obligatorio",
			Min:      "El apellido debe contener mínimo 3 caracteres",
			Max:      "El apellido debe contener máximo 30 caracteres",
		},
	},
	{
		Field:    "email",
		Required: true,
		Min:      4,
		Max:      45,
		Pattern:  EmailPattern,
		Messages: ConstraintMessages{
			Required: "El email es obligatorio",
			Min:      "El email debe contener mínimo 4 caracteres",
			Max:      "El email debe contener máximo 45 caracteres",
			Pattern:  "El email no es válido",
		},
	},
	{
		Field:    "password",
		Required: true,
		Min:      6,
		Max:      75,
		Messages: ConstraintMessages{
			Required: "La contraseña es obligatoria",
			Min:      "La contraseña debe tener por lo menos 6 caracteres",
			Max:      "La contraseña debe tener máximo 75 caracteres",
		},
	},
}

// DuplicateEmailMessage is returned on the email field when the unique
// constraint rejects an insert.
const DuplicateEmailMessage = "Error, el valor email debe ser único"

// ValidateAccountFields runs the constraint table against the given field
// values and returns an ozzo validation.Errors keyed by field, or nil.
func ValidateAccountFields(fields map[string]string) error {
	errs := validation.Errors{}
	for _, c := range AccountConstraints {
		value, ok := fields[c.Field]
		if !ok {
			continue
		}
		if err := validation.Validate(value, c.Rules()...); err != nil {
			errs[c.Field] = err
		}
	}
	return errs.Filter()
}

// UpperFirst capitalizes the first rune, leaving the rest untouched.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// NormalizeEmail trims and lowercases, matching what the storage layer
// enforces for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
