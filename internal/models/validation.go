package models

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// validate is shared by all entity validation; validator instances cache
// struct metadata, so a single one is reused.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// letters, digits and underscores only
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	return v
}

// FieldViolation is one broken field rule, with the message shown to clients.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateUser checks the User's schema-level field rules and returns every
// violation, in struct-field order. Callers surface the first one.
func ValidateUser(u *User) []FieldViolation {
	return collectViolations(validate.Struct(u), userRuleMessages)
}

// ValidateNews checks a news article's field rules.
func ValidateNews(n *News) []FieldViolation {
	return collectViolations(validate.Struct(n), newsRuleMessages)
}

func collectViolations(err error, messages map[string]string) []FieldViolation {
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldViolation{{Field: "", Message: err.Error()}}
	}
	violations := make([]FieldViolation, 0, len(validationErrors))
	for _, e := range validationErrors {
		msg, ok := messages[e.Field()+"."+e.Tag()]
		if !ok {
			msg = fmt.Sprintf("Field '%s' failed on the '%s' rule", e.Field(), e.Tag())
		}
		violations = append(violations, FieldViolation{Field: e.Field(), Message: msg})
	}
	return violations
}

var userRuleMessages = map[string]string{
	"FullName.required": "Full name is required",
	"FullName.min":      "Full name must be at least 2 characters long",
	"Email.required":    "Email is required",
	"Email.email":       "Please enter a valid email address",
	"Username.required": "Username is required",
	"Username.min":      "Username must be at least 3 characters long",
	"Username.max":      "Username cannot exceed 30 characters",
	"Username.username": "Username can only contain letters, numbers, and underscores",
	"Password.required": "Password is required",
	"Password.min":      "Password must be at least 6 characters long",
}

var newsRuleMessages = map[string]string{
	"Title.required":       "Title is required",
	"Description.required": "Description is required",
	"Content.required":     "Content is required",
	"Source.required":      "Source is required",
	"Category.required":    "Category is required",
	"Category.oneof":       "Category must be one of: technology, business, sports, entertainment, health, politics, science, world",
	"Language.oneof":       "Language must be one of: en, hi, ta, fr, es, de",
}
