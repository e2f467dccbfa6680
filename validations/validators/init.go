package validators

import (
	"fmt"

	"imageratio/messages"
)

// File is the input every rule is validated against.
type File struct {
	// Name is the file name used in messages.
	Name string

	// Attribute is the form attribute or field the file was submitted as.
	Attribute string

	Data []byte

	// Messages are the templates failures are rendered with.
	Messages messages.Messages

	// AutoOrient applies the EXIF orientation before dimensions are read.
	AutoOrient bool
}

// Rule is a compiled validation rule.
type Rule interface {
	// Validate returns a *RuleError if the file does not satisfy the rule.
	Validate(f *File) error
}

// Validator is used to define the interface for a validator.
type Validator interface {
	// Matches is used to check if a validator matches a rule string.
	Matches(s string) bool

	// Compile is used to turn a matched rule string into a Rule.
	Compile(s string) (Rule, error)
}

// Validators is used to define a list of validators in this package.
var Validators []Validator

// RuleError is returned when a file fails a rule.
type RuleError struct {
	Rule    string
	Reason  string
	Ratio   string
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

// ConfigError is returned when a rule string is malformed.
type ConfigError struct {
	Rule string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid rule %q: %v", e.Rule, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func ruleError(f *File, rule, reason, tmpl string, params map[string]string) *RuleError {
	if params == nil {
		params = map[string]string{}
	}
	params["attribute"] = f.Attribute
	params["file"] = f.Name
	return &RuleError{
		Rule:    rule,
		Reason:  reason,
		Message: messages.Format(tmpl, params),
	}
}
