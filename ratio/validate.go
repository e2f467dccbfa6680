package ratio

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ConfigError is returned when a Spec cannot be evaluated because one of its
// operands is not a decimal number. It is a configuration mistake and is
// never rendered as a rule violation.
type ConfigError struct {
	Operand string
	Msg     string
}

func (e *ConfigError) Error() string {
	if e.Msg != "" {
		return "invalid ratio specification: " + e.Msg
	}
	return fmt.Sprintf("invalid ratio specification: %q is not a decimal number", e.Operand)
}

var errNoRatios = &ConfigError{Msg: "no ratios configured"}

// Status is the class of an Outcome.
type Status int

const (
	Valid Status = iota
	Invalid
	Misconfigured
)

func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	case Misconfigured:
		return "misconfigured"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Reason says why an Invalid outcome failed.
type Reason int

const (
	NotAnImage Reason = iota + 1
	WrongRatio
)

func (r Reason) String() string {
	switch r {
	case NotAnImage:
		return "not_an_image"
	case WrongRatio:
		return "wrong_ratio"
	default:
		return ""
	}
}

// Template names the message template an outcome is rendered with.
type Template string

const (
	NotImageTemplate   Template = "notImage"
	WrongRatioTemplate Template = "wrongRatio"
)

// Outcome is the result of Validate.
type Outcome struct {
	Status Status
	Reason Reason

	// Actual is width/height before any rounding.
	Actual float64

	// Ratio is Actual rounded to the precision of the last check evaluated.
	Ratio decimal.Decimal

	// Err is set when Status is Misconfigured.
	Err error
}

// OK reports whether the outcome is Valid.
func (o Outcome) OK() bool {
	return o.Status == Valid
}

// Template returns the message template key for an Invalid outcome and the
// values it substitutes. The file and attribute names belong to the caller.
func (o Outcome) Template() (Template, map[string]string) {
	if o.Status != Invalid {
		return "", nil
	}
	if o.Reason == NotAnImage {
		return NotImageTemplate, map[string]string{}
	}
	return WrongRatioTemplate, map[string]string{"ratio": o.Ratio.String()}
}

// NotImage is the outcome for a file whose dimensions could not be read.
// Callers use it directly when decoding fails.
func NotImage() Outcome {
	return Outcome{Status: Invalid, Reason: NotAnImage}
}

// Validate checks the aspect ratio of a width x height image against spec.
//
// Every check in spec is evaluated in order. The image passes if any of them
// passes. A check with a non-numeric operand stops evaluation and yields a
// Misconfigured outcome, even if an earlier check passed.
func Validate(width, height uint, spec Spec) Outcome {
	if width == 0 || height == 0 {
		return NotImage()
	}
	if len(spec) == 0 {
		return Outcome{Status: Misconfigured, Err: errNoRatios}
	}

	actual := float64(width) / float64(height)
	d := decimal.NewFromFloat(actual)

	passed := false
	var rounded decimal.Decimal
	for _, c := range spec {
		ok, r, err := c.evaluate(d)
		if err != nil {
			return Outcome{Status: Misconfigured, Actual: actual, Err: err}
		}
		rounded = r
		if ok {
			passed = true
		}
	}

	if passed {
		return Outcome{Status: Valid, Actual: actual, Ratio: rounded}
	}
	return Outcome{Status: Invalid, Reason: WrongRatio, Actual: actual, Ratio: rounded}
}
