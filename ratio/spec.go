package ratio

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Bound is a ratio operand kept in its base-10 text form. It is only parsed
// when a check runs, so a malformed operand surfaces as a ConfigError.
type Bound string

// Float returns the canonical shortest decimal form of f.
func Float(f float64) Bound {
	return Bound(decimal.NewFromFloat(f).String())
}

// Fraction returns the operand for width/height, e.g. Fraction(16, 9).
func Fraction(width, height int64) Bound {
	if height == 0 {
		return Bound(fmt.Sprintf("%d:%d", width, height))
	}
	return Bound(decimal.NewFromInt(width).Div(decimal.NewFromInt(height)).String())
}

func (b Bound) decimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(string(b)))
	if err != nil {
		return decimal.Decimal{}, &ConfigError{Operand: string(b)}
	}
	return d, nil
}

// precision returns the length of the integer part of d's canonical string.
// This is the number of decimal places both sides of a comparison are
// rounded to, so 1.7778 compares at one place and 12.5 at two.
func precision(d decimal.Decimal) int32 {
	intPart, _, _ := strings.Cut(d.String(), ".")
	return int32(len(intPart))
}

// Check is one leaf of a Spec: either Exact or Range.
type Check interface {
	// evaluate reports whether actual satisfies the check and returns actual
	// rounded to the precision the check compared at.
	evaluate(actual decimal.Decimal) (bool, decimal.Decimal, error)

	String() string
}

// Exact passes when the ratio equals Value at Value's precision.
type Exact struct {
	Value Bound
}

func (e Exact) evaluate(actual decimal.Decimal) (bool, decimal.Decimal, error) {
	v, err := e.Value.decimal()
	if err != nil {
		return false, decimal.Decimal{}, err
	}
	p := precision(v)
	rounded := actual.Round(p)
	return rounded.Equal(v.Round(p)), rounded, nil
}

func (e Exact) String() string {
	return string(e.Value)
}

// Range passes when From < ratio < To, with all three rounded to the larger
// precision of From and To.
type Range struct {
	From Bound
	To   Bound
}

func (r Range) evaluate(actual decimal.Decimal) (bool, decimal.Decimal, error) {
	from, err := r.From.decimal()
	if err != nil {
		return false, decimal.Decimal{}, err
	}
	to, err := r.To.decimal()
	if err != nil {
		return false, decimal.Decimal{}, err
	}
	p := max(precision(from), precision(to))
	rounded := actual.Round(p)
	return from.Round(p).LessThan(rounded) && rounded.LessThan(to.Round(p)), rounded, nil
}

func (r Range) String() string {
	return string(r.From) + "~" + string(r.To)
}

// Spec is a list of checks. A ratio satisfies the Spec when it satisfies any
// of them.
type Spec []Check

// Err reports the first operand in s that is not a decimal number, or an
// error if s is empty.
func (s Spec) Err() error {
	if len(s) == 0 {
		return errNoRatios
	}
	for _, c := range s {
		if _, _, err := c.evaluate(decimal.Zero); err != nil {
			return err
		}
	}
	return nil
}

// String renders s in the rule grammar accepted by Parse.
func (s Spec) String() string {
	items := make([]string, len(s))
	for i, c := range s {
		items[i] = c.String()
	}
	return strings.Join(items, "|")
}
