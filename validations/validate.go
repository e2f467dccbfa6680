package validations

import (
	"errors"
	"strings"

	"imageratio/validations/validators"
)

// Pipeline is used to define a compiled rule set such as
// "png+max-size=5mb+ratio=16:9|4:3".
type Pipeline struct {
	rules string
	steps []validators.Rule
}

// splitRules splits a rule set on "+". Inside a "ratio=" rule a "+" that
// signs a number ("ratio=+1.5", "ratio=1e+0|1.2~+2") stays part of the rule.
func splitRules(rules string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(rules); i++ {
		if rules[i] != '+' {
			continue
		}
		current := strings.TrimSpace(rules[start:i])
		if strings.HasPrefix(current, "ratio=") && i > 0 && signsNumber(rules[i-1]) {
			continue
		}
		parts = append(parts, rules[start:i])
		start = i + 1
	}
	return append(parts, rules[start:])
}

func signsNumber(prev byte) bool {
	switch prev {
	case '=', '|', '~', ':', 'e', 'E':
		return true
	}
	return false
}

// Compile is used to parse a rule set. Rules are separated by "+" and run in
// the order given.
func Compile(rules string) (*Pipeline, error) {
	p := &Pipeline{rules: rules}
	for _, v := range splitRules(rules) {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		var match validators.Validator
		for _, validator := range validators.Validators {
			if validator.Matches(v) {
				match = validator
				break
			}
		}
		if match == nil {
			return nil, &validators.ConfigError{Rule: v, Err: errors.New("unknown rule")}
		}
		step, err := match.Compile(v)
		if err != nil {
			return nil, err
		}
		p.steps = append(p.steps, step)
	}
	if len(p.steps) == 0 {
		return nil, &validators.ConfigError{Rule: rules, Err: errors.New("empty rule set")}
	}
	return p, nil
}

// New returns a pipeline of already compiled rules.
func New(rules ...validators.Rule) *Pipeline {
	return (&Pipeline{}).With(rules...)
}

// With returns a copy of p with extra rules appended.
func (p *Pipeline) With(rules ...validators.Rule) *Pipeline {
	steps := make([]validators.Rule, 0, len(p.steps)+len(rules))
	steps = append(steps, p.steps...)
	return &Pipeline{rules: p.rules, steps: append(steps, rules...)}
}

// String returns the rule set p was compiled from.
func (p *Pipeline) String() string {
	return p.rules
}

// Validate is used to validate the validations string.
func Validate(rules string) bool {
	_, err := Compile(rules)
	return err == nil
}
