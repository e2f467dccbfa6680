package validators

import (
	_ "image/gif"
)

type gifValidator struct{}

var _ Validator = (*gifValidator)(nil)

func (p *gifValidator) Matches(s string) bool {
	return s == "gif"
}

func (p *gifValidator) Compile(s string) (Rule, error) {
	return &formatRule{rule: s, format: "gif"}, nil
}

func init() {
	Validators = append(Validators, &gifValidator{})
}
