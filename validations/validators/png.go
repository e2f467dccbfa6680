package validators

import (
	_ "image/png"
)

type pngValidator struct{}

var _ Validator = (*pngValidator)(nil)

// Matches is used to check if a validator matches a string.
func (p *pngValidator) Matches(s string) bool {
	return s == "png"
}

// Compile returns a rule checking the file is a png.
func (p *pngValidator) Compile(s string) (Rule, error) {
	return &formatRule{rule: s, format: "png"}, nil
}

func init() {
	Validators = append(Validators, &pngValidator{})
}
