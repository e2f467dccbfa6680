package validators

import (
	_ "image/jpeg"
)

type jpegValidator struct{}

var _ Validator = (*jpegValidator)(nil)

// Matches is used to check if a validator matches a string.
func (p *jpegValidator) Matches(s string) bool {
	return s == "jpeg" || s == "jpg"
}

// Compile returns a rule checking the file is a jpeg.
func (p *jpegValidator) Compile(s string) (Rule, error) {
	return &formatRule{rule: s, format: "jpeg"}, nil
}

func init() {
	Validators = append(Validators, &jpegValidator{})
}
