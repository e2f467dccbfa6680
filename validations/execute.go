package validations

import (
	"errors"
	"io"

	pkgerrors "github.com/pkg/errors"

	"imageratio/validations/validators"
)

// Execute is used to read the file from r and run the pipeline against it.
func (p *Pipeline) Execute(r io.Reader, f validators.File) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return pkgerrors.Wrap(err, "read file")
	}
	f.Data = b
	return p.Run(&f)
}

// Run is used to run every rule against f, stopping at the first failure.
func (p *Pipeline) Run(f *validators.File) error {
	for _, step := range p.steps {
		if err := step.Validate(f); err != nil {
			return err
		}
	}
	return nil
}

// IsRuleError reports whether err is a rule violation and returns it.
func IsRuleError(err error) (*validators.RuleError, bool) {
	var re *validators.RuleError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsConfigError reports whether err comes from a malformed rule set.
func IsConfigError(err error) bool {
	var ce *validators.ConfigError
	return errors.As(err, &ce)
}
