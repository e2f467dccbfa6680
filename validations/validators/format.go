package validators

import (
	"bytes"
	"image"
)

// formatRule checks the image header names the expected format.
type formatRule struct {
	rule   string
	format string
}

func (r *formatRule) Validate(f *File) error {
	_, format, err := image.DecodeConfig(bytes.NewReader(f.Data))
	if err != nil || format != r.format {
		return ruleError(f, r.rule, "not_"+r.format, `The file "{file}" is not a {format}.`, map[string]string{
			"format": r.format,
		})
	}
	return nil
}
