package validators

import (
	"encoding/xml"
)

type svgValidator struct{}

var _ Validator = (*svgValidator)(nil)

// Matches is used to check if a validator matches a string.
func (p *svgValidator) Matches(s string) bool {
	return s == "svg"
}

// Compile returns a rule checking the file is a svg document.
func (p *svgValidator) Compile(s string) (Rule, error) {
	return &svgRule{rule: s}, nil
}

type svgRule struct {
	rule string
}

// Validate is used to validate the root element of the document is <svg>.
func (r *svgRule) Validate(f *File) error {
	var doc struct {
		XMLName xml.Name `xml:"svg"`
	}
	if err := xml.Unmarshal(f.Data, &doc); err != nil {
		return ruleError(f, r.rule, "not_svg", `The file "{file}" is not a {format}.`, map[string]string{
			"format": "svg",
		})
	}
	return nil
}

func init() {
	Validators = append(Validators, &svgValidator{})
}
