package messages

import (
	"strings"

	"imageratio/ratio"
)

const (
	// DefaultNotImage is used when the file is not an image.
	DefaultNotImage = `The file "{file}" is not an image.`

	// DefaultWrongRatio is used when the image has a bad aspect ratio.
	DefaultWrongRatio = `Image "{file}" has an incorrect aspect ratio {ratio}.`
)

// Messages holds the templates outcomes are rendered with. The tokens
// {attribute}, {file} and {ratio} are substituted; unknown tokens are kept.
type Messages struct {
	NotImage   string `json:"not_image,omitempty" yaml:"not_image,omitempty"`
	WrongRatio string `json:"wrong_ratio,omitempty" yaml:"wrong_ratio,omitempty"`
}

// Default returns the built-in templates.
func Default() Messages {
	return Messages{
		NotImage:   DefaultNotImage,
		WrongRatio: DefaultWrongRatio,
	}
}

// Merge returns m with every non-empty template of o applied on top.
func (m Messages) Merge(o Messages) Messages {
	if o.NotImage != "" {
		m.NotImage = o.NotImage
	}
	if o.WrongRatio != "" {
		m.WrongRatio = o.WrongRatio
	}
	return m
}

// Template returns the template for key, falling back to the default.
func (m Messages) Template(key ratio.Template) string {
	m = Default().Merge(m)
	switch key {
	case ratio.NotImageTemplate:
		return m.NotImage
	case ratio.WrongRatioTemplate:
		return m.WrongRatio
	default:
		return ""
	}
}

// Render returns the message for o. A valid outcome renders as "". A
// misconfigured outcome is not a rule violation and returns its error.
func (m Messages) Render(o ratio.Outcome, attribute, file string) (string, error) {
	if o.Status == ratio.Misconfigured {
		return "", o.Err
	}
	key, params := o.Template()
	if key == "" {
		return "", nil
	}
	params["attribute"] = attribute
	params["file"] = file
	return Format(m.Template(key), params), nil
}

// Format replaces {name} tokens in tmpl with params[name].
func Format(tmpl string, params map[string]string) string {
	var out strings.Builder
	rest := tmpl
	for {
		start := strings.IndexByte(rest, '{')
		if start == -1 {
			out.WriteString(rest)
			return out.String()
		}
		end := strings.IndexByte(rest[start:], '}')
		if end == -1 {
			out.WriteString(rest)
			return out.String()
		}
		end += start

		out.WriteString(rest[:start])
		v, ok := params[rest[start+1:end]]
		if !ok {
			out.WriteByte('{')
			rest = rest[start+1:]
			continue
		}
		out.WriteString(v)
		rest = rest[end+1:]
	}
}
