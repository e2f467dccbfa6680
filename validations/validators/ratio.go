package validators

import (
	"bytes"
	"image"
	"regexp"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"imageratio/ratio"
)

type ratioValidator struct{}

var _ Validator = (*ratioValidator)(nil)

var aspectRatioRegex = regexp.MustCompile(`^(\d+):(\d+)$`)

// Matches is used to check if a validator matches a string. Both
// "ratio=<spec>" and a bare "W:H" are accepted.
func (p *ratioValidator) Matches(s string) bool {
	return strings.HasPrefix(s, "ratio=") || aspectRatioRegex.MatchString(s)
}

// Compile parses the ratio spec and rejects non-numeric operands up front.
func (p *ratioValidator) Compile(s string) (Rule, error) {
	spec, err := ratio.Parse(strings.TrimPrefix(s, "ratio="))
	if err == nil {
		err = spec.Err()
	}
	if err != nil {
		return nil, &ConfigError{Rule: s, Err: err}
	}
	return &ratioRule{rule: s, spec: spec}, nil
}

// NewRatioRule returns the ratio rule for an already decoded spec.
func NewRatioRule(spec ratio.Spec) (Rule, error) {
	if err := spec.Err(); err != nil {
		return nil, &ConfigError{Rule: "ratio=" + spec.String(), Err: err}
	}
	return &ratioRule{rule: "ratio=" + spec.String(), spec: spec}, nil
}

type ratioRule struct {
	rule string
	spec ratio.Spec
}

// Validate reads the image dimensions and checks its aspect ratio.
func (r *ratioRule) Validate(f *File) error {
	o, err := r.check(f)
	if err != nil {
		return err
	}
	if o.OK() {
		return nil
	}
	msg, err := f.Messages.Render(o, f.Attribute, f.Name)
	if err != nil {
		return &ConfigError{Rule: r.rule, Err: err}
	}
	e := &RuleError{
		Rule:    r.rule,
		Reason:  o.Reason.String(),
		Message: msg,
	}
	if o.Reason == ratio.WrongRatio {
		e.Ratio = o.Ratio.String()
	}
	return e
}

// MaxOrientPixels caps the images that are fully decoded to apply their EXIF
// orientation. Everything else is measured from its header alone.
var MaxOrientPixels = 24 << 20

func (r *ratioRule) check(f *File) (ratio.Outcome, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(f.Data))
	if err != nil {
		return ratio.NotImage(), nil
	}
	width, height := cfg.Width, cfg.Height

	// EXIF orientation is only read from JPEG streams.
	if f.AutoOrient && format == "jpeg" {
		if width*height > MaxOrientPixels {
			return ratio.Outcome{}, ruleError(f, r.rule, "too_many_pixels", tooManyPixelsTemplate,
				map[string]string{"limit": strconv.Itoa(MaxOrientPixels)})
		}
		img, err := imaging.Decode(bytes.NewReader(f.Data), imaging.AutoOrientation(true))
		if err != nil {
			return ratio.NotImage(), nil
		}
		b := img.Bounds()
		width, height = b.Dx(), b.Dy()
	}
	return ratio.Validate(uint(width), uint(height), r.spec), nil
}

const tooManyPixelsTemplate = `The image "{file}" has more than {limit} pixels and cannot be oriented.`

func init() {
	Validators = append(Validators, &ratioValidator{})
}
