package validators

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSize parses a string of N b/kb/mb/gb and returns the number of bytes.
func ParseSize(s string) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 0 {
		return 0, fmt.Errorf("empty input")
	}
	var (
		size  uint64
		unit  string
		found bool
	)
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c >= '0' && c <= '9' {
			var err error
			size, err = strconv.ParseUint(s[:i+1], 10, 32)
			if err != nil {
				return 0, fmt.Errorf("invalid size: %v", err)
			}
			unit = s[i+1:]
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	switch strings.TrimSpace(unit) {
	case "", "b":
		return int64(size), nil
	case "kb":
		return int64(size) << 10, nil
	case "mb":
		return int64(size) << 20, nil
	case "gb":
		return int64(size) << 30, nil
	default:
		return 0, fmt.Errorf("invalid size unit: %q", unit)
	}
}

type maxSizeValidator struct{}

var _ Validator = (*maxSizeValidator)(nil)

// Matches is used to check if a validator matches a string.
func (p *maxSizeValidator) Matches(s string) bool {
	return strings.HasPrefix(s, "max-size=")
}

// Compile parses the size limit of a max-size=N rule.
func (p *maxSizeValidator) Compile(s string) (Rule, error) {
	limit, err := ParseSize(strings.TrimPrefix(s, "max-size="))
	if err != nil {
		return nil, &ConfigError{Rule: s, Err: err}
	}
	return &maxSizeRule{rule: s, limit: limit}, nil
}

type maxSizeRule struct {
	rule  string
	limit int64
}

func (r *maxSizeRule) Validate(f *File) error {
	if int64(len(f.Data)) > r.limit {
		return ruleError(f, r.rule, "too_big", `The file "{file}" is too big. Its size cannot exceed {limit} bytes.`, map[string]string{
			"limit": strconv.FormatInt(r.limit, 10),
		})
	}
	return nil
}

func init() {
	Validators = append(Validators, &maxSizeValidator{})
}
