package ratio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Parse reads a Spec from the rule grammar: checks separated by "|", where a
// check is "W:H", a decimal, or "from~to". Operands are not validated here;
// call Spec.Err for that.
func Parse(s string) (Spec, error) {
	var spec Spec
	for _, item := range strings.Split(s, "|") {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, &ConfigError{Msg: fmt.Sprintf("empty check in %q", s)}
		}
		if from, to, ok := strings.Cut(item, "~"); ok {
			spec = append(spec, Range{From: Bound(strings.TrimSpace(from)), To: Bound(strings.TrimSpace(to))})
			continue
		}
		if w, h, ok := strings.Cut(item, ":"); ok {
			spec = append(spec, Exact{Value: parseFraction(item, w, h)})
			continue
		}
		spec = append(spec, Exact{Value: Bound(item)})
	}
	return spec, nil
}

func parseFraction(item, w, h string) Bound {
	dw, err := decimal.NewFromString(strings.TrimSpace(w))
	if err != nil {
		return Bound(item)
	}
	dh, err := decimal.NewFromString(strings.TrimSpace(h))
	if err != nil || dh.IsZero() {
		return Bound(item)
	}
	return Bound(dw.Div(dh).String())
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Spec {
	spec, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return spec
}

// UnmarshalJSON accepts a number or a string. Anything else is kept verbatim
// and reported by Spec.Err.
func (b *Bound) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = Bound(s)
		return nil
	}
	if string(data) == "null" {
		*b = ""
		return nil
	}
	*b = Bound(data)
	return nil
}

func (b Bound) MarshalJSON() ([]byte, error) {
	if d, err := b.decimal(); err == nil {
		return []byte(d.String()), nil
	}
	return json.Marshal(string(b))
}

type rangeObject struct {
	From Bound `json:"from" yaml:"from"`
	To   Bound `json:"to" yaml:"to"`
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(rangeObject{From: r.From, To: r.To})
}

func (e Exact) MarshalJSON() ([]byte, error) {
	return e.Value.MarshalJSON()
}

// UnmarshalJSON accepts a number, a rule grammar string, a {"from", "to"}
// object, or an array of numbers, strings and range objects.
func (s *Spec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &ConfigError{Msg: "empty ratios"}
	}
	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		spec := make(Spec, 0, len(items))
		for _, item := range items {
			c, err := decodeJSONCheck(item)
			if err != nil {
				return err
			}
			spec = append(spec, c)
		}
		*s = spec
		return nil
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		spec, err := Parse(str)
		if err != nil {
			return err
		}
		*s = spec
		return nil
	default:
		c, err := decodeJSONCheck(data)
		if err != nil {
			return err
		}
		*s = Spec{c}
		return nil
	}
}

func decodeJSONCheck(data json.RawMessage) (Check, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var r rangeObject
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return Range{From: r.From, To: r.To}, nil
	}
	var b Bound
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return Exact{Value: b}, nil
}

// UnmarshalYAML accepts the same shapes as UnmarshalJSON.
func (s *Spec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		spec, err := Parse(value.Value)
		if err != nil {
			return err
		}
		*s = spec
	case yaml.MappingNode:
		c, err := decodeYAMLCheck(value)
		if err != nil {
			return err
		}
		*s = Spec{c}
	case yaml.SequenceNode:
		spec := make(Spec, 0, len(value.Content))
		for _, item := range value.Content {
			c, err := decodeYAMLCheck(item)
			if err != nil {
				return err
			}
			spec = append(spec, c)
		}
		*s = spec
	default:
		return &ConfigError{Msg: fmt.Sprintf("unexpected ratios at line %d", value.Line)}
	}
	return nil
}

func decodeYAMLCheck(node *yaml.Node) (Check, error) {
	switch node.Kind {
	case yaml.MappingNode:
		var r rangeObject
		if err := node.Decode(&r); err != nil {
			return nil, err
		}
		return Range{From: r.From, To: r.To}, nil
	case yaml.ScalarNode:
		return Exact{Value: Bound(node.Value)}, nil
	default:
		return nil, &ConfigError{Msg: fmt.Sprintf("unexpected ratio at line %d", node.Line)}
	}
}

// UnmarshalYAML keeps the scalar text of the operand.
func (b *Bound) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return &ConfigError{Msg: fmt.Sprintf("ratio operand at line %d is not a scalar", value.Line)}
	}
	*b = Bound(value.Value)
	return nil
}
