package ratio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParse(t *testing.T) {
	spec, err := Parse("16:9 | 1.5~2.0 | 0.5")
	require.NoError(t, err)
	require.Len(t, spec, 3)
	require.NoError(t, spec.Err())

	assert.IsType(t, Exact{}, spec[0])
	assert.Equal(t, Range{From: "1.5", To: "2.0"}, spec[1])
	assert.Equal(t, Exact{Value: "0.5"}, spec[2])

	assert.True(t, Validate(1920, 1080, spec).OK())
	assert.True(t, Validate(100, 200, spec).OK())
	assert.False(t, Validate(100, 100, spec).OK())
}

func TestParse_errors(t *testing.T) {
	for _, s := range []string{"", "1.5|", "|16:9", "1.5||2"} {
		_, err := Parse(s)
		assert.Error(t, err, s)
	}
}

func TestParse_malformedOperands(t *testing.T) {
	for _, s := range []string{"16:0", "a:9", "wide", "1.5~", "x~2"} {
		spec, err := Parse(s)
		require.NoError(t, err, s)
		assert.Error(t, spec.Err(), s)
		assert.Equal(t, Misconfigured, Validate(10, 10, spec).Status, s)
	}
}

func TestSpec_String(t *testing.T) {
	spec := Spec{Exact{"1.5"}, Range{"1.2", "1.4"}}
	assert.Equal(t, "1.5|1.2~1.4", spec.String())

	again, err := Parse(spec.String())
	require.NoError(t, err)
	assert.Equal(t, spec, again)
}

func TestSpec_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Spec
	}{
		{"single number", `1.7778`, Spec{Exact{"1.7778"}}},
		{"rule string", `"16:9|1.2~1.5"`, Spec{Exact{Fraction(16, 9)}, Range{"1.2", "1.5"}}},
		{"single range", `{"from": 1.2, "to": 1.5}`, Spec{Range{"1.2", "1.5"}}},
		{"list", `[1.7778, "0.5", {"to": 1.5, "from": 1.2}]`, Spec{Exact{"1.7778"}, Exact{"0.5"}, Range{"1.2", "1.5"}}},
		{"non-numeric bound", `[{"from": "abc", "to": 2.0}]`, Spec{Range{"abc", "2.0"}}},
		{"missing bound", `[{"from": 1.2}]`, Spec{Range{From: "1.2"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Spec
			require.NoError(t, json.Unmarshal([]byte(tt.data), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpec_UnmarshalJSON_configError(t *testing.T) {
	var spec Spec
	require.NoError(t, json.Unmarshal([]byte(`[{"from": "abc", "to": 2.0}]`), &spec))

	got := Validate(1600, 900, spec)
	assert.Equal(t, Misconfigured, got.Status)
	assert.NotEqual(t, WrongRatio, got.Reason)
}

func TestSpec_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Spec{Exact{"1.5"}, Range{"1", "2"}, Exact{"wide"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, {"from": 1, "to": 2}, "wide"]`, string(b))
}

func TestSpec_UnmarshalYAML(t *testing.T) {
	var doc struct {
		Ratios Spec `yaml:"ratios"`
		Single Spec `yaml:"single"`
		Rule   Spec `yaml:"rule"`
	}
	data := `
ratios:
  - 1.7778
  - from: 1.2
    to: 1.5
single:
  from: 0.5
  to: 0.8
rule: "4:3|1:1"
`
	require.NoError(t, yaml.Unmarshal([]byte(data), &doc))

	assert.Equal(t, Spec{Exact{"1.7778"}, Range{"1.2", "1.5"}}, doc.Ratios)
	assert.Equal(t, Spec{Range{"0.5", "0.8"}}, doc.Single)
	assert.Equal(t, Spec{Exact{Fraction(4, 3)}, Exact{Fraction(1, 1)}}, doc.Rule)
}

func TestSpec_UnmarshalYAML_nested(t *testing.T) {
	var spec Spec
	err := yaml.Unmarshal([]byte("- [1, 2]\n"), &spec)
	assert.Error(t, err)
}
