package ratio

import (
	"errors"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_precision(t *testing.T) {
	tests := []struct {
		value string
		want  int32
	}{
		{"1.7778", 1},
		{"0.5", 1},
		{"2.0", 1},
		{"12.5", 2},
		{"100", 3},
		{"016.25", 2},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, precision(decimal.RequireFromString(tt.value)))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		width  uint
		height uint
		spec   Spec
		status Status
		reason Reason
		ratio  string
	}{
		{"square", 100, 100, Spec{Exact{"1.0"}}, Valid, 0, "1"},
		{"widescreen at integer precision", 1600, 900, Spec{Exact{"1.7778"}}, Valid, 0, "1.8"},
		{"widescreen mismatch", 1600, 900, Spec{Exact{"1.5"}}, Invalid, WrongRatio, "1.8"},
		{"two integer digits", 25, 2, Spec{Exact{"12.5"}}, Valid, 0, "12.5"},
		{"two integer digits mismatch", 1249, 100, Spec{Exact{"12.46"}}, Invalid, WrongRatio, "12.49"},
		{"half rounds away from zero", 5, 4, Spec{Exact{"1.3"}}, Valid, 0, "1.3"},
		{"half rounds away from zero mismatch", 5, 4, Spec{Exact{"1.2"}}, Invalid, WrongRatio, "1.3"},
		{"inside range", 1600, 900, Spec{Range{"1.5", "2.0"}}, Valid, 0, "1.8"},
		{"range is exclusive", 3, 2, Spec{Range{"1.5", "2.0"}}, Invalid, WrongRatio, "1.5"},
		{"range upper bound is exclusive", 2, 1, Spec{Range{"1.5", "2.0"}}, Invalid, WrongRatio, "2"},
		{"range uses coarser precision", 1249, 100, Spec{Range{"1.5", "12.5"}}, Valid, 0, "12.49"},
		{"zero width", 0, 100, Spec{Exact{"1"}}, Invalid, NotAnImage, "0"},
		{"zero height", 100, 0, Spec{Exact{"1"}}, Invalid, NotAnImage, "0"},
		{"zero height without spec", 100, 0, nil, Invalid, NotAnImage, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.width, tt.height, tt.spec)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.reason, got.Reason)
			assert.Equal(t, tt.ratio, got.Ratio.String())
			assert.NoError(t, got.Err)
		})
	}
}

func TestValidate_exactOwnRatio(t *testing.T) {
	dims := [][2]uint{{1, 1}, {1920, 1080}, {1280, 720}, {640, 480}, {7, 3}, {3, 7}, {1000, 1}, {1, 1000}, {4032, 3024}}
	for _, d := range dims {
		w, h := d[0], d[1]
		t.Run(strconv.Itoa(int(w))+"x"+strconv.Itoa(int(h)), func(t *testing.T) {
			assert.True(t, Validate(w, h, Spec{Exact{Float(float64(w) / float64(h))}}).OK())
			assert.True(t, Validate(w, h, Spec{Exact{Fraction(int64(w), int64(h))}}).OK())
		})
	}
}

func TestValidate_emptyRange(t *testing.T) {
	dims := [][2]uint{{1, 1}, {3, 2}, {16, 9}, {2, 1}, {1, 2}, {100, 1}}
	for _, r := range []Range{{"2.0", "1.5"}, {"1.5", "1.5"}, {"100", "0.01"}} {
		for _, d := range dims {
			got := Validate(d[0], d[1], Spec{r})
			assert.Equal(t, Invalid, got.Status, "%s at %dx%d", r, d[0], d[1])
			assert.Equal(t, WrongRatio, got.Reason)
		}
	}
}

func TestValidate_swappedRange(t *testing.T) {
	assert.True(t, Validate(1600, 900, Spec{Range{From: "1.5", To: "2.0"}}).OK())
	assert.False(t, Validate(1600, 900, Spec{Range{From: "2.0", To: "1.5"}}).OK())
}

func TestValidate_list(t *testing.T) {
	spec := Spec{Exact{"2.0"}, Exact{"0.5"}}

	assert.True(t, Validate(200, 100, spec).OK())
	assert.True(t, Validate(100, 200, spec).OK())

	got := Validate(190, 100, spec)
	assert.Equal(t, Invalid, got.Status)
	assert.Equal(t, WrongRatio, got.Reason)

	got = Validate(300, 100, spec)
	assert.Equal(t, WrongRatio, got.Reason)
	assert.Equal(t, "3", got.Ratio.String())
	assert.InDelta(t, 3.0, got.Actual, 1e-9)
}

func TestValidate_reportsLastRounding(t *testing.T) {
	got := Validate(1249, 100, Spec{Exact{"12.5"}, Exact{"1.5"}})
	assert.Equal(t, WrongRatio, got.Reason)
	assert.Equal(t, "12.5", got.Ratio.String())

	got = Validate(1249, 100, Spec{Exact{"1.5"}, Exact{"12.5"}})
	assert.Equal(t, "12.49", got.Ratio.String())
}

func TestValidate_configError(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"non-numeric from", Spec{Range{From: "abc", To: "2.0"}}},
		{"non-numeric to", Spec{Range{From: "1.0", To: "x"}}},
		{"missing to", Spec{Range{From: "1.0"}}},
		{"non-numeric exact", Spec{Exact{"16/9"}}},
		{"after a passing check", Spec{Exact{"1"}, Exact{"wide"}}},
		{"empty", Spec{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(100, 100, tt.spec)
			assert.Equal(t, Misconfigured, got.Status)
			assert.False(t, got.OK())

			var ce *ConfigError
			require.True(t, errors.As(got.Err, &ce))
			assert.Equal(t, got.Err, tt.spec.Err())

			key, params := got.Template()
			assert.Empty(t, key)
			assert.Nil(t, params)
		})
	}
}

func TestValidate_configErrorStopsEvaluation(t *testing.T) {
	got := Validate(100, 100, Spec{Range{From: "abc", To: "2.0"}, Exact{"1"}})
	assert.Equal(t, Misconfigured, got.Status)
	assert.EqualError(t, got.Err, `invalid ratio specification: "abc" is not a decimal number`)
}

func TestOutcome_Template(t *testing.T) {
	key, params := Validate(300, 100, Spec{Exact{"2"}}).Template()
	assert.Equal(t, WrongRatioTemplate, key)
	assert.Equal(t, map[string]string{"ratio": "3"}, params)

	key, params = NotImage().Template()
	assert.Equal(t, NotImageTemplate, key)
	assert.Empty(t, params)

	key, _ = Validate(100, 100, Spec{Exact{"1"}}).Template()
	assert.Empty(t, key)
}
