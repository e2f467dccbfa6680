package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imageratio/ratio"
)

func TestFormat(t *testing.T) {
	params := map[string]string{"file": "cat.png", "ratio": "1.8"}
	tests := []struct {
		tmpl string
		want string
	}{
		{"", ""},
		{"no tokens", "no tokens"},
		{`"{file}" is {ratio}`, `"cat.png" is 1.8`},
		{"{unknown} stays", "{unknown} stays"},
		{"unclosed {file", "unclosed {file"},
		{"{{file}}", "{cat.png}"},
	}
	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.tmpl, params))
		})
	}
}

func TestRender(t *testing.T) {
	m := Messages{}

	msg, err := m.Render(ratio.Validate(1600, 900, ratio.Spec{ratio.Exact{Value: "1.5"}}), "avatar", "cat.png")
	require.NoError(t, err)
	assert.Equal(t, `Image "cat.png" has an incorrect aspect ratio 1.8.`, msg)

	msg, err = m.Render(ratio.NotImage(), "avatar", "cat.txt")
	require.NoError(t, err)
	assert.Equal(t, `The file "cat.txt" is not an image.`, msg)

	msg, err = m.Render(ratio.Validate(100, 100, ratio.Spec{ratio.Exact{Value: "1"}}), "avatar", "cat.png")
	require.NoError(t, err)
	assert.Empty(t, msg)
}

func TestRender_custom(t *testing.T) {
	m := Messages{WrongRatio: "{attribute}: {file} is {ratio}, want 1:1"}

	msg, err := m.Render(ratio.Validate(300, 100, ratio.Spec{ratio.Exact{Value: "1"}}), "avatar", "cat.png")
	require.NoError(t, err)
	assert.Equal(t, "avatar: cat.png is 3, want 1:1", msg)

	msg, err = m.Render(ratio.NotImage(), "avatar", "cat.png")
	require.NoError(t, err)
	assert.Equal(t, `The file "cat.png" is not an image.`, msg)
}

func TestRender_configError(t *testing.T) {
	o := ratio.Validate(100, 100, ratio.Spec{ratio.Range{From: "abc", To: "2.0"}})
	msg, err := Default().Render(o, "avatar", "cat.png")
	assert.Empty(t, msg)

	var ce *ratio.ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestMerge(t *testing.T) {
	m := Default().Merge(Messages{NotImage: "nope"})
	assert.Equal(t, "nope", m.NotImage)
	assert.Equal(t, DefaultWrongRatio, m.WrongRatio)
}
