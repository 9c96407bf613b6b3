package option

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYesNoAsk(t *testing.T) {
	tests := []struct {
		in   string
		want YesNoAsk
	}{
		{"yes", Yes},
		{"always", Yes},
		{"true", Yes},
		{"no", No},
		{"never", No},
		{"false", No},
		{"ask", Ask},
		{" ASK ", Ask},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseYesNoAsk(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseYesNoAsk("maybe")
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestOption_TypedAccessors(t *testing.T) {
	n, err := New(int64(4)).Int()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = New(float64(3)).Int()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = New(1.5).Int()
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	s, err := New("sh").Str()
	require.NoError(t, err)
	assert.Equal(t, "sh", s)

	_, err = New(8).Str()
	var te *TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "string", te.Expected)
	assert.Equal(t, "int", te.Actual)

	p, err := New("never").YesNoAsk()
	require.NoError(t, err)
	assert.Equal(t, No, p)

	p, err = New(true).YesNoAsk()
	require.NoError(t, err)
	assert.Equal(t, Yes, p)

	_, err = Option{}.YesNoAsk()
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	b, err := New("true").Bool()
	require.NoError(t, err)
	assert.True(t, b)
}

func TestOption_ZeroValue(t *testing.T) {
	var o Option
	assert.False(t, o.IsSet())
	assert.Equal(t, "", o.String())

	o.Set("x")
	assert.True(t, o.IsSet())
	assert.Equal(t, "x", o.String())
}

func TestLoadFile_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.toml")
	data := `
shell = "/bin/bash"
autoreload = "always"
tabstop = 4

[lint]
cmd = "golangci-lint run"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	values, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/bin/bash", values["shell"])
	assert.Equal(t, "golangci-lint run", values["lint.cmd"])

	global := NewGlobalManager()
	global.Apply(values)
	n, _ := mustGet(t, global, "tabstop").Int()
	assert.Equal(t, 4, n)
	p, _ := mustGet(t, global, "autoreload").YesNoAsk()
	assert.Equal(t, Yes, p)
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	data := "shell: zsh\nautoreload: ask\ntabstop: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	values, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "zsh", values["shell"])
	assert.Equal(t, 2, values["tabstop"])
	assert.Equal(t, "ask", values["autoreload"])
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.NoError(t, err)
	assert.Nil(t, values)
}

func TestLoadFile_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("shell = "), 0o644))

	_, err := LoadFile(path)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, path, pe.Path)
}
