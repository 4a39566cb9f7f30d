package pattern

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		want       Rule
		wantReason string
	}{
		{
			name: "basic rule",
			line: `3;"GIF89a";"GIF image"`,
			want: rule(3, "GIF89a", "GIF image"),
		},
		{
			name: "negative priority and spaces",
			line: ` -2 ; "PK";"Zip archive" `,
			want: rule(-2, "PK", "Zip archive"),
		},
		{
			name: "label containing semicolons",
			line: `1;"%PDF-";"PDF; portable document"`,
			want: rule(1, "%PDF-", "PDF; portable document"),
		},
		{
			name: "pattern containing quotes",
			line: `1;"say "hi"";"Greeting"`,
			want: rule(1, `say "hi"`, "Greeting"),
		},
		{
			name: "empty pattern",
			line: `1;"";"Anything"`,
			want: rule(1, "", "Anything"),
		},
		{
			name: "backslashes are literal",
			line: `1;"\x7fELF";"ELF"`,
			want: rule(1, `\x7fELF`, "ELF"),
		},
		{name: "no separator", line: `garbage`, wantReason: "missing ';' after priority"},
		{name: "bad priority", line: `x;"a";"b"`, wantReason: "priority is not an integer"},
		{name: "unquoted pattern", line: `1;a;"b"`, wantReason: "pattern is not quoted"},
		{name: "missing label", line: `1;"GIF89a"`, wantReason: "missing quoted label"},
		{name: "unquoted label", line: `1;"GIF89a";"GIF image`, wantReason: "label is not quoted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRule(tt.line)
			if tt.wantReason != "" {
				require.Error(t, err)
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, tt.wantReason, pe.Reason)
				assert.Equal(t, tt.line, pe.Text)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	src := "1;\"%PDF-\";\"PDF document\"\r\n" +
		"\n" +
		"2;\"PK\";\"Zip archive\"\n" +
		"3;\"GIF89a\";\"GIF image\"\n"

	c, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	declared := c.Declared()
	assert.Equal(t, 1, declared[0].Line)
	assert.Equal(t, 3, declared[1].Line)
	assert.Equal(t, 4, declared[2].Line)
	assert.Equal(t, "PDF document", declared[0].Label, "carriage return is trimmed")

	assert.Equal(t, "GIF image", c.Evaluate([]byte("GIF89a...")))
}

func TestParseIsAtomic(t *testing.T) {
	src := `1;"%PDF-";"PDF document"
2;"PK";"Zip archive"
3;GIF89a;GIF image
`
	c, err := Parse(strings.NewReader(src))
	assert.Nil(t, c)
	require.Error(t, err)
	assert.True(t, IsParseError(err))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParseEmptySource(t *testing.T) {
	c, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "patterns.db")
		require.NoError(t, os.WriteFile(path, []byte(`3;"GIF89a";"GIF image"`+"\n"), 0644))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "GIF image", c.Evaluate([]byte("GIF89a")))
	})

	t.Run("malformed file names the source", func(t *testing.T) {
		path := filepath.Join(dir, "bad.db")
		require.NoError(t, os.WriteFile(path, []byte("1;\"a\";\"b\"\nbroken\n"), 0644))

		_, err := Load(path)
		require.Error(t, err)
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, path, pe.Source)
		assert.Equal(t, 2, pe.Line)
		assert.True(t, strings.HasPrefix(err.Error(), path+":2:"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.db"))
		require.Error(t, err)
		assert.False(t, IsParseError(err))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestIsParseError(t *testing.T) {
	assert.False(t, IsParseError(nil))
	assert.False(t, IsParseError(os.ErrNotExist))
	assert.True(t, IsParseError(&ParseError{Line: 1}))
}
