package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"address", "geocode"}, SplitCSV(" address, ,geocode,"))
	assert.Empty(t, SplitCSV(""))
}

func TestParseKV(t *testing.T) {
	got := ParseKV([]string{"Region=ca", "types=address,geocode", "junk", "=x", "lang="})
	assert.Equal(t, map[string]string{
		"region": "ca",
		"types":  "address,geocode",
		"lang":   "",
	}, got)
}

func TestExtractHelpers(t *testing.T) {
	data := map[string]any{
		"n":     int64(3),
		"b":     true,
		"s":     "x",
		"list":  []any{"a", "b"},
		"mixed": []any{"a", int64(1)},
	}

	n, ok := ExtractInt64(data, "n")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = ExtractInt64(data, "s")
	assert.False(t, ok)

	b, ok := ExtractBool(data, "b")
	assert.True(t, ok)
	assert.True(t, b)

	s, ok := ExtractString(data, "s")
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	list, ok := ExtractStrings(data, "list")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, list)

	_, ok = ExtractStrings(data, "mixed")
	assert.False(t, ok)
}

func TestSaveTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.toml")

	type section struct {
		Name string `toml:"name"`
	}
	require.NoError(t, SaveTOMLFile(struct {
		S section `toml:"s"`
	}{section{"edm"}}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `name = "edm"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCheckDirStatus(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cfg")
	res := CheckDirStatus(dir)
	assert.NoError(t, res.Error)
	assert.True(t, res.Exists)
	assert.True(t, res.Writable)
	assert.True(t, FileExists(dir))
}
