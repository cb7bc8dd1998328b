package directory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T, names ...string) *Directory {
	t.Helper()
	d := New()
	d.AddAll(names)
	return d
}

func TestSuggest(t *testing.T) {
	d := newTestDirectory(t, "alice", "alicia", "alibaba", "Alina", "bob", "ali")

	tests := []struct {
		name   string
		prefix string
		limit  int
		want   []string
	}{
		{"too short", "al", 10, []string{}},
		{"case sensitive", "ali", 10, []string{"ali", "alibaba", "alice", "alicia"}},
		{"uppercase", "Ali", 10, []string{"Alina"}},
		{"limit", "ali", 2, []string{"ali", "alibaba"}},
		{"default limit", "ali", 0, []string{"ali", "alibaba", "alice", "alicia"}},
		{"no match", "zzz", 10, []string{}},
		{"full name", "alice", 10, []string{"alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Suggest(tt.prefix, tt.limit))
		})
	}
}

func TestSuggestCapsAtDefaultLimit(t *testing.T) {
	d := New()
	for i := 0; i < 25; i++ {
		d.Add("user" + string(rune('a'+i)))
	}
	got := d.Suggest("use", 0)
	assert.Len(t, got, DefaultLimit)
	assert.Equal(t, "usera", got[0])
}

func TestSetMinPrefix(t *testing.T) {
	d := newTestDirectory(t, "alice")
	d.SetMinPrefix(1)
	assert.Equal(t, []string{"alice"}, d.Suggest("a", 10))

	d.SetMinPrefix(0)
	assert.Equal(t, []string{"alice"}, d.Suggest("a", 10))
}

func TestAddIgnoresDuplicatesAndEmpty(t *testing.T) {
	d := New()
	assert.True(t, d.Add("alice"))
	assert.False(t, d.Add("alice"))
	assert.False(t, d.Add(""))
	assert.Equal(t, 1, d.Len())
}

func TestReadText(t *testing.T) {
	names, err := ReadText(strings.NewReader("# users\nalice\n\n  bob  \n#carol\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, names)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatText, DetectFormat("users.txt"))
	assert.Equal(t, FormatMsgpack, DetectFormat("users.MSGPACK"))
	assert.Equal(t, FormatMsgpack, DetectFormat("users.bin"))
	assert.Equal(t, FormatUnknown, DetectFormat("users.csv"))
}

func TestSaveAndLoadFile(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "users.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("alice\nalicia\nbob\n"), 0o644))

	d := New()
	added, err := d.LoadFile(textPath)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	binPath := filepath.Join(dir, "users.msgpack")
	require.NoError(t, d.Save(binPath))

	loaded := New()
	added, err = loaded.LoadFile(binPath)
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Equal(t, []string{"alice", "alicia", "bob"}, loaded.Names())
}

func TestLoadFileErrors(t *testing.T) {
	d := New()
	_, err := d.LoadFile("users.csv")
	assert.Error(t, err)

	_, err = d.LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
