package table

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plays = "\ufeffSpotify ID,Artist,Track,Date\n" +
	"t1,Band,Song,2024-01-01\n" +
	"t2,\"Other, Band\",Tune\n"

func TestRead(t *testing.T) {
	tbl, err := Read(strings.NewReader(plays))
	require.NoError(t, err)

	assert.Equal(t, []string{"Spotify ID", "Artist", "Track", "Date"}, tbl.Header())
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, "Other, Band", tbl.Get(1, "Artist"))
	assert.Equal(t, "", tbl.Get(1, "Date"), "short rows are padded")

	ids, err := tbl.Column("Spotify ID")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, ids)
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.Error(t, err)
}

func TestColumn_Missing(t *testing.T) {
	tbl := New("a")
	_, err := tbl.Column("b")
	assert.True(t, errors.Is(err, ErrColumnNotFound))
	assert.Equal(t, "", tbl.Get(0, "b"))
}

func TestSet_AddsColumn(t *testing.T) {
	tbl, err := Read(strings.NewReader(plays))
	require.NoError(t, err)

	tbl.Set(0, "duration_ms", "1000")

	assert.True(t, tbl.HasColumn("duration_ms"))
	assert.Equal(t, "1000", tbl.Get(0, "duration_ms"))
	assert.Equal(t, "", tbl.Get(1, "duration_ms"))

	tbl.EnsureColumns("duration_ms", "genre")
	assert.Equal(t, []string{"Spotify ID", "Artist", "Track", "Date", "duration_ms", "genre"}, tbl.Header())
}

func TestWriteFile_RoundTrip(t *testing.T) {
	tbl, err := Read(strings.NewReader(plays))
	require.NoError(t, err)
	tbl.Set(1, "genre", "shoegaze")

	path := filepath.Join(t.TempDir(), "out", "enriched.csv")
	require.NoError(t, tbl.WriteFile(path))

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, tbl.Header(), loaded.Header())
	assert.Equal(t, "shoegaze", loaded.Get(1, "genre"))
	assert.Equal(t, "Other, Band", loaded.Get(1, "Artist"))
}

func TestWrite(t *testing.T) {
	tbl := New("id", "name")
	tbl.AppendRow([]string{"1", "a", "extra"})

	var buf bytes.Buffer
	require.NoError(t, tbl.Write(&buf))
	assert.Equal(t, "id,name\n1,a\n", buf.String())
}

func TestDerivedPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"data/plays.csv", "data/plays-enriched.csv"},
		{"plays", "plays-enriched.csv"},
		{"a.b/plays.txt", "a.b/plays-enriched.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DerivedPath(tt.in, "-enriched"), tt.in)
	}
}
