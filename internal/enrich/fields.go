package enrich

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// FieldSet selects which attributes a run adds.
type FieldSet uint8

const (
	FieldDuration FieldSet = 1 << iota
	FieldCover
	FieldArtistImage
	FieldGenres

	AllFields = FieldDuration | FieldCover | FieldArtistImage | FieldGenres
)

var fieldNames = map[string]FieldSet{
	"duration":     FieldDuration,
	"cover":        FieldCover,
	"artist_image": FieldArtistImage,
	"genres":       FieldGenres,
	"all":          AllFields,
}

// ParseFields parses a comma separated list such as "duration,genres".
// An empty string selects every field.
func ParseFields(s string) (FieldSet, error) {
	if strings.TrimSpace(s) == "" {
		return AllFields, nil
	}
	var set FieldSet
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		f, ok := fieldNames[name]
		if !ok {
			return 0, errors.Newf("unknown field %q", name)
		}
		set |= f
	}
	return set, nil
}

// Has reports whether every field in f is selected.
func (s FieldSet) Has(f FieldSet) bool {
	return s&f == f && f != 0
}

func (s FieldSet) String() string {
	var names []string
	for _, name := range []string{"duration", "cover", "artist_image", "genres"} {
		if s.Has(fieldNames[name]) {
			names = append(names, name)
		}
	}
	return strings.Join(names, ",")
}

func (s FieldSet) needsArtists() bool {
	return s&(FieldArtistImage|FieldGenres) != 0
}

// needsTracks reports whether the track endpoint must be called. Artist
// fields need it too when artist IDs have to be derived from tracks.
func (s FieldSet) needsTracks(haveArtistIDs bool) bool {
	if s&(FieldDuration|FieldCover) != 0 {
		return true
	}
	return s.needsArtists() && !haveArtistIDs
}
