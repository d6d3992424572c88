package dto

import (
	"github.com/husaker/spotify-data-viz/internal/model"
)

// TracksResponse is the body of GET /tracks. Unknown IDs come back as null.
type TracksResponse struct {
	Tracks []*JSONTrack `json:"tracks"`
}

// JSONTrack represents a track object from the Web API.
type JSONTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	DurationMs *int64          `json:"duration_ms"`
	Album      *JSONAlbum      `json:"album"`
	Artists    []JSONArtistRef `json:"artists"`
}

// JSONAlbum is the simplified album embedded in a track.
type JSONAlbum struct {
	Name   string      `json:"name"`
	Images []JSONImage `json:"images"`
}

// JSONArtistRef is the simplified artist embedded in a track.
type JSONArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ToTrack converts JSONTrack to a model.Track. It reports false when the
// object lacks an ID or a duration.
func (jt *JSONTrack) ToTrack() (model.Track, bool) {
	if jt == nil || jt.ID == "" || jt.DurationMs == nil {
		return model.Track{}, false
	}

	track := model.Track{
		ID:         jt.ID,
		Name:       jt.Name,
		DurationMs: *jt.DurationMs,
	}
	if jt.Album != nil {
		track.CoverURL = LargestImage(jt.Album.Images)
	}
	for _, a := range jt.Artists {
		if a.ID == "" {
			continue
		}
		track.ArtistIDs = append(track.ArtistIDs, a.ID)
		track.ArtistNames = append(track.ArtistNames, a.Name)
	}
	return track, true
}
