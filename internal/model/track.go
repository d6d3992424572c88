package model

import (
	"fmt"
	"math"
)

// Track represents the enriched attributes of a Spotify track.
type Track struct {
	// ID is the Spotify track ID.
	ID string `msgpack:"id"`

	// Name is the track title.
	Name string `msgpack:"name"`

	// DurationMs is the track length in milliseconds.
	DurationMs int64 `msgpack:"duration_ms"`

	// CoverURL is the largest album cover image, empty if none.
	CoverURL string `msgpack:"cover_url"`

	// ArtistIDs lists the credited artists, primary artist first.
	ArtistIDs []string `msgpack:"artist_ids"`

	// ArtistNames is parallel to ArtistIDs.
	ArtistNames []string `msgpack:"artist_names"`
}

// DurationMinutes returns the duration in minutes rounded to two decimals.
func (t Track) DurationMinutes() float64 {
	return math.Round(float64(t.DurationMs)/600) / 100
}

// DurationSeconds returns the duration in whole seconds.
func (t Track) DurationSeconds() int {
	return int(t.DurationMs / 1000)
}

// PrimaryArtistID returns the first credited artist, or "" if none.
func (t Track) PrimaryArtistID() string {
	if len(t.ArtistIDs) == 0 {
		return ""
	}
	return t.ArtistIDs[0]
}

// URL returns the public Spotify web URL for the track.
func (t Track) URL() string {
	return TrackURL(t.ID)
}

// TrackURL returns the public Spotify web URL for a track ID.
func TrackURL(id string) string {
	return fmt.Sprintf("https://open.spotify.com/track/%s", id)
}
