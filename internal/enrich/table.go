package enrich

import (
	"context"
	"strconv"
	"strings"

	"github.com/husaker/spotify-data-viz/internal/model"
	"github.com/husaker/spotify-data-viz/internal/table"
)

// Output columns written by EnrichTable.
const (
	ColumnDurationMs  = "duration_ms"
	ColumnDurationMin = "duration_min"
	ColumnTrackCover  = "track_cover_url"
	ColumnArtistID    = "artist_id"
	ColumnArtistImage = "artist_image_url"
	ColumnGenre       = "genre"
	ColumnGenres      = "genres"
	ColumnStatus      = "enrich_status"

	genreSeparator = "; "
)

// Enrichment holds the lookups of one Enrich call. A field is nil when
// the selected fields did not need that endpoint.
type Enrichment struct {
	Tracks  *Result[model.Track]
	Artists *Result[model.Artist]
}

// Summary adds up both lookups.
func (en *Enrichment) Summary() Summary {
	var s Summary
	if en.Tracks != nil {
		s.Add(en.Tracks.Summary)
	}
	if en.Artists != nil {
		s.Add(en.Artists.Summary)
	}
	return s
}

// Enrich runs the lookups fields needs for trackIDs. Artist IDs are taken
// from the primary artist of each found track.
func (e *Enricher) Enrich(ctx context.Context, trackIDs []string, fields FieldSet) (*Enrichment, error) {
	return e.enrich(ctx, trackIDs, nil, fields)
}

func (e *Enricher) enrich(ctx context.Context, trackIDs, artistIDs []string, fields FieldSet) (*Enrichment, error) {
	out := &Enrichment{}
	haveArtistIDs := artistIDs != nil

	if fields.needsTracks(haveArtistIDs) {
		tracks, err := e.Tracks(ctx, trackIDs)
		if err != nil {
			return nil, err
		}
		out.Tracks = tracks
	}

	if fields.needsArtists() {
		if !haveArtistIDs {
			artistIDs = primaryArtists(out.Tracks)
		}
		artists, err := e.Artists(ctx, artistIDs)
		if err != nil {
			return nil, err
		}
		out.Artists = artists
	}
	return out, nil
}

func primaryArtists(tracks *Result[model.Track]) []string {
	if tracks == nil {
		return nil
	}
	var ids []string
	for _, id := range tracks.IDs {
		if track, ok := tracks.Get(id); ok && track.PrimaryArtistID() != "" {
			ids = append(ids, track.PrimaryArtistID())
		}
	}
	return ids
}

// EnrichTable enriches every row of tbl in place. Track IDs come from the
// configured track ID column; artist IDs from the artist ID column when
// one is configured, otherwise from each track's primary artist. Rows
// whose lookups did not succeed keep blank output cells and record why in
// the enrich_status column.
func (e *Enricher) EnrichTable(ctx context.Context, tbl *table.Table, fields FieldSet) (*Enrichment, error) {
	trackIDs, err := tbl.Column(e.settings.TrackIDColumn)
	if err != nil {
		return nil, err
	}
	var artistIDs []string
	if col := e.settings.ArtistIDColumn; col != "" {
		if artistIDs, err = tbl.Column(col); err != nil {
			return nil, err
		}
	}

	en, err := e.enrich(ctx, trackIDs, artistIDs, fields)
	if err != nil {
		return nil, err
	}

	tbl.EnsureColumns(outputColumns(fields)...)
	for row := 0; row < tbl.Len(); row++ {
		trackID := strings.TrimSpace(trackIDs[row])
		var statuses []model.Status

		track, trackFound := en.Tracks.Get(trackID)
		if en.Tracks != nil && trackID != "" {
			statuses = append(statuses, en.Tracks.Status(trackID))
		}
		if trackFound && fields.Has(FieldDuration) {
			tbl.Set(row, ColumnDurationMs, strconv.FormatInt(track.DurationMs, 10))
			tbl.Set(row, ColumnDurationMin, strconv.FormatFloat(track.DurationMinutes(), 'f', 2, 64))
		}
		if trackFound && fields.Has(FieldCover) {
			tbl.Set(row, ColumnTrackCover, track.CoverURL)
		}

		if fields.needsArtists() {
			var artistID string
			if artistIDs != nil {
				artistID = strings.TrimSpace(artistIDs[row])
			} else if trackFound {
				artistID = track.PrimaryArtistID()
			}
			if artistID != "" {
				tbl.Set(row, ColumnArtistID, artistID)
				statuses = append(statuses, en.Artists.Status(artistID))
			}

			if artist, ok := en.Artists.Get(artistID); ok {
				if fields.Has(FieldArtistImage) {
					tbl.Set(row, ColumnArtistImage, artist.ImageURL)
				}
				if fields.Has(FieldGenres) {
					tbl.Set(row, ColumnGenre, artist.PrimaryGenre())
					tbl.Set(row, ColumnGenres, strings.Join(artist.Genres, genreSeparator))
				}
			}
		}

		tbl.Set(row, ColumnStatus, worst(statuses).String())
	}
	return en, nil
}

// SplitGenres reverses the genres column encoding.
func SplitGenres(cell string) []string {
	var out []string
	for _, g := range strings.Split(cell, strings.TrimSpace(genreSeparator)) {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func outputColumns(fields FieldSet) []string {
	var cols []string
	if fields.Has(FieldDuration) {
		cols = append(cols, ColumnDurationMs, ColumnDurationMin)
	}
	if fields.Has(FieldCover) {
		cols = append(cols, ColumnTrackCover)
	}
	if fields.needsArtists() {
		cols = append(cols, ColumnArtistID)
	}
	if fields.Has(FieldArtistImage) {
		cols = append(cols, ColumnArtistImage)
	}
	if fields.Has(FieldGenres) {
		cols = append(cols, ColumnGenre, ColumnGenres)
	}
	return append(cols, ColumnStatus)
}

// worst returns the least successful status; no statuses means missing and
// any unknown status wins.
func worst(statuses []model.Status) model.Status {
	if len(statuses) == 0 {
		return model.StatusMissing
	}
	w := model.StatusFound
	for _, s := range statuses {
		if s == 0 {
			return s
		}
		if s > w {
			w = s
		}
	}
	return w
}
