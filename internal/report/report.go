package report

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/husaker/spotify-data-viz/internal/enrich"
	"github.com/husaker/spotify-data-viz/internal/table"
)

// Options selects the input columns and the size of the top lists.
type Options struct {
	IDColumn     string
	ArtistColumn string
	TrackColumn  string
	DateColumn   string
	Top          int

	// From and To restrict plays to a date range, inclusive. Zero values
	// leave that side open. Rows without a parseable date are kept only
	// when no range is set.
	From time.Time
	To   time.Time
}

// DefaultOptions matches the column names of the play history export.
func DefaultOptions() Options {
	return Options{
		IDColumn:     "Spotify ID",
		ArtistColumn: "Artist",
		TrackColumn:  "Track",
		DateColumn:   "Date",
		Top:          5,
	}
}

type ArtistStat struct {
	Name     string
	Plays    int
	Minutes  float64
	ImageURL string
}

type TrackStat struct {
	ID         string
	Name       string
	Artist     string
	Plays      int
	Minutes    float64
	DurationMs int64
	CoverURL   string
}

type GenreStat struct {
	Genre string
	Plays int
}

// Report holds the computed statistics.
type Report struct {
	TotalPlays    int
	TotalMinutes  float64
	UniqueArtists int
	UniqueTracks  int
	ActiveDays    int
	FirstPlay     time.Time
	LastPlay      time.Time

	TopArtists []ArtistStat
	TopTracks  []TrackStat
	TopGenres  []GenreStat

	// Unenriched counts plays whose enrich_status is not "found".
	Unenriched int
}

// FavoriteGenre returns the most played genre, or "" if none is known.
func (r *Report) FavoriteGenre() string {
	if len(r.TopGenres) == 0 {
		return ""
	}
	return r.TopGenres[0].Genre
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006 at 03:04PM",
	"02/01/2006",
}

// ParseDate parses the date formats seen in play history exports.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type trackKey struct {
	name   string
	artist string
}

// Build computes a report over tbl.
func Build(tbl *table.Table, opts Options) (*Report, error) {
	for _, col := range []string{opts.ArtistColumn, opts.TrackColumn} {
		if !tbl.HasColumn(col) {
			return nil, errors.Wrapf(table.ErrColumnNotFound, "%q", col)
		}
	}
	if opts.Top <= 0 {
		opts.Top = 5
	}
	filtering := !opts.From.IsZero() || !opts.To.IsZero()

	r := &Report{}
	artists := make(map[string]*ArtistStat)
	tracks := make(map[trackKey]*TrackStat)
	genres := make(map[string]int)
	days := make(map[string]struct{})

	for row := 0; row < tbl.Len(); row++ {
		date, hasDate := ParseDate(tbl.Get(row, opts.DateColumn))
		if filtering {
			if !hasDate || (!opts.From.IsZero() && date.Before(opts.From)) || (!opts.To.IsZero() && date.After(opts.To)) {
				continue
			}
		}
		if hasDate {
			days[date.Format("2006-01-02")] = struct{}{}
			if r.FirstPlay.IsZero() || date.Before(r.FirstPlay) {
				r.FirstPlay = date
			}
			if date.After(r.LastPlay) {
				r.LastPlay = date
			}
		}

		artistName := tbl.Get(row, opts.ArtistColumn)
		trackName := tbl.Get(row, opts.TrackColumn)
		minutes, _ := strconv.ParseFloat(tbl.Get(row, enrich.ColumnDurationMin), 64)

		r.TotalPlays++
		r.TotalMinutes += minutes
		if status := tbl.Get(row, enrich.ColumnStatus); status != "" && status != "found" {
			r.Unenriched++
		}

		a, ok := artists[artistName]
		if !ok {
			a = &ArtistStat{Name: artistName}
			artists[artistName] = a
		}
		a.Plays++
		a.Minutes += minutes
		if a.ImageURL == "" {
			a.ImageURL = tbl.Get(row, enrich.ColumnArtistImage)
		}

		key := trackKey{name: trackName, artist: artistName}
		t, ok := tracks[key]
		if !ok {
			t = &TrackStat{Name: trackName, Artist: artistName}
			tracks[key] = t
		}
		t.Plays++
		t.Minutes += minutes
		if t.ID == "" {
			t.ID = strings.TrimSpace(tbl.Get(row, opts.IDColumn))
		}
		if t.CoverURL == "" {
			t.CoverURL = tbl.Get(row, enrich.ColumnTrackCover)
		}
		if t.DurationMs == 0 {
			t.DurationMs, _ = strconv.ParseInt(tbl.Get(row, enrich.ColumnDurationMs), 10, 64)
		}

		if g := strings.TrimSpace(tbl.Get(row, enrich.ColumnGenre)); g != "" {
			genres[g]++
		}
	}

	r.UniqueArtists = len(artists)
	r.UniqueTracks = len(tracks)
	r.ActiveDays = len(days)
	r.TopArtists = topArtists(artists, opts.Top)
	r.TopTracks = topTracks(tracks, opts.Top)
	r.TopGenres = topGenres(genres, opts.Top)
	return r, nil
}

func topArtists(m map[string]*ArtistStat, n int) []ArtistStat {
	out := make([]ArtistStat, 0, len(m))
	for _, a := range m {
		out = append(out, *a)
	}
	slices.SortFunc(out, func(a, b ArtistStat) int {
		return cmp.Or(cmp.Compare(b.Plays, a.Plays), strings.Compare(a.Name, b.Name))
	})
	return out[:min(n, len(out))]
}

// TopTracks returns the n most played tracks of tbl, for playlist export.
func TopTracks(tbl *table.Table, opts Options, n int) ([]TrackStat, error) {
	opts.Top = n
	r, err := Build(tbl, opts)
	if err != nil {
		return nil, err
	}
	return r.TopTracks, nil
}

func topTracks(m map[trackKey]*TrackStat, n int) []TrackStat {
	out := make([]TrackStat, 0, len(m))
	for _, t := range m {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b TrackStat) int {
		return cmp.Or(
			cmp.Compare(b.Plays, a.Plays),
			strings.Compare(a.Name, b.Name),
			strings.Compare(a.Artist, b.Artist),
		)
	})
	return out[:min(n, len(out))]
}

func topGenres(m map[string]int, n int) []GenreStat {
	out := make([]GenreStat, 0, len(m))
	for g, plays := range m {
		out = append(out, GenreStat{Genre: g, Plays: plays})
	}
	slices.SortFunc(out, func(a, b GenreStat) int {
		return cmp.Or(cmp.Compare(b.Plays, a.Plays), strings.Compare(a.Genre, b.Genre))
	})
	return out[:min(n, len(out))]
}
