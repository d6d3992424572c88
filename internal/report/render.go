package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	spotifyGreen = lipgloss.Color("#1DB954")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(spotifyGreen).
			MarginBottom(1)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(spotifyGreen)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(26)

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	rankStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1ed760")).
			Width(4)
)

// Render writes the report as styled text.
func (r *Report) Render(w io.Writer) error {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Spotify Listening Report"))
	sb.WriteString("\n")

	stat := func(label string, value interface{}) {
		sb.WriteString(labelStyle.Render(label))
		sb.WriteString(valueStyle.Render(fmt.Sprint(value)))
		sb.WriteString("\n")
	}
	stat("Total tracks played", r.TotalPlays)
	stat("Total minutes listened", int(r.TotalMinutes))
	stat("Unique artists", r.UniqueArtists)
	stat("Unique tracks", r.UniqueTracks)
	stat("Active days", r.ActiveDays)
	if !r.FirstPlay.IsZero() {
		stat("Period", r.FirstPlay.Format("2006-01-02")+" to "+r.LastPlay.Format("2006-01-02"))
	}
	favorite := r.FavoriteGenre()
	if favorite == "" {
		favorite = "N/A"
	}
	stat("Favorite genre", favorite)
	if r.Unenriched > 0 {
		stat("Plays without metadata", r.Unenriched)
	}

	sb.WriteString("\n" + headingStyle.Render("Top Artists") + "\n")
	for i, a := range r.TopArtists {
		fmt.Fprintf(&sb, "%s%s  %d plays, %.1f min\n", rankStyle.Render(fmt.Sprintf("%d.", i+1)), a.Name, a.Plays, a.Minutes)
	}

	sb.WriteString("\n" + headingStyle.Render("Top Tracks") + "\n")
	for i, t := range r.TopTracks {
		fmt.Fprintf(&sb, "%s%s - %s  %d plays, %.1f min\n", rankStyle.Render(fmt.Sprintf("%d.", i+1)), t.Artist, t.Name, t.Plays, t.Minutes)
	}

	if len(r.TopGenres) > 0 {
		sb.WriteString("\n" + headingStyle.Render("Top Genres") + "\n")
		for i, g := range r.TopGenres {
			fmt.Fprintf(&sb, "%s%s  %d plays\n", rankStyle.Render(fmt.Sprintf("%d.", i+1)), g.Genre, g.Plays)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
