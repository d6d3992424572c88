package playlist

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/husaker/spotify-data-viz/internal/model"
	"github.com/husaker/spotify-data-viz/internal/report"
)

// Format represents supported playlist file formats.
type Format int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for duration/title info.
	FormatM3U Format = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS

	// FormatWPL creates .wpl files (Windows Media Player).
	FormatWPL
)

// ParseFormat maps a name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "m3u", "m3u8", "":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	case "wpl":
		return FormatWPL, nil
	default:
		return 0, errors.Newf("unknown playlist format %q", s)
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	default:
		return ".m3u"
	}
}

// Entry is one playlist item.
type Entry struct {
	Location   string
	Title      string
	Artist     string
	DurationMs int64
}

// Playlist is a titled list of entries.
type Playlist struct {
	Title   string
	Entries []Entry
}

// FromTracks builds a playlist from report tracks. Tracks without an ID
// cannot be linked and are skipped.
func FromTracks(title string, tracks []report.TrackStat) *Playlist {
	pl := &Playlist{Title: title}
	for _, t := range tracks {
		if t.ID == "" {
			continue
		}
		pl.Entries = append(pl.Entries, Entry{
			Location:   model.TrackURL(t.ID),
			Title:      t.Name,
			Artist:     t.Artist,
			DurationMs: t.DurationMs,
		})
	}
	return pl
}

// Creator generates playlist content in one format.
//
// Example:
//
//	creator := NewCreator(FormatM3U, true)
//	content := creator.Create(pl)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:230,Slowdive - Alison
//	// https://open.spotify.com/track/...
type Creator struct {
	format   Format
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewCreator creates a new Creator. extended only affects M3U.
func NewCreator(format Format, extended bool) *Creator {
	return &Creator{
		format:   format,
		extended: extended,
	}
}

// Create generates playlist content.
func (c *Creator) Create(pl *Playlist) string {
	switch c.format {
	case FormatPLS:
		return c.createPLS(pl)
	case FormatWPL:
		return c.createWPL(pl)
	default:
		return c.createM3U(pl)
	}
}

func (e Entry) label() string {
	if e.Artist == "" {
		return e.Title
	}
	return e.Artist + " - " + e.Title
}

// seconds returns the duration for EXTINF and PLS, -1 when unknown.
func (e Entry) seconds() int64 {
	if e.DurationMs <= 0 {
		return -1
	}
	return e.DurationMs / 1000
}

// createM3U generates an M3U playlist.
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#PLAYLIST:Top 25
//	#EXTINF:180,Artist - Title
//	https://open.spotify.com/track/...
func (c *Creator) createM3U(pl *Playlist) string {
	var sb strings.Builder

	if c.extended {
		sb.WriteString("#EXTM3U\n")
		if pl.Title != "" {
			fmt.Fprintf(&sb, "#PLAYLIST:%s\n", pl.Title)
		}
	}

	for _, e := range pl.Entries {
		if c.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s\n", e.seconds(), e.label())
		}
		sb.WriteString(e.Location + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
//	[playlist]
//	File1=https://open.spotify.com/track/...
//	Title1=Artist - Title
//	Length1=180
//	NumberOfEntries=1
//	Version=2
func (c *Creator) createPLS(pl *Playlist) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, e := range pl.Entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, e.Location)
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, e.label())
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, e.seconds())
	}

	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(pl.Entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createWPL generates a Windows Media Player playlist.
func (c *Creator) createWPL(pl *Playlist) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(pl.Title))
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(pl.Entries))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range pl.Entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(e.Location))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// escapeXML escapes & < > " and '.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
