// Package playlist generates playlist files that point at tracks on the
// Spotify web player.
//
// # Playlist Generation
//
//	tracks, _ := report.TopTracks(tbl, report.DefaultOptions(), 25)
//	pl := playlist.FromTracks("Top 25", tracks)
//	content := playlist.NewCreator(playlist.FormatM3U, true).Create(pl)
//	os.WriteFile("top.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
package playlist
