package dto

import (
	"encoding/json"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestLargestImage(t *testing.T) {
	tests := []struct {
		name   string
		images []JSONImage
		want   string
	}{
		{"empty", nil, ""},
		{
			name: "picks largest",
			images: []JSONImage{
				{URL: "small", Width: intPtr(64), Height: intPtr(64)},
				{URL: "large", Width: intPtr(640), Height: intPtr(640)},
				{URL: "medium", Width: intPtr(300), Height: intPtr(300)},
			},
			want: "large",
		},
		{
			name: "missing dimensions rank lowest",
			images: []JSONImage{
				{URL: "unknown"},
				{URL: "tiny", Width: intPtr(1), Height: intPtr(1)},
			},
			want: "tiny",
		},
		{
			name:   "only unknown dimensions",
			images: []JSONImage{{URL: "first"}, {URL: "second"}},
			want:   "first",
		},
		{
			name:   "blank urls skipped",
			images: []JSONImage{{URL: "", Width: intPtr(900), Height: intPtr(900)}, {URL: "ok"}},
			want:   "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LargestImage(tt.images); got != tt.want {
				t.Errorf("LargestImage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTracksResponse_ToTrack(t *testing.T) {
	body := `{"tracks": [
		{"id": "t1", "name": "Song", "duration_ms": 213573,
		 "album": {"images": [{"url": "c64", "width": 64, "height": 64}, {"url": "c640", "width": 640, "height": 640}]},
		 "artists": [{"id": "a1", "name": "Band"}, {"id": "a2", "name": "Guest"}]},
		null,
		{"id": "t3", "name": "No duration"}
	]}`

	var resp TracksResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Tracks) != 3 {
		t.Fatalf("expected 3 items, got %d", len(resp.Tracks))
	}

	track, ok := resp.Tracks[0].ToTrack()
	if !ok {
		t.Fatal("first track should convert")
	}
	if track.DurationMs != 213573 || track.CoverURL != "c640" {
		t.Errorf("unexpected track: %+v", track)
	}
	if track.PrimaryArtistID() != "a1" || len(track.ArtistNames) != 2 {
		t.Errorf("unexpected artists: %v %v", track.ArtistIDs, track.ArtistNames)
	}

	if _, ok := resp.Tracks[1].ToTrack(); ok {
		t.Error("null track should not convert")
	}
	if _, ok := resp.Tracks[2].ToTrack(); ok {
		t.Error("track without duration should not convert")
	}
}

func TestArtistsResponse_ToArtist(t *testing.T) {
	body := `{"artists": [
		{"id": "a1", "name": "Band", "genres": ["shoegaze"], "images": [{"url": "i320", "width": 320, "height": 320}]},
		{"name": "no id"}
	]}`

	var resp ArtistsResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	artist, ok := resp.Artists[0].ToArtist()
	if !ok {
		t.Fatal("first artist should convert")
	}
	if artist.ImageURL != "i320" || artist.PrimaryGenre() != "shoegaze" {
		t.Errorf("unexpected artist: %+v", artist)
	}
	if _, ok := resp.Artists[1].ToArtist(); ok {
		t.Error("artist without id should not convert")
	}
}
