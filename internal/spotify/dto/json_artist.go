package dto

import (
	"github.com/husaker/spotify-data-viz/internal/model"
)

// ArtistsResponse is the body of GET /artists. Unknown IDs come back as null.
type ArtistsResponse struct {
	Artists []*JSONArtist `json:"artists"`
}

// JSONArtist represents a full artist object from the Web API.
type JSONArtist struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Genres []string    `json:"genres"`
	Images []JSONImage `json:"images"`
}

// ToArtist converts JSONArtist to a model.Artist. It reports false when
// the object lacks an ID.
func (ja *JSONArtist) ToArtist() (model.Artist, bool) {
	if ja == nil || ja.ID == "" {
		return model.Artist{}, false
	}
	return model.Artist{
		ID:       ja.ID,
		Name:     ja.Name,
		ImageURL: LargestImage(ja.Images),
		Genres:   ja.Genres,
	}, true
}
