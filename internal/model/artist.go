package model

// Artist represents the enriched attributes of a Spotify artist.
type Artist struct {
	// ID is the Spotify artist ID.
	ID string `msgpack:"id"`

	// Name is the artist name.
	Name string `msgpack:"name"`

	// ImageURL is the largest artist image, empty if none.
	ImageURL string `msgpack:"image_url"`

	// Genres are the provider's genre labels, most specific first.
	Genres []string `msgpack:"genres"`
}

// PrimaryGenre returns the first genre, or "" when the artist has none.
func (a Artist) PrimaryGenre() string {
	if len(a.Genres) == 0 {
		return ""
	}
	return a.Genres[0]
}
