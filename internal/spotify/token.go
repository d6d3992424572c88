package spotify

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNoToken is returned when no access token is configured.
var ErrNoToken = errors.New("no Spotify access token configured")

// TokenSource supplies bearer tokens for API requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	token := strings.TrimSpace(string(t))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
