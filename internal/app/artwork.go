package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	ioutils "github.com/husaker/spotify-data-viz/internal/ioutils"
	"github.com/husaker/spotify-data-viz/internal/report"
)

// Artwork is one image to save.
type Artwork struct {
	Name string
	URL  string
}

// ArtworkFromReport lists the artist images and track covers of the top
// entries, skipping those without a URL.
func ArtworkFromReport(r *report.Report) []Artwork {
	var items []Artwork
	for i, a := range r.TopArtists {
		if a.ImageURL != "" {
			items = append(items, Artwork{Name: fmt.Sprintf("artist-%02d-%s", i+1, a.Name), URL: a.ImageURL})
		}
	}
	for i, t := range r.TopTracks {
		if t.CoverURL != "" {
			items = append(items, Artwork{Name: fmt.Sprintf("track-%02d-%s - %s", i+1, t.Artist, t.Name), URL: t.CoverURL})
		}
	}
	return items
}

// SaveArtwork downloads each image into dir. With size > 0 images are
// scaled to fit size x size and stored as JPEG; otherwise the original
// bytes are written under the extension of their actual format. A failed
// image is logged and skipped. It returns the number of files written.
func (a *App) SaveArtwork(ctx context.Context, items []Artwork, dir string, size int) (int, error) {
	if err := ioutils.EnsureDir(dir); err != nil {
		return 0, errors.Wrapf(err, "creating %s", dir)
	}

	images := ioutils.NewImageService()
	log := a.Logger.WithPrefix("[artwork]")

	saved := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		base := filepath.Join(dir, ioutils.SanitizeFileName(item.Name))

		if size <= 0 {
			dest, err := a.saveOriginal(ctx, item.URL, base)
			if err != nil {
				log.Warn("downloading %s: %v", item.URL, err)
				continue
			}
			log.Debug("saved %s", dest)
			saved++
			continue
		}

		dest := base + ".jpg"
		data, err := a.HTTP.DownloadBytes(ctx, item.URL)
		if err != nil {
			log.Warn("downloading %s: %v", item.URL, err)
			continue
		}
		thumb, err := images.ResizeImage(ctx, data, size, size)
		if err != nil {
			log.Warn("resizing %s: %v", item.URL, err)
			continue
		}
		if err := ioutils.WriteFileAtomic(dest, thumb); err != nil {
			return saved, errors.Wrapf(err, "writing %s", dest)
		}
		log.Debug("saved %s", dest)
		saved++
	}
	return saved, nil
}

// saveOriginal downloads url next to base and names it after the detected
// image format.
func (a *App) saveOriginal(ctx context.Context, url, base string) (string, error) {
	partial := base + ".download"
	if err := a.HTTP.DownloadFile(ctx, url, partial, nil); err != nil {
		return "", err
	}

	ext, err := detectExtension(partial)
	if err != nil {
		os.Remove(partial)
		return "", err
	}
	dest := base + ext
	if err := os.Rename(partial, dest); err != nil {
		os.Remove(partial)
		return "", errors.Wrapf(err, "renaming to %s", dest)
	}
	return dest, nil
}

func detectExtension(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ioutils.ImageExtension(f)
}
