package ioutils

import (
	"bytes"
	"context"
	"io"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"github.com/cockroachdb/errors"
	"golang.org/x/image/draw"
)

// ImageService turns cover art into JPEG files of a bounded size.
type ImageService struct {
	quality int
}

// NewImageService creates a new ImageService encoding at JPEG quality 90.
func NewImageService() *ImageService {
	return &ImageService{quality: 90}
}

// ResizeImage scales an image to fit within maxWidth x maxHeight, keeping
// the aspect ratio, and returns it JPEG-encoded. Smaller images are not
// enlarged. The Catmull-Rom kernel is used for scaling.
//
//	// A 640x480 image with max 300x300 becomes 300x225
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, errors.Newf("invalid thumbnail size %dx%d", maxWidth, maxHeight)
	}
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := FitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return s.encode(dst)
}

// ConvertToJPEG re-encodes any supported image as JPEG.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	return s.encode(img)
}

// FitWithin returns width and height scaled down to fit the bounds.
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		return max(1, int(float64(maxHeight)*ratio)), maxHeight
	}
	return maxWidth, max(1, int(float64(maxWidth)/ratio))
}

// ImageExtension sniffs the encoded image in r and returns the matching
// file extension, such as ".png".
func ImageExtension(r io.Reader) (string, error) {
	_, format, err := image.DecodeConfig(r)
	if err != nil {
		return "", errors.Wrap(err, "detecting image format")
	}
	switch format {
	case "jpeg":
		return ".jpg", nil
	case "png", "gif":
		return "." + format, nil
	default:
		return "", errors.Newf("unsupported image format %q", format)
	}
}

func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decoding image")
	}
	return img, nil
}

func (s *ImageService) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, errors.Wrap(err, "encoding jpeg")
	}
	return buf.Bytes(), nil
}
