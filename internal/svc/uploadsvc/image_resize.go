package uploadsvc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// ErrUnsupportedImageType is returned when a thumbnail is requested for a
// format the service cannot decode.
var ErrUnsupportedImageType = errors.New("unsupported image type")

const (
	mimeTypeJPEG = "image/jpeg"
	mimeTypePNG  = "image/png"
)

//nolint:gochecknoglobals
var (
	imageExtTypes = map[string]string{
		".jpg":  mimeTypeJPEG,
		".jpeg": mimeTypeJPEG,
		".png":  mimeTypePNG,
	}

	imageDecoders = map[string]func(io.Reader) (image.Image, error){
		mimeTypeJPEG: jpeg.Decode,
		mimeTypePNG:  png.Decode,
	}

	imageEncoders = map[string]func(io.Writer, image.Image) error{
		mimeTypeJPEG: func(w io.Writer, i image.Image) error { return jpeg.Encode(w, i, nil) },
		mimeTypePNG:  png.Encode,
	}
)

// resizeImage scales an image down to the given width, preserving aspect
// ratio. Images already narrower than width are re-encoded unscaled.
func resizeImage(reader io.Reader, mimeType string, width int) ([]byte, error) {
	decoder, ok := imageDecoders[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedImageType, mimeType)
	}

	original, err := decoder(reader)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := original.Bounds()
	if bounds.Dx() > width {
		ratio := float64(width) / float64(bounds.Dx())
		height := int(float64(bounds.Dy()) * ratio)

		bitmap := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(bitmap, bitmap.Bounds(), original, bounds, draw.Over, nil)
		original = bitmap
	}

	encoder, ok := imageEncoders[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedImageType, mimeType)
	}

	var buf bytes.Buffer
	if err := encoder(&buf, original); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	return buf.Bytes(), nil
}
