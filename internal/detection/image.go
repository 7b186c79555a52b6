package detection

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrImageRequired = errors.New("image data required")
	ErrInvalidImage  = errors.New("invalid image")
)

const dataURLPrefix = "data:"

// formatMIMETypes maps the names registered with the image package to the
// MIME type forwarded to the detection API.
var formatMIMETypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
}

// Image is a decoded upload ready to be sent for detection.
type Image struct {
	DataURL  string
	MIMEType string
	Format   string
	Data     []byte
	Width    int
	Height   int
}

// ParseDataURL decodes a "data:image/<type>;base64,<payload>" string and
// checks that the payload really is an image in a supported format.
// The declared MIME type is not trusted; the format is sniffed from the bytes.
func ParseDataURL(dataURL string) (*Image, error) {
	dataURL = strings.TrimSpace(dataURL)
	if dataURL == "" {
		return nil, ErrImageRequired
	}

	if !strings.HasPrefix(dataURL, dataURLPrefix+"image/") {
		return nil, fmt.Errorf("%w: expected a base64 image data URL", ErrInvalidImage)
	}

	header, payload, ok := strings.Cut(dataURL[len(dataURLPrefix):], ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: expected a base64 image data URL", ErrInvalidImage)
	}
	if payload == "" {
		return nil, ErrImageRequired
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: payload is not valid base64", ErrInvalidImage)
		}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	mimeType, ok := formatMIMETypes[format]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidImage, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	return &Image{
		DataURL:  dataURL,
		MIMEType: mimeType,
		Format:   format,
		Data:     data,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}
