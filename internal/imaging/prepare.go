// Package imaging validates submitted images and bounds their size before OCR.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/joseph-ayodele/free-ocr/constants"
	"github.com/joseph-ayodele/free-ocr/internal/common"
)

// Prepared is an image ready to be sent to OCR.
type Prepared struct {
	Data    []byte
	Format  string // format of Data: "png" | "jpeg"
	Width   int
	Height  int
	Resized bool
}

// Prepare checks that data is an accepted image and downsizes it so neither side
// exceeds maxSide (0 disables resizing). PNG and JPEG within bounds are returned
// untouched; WebP and GIF are always re-encoded to PNG.
func Prepare(data []byte, maxSide int) (Prepared, error) {
	if len(data) == 0 {
		return Prepared{}, common.InvalidInputf("image is empty")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Prepared{}, common.InvalidInputf("not a supported image: %v", err)
	}
	if _, ok := constants.AllowedFormats[format]; !ok {
		return Prepared{}, common.InvalidInputf("unsupported image format %q", format)
	}

	tooLarge := maxSide > 0 && (cfg.Width > maxSide || cfg.Height > maxSide)
	passthrough := format == "png" || format == "jpeg"
	if passthrough && !tooLarge {
		return Prepared{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Prepared{}, common.InvalidInputf("decode image: %v", err)
	}
	if tooLarge {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}

	outFormat, encFormat := "png", imaging.PNG
	if format == "jpeg" {
		outFormat, encFormat = "jpeg", imaging.JPEG
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, encFormat, imaging.JPEGQuality(90)); err != nil {
		return Prepared{}, fmt.Errorf("encode image: %w", err)
	}
	b := img.Bounds()
	return Prepared{
		Data:    buf.Bytes(),
		Format:  outFormat,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Resized: tooLarge,
	}, nil
}

// StripDataURL removes a leading "data:<mime>;base64," prefix, if any.
func StripDataURL(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}

// DecodeBase64 decodes image bytes sent as base64, tolerating a data-URL prefix.
func DecodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(StripDataURL(s))
	if err != nil {
		return nil, common.InvalidInputf("image_data is not valid base64")
	}
	return b, nil
}
