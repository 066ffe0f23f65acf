package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/free-ocr/internal/common"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.Black)
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func TestPreparePassesSmallPNGThrough(t *testing.T) {
	data := encodePNG(t, 40, 20)
	p, err := Prepare(data, 100)
	require.NoError(t, err)
	assert.Equal(t, data, p.Data)
	assert.Equal(t, "png", p.Format)
	assert.Equal(t, 40, p.Width)
	assert.Equal(t, 20, p.Height)
	assert.False(t, p.Resized)
}

func TestPrepareDownsizesLargeImage(t *testing.T) {
	p, err := Prepare(encodePNG(t, 400, 100), 200)
	require.NoError(t, err)
	assert.True(t, p.Resized)
	assert.Equal(t, 200, p.Width)
	assert.Equal(t, 50, p.Height)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(p.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 200, cfg.Width)
}

func TestPrepareKeepsJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(300, 300), nil))

	p, err := Prepare(buf.Bytes(), 150)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", p.Format)
	assert.True(t, p.Resized)
	_, format, err := image.DecodeConfig(bytes.NewReader(p.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestPrepareReencodesGIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, testImage(30, 30), nil))

	p, err := Prepare(buf.Bytes(), 0)
	require.NoError(t, err)
	assert.Equal(t, "png", p.Format)
	assert.False(t, p.Resized)
	_, format, err := image.DecodeConfig(bytes.NewReader(p.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestPrepareRejectsNonImages(t *testing.T) {
	_, err := Prepare(nil, 0)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = Prepare([]byte("%PDF-1.7"), 0)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestStripDataURL(t *testing.T) {
	assert.Equal(t, "aGk=", StripDataURL("data:image/png;base64,aGk="))
	assert.Equal(t, "aGk=", StripDataURL("  aGk=\n"))
	assert.Equal(t, "data:broken", StripDataURL("data:broken"))
}

func TestDecodeBase64(t *testing.T) {
	raw := encodePNG(t, 2, 2)
	got, err := DecodeBase64("data:image/png;base64," + base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = DecodeBase64("not base64!")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
