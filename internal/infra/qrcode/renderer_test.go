package qrcode_test

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"wastenot/internal/infra/qrcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_PNG(t *testing.T) {
	r := qrcode.NewRenderer()

	b, err := r.PNG("WNAAAAAAAAAAAAAAAAAAAAAA")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestRenderer_DataURL(t *testing.T) {
	r := qrcode.NewRenderer()

	url, err := r.DataURL("WNAAAAAAAAAAAAAAAAAAAAAA")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)
}

func TestRenderer_EmptyContent(t *testing.T) {
	r := qrcode.NewRenderer()

	_, err := r.PNG("")
	assert.Error(t, err)
	_, err = r.DataURL("")
	assert.Error(t, err)
}
