package qrx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dmitrijs2005/vaultbox/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRender_PNGOutput(t *testing.T) {
	img, err := Render("https://vault.example.com/api/share/qr/deadbeef")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic), "output must be a PNG")
}

func TestRender_Deterministic(t *testing.T) {
	const url = "https://vault.example.com/api/share/qr/aabbccdd"

	a, err := Render(url)
	require.NoError(t, err)
	b, err := Render(url)
	require.NoError(t, err)

	assert.Equal(t, a, b, "same url must yield byte-identical images")
}

func TestRender_DifferentURLsDiffer(t *testing.T) {
	a, err := Render("https://vault.example.com/api/share/qr/one")
	require.NoError(t, err)
	b, err := Render("https://vault.example.com/api/share/qr/two")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestRender_EmptyURL(t *testing.T) {
	_, err := Render("")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestRenderDataURI(t *testing.T) {
	uri, err := RenderDataURI("https://vault.example.com/api/share/qr/deadbeef")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}
