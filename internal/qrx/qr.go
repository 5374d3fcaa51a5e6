// Package qrx renders share access URLs into scannable QR images.
package qrx

import (
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/vaultbox/internal/common"
	qrcode "github.com/skip2/go-qrcode"
)

// Rendering parameters are fixed so a given URL always produces
// byte-identical output.
const (
	imageSize     = 256
	recoveryLevel = qrcode.Medium
	dataURIPrefix = "data:image/png;base64,"
)

// Render encodes url into a PNG QR image. Pure local rendering, no I/O.
func Render(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty url", common.ErrValidation)
	}
	png, err := qrcode.Encode(url, recoveryLevel, imageSize)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	return png, nil
}

// RenderDataURI renders url and wraps the PNG in a base64 data URI, the
// form stored on a Share Grant's QR sub-record and embeddable in a page.
func RenderDataURI(url string) (string, error) {
	png, err := Render(url)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}
