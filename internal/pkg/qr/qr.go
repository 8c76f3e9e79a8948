// Package qr renders QR codes for card share URLs.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const defaultSize = 256

// PNG renders the content as a QR code PNG.
func PNG(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, defaultSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}

// DataURL renders the content as a QR code embedded in a data URL, ready to
// drop into an img tag without a separate asset store.
func DataURL(content string) (string, error) {
	png, err := PNG(content)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
