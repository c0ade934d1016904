// Package qr renders join codes as QR images.
package qr

import (
	qrcode "github.com/skip2/go-qrcode"
)

// PNG encodes a join code as a QR PNG of the given pixel size. The code
// is embedded as plain text so any scanner app recovers the digits.
func PNG(code string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(code, qrcode.Medium, size)
}
