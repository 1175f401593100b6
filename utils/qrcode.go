package utils

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// IdentityQRPayload is the format encoded in a tourist's identity QR:
// a compact URI checkpoints and authorities can scan.
func IdentityQRPayload(userID, fullName, nationality string) string {
	return fmt.Sprintf("safetrail://tourist/%s?name=%s&nationality=%s", userID, fullName, nationality)
}

// GenerateQRPNG renders the payload as a PNG QR code of the given pixel
// size.
func GenerateQRPNG(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}

	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR payload: %w", err)
	}

	code, err = barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("failed to scale QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, fmt.Errorf("failed to render QR PNG: %w", err)
	}

	return buf.Bytes(), nil
}
