package reservations

import (
	"encoding/base64"
	"strings"
)

const (
	qrPrefix       = "data:image/"
	qrBase64Marker = ";base64,"
)

// ValidQRDataURI reports whether s is an image data URI with a decodable base64 payload.
// Anything else renders as "QR unavailable" rather than a broken image.
func ValidQRDataURI(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, qrPrefix) {
		return false
	}
	i := strings.Index(s, qrBase64Marker)
	if i < len(qrPrefix)+1 {
		return false
	}
	payload := s[i+len(qrBase64Marker):]
	if payload == "" {
		return false
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	return err == nil && len(b) > 0
}
