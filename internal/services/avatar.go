package services

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

var ErrNotAnImage = errors.New("uploaded data is not an image")

// EncodeAvatarRef turns uploaded image bytes into an embeddable data URI.
// The content type is sniffed from the payload; non-image payloads are
// refused.
func EncodeAvatarRef(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNotAnImage
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", ErrNotAnImage
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
