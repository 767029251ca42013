package util

import (
	"encoding/base64"
	"errors"
	"strings"
)

// imageExtensions maps the MIME subtypes accepted for recipe images to file
// extensions.
var imageExtensions = map[string]string{
	"jpeg": "jpg",
	"jpg":  "jpg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
}

// ParseBase64Image decodes a base64-encoded image, with or without a
// "data:image/<type>;base64," prefix, and returns the raw bytes and the
// file extension. Payloads without a data URI prefix default to jpg.
func ParseBase64Image(payload string) ([]byte, string, error) {
	ext := "jpg"
	encoded := payload

	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) != 2 {
			return nil, "", errors.New("malformed data URI")
		}

		meta := parts[0]
		encoded = parts[1]
		if !strings.HasSuffix(meta, ";base64") {
			return nil, "", errors.New("data URI is not base64-encoded")
		}

		mimeType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
		subtype := strings.TrimPrefix(mimeType, "image/")
		mapped, ok := imageExtensions[subtype]
		if !ok {
			return nil, "", errors.New("unsupported image type: " + mimeType)
		}
		ext = mapped
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", errors.New("invalid base64 image payload")
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty image payload")
	}

	return data, ext, nil
}
