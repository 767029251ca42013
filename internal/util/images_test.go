package util

import (
	"encoding/base64"
	"testing"
)

func TestParseBase64Image_DataURI(t *testing.T) {
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	data, ext, err := ParseBase64Image(payload)
	if err != nil {
		t.Fatalf("ParseBase64Image error: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("decoded bytes = %q", data)
	}
	if ext != "png" {
		t.Errorf("ext = %q, want png", ext)
	}
}

func TestParseBase64Image_RawBase64DefaultsToJpg(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))

	data, ext, err := ParseBase64Image(payload)
	if err != nil {
		t.Fatalf("ParseBase64Image error: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("decoded bytes = %q", data)
	}
	if ext != "jpg" {
		t.Errorf("ext = %q, want jpg", ext)
	}
}

func TestParseBase64Image_JpegMapsToJpg(t *testing.T) {
	payload := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("x"))

	_, ext, err := ParseBase64Image(payload)
	if err != nil {
		t.Fatalf("ParseBase64Image error: %v", err)
	}
	if ext != "jpg" {
		t.Errorf("ext = %q, want jpg", ext)
	}
}

func TestParseBase64Image_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"missing comma in data URI", "data:image/png;base64"},
		{"not base64 encoded URI", "data:image/png," + base64.StdEncoding.EncodeToString([]byte("x"))},
		{"unsupported image type", "data:image/tiff;base64," + base64.StdEncoding.EncodeToString([]byte("x"))},
		{"invalid base64", "data:image/png;base64,!!!not-base64!!!"},
		{"empty payload", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := ParseBase64Image(tc.payload); err == nil {
				t.Errorf("%q accepted", tc.payload)
			}
		})
	}
}
