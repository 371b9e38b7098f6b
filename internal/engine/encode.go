/*
PURPOSE:
  Encodes image files as base64 data URLs for the plant.id request payload.

REQUIREMENTS:
  User-specified:
  - data:<mime>;base64,<payload> format.
  - MIME type chosen from the file extension; unknown extensions default to
    image/jpeg (the API sniffs the real type anyway).

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/client.go

ERROR HANDLING:
  - Returns the read error if the file is unreadable.

IMPLEMENTATION RULES:
  - encoding/base64 StdEncoding, matching what the API expects.

USAGE:
  dataURL, err := engine.EncodeImage("leaf.jpg")

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/engine/client.go

MAINTENANCE:
  - Extend mimeTypes if the API grows new supported formats.
*/

package engine

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MIMEForPath returns the MIME type for an image path based on its extension.
func MIMEForPath(path string) string {
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "image/jpeg"
}

// EncodeImage reads the file at path and returns it as a base64 data URL.
func EncodeImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image %s: %w", path, err)
	}

	return fmt.Sprintf("data:%s;base64,%s",
		MIMEForPath(path), base64.StdEncoding.EncodeToString(data)), nil
}
