package catalog

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

// ErrUnsupportedCoverType is returned for well-formed payloads whose MIME type
// is not an accepted image type. Callers drop such covers silently.
var ErrUnsupportedCoverType = errors.New("unsupported cover image type")

// CoverImageTypes lists the accepted cover MIME types.
var CoverImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// Cover is a decoded cover upload.
type Cover struct {
	Type string
	Data []byte
}

type coverPayload struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// IsCoverImageType reports whether mime is an accepted cover type.
func IsCoverImageType(mime string) bool {
	for _, t := range CoverImageTypes {
		if t == mime {
			return true
		}
	}
	return false
}

// DecodeCover parses the `{"type": ..., "data": <base64>}` form payload.
// An empty payload yields (nil, nil).
func DecodeCover(raw string) (*Cover, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var payload coverPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, Invalid("cover", "is not a valid upload")
	}
	if !IsCoverImageType(payload.Type) {
		return nil, ErrUnsupportedCoverType
	}

	data, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		return nil, Invalid("cover", "is not valid base64")
	}
	if len(data) == 0 {
		return nil, Invalid("cover", "is empty")
	}

	return &Cover{Type: payload.Type, Data: data}, nil
}
