package capture

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// DataURLAdapter embeds the image directly in the form as a data URL. Used
// when no object store is configured; the submission payload then carries
// the image bytes inline, the way live kiosk captures do.
type DataURLAdapter struct{}

// NewDataURLAdapter returns the inline adapter.
func NewDataURLAdapter() *DataURLAdapter {
	return &DataURLAdapter{}
}

// Upload encodes the bytes as a base64 data URL.
func (a *DataURLAdapter) Upload(_ context.Context, up Upload) (ImageValue, error) {
	mime := strings.ToLower(strings.TrimSpace(up.ContentType))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	encoded := base64.StdEncoding.EncodeToString(up.Data)
	return ImageValue(fmt.Sprintf("data:%s;base64,%s", mime, encoded)), nil
}

// ParseDataURL unpacks a client-captured frame posted as a data URL into an
// Upload, so it runs through the same validation as a file upload.
func ParseDataURL(s string) (Upload, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Upload{}, fmt.Errorf("capture: %w: not a data url", ErrUnsupportedType)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Upload{}, fmt.Errorf("capture: %w: malformed data url", ErrUnsupportedType)
	}
	mime, enc := meta, ""
	if i := strings.Index(meta, ";"); i >= 0 {
		mime, enc = meta[:i], meta[i+1:]
	}
	if enc != "base64" {
		return Upload{}, fmt.Errorf("capture: %w: expected base64 payload", ErrUnsupportedType)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Upload{}, fmt.Errorf("capture: decode data url: %w", err)
	}
	return Upload{ContentType: mime, Data: data}, nil
}
