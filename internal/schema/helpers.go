// file: internal/schema/helpers.go
package schema

import (
	"bytes"
)

const maxPreviewLen = 100

// calculatePreview returns a short printable excerpt of data for error context.
func calculatePreview(data []byte) string {
	truncated := false
	if len(data) > maxPreviewLen {
		data = data[:maxPreviewLen]
		truncated = true
	}
	preview := string(bytes.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return '.'
		}
		return r
	}, data))
	if truncated {
		preview += "..."
	}
	return preview
}
