package engine

import (
	"fmt"
	"strings"
)

// Format is an output image format accepted by the engine.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPG  Format = "jpg"
	FormatWEBP Format = "webp"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPG, nil
	case "webp":
		return FormatWEBP, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", value)
	}
}

// Ext returns the file extension (without dot) for the format.
func (f Format) Ext() string {
	return string(f)
}

// SupportedScales is the fixed set of scale factors the engine accepts.
var SupportedScales = []int{2, 3, 4}

// ValidScale reports whether the scale factor is supported.
func ValidScale(scale int) bool {
	for _, s := range SupportedScales {
		if s == scale {
			return true
		}
	}
	return false
}
