/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"strings"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls a batch export.
//   - Preset selects default formats: web writes json, html, svg and png;
//     print writes pdf and png.
//   - Formats, when non-empty, replaces the preset defaults.
type BatchOptions struct {
	Preset  PresetName
	Formats []Format
}

// BatchExport renders every selected format into sink. It stops at the
// first failure.
func BatchExport(sink Sink, l Layout, opt BatchOptions) error {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	for _, f := range formats {
		if err := Export(sink, f, l); err != nil {
			return fmt.Errorf("preset %s: %w", opt.Preset, err)
		}
	}
	return nil
}

func presetDefaultFormats(p PresetName) []Format {
	switch p {
	case PresetWeb:
		return []Format{FormatJSON, FormatHTML, FormatSVG, FormatPNG}
	case PresetPrint:
		return []Format{FormatPDF, FormatPNG}
	default:
		return []Format{FormatJSON, FormatHTML}
	}
}

// ParseTarget resolves a command line export target, either a single
// format or a preset name, into the formats to write.
func ParseTarget(s string) ([]Format, error) {
	if f, ok := ParseFormat(s); ok {
		return []Format{f}, nil
	}
	switch p := PresetName(strings.ToLower(strings.TrimSpace(s))); p {
	case PresetWeb, PresetPrint:
		return presetDefaultFormats(p), nil
	}
	return nil, fmt.Errorf("unknown export target %q", s)
}
