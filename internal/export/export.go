/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a layout into downloadable files: the persisted
// JSON snapshot, static HTML markup, SVG, PNG and PDF. Output goes to a
// Sink, which names and stores each file.
package export

import (
	"fmt"
	"strings"

	"golayout/internal/domain"
)

// Layout is everything an exporter needs: the elements bottom first, the
// canvas they are placed on and the persisted snapshot bytes.
type Layout struct {
	Elements []domain.Element
	Canvas   domain.Size
	// Raw is passed through unchanged by the JSON exporter.
	Raw []byte
}

// Format names a single output file type.
type Format string

const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatHTML, FormatSVG, FormatPNG, FormatPDF}

// FileName returns the download name for f, e.g. design.json.
func (f Format) FileName() string { return "design." + string(f) }

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat maps a case-insensitive name to a Format.
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Formats {
		if k == f {
			return f, true
		}
	}
	return "", false
}

// Render produces the file content for one format.
func Render(f Format, l Layout) ([]byte, error) {
	switch f {
	case FormatJSON:
		return JSON(l.Raw), nil
	case FormatHTML:
		return HTML(l, HTMLOptions{}), nil
	case FormatSVG:
		return SVG(l), nil
	case FormatPNG:
		return PNG(l, PNGOptions{})
	case FormatPDF:
		return PDF(l, PDFOptions{})
	default:
		return nil, fmt.Errorf("unknown format: %s", f)
	}
}

// Export renders f and hands the result to sink under f.FileName().
func Export(sink Sink, f Format, l Layout) error {
	b, err := Render(f, l)
	if err != nil {
		return fmt.Errorf("%s export: %w", f, err)
	}
	if err := sink.Save(f.FileName(), b); err != nil {
		return fmt.Errorf("save %s: %w", f.FileName(), err)
	}
	return nil
}

// JSON returns the persisted snapshot unchanged, or "[]" when nothing has
// been saved.
func JSON(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte("[]")
	}
	return raw
}
