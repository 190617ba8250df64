/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/color"

	"golayout/internal/domain"
)

// Text placement shared by the SVG, PNG and PDF renderers.
const (
	textPadX     = 6
	textBaseline = 18
	textSize     = 14
)

// TextColor is the ink used for text elements in rendered exports.
const TextColor = "#111827"

// SVG renders the layout as an SVG document in canvas pixels.
func SVG(l Layout) []byte {
	var buf bytes.Buffer
	wf := func(format string, args ...any) { _, _ = fmt.Fprintf(&buf, format, args...) }

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\">\n",
		l.Canvas.W, l.Canvas.H, l.Canvas.W, l.Canvas.H)
	for _, e := range l.Elements {
		c, _ := domain.ParseColor(e.Fill)
		wf("  <rect id=\"%s\" x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" %s/>\n",
			escAttr(e.ID), e.Pos.X, e.Pos.Y, e.Size.W, e.Size.H, svgFill(c))
		if e.Kind == domain.KindText && e.Text != "" {
			wf("  <text x=\"%d\" y=\"%d\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"%d\" fill=\"%s\">%s</text>\n",
				e.Pos.X+textPadX, e.Pos.Y+textBaseline, textSize, TextColor, escText(e.Text))
		}
	}
	wf("</svg>\n")
	return buf.Bytes()
}

func svgFill(c color.RGBA) string {
	if c.A == 0 {
		return "fill=\"none\""
	}
	s := fmt.Sprintf("fill=\"#%02x%02x%02x\"", c.R, c.G, c.B)
	if c.A < 255 {
		s += fmt.Sprintf(" fill-opacity=\"%.3g\"", float64(c.A)/255)
	}
	return s
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '\n':
			out = append(out, ' ')
		case '\r':
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
