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
	"strings"

	"github.com/jung-kurt/gofpdf"

	"golayout/internal/domain"
	"golayout/internal/version"
)

// PDFOptions controls PDF export.
// One canvas pixel maps to one point; the page is the canvas size.
//   - Title: document title; empty means "golayout design".
//   - Border: draw a hairline around the canvas.
type PDFOptions struct {
	Title  string
	Border bool
}

// PDF renders the layout as a single page vector PDF using the built-in
// Helvetica font.
func PDF(l Layout, opt PDFOptions) ([]byte, error) {
	if l.Canvas.W <= 0 || l.Canvas.H <= 0 {
		return nil, fmt.Errorf("invalid canvas %dx%d", l.Canvas.W, l.Canvas.H)
	}
	w, h := float64(l.Canvas.W), float64(l.Canvas.H)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	title := opt.Title
	if title == "" {
		title = "golayout design"
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator("golayout "+version.String(), true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: h})

	if opt.Border {
		pdf.SetDrawColor(200, 200, 200)
		pdf.SetLineWidth(0.5)
		pdf.Rect(0, 0, w, h, "D")
	}

	ink, _ := domain.ParseColor(TextColor)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, e := range l.Elements {
		x, y := float64(e.Pos.X), float64(e.Pos.Y)
		ew, eh := float64(e.Size.W), float64(e.Size.H)
		if c, ok := domain.ParseColor(e.Fill); ok && c.A > 0 {
			pdf.SetAlpha(float64(c.A)/255, "Normal")
			pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
			pdf.Rect(x, y, ew, eh, "F")
			pdf.SetAlpha(1, "Normal")
		}
		if e.Kind == domain.KindText && e.Text != "" {
			pdf.SetTextColor(int(ink.R), int(ink.G), int(ink.B))
			pdf.SetFont("Helvetica", "", textSize)
			pdf.ClipRect(x, y, ew, eh, false)
			cy := y + textBaseline
			for _, line := range strings.Split(e.Text, "\n") {
				pdf.Text(x+textPadX, cy, tr(line))
				cy += textSize * 1.2
			}
			pdf.ClipEnd()
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
