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
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"golayout/internal/domain"
)

// PNGOptions controls PNG export.
//   - Scale multiplies canvas pixels; zero means 1.
//   - Background fills the canvas first; empty means white.
type PNGOptions struct {
	Scale      int
	Background string
}

// PNG rasterizes the layout. Fills are composited bottom to top with
// their alpha; text uses the fixed 7x13 face.
func PNG(l Layout, opt PNGOptions) ([]byte, error) {
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	if l.Canvas.W <= 0 || l.Canvas.H <= 0 {
		return nil, fmt.Errorf("invalid canvas %dx%d", l.Canvas.W, l.Canvas.H)
	}
	bg := color.RGBA{255, 255, 255, 255}
	if opt.Background != "" {
		c, ok := domain.ParseColor(opt.Background)
		if !ok {
			return nil, fmt.Errorf("invalid background %q", opt.Background)
		}
		bg = c
	}

	img := image.NewRGBA(image.Rect(0, 0, l.Canvas.W*scale, l.Canvas.H*scale))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: premultiply(bg)}, image.Point{}, draw.Src)

	ink, _ := domain.ParseColor(TextColor)
	for _, e := range l.Elements {
		r := image.Rect(e.Pos.X*scale, e.Pos.Y*scale, (e.Pos.X+e.Size.W)*scale, (e.Pos.Y+e.Size.H)*scale)
		if c, ok := domain.ParseColor(e.Fill); ok && c.A > 0 {
			fillRect(img, r, c)
		}
		if e.Kind == domain.KindText && e.Text != "" {
			drawText(img, r, e.Text, ink, scale)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// premultiply converts straight alpha to the premultiplied form image
// colors use.
func premultiply(c color.RGBA) color.RGBA {
	a := uint16(c.A)
	return color.RGBA{
		R: uint8(uint16(c.R) * a / 255),
		G: uint8(uint16(c.G) * a / 255),
		B: uint8(uint16(c.B) * a / 255),
		A: c.A,
	}
}

// fillRect composites c over r, clipped to the image.
func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r.Intersect(img.Bounds()), &image.Uniform{C: premultiply(c)}, image.Point{}, draw.Over)
}

// drawText writes s inside r, clipped to it; lines break on newlines.
func drawText(img *image.RGBA, r image.Rectangle, s string, ink color.RGBA, scale int) {
	clip := image.NewRGBA(r.Intersect(img.Bounds()))
	if clip.Rect.Empty() {
		return
	}
	draw.Draw(clip, clip.Rect, img, clip.Rect.Min, draw.Src)
	d := &font.Drawer{
		Dst:  clip,
		Src:  image.NewUniform(premultiply(ink)),
		Face: basicfont.Face7x13,
	}
	y := r.Min.Y + textBaseline*scale
	line := ""
	flush := func() {
		d.Dot = fixed.P(r.Min.X+textPadX*scale, y)
		d.DrawString(line)
		y += basicfont.Face7x13.Height
		line = ""
	}
	for _, ch := range s {
		if ch == '\n' {
			flush()
			continue
		}
		line += string(ch)
	}
	flush()
	draw.Draw(img, clip.Rect, clip, clip.Rect.Min, draw.Src)
}
