/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// CSS fill strings are parsed into RGBA for raster and vector exporters.
// Supported forms: #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(), rgba(), hsl(),
// hsla(), transparent and the CSS named colors.

// ParseColor converts a CSS color string to straight (non-premultiplied) RGBA.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return color.RGBA{}, false
	}
	if s == "transparent" {
		return color.RGBA{}, true
	}
	if c, ok := colornames.Map[s]; ok {
		return c, true
	}
	if s[0] == '#' {
		return parseHexColor(s[1:])
	}
	if strings.HasPrefix(s, "rgb") || strings.HasPrefix(s, "hsl") {
		return parseFuncColor(s)
	}
	return color.RGBA{}, false
}

// ValidFill reports whether s is a fill string golayout can render.
func ValidFill(s string) bool {
	_, ok := ParseColor(s)
	return ok
}

// NormalizeFill trims surrounding whitespace; the spelling is otherwise kept.
func NormalizeFill(s string) string { return strings.TrimSpace(s) }

func parseHexColor(hex string) (color.RGBA, bool) {
	var r, g, b, a uint64
	a = 255
	var err error
	nib := func(s string, dst *uint64) {
		if err != nil {
			return
		}
		*dst, err = strconv.ParseUint(s, 16, 8)
	}
	switch len(hex) {
	case 3, 4:
		nib(hex[0:1], &r)
		nib(hex[1:2], &g)
		nib(hex[2:3], &b)
		r, g, b = r*17, g*17, b*17
		if len(hex) == 4 {
			nib(hex[3:4], &a)
			a *= 17
		}
	case 6, 8:
		nib(hex[0:2], &r)
		nib(hex[2:4], &g)
		nib(hex[4:6], &b)
		if len(hex) == 8 {
			nib(hex[6:8], &a)
		}
	default:
		return color.RGBA{}, false
	}
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}, true
}

func parseFuncColor(s string) (color.RGBA, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return color.RGBA{}, false
	}
	name := strings.TrimSpace(s[:open])
	parts := strings.Split(s[open+1:len(s)-1], ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch {
	case (name == "rgb" || name == "hsl") && len(parts) == 3:
	case (name == "rgba" || name == "hsla") && len(parts) == 4:
	default:
		return color.RGBA{}, false
	}
	alpha := uint8(255)
	if len(parts) == 4 {
		f, err := strconv.ParseFloat(parts[3], 64)
		if err != nil || f < 0 || f > 1 {
			return color.RGBA{}, false
		}
		alpha = uint8(f*255 + 0.5)
	}
	if strings.HasPrefix(name, "hsl") {
		c, ok := parseHSL(parts[:3])
		c.A = alpha
		return c, ok
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(parts[i])
		if err != nil || v < 0 || v > 255 {
			return color.RGBA{}, false
		}
		ch[i] = uint8(v)
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, true
}

// parseHSL reads "h, s%, l%" with h in degrees.
func parseHSL(parts []string) (color.RGBA, bool) {
	h, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return color.RGBA{}, false
	}
	pct := func(v string) (float64, bool) {
		if !strings.HasSuffix(v, "%") {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil || f < 0 || f > 100 {
			return 0, false
		}
		return f / 100, true
	}
	sat, ok1 := pct(parts[1])
	lig, ok2 := pct(parts[2])
	if !ok1 || !ok2 {
		return color.RGBA{}, false
	}
	h = math.Mod(math.Mod(h, 360)+360, 360) / 360
	var q float64
	if lig < 0.5 {
		q = lig * (1 + sat)
	} else {
		q = lig + sat - lig*sat
	}
	p := 2*lig - q
	ch := func(t float64) uint8 {
		switch {
		case t < 0:
			t++
		case t > 1:
			t--
		}
		var v float64
		switch {
		case t < 1.0/6:
			v = p + (q-p)*6*t
		case t < 0.5:
			v = q
		case t < 2.0/3:
			v = p + (q-p)*(2.0/3-t)*6
		default:
			v = p
		}
		return uint8(math.Round(v * 255))
	}
	return color.RGBA{R: ch(h + 1.0/3), G: ch(h), B: ch(h - 1.0/3), A: 255}, true
}
