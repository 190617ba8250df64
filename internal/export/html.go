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
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday/css"

	"golayout/internal/domain"
)

// HTMLOptions controls markup export.
//   - Fragment: emit only the container div instead of a full document.
//   - ZIndex: add an explicit z-index matching paint order; without it
//     document order alone stacks the elements.
type HTMLOptions struct {
	Fragment bool
	ZIndex   bool
}

// HTML renders the layout as static markup: a relatively positioned
// container sized to the canvas holding one absolutely positioned div per
// element, bottom to top. Text elements carry their text as content.
func HTML(l Layout, opt HTMLOptions) []byte {
	var buf bytes.Buffer
	w := func(format string, args ...any) { _, _ = fmt.Fprintf(&buf, format, args...) }

	if !opt.Fragment {
		w("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>design</title>\n</head>\n<body>\n")
	}
	w("<div style=\"position:relative;width:%dpx;height:%dpx\">\n", l.Canvas.W, l.Canvas.H)
	for i, e := range l.Elements {
		w("  <div data-id=\"%s\" data-kind=\"%s\" style=\"%s\">", html.EscapeString(e.ID), e.Kind, elementStyle(e, i, opt.ZIndex))
		if e.Kind == domain.KindText {
			buf.WriteString(html.EscapeString(e.Text))
		}
		w("</div>\n")
	}
	w("</div>\n")
	if !opt.Fragment {
		w("</body>\n</html>\n")
	}
	return buf.Bytes()
}

func elementStyle(e domain.Element, stack int, zIndex bool) string {
	s := fmt.Sprintf("position:absolute;left:%dpx;top:%dpx;width:%dpx;height:%dpx;background:%s",
		e.Pos.X, e.Pos.Y, e.Size.W, e.Size.H, cssFill(e.Fill))
	if zIndex {
		s += fmt.Sprintf(";z-index:%d", stack)
	}
	return s
}

// cssFill returns fill as a single CSS color value. Spellings the style
// sanitizer does not recognise are rewritten as rgba(); anything that is
// not a color becomes transparent.
func cssFill(fill string) string {
	v := strings.TrimSpace(fill)
	c, ok := domain.ParseColor(v)
	if !ok {
		return "transparent"
	}
	if strings.EqualFold(v, "transparent") || css.ColorHandler(strings.ToLower(v)) {
		return v
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(float64(c.A)/255, 'f', 3, 64))
}
