/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"

	"golayout/internal/domain"
)

// Corner identifies a resize handle.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

// Corners lists the handles in the order surfaces create them.
var Corners = []Corner{TopLeft, TopRight, BottomLeft, BottomRight}

var cornerNames = [...]string{"tl", "tr", "bl", "br"}

func (c Corner) String() string {
	if c < 0 || int(c) >= len(cornerNames) {
		return fmt.Sprintf("corner(%d)", int(c))
	}
	return cornerNames[c]
}

// ParseCorner maps "tl", "tr", "bl" or "br" to a Corner.
func ParseCorner(s string) (Corner, bool) {
	for i, n := range cornerNames {
		if n == s {
			return Corner(i), true
		}
	}
	return 0, false
}

func (c Corner) left() bool { return c == TopLeft || c == BottomLeft }
func (c Corner) top() bool  { return c == TopLeft || c == TopRight }

// resizeController grows or shrinks the selected element from one corner.
// The edges opposite the dragged corner stay fixed.
type resizeController struct {
	ed       *Editor
	id       string
	corner   Corner
	start    domain.Rect
	startPtr domain.Point
}

func (r *resizeController) target() string { return r.id }
func (r *resizeController) kind() string   { return "resize" }

func (r *resizeController) move(p domain.Point) {
	el, ok := r.ed.reg.Get(r.id)
	if !ok {
		return
	}
	b := resizeRect(r.start, r.corner, p.Sub(r.startPtr))
	el.Pos = b.Min()
	el.Size = domain.Size{W: b.W, H: b.H}
	r.ed.apply(el)
}

// resizeRect applies pointer delta d to start as seen from corner c.
// Width and height never drop below domain.MinSize.
func resizeRect(start domain.Rect, c Corner, d domain.Point) domain.Rect {
	out := start
	if c.left() {
		out.W = max(start.W-d.X, domain.MinSize)
		out.X = start.X + start.W - out.W
	} else {
		out.W = max(start.W+d.X, domain.MinSize)
	}
	if c.top() {
		out.H = max(start.H-d.Y, domain.MinSize)
		out.Y = start.Y + start.H - out.H
	} else {
		out.H = max(start.H+d.Y, domain.MinSize)
	}
	return out
}

// HandleDown starts a resize from corner c of the selected element. The
// press is not treated as a selection or drag.
func (e *Editor) HandleDown(c Corner, p domain.Point) {
	e.endGesture()
	id, ok := e.sel.ID()
	if !ok {
		return
	}
	el, _ := e.reg.Get(id)
	e.active = &resizeController{ed: e, id: id, corner: c, start: el.Bounds(), startPtr: p}
}
