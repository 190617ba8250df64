/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"

	"golayout/internal/domain"
)

// gesture is a pointer interaction in progress. The editor holds at most
// one; it ends on pointer-up, or when a new gesture begins.
type gesture interface {
	target() string
	move(p domain.Point)
	kind() string
}

// dragController moves the selected element by the pointer delta,
// keeping it inside the canvas.
type dragController struct {
	ed       *Editor
	id       string
	startPos domain.Point
	startPtr domain.Point
}

func (d *dragController) target() string { return d.id }
func (d *dragController) kind() string   { return "drag" }

func (d *dragController) move(p domain.Point) {
	el, ok := d.ed.reg.Get(d.id)
	if !ok {
		return
	}
	pos := d.startPos.Add(p.Sub(d.startPtr))
	el.Pos = domain.ClampInto(pos, el.Size, d.ed.surface.CanvasSize())
	d.ed.apply(el)
}

// PointerDown handles a press on element id at canvas point p. Pressing a
// non-selected element selects it; pressing the selected one starts a drag.
func (e *Editor) PointerDown(id string, p domain.Point) {
	e.endGesture()
	el, ok := e.reg.Get(id)
	if !ok {
		return
	}
	if !e.sel.Is(id) {
		e.Select(id)
		return
	}
	e.active = &dragController{ed: e, id: id, startPos: el.Pos, startPtr: p}
}

// PointerMove feeds the active gesture. Without one it does nothing.
func (e *Editor) PointerMove(p domain.Point) {
	if e.active != nil {
		e.active.move(p)
	}
}

// PointerUp ends the active gesture and snapshots.
func (e *Editor) PointerUp() { e.endGesture() }

// InGesture reports whether a drag or resize is in progress.
func (e *Editor) InGesture() bool { return e.active != nil }

func (e *Editor) endGesture() {
	g := e.active
	if g == nil {
		return
	}
	e.active = nil
	if el, ok := e.reg.Get(g.target()); ok {
		e.log.Debug("gesture ended",
			slog.String("gesture", g.kind()),
			slog.String("element", el.ID),
			slog.Int("x", el.Pos.X), slog.Int("y", el.Pos.Y),
			slog.Int("w", el.Size.W), slog.Int("h", el.Size.H),
		)
		if e.sel.Is(el.ID) {
			e.panel.Show(panelFor(el))
		}
	}
	e.snapshot()
}
