/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ui hosts the desktop surface of the editor. The Fyne window is
// only compiled with -tags fyne; the scene model it draws from is plain Go
// so hit testing works headless.
package ui

import (
	"golayout/internal/domain"
	"golayout/internal/editor"
)

// HandleSize is the edge length of a resize handle in canvas pixels.
const HandleSize = 10

// Scene is the retained set of nodes the canvas draws. It implements
// editor.Surface; OnChange fires after every mutation so the widget can
// refresh.
type Scene struct {
	*editor.MemorySurface
	OnChange func()
}

// NewScene returns an empty scene for a canvas of the given size.
func NewScene(canvas domain.Size) *Scene {
	return &Scene{MemorySurface: editor.NewMemorySurface(canvas)}
}

func (s *Scene) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

func (s *Scene) Mount(e domain.Element, stack int) {
	s.MemorySurface.Mount(e, stack)
	s.changed()
}

func (s *Scene) Update(e domain.Element) {
	s.MemorySurface.Update(e)
	s.changed()
}

func (s *Scene) Unmount(id string) {
	s.MemorySurface.Unmount(id)
	s.changed()
}

func (s *Scene) SetStack(id string, stack int) {
	s.MemorySurface.SetStack(id, stack)
	s.changed()
}

func (s *Scene) AttachHandles(id string) {
	s.MemorySurface.AttachHandles(id)
	s.changed()
}

func (s *Scene) DetachHandles(id string) {
	s.MemorySurface.DetachHandles(id)
	s.changed()
}

// HandleRect returns the square handle centered on corner c of r.
func HandleRect(r domain.Rect, c editor.Corner) domain.Rect {
	var p domain.Point
	switch c {
	case editor.TopLeft:
		p = r.Min()
	case editor.TopRight:
		p = domain.Point{X: r.Max().X, Y: r.Min().Y}
	case editor.BottomLeft:
		p = domain.Point{X: r.Min().X, Y: r.Max().Y}
	default:
		p = r.Max()
	}
	half := HandleSize / 2
	return domain.R(p.X-half, p.Y-half, HandleSize, HandleSize)
}

// Hit is the result of a pointer press on the scene.
type Hit struct {
	ID     string
	Corner editor.Corner
	Handle bool
}

// HitTest finds what lies under p. Handles win over bodies and the top
// most element wins among bodies. ok is false for empty canvas.
func (s *Scene) HitTest(p domain.Point) (Hit, bool) {
	nodes := s.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if !n.Handles {
			continue
		}
		for _, c := range editor.Corners {
			if HandleRect(n.Element.Bounds(), c).Contains(p) {
				return Hit{ID: n.Element.ID, Corner: c, Handle: true}, true
			}
		}
	}
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Element.Bounds().Contains(p) {
			return Hit{ID: nodes[i].Element.ID}, true
		}
	}
	return Hit{}, false
}

// Press routes a pointer press at p to the editor: handles start a resize,
// bodies select or drag, empty canvas deselects.
func Press(ed *editor.Editor, s *Scene, p domain.Point) {
	h, ok := s.HitTest(p)
	switch {
	case !ok:
		ed.ClickCanvas()
	case h.Handle:
		ed.HandleDown(h.Corner, p)
	default:
		ed.PointerDown(h.ID, p)
	}
}
