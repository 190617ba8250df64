/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"testing"

	"golayout/internal/domain"
	"golayout/internal/editor"
)

func newSceneEditor(t *testing.T) (*editor.Editor, *Scene, *int) {
	t.Helper()
	changes := 0
	s := NewScene(domain.Size{W: 800, H: 600})
	s.OnChange = func() { changes++ }
	n := 0
	ed := editor.New(editor.Options{Surface: s, IDGen: func() string {
		n++
		return "el_" + string(rune('0'+n))
	}})
	return ed, s, &changes
}

func TestHandleRect(t *testing.T) {
	r := domain.R(50, 50, 120, 80)
	if got := HandleRect(r, editor.TopLeft); got != domain.R(45, 45, 10, 10) {
		t.Fatalf("tl = %+v", got)
	}
	if got := HandleRect(r, editor.BottomRight); got != domain.R(165, 125, 10, 10) {
		t.Fatalf("br = %+v", got)
	}
	if got := HandleRect(r, editor.TopRight); got != domain.R(165, 45, 10, 10) {
		t.Fatalf("tr = %+v", got)
	}
}

func TestHitTestPrefersTopmostAndHandles(t *testing.T) {
	ed, s, changes := newSceneEditor(t)
	a, _ := ed.Create(domain.KindRect, domain.Attrs{})
	b, _ := ed.Create(domain.KindRect, domain.Attrs{X: domain.Int(100), Y: domain.Int(100)})
	if *changes == 0 {
		t.Fatalf("scene changes not signalled")
	}
	if h, ok := s.HitTest(domain.Point{X: 120, Y: 110}); !ok || h.ID != b.ID || h.Handle {
		t.Fatalf("overlap hit = %+v %v", h, ok)
	}
	if h, ok := s.HitTest(domain.Point{X: 60, Y: 60}); !ok || h.ID != a.ID {
		t.Fatalf("lower hit = %+v %v", h, ok)
	}
	if _, ok := s.HitTest(domain.Point{X: 700, Y: 500}); ok {
		t.Fatalf("empty canvas hit")
	}

	ed.Select(a.ID)
	// a's bottom-right handle sits inside b's body.
	h, ok := s.HitTest(domain.Point{X: 170, Y: 130})
	if !ok || !h.Handle || h.ID != a.ID || h.Corner != editor.BottomRight {
		t.Fatalf("handle hit = %+v %v", h, ok)
	}
}

func TestPressRoutesToEditor(t *testing.T) {
	ed, s, _ := newSceneEditor(t)
	el, _ := ed.Create(domain.KindRect, domain.Attrs{})

	Press(ed, s, domain.Point{X: 60, Y: 60})
	if id, ok := ed.Selected(); !ok || id != el.ID {
		t.Fatalf("press did not select")
	}
	Press(ed, s, domain.Point{X: 60, Y: 60})
	ed.PointerMove(domain.Point{X: 90, Y: 80})
	ed.PointerUp()
	if got, _ := ed.Element(el.ID); got.Pos != (domain.Point{X: 80, Y: 70}) {
		t.Fatalf("drag pos = %+v", got.Pos)
	}

	// bottom-right handle of (80,70) 120x80
	Press(ed, s, domain.Point{X: 200, Y: 150})
	ed.PointerMove(domain.Point{X: 250, Y: 160})
	ed.PointerUp()
	if got, _ := ed.Element(el.ID); got.Size != (domain.Size{W: 170, H: 90}) {
		t.Fatalf("resize size = %+v", got.Size)
	}
	if n, _ := s.Node(el.ID); n.Element.Size != (domain.Size{W: 170, H: 90}) {
		t.Fatalf("scene not updated: %+v", n.Element)
	}

	Press(ed, s, domain.Point{X: 700, Y: 500})
	if _, ok := ed.Selected(); ok {
		t.Fatalf("canvas press did not deselect")
	}
}
