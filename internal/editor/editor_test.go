/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"golayout/internal/domain"
)

type rig struct {
	ed      *Editor
	surface *MemorySurface
	panel   *MemoryPanel
	layers  *MemoryLayers
	store   *MemoryPersister
	errs    []error
	events  []string
}

func newRig(t *testing.T, mut ...func(*Options)) *rig {
	t.Helper()
	r := &rig{
		surface: NewMemorySurface(domain.Size{W: 800, H: 600}),
		panel:   &MemoryPanel{},
		layers:  &MemoryLayers{},
		store:   &MemoryPersister{},
	}
	n := 0
	opts := Options{
		Surface:   r.surface,
		Panel:     r.panel,
		Layers:    r.layers,
		Persister: r.store,
		IDGen: func() string {
			n++
			return fmt.Sprintf("el_%d", n)
		},
		OnError: func(err error) { r.errs = append(r.errs, err) },
		OnEvent: func(name string, _ map[string]any) { r.events = append(r.events, name) },
	}
	for _, m := range mut {
		m(&opts)
	}
	r.ed = New(opts)
	return r
}

func (r *rig) create(t *testing.T, k domain.Kind) domain.Element {
	t.Helper()
	el, err := r.ed.Create(k, domain.Attrs{})
	if err != nil {
		t.Fatalf("create %s: %v", k, err)
	}
	return el
}

func ids(elems []domain.Element) []string {
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = e.ID
	}
	return out
}

// checkStack asserts the surface paints in registry order.
func checkStack(t *testing.T, r *rig) {
	t.Helper()
	for i, el := range r.ed.Elements() {
		n, ok := r.surface.Node(el.ID)
		if !ok {
			t.Fatalf("no node for %s", el.ID)
		}
		if n.Stack != i {
			t.Fatalf("node %s stack=%d want %d", el.ID, n.Stack, i)
		}
		if n.Element != el {
			t.Fatalf("node %s out of sync: %+v vs %+v", el.ID, n.Element, el)
		}
	}
	if len(r.surface.Nodes()) != r.ed.Registry().Len() {
		t.Fatalf("surface has %d nodes, registry %d", len(r.surface.Nodes()), r.ed.Registry().Len())
	}
}

func TestExampleScenario(t *testing.T) {
	r := newRig(t)
	el := r.create(t, domain.KindRect)
	if el.Pos != (domain.Point{X: 50, Y: 50}) || el.Size != (domain.Size{W: 120, H: 80}) {
		t.Fatalf("defaults: %+v", el)
	}

	// First press selects, second starts the drag.
	r.ed.PointerDown(el.ID, domain.Point{X: 60, Y: 60})
	r.ed.PointerUp()
	r.ed.PointerDown(el.ID, domain.Point{X: 60, Y: 60})
	r.ed.PointerMove(domain.Point{X: 90, Y: 80})
	r.ed.PointerUp()
	got, _ := r.ed.Element(el.ID)
	if got.Pos != (domain.Point{X: 80, Y: 70}) {
		t.Fatalf("after drag: %+v", got.Pos)
	}

	r.ed.HandleDown(BottomRight, domain.Point{X: 200, Y: 150})
	r.ed.PointerMove(domain.Point{X: 250, Y: 160})
	r.ed.PointerUp()
	got, _ = r.ed.Element(el.ID)
	if got.Size != (domain.Size{W: 170, H: 90}) || got.Pos != (domain.Point{X: 80, Y: 70}) {
		t.Fatalf("after resize: %+v", got)
	}

	saves := r.store.Saves
	r.ed.Raise()
	if r.store.Saves != saves {
		t.Fatalf("raise at top should be a no-op")
	}
	if r.ed.Registry().IndexOf(el.ID) != 0 {
		t.Fatalf("order changed")
	}

	if len(r.store.Saved) != 1 {
		t.Fatalf("saved: %+v", r.store.Saved)
	}
	s := r.store.Saved[0]
	if s.Kind != domain.KindRect || s.Pos.X != 80 || s.Pos.Y != 70 || s.Size.W != 170 || s.Size.H != 90 || s.Fill != "#22c55e" {
		t.Fatalf("snapshot record: %+v", s)
	}
	checkStack(t, r)
}

func TestCreateSnapshotsAndRendersLayers(t *testing.T) {
	r := newRig(t)
	a := r.create(t, domain.KindRect)
	b := r.create(t, domain.KindText)
	if r.store.Saves != 2 {
		t.Fatalf("saves=%d", r.store.Saves)
	}
	if len(r.layers.Items) != 2 || r.layers.Items[0].ID != a.ID || r.layers.Items[1].ID != b.ID {
		t.Fatalf("layers: %+v", r.layers.Items)
	}
	if r.layers.Items[1].Label() != "text - el_2" {
		t.Fatalf("label: %q", r.layers.Items[1].Label())
	}
	if strings.Join(r.events, ",") != "element_created,element_created" {
		t.Fatalf("events: %v", r.events)
	}
	if _, err := r.ed.Create(domain.Kind("circle"), domain.Attrs{}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("want ErrUnknownKind, got %v", err)
	}
	checkStack(t, r)
}

func TestSingleSelectionAndHandles(t *testing.T) {
	r := newRig(t)
	a := r.create(t, domain.KindRect)
	b := r.create(t, domain.KindText)

	r.ed.Select(a.ID)
	r.ed.Select(b.ID)
	r.ed.Select(b.ID)
	if owners := r.surface.HandleOwners(); len(owners) != 1 || owners[0] != b.ID {
		t.Fatalf("handle owners: %v", owners)
	}
	if id, ok := r.ed.Selected(); !ok || id != b.ID {
		t.Fatalf("selected: %q %v", id, ok)
	}
	if !r.panel.Values.TextVisible || r.panel.Values.Text != "Text" || r.panel.Values.Width != "120" {
		t.Fatalf("panel: %+v", r.panel.Values)
	}
	active := 0
	for _, it := range r.layers.Items {
		if it.Active {
			active++
			if it.ID != b.ID {
				t.Fatalf("wrong active row %s", it.ID)
			}
		}
	}
	if active != 1 {
		t.Fatalf("active rows: %d", active)
	}

	r.ed.ClickCanvas()
	if len(r.surface.HandleOwners()) != 0 {
		t.Fatalf("handles left after deselect: %v", r.surface.HandleOwners())
	}
	if r.panel.Values != EmptyPanel {
		t.Fatalf("panel not cleared: %+v", r.panel.Values)
	}
	shown := r.panel.Shown
	r.ed.Deselect()
	if r.panel.Shown != shown {
		t.Fatalf("deselect without selection should do nothing")
	}
	r.ed.Select("el_missing")
	if _, ok := r.ed.Selected(); ok {
		t.Fatalf("unknown id selected")
	}
}

func TestPointerDownOnUnselectedOnlySelects(t *testing.T) {
	r := newRig(t)
	el := r.create(t, domain.KindRect)
	r.ed.PointerDown(el.ID, domain.Point{X: 60, Y: 60})
	if r.ed.InGesture() {
		t.Fatalf("first press must not start a drag")
	}
	r.ed.PointerMove(domain.Point{X: 160, Y: 160})
	got, _ := r.ed.Element(el.ID)
	if got.Pos != el.Pos {
		t.Fatalf("moved without drag: %+v", got.Pos)
	}
}

func TestDragClampsToCanvas(t *testing.T) {
	r := newRig(t)
	el := r.create(t, domain.KindRect)
	r.ed.Select(el.ID)
	r.ed.PointerDown(el.ID, domain.Point{X: 0, Y: 0})
	for _, p := range []domain.Point{{X: -500, Y: -500}, {X: 2000, Y: 30}, {X: 10, Y: 9000}} {
		r.ed.PointerMove(p)
		got, _ := r.ed.Element(el.ID)
		if got.Pos.X < 0 || got.Pos.X > 800-got.Size.W || got.Pos.Y < 0 || got.Pos.Y > 600-got.Size.H {
			t.Fatalf("clamp violated at %v: %+v", p, got.Pos)
		}
	}
	got, _ := r.ed.Element(el.ID)
	if got.Pos != (domain.Point{X: 60, Y: 520}) {
		t.Fatalf("final pos: %+v", got.Pos)
	}
	saves := r.store.Saves
	r.ed.PointerUp()
	if r.store.Saves != saves+1 || r.ed.InGesture() {
		t.Fatalf("pointer up must snapshot and end the drag")
	}
	r.ed.PointerUp()
	if r.store.Saves != saves+1 {
		t.Fatalf("pointer up without gesture should not snapshot")
	}
}

func TestResizeCorners(t *testing.T) {
	cases := []struct {
		corner Corner
		delta  domain.Point
		want   domain.Rect
	}{
		{BottomRight, domain.Point{X: 50, Y: 10}, domain.R(50, 50, 170, 90)},
		{TopLeft, domain.Point{X: 20, Y: 10}, domain.R(70, 60, 100, 70)},
		{TopRight, domain.Point{X: 10, Y: -10}, domain.R(50, 40, 130, 90)},
		{BottomLeft, domain.Point{X: -10, Y: 5}, domain.R(40, 50, 130, 85)},
		{TopLeft, domain.Point{X: 500, Y: 500}, domain.R(140, 100, 30, 30)},
		{BottomRight, domain.Point{X: -500, Y: -500}, domain.R(50, 50, 30, 30)},
	}
	for _, c := range cases {
		t.Run(c.corner.String(), func(t *testing.T) {
			r := newRig(t)
			el := r.create(t, domain.KindRect)
			r.ed.Select(el.ID)
			r.ed.HandleDown(c.corner, domain.Point{X: 100, Y: 100})
			if !r.ed.InGesture() {
				t.Fatalf("resize did not start")
			}
			r.ed.PointerMove(domain.Point{X: 100, Y: 100}.Add(c.delta))
			r.ed.PointerUp()
			got, _ := r.ed.Element(el.ID)
			if got.Bounds() != c.want {
				t.Fatalf("%s %v: got %+v want %+v", c.corner, c.delta, got.Bounds(), c.want)
			}
			if got.Size.W < domain.MinSize || got.Size.H < domain.MinSize {
				t.Fatalf("min size violated: %+v", got.Size)
			}
		})
	}
}

func TestHandleDownWithoutSelectionIgnored(t *testing.T) {
	r := newRig(t)
	r.create(t, domain.KindRect)
	r.ed.HandleDown(BottomRight, domain.Point{})
	if r.ed.InGesture() {
		t.Fatalf("resize started without selection")
	}
}

func TestSelectionChangeEndsGesture(t *testing.T) {
	for name, change := range map[string]func(*rig, string){
		"select":       func(r *rig, other string) { r.ed.Select(other) },
		"select layer": func(r *rig, _ string) { r.ed.SelectLayer(1) },
		"deselect":     func(r *rig, _ string) { r.ed.Deselect() },
	} {
		t.Run(name, func(t *testing.T) {
			r := newRig(t)
			el := r.create(t, domain.KindRect)
			other := r.create(t, domain.KindText)
			r.ed.Select(el.ID)
			r.ed.PointerDown(el.ID, domain.Point{X: 0, Y: 0})
			r.ed.PointerMove(domain.Point{X: 10, Y: 0})
			saves := r.store.Saves
			change(r, other.ID)
			if r.ed.InGesture() || r.store.Saves != saves+1 {
				t.Fatalf("gesture must end with a snapshot: active=%v saves=%d", r.ed.InGesture(), r.store.Saves-saves)
			}
			r.ed.PointerMove(domain.Point{X: 200, Y: 200})
			if got, _ := r.ed.Element(el.ID); got.Pos != (domain.Point{X: 60, Y: 50}) {
				t.Fatalf("element kept moving after selection changed: %+v", got.Pos)
			}
		})
	}
}

func TestNewGestureEndsStaleOne(t *testing.T) {
	r := newRig(t)
	el := r.create(t, domain.KindRect)
	r.ed.Select(el.ID)
	r.ed.PointerDown(el.ID, domain.Point{X: 0, Y: 0})
	r.ed.PointerMove(domain.Point{X: 10, Y: 0})
	saves := r.store.Saves
	// Missed pointer-up; the next press closes the stale drag first.
	r.ed.HandleDown(BottomRight, domain.Point{X: 0, Y: 0})
	if r.store.Saves != saves+1 {
		t.Fatalf("stale gesture not ended")
	}
	r.ed.PointerMove(domain.Point{X: 10, Y: 10})
	got, _ := r.ed.Element(el.ID)
	if got.Pos != (domain.Point{X: 60, Y: 50}) || got.Size != (domain.Size{W: 130, H: 90}) {
		t.Fatalf("gestures overlapped: %+v", got)
	}
}

func TestReorderKeepsPaintOrder(t *testing.T) {
	r := newRig(t)
	a := r.create(t, domain.KindRect)
	b := r.create(t, domain.KindRect)
	c := r.create(t, domain.KindText)

	r.ed.Reorder(a.ID, Raise)
	if got := strings.Join(ids(r.ed.Elements()), ","); got != b.ID+","+a.ID+","+c.ID {
		t.Fatalf("after raise: %s", got)
	}
	checkStack(t, r)

	r.ed.Select(c.ID)
	r.ed.Lower()
	r.ed.Lower()
	if got := strings.Join(ids(r.ed.Elements()), ","); got != c.ID+","+b.ID+","+a.ID {
		t.Fatalf("after lower: %s", got)
	}
	saves := r.store.Saves
	r.ed.Lower()
	if r.store.Saves != saves {
		t.Fatalf("lower at bottom should be a no-op")
	}
	checkStack(t, r)
	if r.layers.Items[0].ID != c.ID || !r.layers.Items[0].Active {
		t.Fatalf("layer list: %+v", r.layers.Items)
	}
}

func TestRemoveClearsSelection(t *testing.T) {
	r := newRig(t)
	a := r.create(t, domain.KindRect)
	b := r.create(t, domain.KindRect)
	r.ed.Select(a.ID)
	r.ed.Remove(a.ID)
	if _, ok := r.ed.Selected(); ok {
		t.Fatalf("selection survived removal")
	}
	if r.ed.Registry().Len() != 1 || r.ed.Registry().IndexOf(b.ID) != 0 {
		t.Fatalf("registry: %v", ids(r.ed.Elements()))
	}
	if r.panel.Values != EmptyPanel || len(r.surface.HandleOwners()) != 0 {
		t.Fatalf("panel or handles not cleared")
	}
	checkStack(t, r)

	saves := r.store.Saves
	r.ed.Remove(a.ID)
	if r.store.Saves != saves {
		t.Fatalf("removing an absent id should be a no-op")
	}
	c := r.create(t, domain.KindRect)
	if c.ID == a.ID {
		t.Fatalf("id reused")
	}
}

func TestKeyDown(t *testing.T) {
	r := newRig(t)
	el := r.create(t, domain.KindRect)

	r.ed.KeyDown(KeyArrowRight, false)
	if got, _ := r.ed.Element(el.ID); got.Pos != el.Pos {
		t.Fatalf("nudge without selection")
	}

	r.ed.Select(el.ID)
	saves := r.store.Saves
	r.ed.KeyDown(KeyArrowRight, false)
	r.ed.KeyDown(KeyArrowDown, false)
	r.ed.KeyDown(KeyArrowDown, true)
	r.ed.KeyDown(Key("a"), false)
	got, _ := r.ed.Element(el.ID)
	if got.Pos != (domain.Point{X: 55, Y: 55}) {
		t.Fatalf("nudged pos: %+v", got.Pos)
	}
	if r.store.Saves != saves+2 {
		t.Fatalf("each arrow press should snapshot: %d", r.store.Saves-saves)
	}

	for i := 0; i < 20; i++ {
		r.ed.KeyDown(KeyArrowLeft, false)
		r.ed.KeyDown(KeyArrowUp, false)
	}
	got, _ = r.ed.Element(el.ID)
	if got.Pos != (domain.Point{}) {
		t.Fatalf("nudge should clamp at origin: %+v", got.Pos)
	}

	r.ed.KeyDown(KeyDelete, true)
	if r.ed.Registry().Len() != 1 {
		t.Fatalf("delete from a text input must be ignored")
	}
	r.ed.KeyDown(KeyDelete, false)
	if r.ed.Registry().Len() != 0 {
		t.Fatalf("delete key did not remove")
	}
	if _, ok := r.ed.Selected(); ok {
		t.Fatalf("selection not cleared")
	}
}

func TestFreeNudge(t *testing.T) {
	r := newRig(t, func(o *Options) {
		o.FreeNudge = true
		o.NudgeStep = 60
	})
	el := r.create(t, domain.KindRect)
	r.ed.Select(el.ID)
	r.ed.KeyDown(KeyArrowLeft, false)
	got, _ := r.ed.Element(el.ID)
	if got.Pos.X != -10 {
		t.Fatalf("free nudge x=%d", got.Pos.X)
	}
}

func TestEditProperties(t *testing.T) {
	r := newRig(t)
	rect := r.create(t, domain.KindRect)
	text := r.create(t, domain.KindText)

	r.ed.EditProperties(PropertyEdit{Width: domain.Int(200)})
	if got, _ := r.ed.Element(text.ID); got.Size.W != 120 {
		t.Fatalf("edit without selection applied")
	}

	r.ed.Select(rect.ID)
	r.ed.EditProperties(PropertyEdit{Width: domain.Int(10), Height: domain.Int(40), Fill: domain.String("#ff0000"), Text: domain.String("nope")})
	got, _ := r.ed.Element(rect.ID)
	if got.Size != (domain.Size{W: 30, H: 40}) || got.Fill != "#ff0000" || got.Text != "" {
		t.Fatalf("rect edit: %+v", got)
	}
	r.ed.EditProperties(PropertyEdit{Fill: domain.String("bogus")})
	if got, _ := r.ed.Element(rect.ID); got.Fill != "#ff0000" {
		t.Fatalf("invalid fill applied: %q", got.Fill)
	}

	r.ed.Select(text.ID)
	r.ed.EditProperties(PropertyEdit{Text: domain.String("Hello <b>")})
	if got, _ := r.ed.Element(text.ID); got.Text != "Hello <b>" {
		t.Fatalf("text edit: %+v", got)
	}
	if n, _ := r.surface.Node(text.ID); n.Element.Text != "Hello <b>" {
		t.Fatalf("surface not updated")
	}
	if p := r.ed.Panel(); p.Text != "Hello <b>" || !p.TextVisible {
		t.Fatalf("panel: %+v", p)
	}
}

func TestSelectLayer(t *testing.T) {
	r := newRig(t)
	r.create(t, domain.KindRect)
	b := r.create(t, domain.KindText)
	r.ed.SelectLayer(1)
	if id, _ := r.ed.Selected(); id != b.ID {
		t.Fatalf("selected %q", id)
	}
	r.ed.SelectLayer(5)
	if id, _ := r.ed.Selected(); id != b.ID {
		t.Fatalf("out of range row changed selection")
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	r := newRig(t)
	a := r.create(t, domain.KindRect)
	b := r.create(t, domain.KindText)
	c := r.create(t, domain.KindRect)
	r.ed.Select(b.ID)
	r.ed.EditProperties(PropertyEdit{Text: domain.String("Title"), Fill: domain.String("rgb(1, 2, 3)")})
	r.ed.KeyDown(KeyArrowDown, false)
	r.ed.Reorder(c.ID, Lower)
	r.ed.Remove(a.ID)
	want := r.ed.Elements()

	r2 := newRig(t)
	r2.store.Saved = r.store.Saved
	if err := r2.ed.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got := r2.ed.Elements()
	if len(got) != len(want) {
		t.Fatalf("len %d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("element %d: %+v want %+v", i, got[i], want[i])
		}
	}
	checkStack(t, r2)
	if r2.store.Saves != 0 {
		t.Fatalf("clean restore should not rewrite the layout")
	}
	// The generator yields el_1 then el_2; el_2 and el_3 are restored ids.
	r2.create(t, domain.KindRect)
	if n := r2.create(t, domain.KindRect); n.ID != "el_4" {
		t.Fatalf("create reused a restored id: %s", n.ID)
	}
}

func TestRestoreSkipsDuplicatesAndReplaces(t *testing.T) {
	r := newRig(t)
	r.create(t, domain.KindRect)
	dup := domain.NewElement("el_x", domain.KindRect, domain.Attrs{})
	r.store.Saved = []domain.Element{dup, dup, {ID: "el_y", Kind: "circle"}}
	if err := r.ed.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := ids(r.ed.Elements()); len(got) != 1 || got[0] != "el_x" {
		t.Fatalf("registry: %v", got)
	}
	if len(r.surface.Nodes()) != 1 {
		t.Fatalf("stale nodes: %+v", r.surface.Nodes())
	}
	if len(r.store.Saved) != 1 {
		t.Fatalf("skips should rewrite the layout: %+v", r.store.Saved)
	}
}

func TestSnapshotErrorsReported(t *testing.T) {
	r := newRig(t)
	boom := errors.New("quota exceeded")
	r.store.Err = boom
	r.create(t, domain.KindRect)
	if len(r.errs) != 1 || !errors.Is(r.errs[0], boom) {
		t.Fatalf("errors: %v", r.errs)
	}
	if !errors.Is(r.ed.LastError(), boom) {
		t.Fatalf("last error: %v", r.ed.LastError())
	}
	r.store.Err = nil
	if err := r.ed.Snapshot(); err != nil || r.ed.LastError() != nil {
		t.Fatalf("successful snapshot should clear last error: %v", r.ed.LastError())
	}
}

func TestDefaultsWithoutCollaborators(t *testing.T) {
	ed := New(Options{})
	el, err := ed.Create(domain.KindText, domain.Attrs{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(el.ID, "el_") || len(el.ID) != len("el_")+36 {
		t.Fatalf("id: %q", el.ID)
	}
	if ed.Canvas() != (domain.Size{W: 800, H: 600}) {
		t.Fatalf("canvas: %+v", ed.Canvas())
	}
	if err := ed.Restore(); err != nil {
		t.Fatalf("restore without persister: %v", err)
	}
}

func TestParseCorner(t *testing.T) {
	for _, c := range Corners {
		got, ok := ParseCorner(c.String())
		if !ok || got != c {
			t.Fatalf("round trip %v", c)
		}
	}
	if _, ok := ParseCorner("mid"); ok {
		t.Fatalf("mid accepted")
	}
}
