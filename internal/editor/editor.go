/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the application root of golayout. An Editor owns the
// element Registry and the Selection, routes pointer, keyboard and panel
// input to the interaction controllers, projects every model change onto
// the attached surfaces, and snapshots the layout after each mutation.
//
// An Editor is not safe for concurrent use. Callers that receive events on
// several goroutines serialize them, see internal/server.
package editor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"golayout/internal/domain"
	applog "golayout/internal/log"
)

// DefaultNudgeStep is the arrow key move distance in pixels.
const DefaultNudgeStep = 5

// ErrUnknownKind is returned by Create for kinds other than rect and text.
var ErrUnknownKind = errors.New("unknown element kind")

// Persister stores and loads the layout. Save receives every element
// bottom first. Load returns the elements to replay in paint order; it may
// return elements together with an error when it recovered from damage.
type Persister interface {
	Save(elems []domain.Element) error
	Load() ([]domain.Element, error)
}

// Options configures an Editor. Zero values select sensible defaults.
type Options struct {
	Surface   Surface
	Panel     PropertyPanel
	Layers    LayerList
	Persister Persister

	// Canvas is used when Surface is nil.
	Canvas domain.Size

	// NudgeStep defaults to DefaultNudgeStep.
	NudgeStep int

	// FreeNudge disables canvas clamping for arrow key moves.
	FreeNudge bool

	// IDGen returns fresh element ids; defaults to "el_" + UUID.
	IDGen func() string

	// OnError receives storage failures. They are logged either way.
	OnError func(error)

	// OnEvent receives usage events such as element_created.
	OnEvent func(name string, props map[string]any)

	Logger *slog.Logger
}

// Editor coordinates the layout model and its projections.
type Editor struct {
	reg Registry
	sel Selection

	surface Surface
	panel   PropertyPanel
	layers  LayerList
	store   Persister

	nudgeStep int
	freeNudge bool
	idGen     func() string
	onError   func(error)
	onEvent   func(string, map[string]any)
	log       *slog.Logger

	active  gesture
	lastErr error
}

// NewID returns a fresh element id.
func NewID() string { return "el_" + uuid.NewString() }

// New creates an Editor with an empty Registry.
func New(opts Options) *Editor {
	e := &Editor{
		surface:   opts.Surface,
		panel:     opts.Panel,
		layers:    opts.Layers,
		store:     opts.Persister,
		nudgeStep: opts.NudgeStep,
		freeNudge: opts.FreeNudge,
		idGen:     opts.IDGen,
		onError:   opts.OnError,
		onEvent:   opts.OnEvent,
		log:       opts.Logger,
	}
	if e.surface == nil {
		c := opts.Canvas
		if c.W <= 0 || c.H <= 0 {
			c = domain.Size{W: 800, H: 600}
		}
		e.surface = nopSurface{canvas: c}
	}
	if e.panel == nil {
		e.panel = nopPanel{}
	}
	if e.layers == nil {
		e.layers = nopLayers{}
	}
	if e.nudgeStep <= 0 {
		e.nudgeStep = DefaultNudgeStep
	}
	if e.idGen == nil {
		e.idGen = NewID
	}
	if e.log == nil {
		e.log = applog.WithComponent("editor")
	}
	return e
}

// Registry exposes the element registry for reading.
func (e *Editor) Registry() *Registry { return &e.reg }

// Elements returns copies of all elements, bottom first.
func (e *Editor) Elements() []domain.Element { return e.reg.Elements() }

// Element returns the element with the given id.
func (e *Editor) Element(id string) (domain.Element, bool) { return e.reg.Get(id) }

// Selected returns the selected id, if any.
func (e *Editor) Selected() (string, bool) { return e.sel.ID() }

// Canvas returns the surface's content area.
func (e *Editor) Canvas() domain.Size { return e.surface.CanvasSize() }

// LastError returns the most recent storage failure, or nil.
func (e *Editor) LastError() error { return e.lastErr }

// Create adds a new element of kind k on top of the stack and snapshots.
func (e *Editor) Create(k domain.Kind, a domain.Attrs) (domain.Element, error) {
	if !k.Valid() {
		return domain.Element{}, fmt.Errorf("create %q: %w", k, ErrUnknownKind)
	}
	a.ID = ""
	el, _ := e.insert(k, a)
	e.renderLayers()
	e.snapshot()
	e.event("element_created", map[string]any{"kind": string(k)})
	e.log.Debug("element created", slog.String("element", el.ID), slog.String("kind", string(k)))
	return el, nil
}

// insert is the shared creation path of Create and Restore. A non-empty
// a.ID is kept; it reports false when that id is already live.
func (e *Editor) insert(k domain.Kind, a domain.Attrs) (domain.Element, bool) {
	id := a.ID
	if id == "" {
		// Restored ids may come from another generator.
		for id == "" || e.reg.IndexOf(id) >= 0 {
			id = e.idGen()
		}
	}
	el := domain.NewElement(id, k, a)
	if !e.reg.add(el) {
		return domain.Element{}, false
	}
	e.surface.Mount(el, e.reg.Len()-1)
	return el, true
}

// Remove deletes the element with the given id. Absent ids are ignored.
func (e *Editor) Remove(id string) {
	if e.reg.IndexOf(id) < 0 {
		return
	}
	if e.active != nil && e.active.target() == id {
		e.active = nil
	}
	if e.sel.Is(id) {
		e.surface.DetachHandles(id)
		e.sel.clear()
		e.panel.Show(EmptyPanel)
	}
	e.reg.remove(id)
	e.surface.Unmount(id)
	e.resyncStack()
	e.renderLayers()
	e.snapshot()
	e.event("element_deleted", nil)
	applog.WithElement(e.log, id).Debug("element removed")
}

// Reorder swaps id with its neighbour in direction d. It is a no-op at
// either end of the stack.
func (e *Editor) Reorder(id string, d Direction) {
	i := e.reg.IndexOf(id)
	if i < 0 || !e.reg.swap(i, d) {
		return
	}
	e.resyncStack()
	e.renderLayers()
	e.snapshot()
}

// Raise moves the selected element one step up.
func (e *Editor) Raise() {
	if id, ok := e.sel.ID(); ok {
		e.Reorder(id, Raise)
	}
}

// Lower moves the selected element one step down.
func (e *Editor) Lower() {
	if id, ok := e.sel.ID(); ok {
		e.Reorder(id, Lower)
	}
}

// resyncStack recomputes every node's stacking hint from its index.
func (e *Editor) resyncStack() {
	for i := 0; i < e.reg.Len(); i++ {
		e.surface.SetStack(e.reg.elems[i].ID, i)
	}
}

// Select makes id the current selection. Unknown ids are ignored. A gesture
// on the previous selection ends first.
func (e *Editor) Select(id string) {
	el, ok := e.reg.Get(id)
	if !ok || e.sel.Is(id) {
		return
	}
	e.endGesture()
	e.Deselect()
	e.sel.set(id)
	e.surface.AttachHandles(id)
	e.panel.Show(panelFor(el))
	e.renderLayers()
}

// Deselect clears the selection and detaches its handles, ending any
// gesture on it.
func (e *Editor) Deselect() {
	id, ok := e.sel.ID()
	if !ok {
		return
	}
	e.endGesture()
	e.surface.DetachHandles(id)
	e.sel.clear()
	e.panel.Show(EmptyPanel)
	e.renderLayers()
}

// ClickCanvas handles a click on empty canvas space.
func (e *Editor) ClickCanvas() { e.Deselect() }

// Snapshot persists the current layout. Failures are also reported
// through Options.OnError.
func (e *Editor) Snapshot() error {
	if e.store == nil {
		return nil
	}
	if err := e.store.Save(e.reg.Elements()); err != nil {
		err = fmt.Errorf("snapshot: %w", err)
		e.report(err)
		return err
	}
	e.lastErr = nil
	return nil
}

func (e *Editor) snapshot() { _ = e.Snapshot() }

// Restore replaces the registry with the persisted layout. Elements are
// replayed through the creation path; ids already seen are skipped. Load
// failures are reported and leave whatever could be recovered.
func (e *Editor) Restore() error {
	if e.store == nil {
		return nil
	}
	e.reset()
	elems, loadErr := e.store.Load()
	if loadErr != nil {
		loadErr = fmt.Errorf("restore: %w", loadErr)
		e.report(loadErr)
	}
	skipped := 0
	for _, p := range elems {
		if !p.Kind.Valid() {
			skipped++
			continue
		}
		if _, ok := e.insert(p.Kind, attrsOf(p)); !ok {
			skipped++
		}
	}
	e.renderLayers()
	e.log.Info("layout restored", slog.Int("elements", e.reg.Len()), slog.Int("skipped", skipped))
	// Rewrite the blob when what is live differs from what was stored.
	if loadErr != nil || skipped > 0 {
		e.snapshot()
	}
	return loadErr
}

func (e *Editor) reset() {
	e.active = nil
	e.Deselect()
	for _, el := range e.reg.elems {
		e.surface.Unmount(el.ID)
	}
	e.reg.clear()
}

func attrsOf(el domain.Element) domain.Attrs {
	a := domain.Attrs{
		ID:     el.ID,
		X:      domain.Int(el.Pos.X),
		Y:      domain.Int(el.Pos.Y),
		Width:  domain.Int(el.Size.W),
		Height: domain.Int(el.Size.H),
		Fill:   domain.String(el.Fill),
	}
	if el.Kind == domain.KindText {
		a.Text = domain.String(el.Text)
	}
	return a
}

// apply writes a changed element back to the registry and surface.
func (e *Editor) apply(el domain.Element) {
	if p := e.reg.ptr(el.ID); p != nil {
		*p = el
		e.surface.Update(el)
	}
}

func (e *Editor) report(err error) {
	e.lastErr = err
	e.log.Error("storage failure", slog.Any("err", err))
	if e.onError != nil {
		e.onError(err)
	}
}

func (e *Editor) event(name string, props map[string]any) {
	if e.onEvent != nil {
		e.onEvent(name, props)
	}
}
