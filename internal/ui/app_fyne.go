//go:build fyne && cgo

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
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"golayout/internal/config"
	"golayout/internal/crash"
	"golayout/internal/domain"
	"golayout/internal/editor"
	"golayout/internal/export"
	applog "golayout/internal/log"
	"golayout/internal/session"
	"golayout/internal/telemetry"
	"golayout/internal/version"
)

// Run opens the configured layout and shows the editor window. It returns
// when the window is closed.
func Run(cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	fyneApp := app.NewWithID("golayout")
	w := fyneApp.NewWindow("golayout")
	// Restore window size from preferences
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", cfg.Canvas.Width+420)
	winH := prefs.IntWithFallback("window.height", cfg.Canvas.Height+120)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	scene := NewScene(domain.Size{W: cfg.Canvas.Width, H: cfg.Canvas.Height})
	board := NewLayoutCanvas(scene)
	props := newPropertyForm()
	layers := newLayerPane()

	sess, err := session.Open(context.Background(), cfg, session.Options{
		Surface: scene,
		Panel:   props,
		Layers:  layers,
		OnError: func(err error) { status.SetText("Save failed: " + err.Error()) },
		OnEvent: telemetry.Default().Hook(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()
	ed := sess.Editor
	defer crash.Recover(&crash.Session{Editor: ed, Dir: cfg.Storage.Dir})

	board.ed = ed
	props.ed = ed
	layers.ed = ed
	scene.OnChange = board.Refresh
	props.Show(ed.Panel())
	layers.Render(ed.LayerItems())
	if err := ed.LastError(); err != nil {
		status.SetText("Layout restored with errors: " + err.Error())
	}

	add := func(k domain.Kind) func() {
		return func() {
			el, err := ed.Create(k, domain.Attrs{})
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			ed.Select(el.ID)
			status.SetText(fmt.Sprintf("Added %s %s", k, el.ID))
		}
	}
	exportTo := func(target string) func() {
		return func() {
			sink := export.DirSink{Dir: cfg.Export.Dir}
			formats, err := sess.Export(sink, target)
			if err != nil {
				l.Error("export failed", slog.String("target", target), slog.Any("err", err))
				dialog.ShowError(err, w)
				return
			}
			names := make([]string, len(formats))
			for i, f := range formats {
				names[i] = f.FileName()
			}
			status.SetText("Exported " + strings.Join(names, ", ") + " to " + cfg.Export.Dir)
		}
	}

	toolbar := container.NewHBox(
		widget.NewButton("Add Rectangle", add(domain.KindRect)),
		widget.NewButton("Add Text", add(domain.KindText)),
		widget.NewSeparator(),
		widget.NewButton("Bring Forward", ed.Raise),
		widget.NewButton("Send Backward", ed.Lower),
		widget.NewButton("Delete", func() { ed.KeyDown(editor.KeyDelete, false) }),
		widget.NewSeparator(),
		widget.NewButton("Export JSON", exportTo("json")),
		widget.NewButton("Export HTML", exportTo("html")),
	)

	exportItems := []*fyne.MenuItem{}
	for _, f := range export.Formats {
		exportItems = append(exportItems, fyne.NewMenuItem(strings.ToUpper(string(f)), exportTo(string(f))))
	}
	exportItems = append(exportItems, fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Web preset", exportTo(string(export.PresetWeb))),
		fyne.NewMenuItem("Print preset", exportTo(string(export.PresetPrint))),
	)
	aboutMenu := fyne.NewMenu("Help", fyne.NewMenuItem("About", func() {
		dialog.ShowInformation("About", "golayout "+version.String(), w)
	}))
	w.SetMainMenu(fyne.NewMainMenu(fyne.NewMenu("Export", exportItems...), aboutMenu))

	// Keys reach the canvas only when no entry has focus.
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		k, ok := keyFor(ev.Name)
		if !ok {
			return
		}
		ed.KeyDown(k, w.Canvas().Focused() != nil)
	})

	right := container.NewVSplit(
		container.NewBorder(widget.NewLabel("Properties"), nil, nil, nil, props.form),
		container.NewBorder(widget.NewLabel("Layers"), nil, nil, nil, layers.list),
	)
	center := container.NewScroll(board)
	split := container.NewHSplit(center, right)
	split.Offset = 0.72
	w.SetContent(container.NewBorder(toolbar, status, nil, nil, split))

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		l.Info("window closed", slog.Int("elements", len(ed.Elements())))
	})
	w.ShowAndRun()
	return nil
}

func keyFor(n fyne.KeyName) (editor.Key, bool) {
	switch n {
	case fyne.KeyDelete, fyne.KeyBackspace:
		return editor.KeyDelete, true
	case fyne.KeyLeft:
		return editor.KeyArrowLeft, true
	case fyne.KeyRight:
		return editor.KeyArrowRight, true
	case fyne.KeyUp:
		return editor.KeyArrowUp, true
	case fyne.KeyDown:
		return editor.KeyArrowDown, true
	}
	return "", false
}

// fillColor converts a CSS fill to a Fyne color; unknown fills are clear.
func fillColor(s string) color.Color {
	c, ok := domain.ParseColor(s)
	if !ok {
		return color.Transparent
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// LayoutCanvas draws a Scene at 1:1 and forwards pointer input to the
// editor: mouse down presses, drags move, mouse up releases.
type LayoutCanvas struct {
	widget.BaseWidget
	scene *Scene
	ed    *editor.Editor
}

var (
	_ desktop.Mouseable = (*LayoutCanvas)(nil)
	_ fyne.Draggable    = (*LayoutCanvas)(nil)
)

func NewLayoutCanvas(s *Scene) *LayoutCanvas {
	c := &LayoutCanvas{scene: s}
	c.ExtendBaseWidget(c)
	return c
}

func toCanvas(p fyne.Position) domain.Point {
	return domain.Point{X: int(p.X + 0.5), Y: int(p.Y + 0.5)}
}

func (c *LayoutCanvas) MouseDown(e *desktop.MouseEvent) {
	if c.ed == nil || e.Button != desktop.MouseButtonPrimary {
		return
	}
	Press(c.ed, c.scene, toCanvas(e.Position))
}

func (c *LayoutCanvas) MouseUp(*desktop.MouseEvent) {
	if c.ed != nil {
		c.ed.PointerUp()
	}
}

func (c *LayoutCanvas) Dragged(e *fyne.DragEvent) {
	if c.ed != nil {
		c.ed.PointerMove(toCanvas(e.Position))
	}
}

func (c *LayoutCanvas) DragEnd() {
	if c.ed != nil {
		c.ed.PointerUp()
	}
}

func (c *LayoutCanvas) MinSize() fyne.Size {
	sz := c.scene.CanvasSize()
	return fyne.NewSize(float32(sz.W), float32(sz.H))
}

func (c *LayoutCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.White)
	bg.StrokeColor = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	bg.StrokeWidth = 1
	r := &layoutRenderer{c: c, bg: bg}
	r.rebuild()
	return r
}

// layoutRenderer recreates its objects from the scene on every refresh.
type layoutRenderer struct {
	c       *LayoutCanvas
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
}

var (
	handleColor = color.NRGBA{R: 59, G: 130, B: 246, A: 255}
	inkColor    = color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 255}
)

func (r *layoutRenderer) rebuild() {
	sz := r.c.scene.CanvasSize()
	r.bg.Resize(fyne.NewSize(float32(sz.W), float32(sz.H)))
	r.bg.Move(fyne.NewPos(0, 0))
	objs := []fyne.CanvasObject{r.bg}
	var handles []fyne.CanvasObject
	for _, n := range r.c.scene.Nodes() {
		e := n.Element
		rect := canvas.NewRectangle(fillColor(e.Fill))
		rect.Resize(fyne.NewSize(float32(e.Size.W), float32(e.Size.H)))
		rect.Move(fyne.NewPos(float32(e.Pos.X), float32(e.Pos.Y)))
		objs = append(objs, rect)
		if e.Kind == domain.KindText {
			t := canvas.NewText(e.Text, inkColor)
			t.TextSize = 14
			t.Move(fyne.NewPos(float32(e.Pos.X+6), float32(e.Pos.Y+4)))
			objs = append(objs, t)
		}
		if n.Handles {
			outline := canvas.NewRectangle(color.Transparent)
			outline.StrokeColor = handleColor
			outline.StrokeWidth = 1
			outline.Resize(rect.Size())
			outline.Move(rect.Position())
			handles = append(handles, outline)
			for _, corner := range editor.Corners {
				hr := HandleRect(e.Bounds(), corner)
				h := canvas.NewRectangle(color.White)
				h.StrokeColor = handleColor
				h.StrokeWidth = 1
				h.Resize(fyne.NewSize(float32(hr.W), float32(hr.H)))
				h.Move(fyne.NewPos(float32(hr.X), float32(hr.Y)))
				handles = append(handles, h)
			}
		}
	}
	// Handles always draw above every element.
	r.objects = append(objs, handles...)
}

func (r *layoutRenderer) Destroy()                     {}
func (r *layoutRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *layoutRenderer) MinSize() fyne.Size           { return r.c.MinSize() }
func (r *layoutRenderer) Layout(fyne.Size)             { r.rebuild() }
func (r *layoutRenderer) Refresh()                     { r.rebuild(); canvas.Refresh(r.c) }

// propertyForm is the property panel. Edits apply as they are typed;
// values pushed by the editor do not echo back.
type propertyForm struct {
	ed      *editor.Editor
	width   *widget.Entry
	height  *widget.Entry
	fill    *widget.Entry
	text    *widget.Entry
	textRow *widget.FormItem
	form    *widget.Form
	syncing bool
}

func newPropertyForm() *propertyForm {
	p := &propertyForm{
		width:  widget.NewEntry(),
		height: widget.NewEntry(),
		fill:   widget.NewEntry(),
		text:   widget.NewMultiLineEntry(),
	}
	p.textRow = widget.NewFormItem("Text", p.text)
	p.form = widget.NewForm(
		widget.NewFormItem("Width", p.width),
		widget.NewFormItem("Height", p.height),
		widget.NewFormItem("Fill", p.fill),
		p.textRow,
	)
	p.width.OnChanged = func(s string) {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			p.edit(editor.PropertyEdit{Width: &n})
		}
	}
	p.height.OnChanged = func(s string) {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			p.edit(editor.PropertyEdit{Height: &n})
		}
	}
	p.fill.OnChanged = func(s string) { p.edit(editor.PropertyEdit{Fill: &s}) }
	p.text.OnChanged = func(s string) { p.edit(editor.PropertyEdit{Text: &s}) }
	return p
}

func (p *propertyForm) edit(pe editor.PropertyEdit) {
	if p.syncing || p.ed == nil {
		return
	}
	p.ed.EditProperties(pe)
}

func (p *propertyForm) Show(v editor.PanelValues) {
	p.syncing = true
	defer func() { p.syncing = false }()
	p.width.SetText(v.Width)
	p.height.SetText(v.Height)
	p.fill.SetText(v.Fill)
	p.text.SetText(v.Text)
	if v.TextVisible {
		p.text.Show()
	} else {
		p.text.Hide()
	}
	p.form.Refresh()
}

// layerPane lists elements in paint order with the selected one highlighted.
type layerPane struct {
	ed      *editor.Editor
	items   []editor.LayerItem
	list    *widget.List
	syncing bool
}

func newLayerPane() *layerPane {
	lp := &layerPane{}
	lp.list = widget.NewList(
		func() int { return len(lp.items) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= 0 && i < len(lp.items) {
				o.(*widget.Label).SetText(lp.items[i].Label())
			}
		},
	)
	lp.list.OnSelected = func(id widget.ListItemID) {
		if lp.syncing || lp.ed == nil {
			return
		}
		lp.ed.SelectLayer(id)
	}
	return lp
}

func (lp *layerPane) Render(items []editor.LayerItem) {
	lp.syncing = true
	defer func() { lp.syncing = false }()
	lp.items = items
	lp.list.Refresh()
	for i, it := range items {
		if it.Active {
			lp.list.Select(i)
			return
		}
	}
	lp.list.UnselectAll()
}
