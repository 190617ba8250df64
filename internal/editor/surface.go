/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"strconv"

	"golayout/internal/domain"
)

// Surface is the rendering capability the editor projects its model onto.
// Implementations create and position visual nodes; they never own state
// the editor relies on.
type Surface interface {
	// Mount creates the node for e at paint index stack.
	Mount(e domain.Element, stack int)
	// Update re-applies position, size, fill and text of e.
	Update(e domain.Element)
	Unmount(id string)
	// SetStack sets the numeric stacking hint of a node.
	SetStack(id string, stack int)
	AttachHandles(id string)
	DetachHandles(id string)
	// CanvasSize reports the content area elements are clamped to.
	CanvasSize() domain.Size
}

// PanelValues are the four property fields as the panel displays them.
// Width and Height are empty when nothing is selected.
type PanelValues struct {
	Width       string `json:"width"`
	Height      string `json:"height"`
	Fill        string `json:"fill"`
	Text        string `json:"text"`
	TextVisible bool   `json:"textVisible"`
}

// EmptyPanel is what the property panel shows without a selection.
var EmptyPanel = PanelValues{Fill: "#000000"}

func panelFor(e domain.Element) PanelValues {
	v := PanelValues{
		Width:  strconv.Itoa(e.Size.W),
		Height: strconv.Itoa(e.Size.H),
		Fill:   e.Fill,
	}
	if e.HasText() {
		v.Text = e.Text
		v.TextVisible = true
	}
	return v
}

// PropertyPanel receives the values to display on selection change.
type PropertyPanel interface {
	Show(v PanelValues)
}

// LayerItem is one row of the layer list.
type LayerItem struct {
	Kind   domain.Kind `json:"kind"`
	ID     string      `json:"id"`
	Active bool        `json:"active"`
}

// Label is the row text shown to the user.
func (li LayerItem) Label() string { return string(li.Kind) + " - " + li.ID }

// LayerList renders the registry order, bottom first. The list reports
// clicks back through Editor.SelectLayer.
type LayerList interface {
	Render(items []LayerItem)
}

type nopSurface struct{ canvas domain.Size }

func (nopSurface) Mount(domain.Element, int) {}
func (nopSurface) Update(domain.Element)     {}
func (nopSurface) Unmount(string)            {}
func (nopSurface) SetStack(string, int)      {}
func (nopSurface) AttachHandles(string)      {}
func (nopSurface) DetachHandles(string)      {}
func (s nopSurface) CanvasSize() domain.Size { return s.canvas }

type nopPanel struct{}

func (nopPanel) Show(PanelValues) {}

type nopLayers struct{}

func (nopLayers) Render([]LayerItem) {}
