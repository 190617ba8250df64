/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "golayout/internal/domain"

// PropertyEdit is a user edit from the property panel. Nil fields are left
// unchanged.
type PropertyEdit struct {
	Width  *int    `json:"width,omitempty"`
	Height *int    `json:"height,omitempty"`
	Fill   *string `json:"fill,omitempty"`
	Text   *string `json:"text,omitempty"`
}

// EditProperties applies e to the selected element and snapshots. Sizes
// are floored at domain.MinSize, fills that do not parse are ignored and
// text only applies to text elements.
func (e *Editor) EditProperties(pe PropertyEdit) {
	id, ok := e.sel.ID()
	if !ok {
		return
	}
	el, _ := e.reg.Get(id)
	if pe.Width != nil {
		el.Size.W = *pe.Width
	}
	if pe.Height != nil {
		el.Size.H = *pe.Height
	}
	el.Size = el.Size.AtLeast(domain.MinSize)
	if pe.Fill != nil && domain.ValidFill(*pe.Fill) {
		el.Fill = domain.NormalizeFill(*pe.Fill)
	}
	if pe.Text != nil && el.HasText() {
		el.Text = *pe.Text
	}
	e.apply(el)
	e.snapshot()
}

// Panel returns what the property panel currently shows.
func (e *Editor) Panel() PanelValues {
	if id, ok := e.sel.ID(); ok {
		el, _ := e.reg.Get(id)
		return panelFor(el)
	}
	return EmptyPanel
}
