/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

// LayerItems projects the registry into layer rows, bottom first, with the
// selected element marked active.
func (e *Editor) LayerItems() []LayerItem {
	items := make([]LayerItem, 0, e.reg.Len())
	for _, el := range e.reg.elems {
		items = append(items, LayerItem{Kind: el.Kind, ID: el.ID, Active: e.sel.Is(el.ID)})
	}
	return items
}

// SelectLayer selects the element shown at row i of the layer list.
func (e *Editor) SelectLayer(i int) {
	if i < 0 || i >= e.reg.Len() {
		return
	}
	e.Select(e.reg.elems[i].ID)
}

func (e *Editor) renderLayers() { e.layers.Render(e.LayerItems()) }
