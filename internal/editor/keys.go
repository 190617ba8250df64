/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "golayout/internal/domain"

// Key names follow the DOM KeyboardEvent.key values surfaces already use.
type Key string

const (
	KeyDelete     Key = "Delete"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowDown  Key = "ArrowDown"
)

// KeyDown handles a key press. It is ignored without a selection or when
// focus is inside a text input. Delete removes the selected element; the
// arrow keys nudge it by the configured step and snapshot on every press.
func (e *Editor) KeyDown(k Key, inTextInput bool) {
	id, ok := e.sel.ID()
	if !ok || inTextInput {
		return
	}
	if k == KeyDelete {
		e.Remove(id)
		return
	}
	var d domain.Point
	switch k {
	case KeyArrowLeft:
		d.X = -e.nudgeStep
	case KeyArrowRight:
		d.X = e.nudgeStep
	case KeyArrowUp:
		d.Y = -e.nudgeStep
	case KeyArrowDown:
		d.Y = e.nudgeStep
	default:
		return
	}
	el, _ := e.reg.Get(id)
	el.Pos = el.Pos.Add(d)
	if !e.freeNudge {
		el.Pos = domain.ClampInto(el.Pos, el.Size, e.surface.CanvasSize())
	}
	e.apply(el)
	e.snapshot()
}
