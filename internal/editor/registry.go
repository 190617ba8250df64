/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "golayout/internal/domain"

// Registry is the ordered collection of live elements. Index 0 paints at
// the bottom; the last element paints on top. Each id appears at most once.
type Registry struct {
	elems []*domain.Element
}

// Len returns the number of live elements.
func (r *Registry) Len() int { return len(r.elems) }

// At returns a copy of the element at paint index i.
func (r *Registry) At(i int) domain.Element { return *r.elems[i] }

// IndexOf returns the paint index of id, or -1.
func (r *Registry) IndexOf(id string) int {
	for i, e := range r.elems {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Get returns a copy of the element with the given id.
func (r *Registry) Get(id string) (domain.Element, bool) {
	if p := r.ptr(id); p != nil {
		return *p, true
	}
	return domain.Element{}, false
}

// Elements returns copies of all elements, bottom first.
func (r *Registry) Elements() []domain.Element {
	out := make([]domain.Element, len(r.elems))
	for i, e := range r.elems {
		out[i] = *e
	}
	return out
}

func (r *Registry) ptr(id string) *domain.Element {
	if i := r.IndexOf(id); i >= 0 {
		return r.elems[i]
	}
	return nil
}

// add appends e on top. It reports false when the id is already present.
func (r *Registry) add(e domain.Element) bool {
	if r.IndexOf(e.ID) >= 0 {
		return false
	}
	r.elems = append(r.elems, &e)
	return true
}

func (r *Registry) remove(id string) bool {
	i := r.IndexOf(id)
	if i < 0 {
		return false
	}
	r.elems = append(r.elems[:i], r.elems[i+1:]...)
	return true
}

// swap exchanges the element at i with its neighbour in direction d.
// It reports false at the boundary.
func (r *Registry) swap(i int, d Direction) bool {
	j := i + int(d)
	if i < 0 || j < 0 || j >= len(r.elems) {
		return false
	}
	r.elems[i], r.elems[j] = r.elems[j], r.elems[i]
	return true
}

func (r *Registry) clear() { r.elems = nil }

// Direction is a one step move in paint order.
type Direction int

const (
	Lower Direction = -1
	Raise Direction = 1
)

func (d Direction) String() string {
	if d == Raise {
		return "raise"
	}
	return "lower"
}

// Selection holds at most one element id.
type Selection struct {
	id string
}

// ID returns the selected id and whether anything is selected.
func (s *Selection) ID() (string, bool) { return s.id, s.id != "" }

// Is reports whether id is the current selection.
func (s *Selection) Is(id string) bool { return id != "" && s.id == id }

func (s *Selection) set(id string) { s.id = id }
func (s *Selection) clear()        { s.id = "" }
