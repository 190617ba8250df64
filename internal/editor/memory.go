/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"sort"

	"golayout/internal/domain"
)

// Node is the projection of one element held by a MemorySurface.
type Node struct {
	Element domain.Element `json:"element"`
	Stack   int            `json:"stack"`
	Handles bool           `json:"handles"`
}

// MemorySurface is a headless Surface. It backs the HTTP API, where the
// browser draws from the state document, and the package tests.
type MemorySurface struct {
	canvas domain.Size
	nodes  map[string]*Node
}

// NewMemorySurface returns an empty surface with the given canvas size.
func NewMemorySurface(canvas domain.Size) *MemorySurface {
	return &MemorySurface{canvas: canvas, nodes: map[string]*Node{}}
}

func (s *MemorySurface) Mount(e domain.Element, stack int) {
	s.nodes[e.ID] = &Node{Element: e, Stack: stack}
}

func (s *MemorySurface) Update(e domain.Element) {
	if n, ok := s.nodes[e.ID]; ok {
		n.Element = e
	}
}

func (s *MemorySurface) Unmount(id string) { delete(s.nodes, id) }

func (s *MemorySurface) SetStack(id string, stack int) {
	if n, ok := s.nodes[id]; ok {
		n.Stack = stack
	}
}

func (s *MemorySurface) AttachHandles(id string) {
	if n, ok := s.nodes[id]; ok {
		n.Handles = true
	}
}

func (s *MemorySurface) DetachHandles(id string) {
	if n, ok := s.nodes[id]; ok {
		n.Handles = false
	}
}

func (s *MemorySurface) CanvasSize() domain.Size { return s.canvas }

// Node returns a copy of the node for id.
func (s *MemorySurface) Node(id string) (Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns all nodes ordered by their stacking hint.
func (s *MemorySurface) Nodes() []Node {
	out := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, *n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stack < out[j].Stack })
	return out
}

// HandleOwners lists the ids of nodes that currently carry handles.
func (s *MemorySurface) HandleOwners() []string {
	var ids []string
	for id, n := range s.nodes {
		if n.Handles {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// MemoryPanel records the last values shown.
type MemoryPanel struct {
	Values PanelValues
	Shown  int
}

func (p *MemoryPanel) Show(v PanelValues) {
	p.Values = v
	p.Shown++
}

// MemoryLayers records the last rendered layer list.
type MemoryLayers struct {
	Items []LayerItem
}

func (l *MemoryLayers) Render(items []LayerItem) { l.Items = items }

// MemoryPersister keeps the last saved layout in memory. Err, when set, is
// returned from Save.
type MemoryPersister struct {
	Saved []domain.Element
	Saves int
	Err   error
}

func (m *MemoryPersister) Save(elems []domain.Element) error {
	if m.Err != nil {
		return m.Err
	}
	m.Saved = append([]domain.Element(nil), elems...)
	m.Saves++
	return nil
}

func (m *MemoryPersister) Load() ([]domain.Element, error) {
	return append([]domain.Element(nil), m.Saved...), nil
}
