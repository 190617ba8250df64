/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the element model for golayout. Elements are the
// source of truth for geometry and style; rendering surfaces and exporters
// are projections of them. Paint order is not stored here: it is the
// element's index in the editor registry.

// Kind distinguishes the element variants. It is fixed at creation.
type Kind string

const (
	KindRect Kind = "rect"
	KindText Kind = "text"
)

// Valid reports whether k is a known element kind.
func (k Kind) Valid() bool { return k == KindRect || k == KindText }

// ParseKind maps a persisted or user supplied kind string to a Kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	return k, k.Valid()
}

const (
	// MinSize is the smallest width or height an element may have.
	MinSize = 30

	DefaultX      = 50
	DefaultY      = 50
	DefaultWidth  = 120
	DefaultHeight = 80
	DefaultText   = "Text"

	DefaultRectFill = "#22c55e"
	DefaultTextFill = "transparent"
)

// DefaultFill returns the fill an element of kind k starts with.
func DefaultFill(k Kind) string {
	if k == KindText {
		return DefaultTextFill
	}
	return DefaultRectFill
}

// Element is one placed item on the canvas.
type Element struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	Pos  Point  `json:"pos"`
	Size Size   `json:"size"`
	Fill string `json:"fill"`
	// Text is meaningful only for KindText.
	Text string `json:"text,omitempty"`
}

// Bounds returns the element's bounding box in canvas coordinates.
func (e Element) Bounds() Rect { return Rect{X: e.Pos.X, Y: e.Pos.Y, W: e.Size.W, H: e.Size.H} }

// HasText reports whether the element renders text content.
func (e Element) HasText() bool { return e.Kind == KindText }

// Attrs carries optional overrides applied on creation. Nil fields keep
// the defaults for the kind.
type Attrs struct {
	ID     string
	X, Y   *int
	Width  *int
	Height *int
	Fill   *string
	Text   *string
}

// NewElement builds an element of kind k with defaults overridden by a.
// Sizes below MinSize are raised to MinSize and an unparsable fill falls
// back to the kind default. The caller supplies the id.
func NewElement(id string, k Kind, a Attrs) Element {
	e := Element{
		ID:   id,
		Kind: k,
		Pos:  Point{X: DefaultX, Y: DefaultY},
		Size: Size{W: DefaultWidth, H: DefaultHeight},
		Fill: DefaultFill(k),
	}
	if k == KindText {
		e.Text = DefaultText
	}
	if a.X != nil {
		e.Pos.X = *a.X
	}
	if a.Y != nil {
		e.Pos.Y = *a.Y
	}
	if a.Width != nil {
		e.Size.W = *a.Width
	}
	if a.Height != nil {
		e.Size.H = *a.Height
	}
	e.Size = e.Size.AtLeast(MinSize)
	if a.Fill != nil && ValidFill(*a.Fill) {
		e.Fill = NormalizeFill(*a.Fill)
	}
	// An empty text falls back to the default, matching a fresh text element.
	if k == KindText && a.Text != nil && *a.Text != "" {
		e.Text = *a.Text
	}
	return e
}

// Int returns a pointer to v; handy when filling Attrs.
func Int(v int) *int { return &v }

// String returns a pointer to v; handy when filling Attrs.
func String(v string) *string { return &v }
