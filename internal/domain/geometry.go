/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Integer pixel geometry for the canvas. The canvas origin is top-left.

// Point is an integer pixel offset from the canvas origin.
type Point struct{ X, Y int }

// Add returns p translated by d.
func (p Point) Add(d Point) Point { return Point{X: p.X + d.X, Y: p.Y + d.Y} }

// Sub returns the delta from o to p.
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Size is a width/height pair in pixels.
type Size struct{ W, H int }

// AtLeast raises each dimension to min when smaller.
func (s Size) AtLeast(min int) Size {
	if s.W < min {
		s.W = min
	}
	if s.H < min {
		s.H = min
	}
	return s
}

// Rect is an axis-aligned rectangle defined by its top-left corner and size.
type Rect struct {
	X, Y int
	W, H int
}

func R(x, y, w, h int) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Point { return Point{r.X, r.Y} }
func (r Rect) Max() Point { return Point{r.X + r.W, r.Y + r.H} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.W, o.X+o.W)
	maxY := max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// ClampInto returns the top-left position p adjusted so that a box of size s
// stays inside a canvas of size canvas: 0 <= x <= canvas.W-s.W, same for y.
// When the box is larger than the canvas on an axis the position on that
// axis is pinned to 0.
func ClampInto(p Point, s Size, canvas Size) Point {
	return Point{X: clampAxis(p.X, canvas.W-s.W), Y: clampAxis(p.Y, canvas.H-s.H)}
}

func clampAxis(v, hi int) int {
	if hi < 0 {
		hi = 0
	}
	if v > hi {
		v = hi
	}
	if v < 0 {
		v = 0
	}
	return v
}
