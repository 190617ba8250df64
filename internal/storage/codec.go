/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"golayout/internal/domain"
)

//go:embed layout.schema.json
var layoutSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(layoutSchema)

// Record is one element as persisted.
type Record struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Fill       string `json:"fill"`
	Text       string `json:"text"`
	StackOrder int    `json:"stackOrder"`
}

// wireRecord is the decode side of Record; absent fields stay nil and take
// the element defaults.
type wireRecord struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Width      *float64 `json:"width"`
	Height     *float64 `json:"height"`
	Fill       *string  `json:"fill"`
	Text       *string  `json:"text"`
	StackOrder *float64 `json:"stackOrder"`
}

// Encode serializes elems, bottom first, as a compact JSON array.
func Encode(elems []domain.Element) ([]byte, error) {
	recs := make([]Record, len(elems))
	for i, e := range elems {
		recs[i] = Record{
			ID:         e.ID,
			Kind:       string(e.Kind),
			X:          e.Pos.X,
			Y:          e.Pos.Y,
			Width:      e.Size.W,
			Height:     e.Size.H,
			Fill:       e.Fill,
			Text:       e.Text,
			StackOrder: i,
		}
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}
	return b, nil
}

// Validate checks data against the embedded layout schema. Failures wrap
// ErrCorrupt.
func Validate(data []byte) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrCorrupt, strings.Join(msgs, "; "))
	}
	return nil
}

// Decode validates and parses a stored layout. The result is ordered by
// stackOrder, bottom first; records without one keep their array position.
// Missing optional fields take the element defaults.
func Decode(data []byte) ([]domain.Element, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var wire []wireRecord
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	type ordered struct {
		el    domain.Element
		order float64
	}
	list := make([]ordered, 0, len(wire))
	for i, w := range wire {
		k, ok := domain.ParseKind(w.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: record %d: kind %q", ErrCorrupt, i, w.Kind)
		}
		a := domain.Attrs{
			X:      roundPtr(w.X),
			Y:      roundPtr(w.Y),
			Width:  roundPtr(w.Width),
			Height: roundPtr(w.Height),
			Fill:   w.Fill,
			Text:   w.Text,
		}
		order := float64(i)
		if w.StackOrder != nil {
			order = *w.StackOrder
		}
		list = append(list, ordered{el: domain.NewElement(w.ID, k, a), order: order})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].order < list[j].order })
	out := make([]domain.Element, len(list))
	for i, o := range list {
		out[i] = o.el
	}
	return out, nil
}

func roundPtr(f *float64) *int {
	if f == nil {
		return nil
	}
	return domain.Int(int(math.Round(*f)))
}
