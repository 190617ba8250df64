/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"golayout/internal/domain"
	"golayout/internal/editor"
	"golayout/internal/export"
)

// ElementView is one element as the browser draws it.
type ElementView struct {
	ID      string      `json:"id"`
	Kind    domain.Kind `json:"kind"`
	X       int         `json:"x"`
	Y       int         `json:"y"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Fill    string      `json:"fill"`
	Text    string      `json:"text,omitempty"`
	Stack   int         `json:"stack"`
	Handles bool        `json:"handles"`
}

// LayerView is one row of the layer list.
type LayerView struct {
	editor.LayerItem
	Label string `json:"label"`
}

// State is the document every /api call answers with.
type State struct {
	Canvas    domain.Size        `json:"canvas"`
	Elements  []ElementView      `json:"elements"`
	Selected  string             `json:"selected,omitempty"`
	InGesture bool               `json:"inGesture"`
	Panel     editor.PanelValues `json:"panel"`
	Layers    []LayerView        `json:"layers"`
	LastError string             `json:"lastError,omitempty"`
}

// state builds the document from the surface projections. Callers hold s.mu.
func (s *Server) state() State {
	ed := s.sess.Editor
	st := State{
		Canvas:    s.surface.CanvasSize(),
		Elements:  []ElementView{},
		InGesture: ed.InGesture(),
		Panel:     ed.Panel(),
		Layers:    []LayerView{},
	}
	for _, n := range s.surface.Nodes() {
		e := n.Element
		st.Elements = append(st.Elements, ElementView{
			ID: e.ID, Kind: e.Kind,
			X: e.Pos.X, Y: e.Pos.Y, Width: e.Size.W, Height: e.Size.H,
			Fill: e.Fill, Text: e.Text,
			Stack: n.Stack, Handles: n.Handles,
		})
	}
	if id, ok := ed.Selected(); ok {
		st.Selected = id
	}
	for _, it := range s.layers.Items {
		st.Layers = append(st.Layers, LayerView{LayerItem: it, Label: it.Label()})
	}
	if err := ed.LastError(); err != nil {
		st.LastError = err.Error()
	}
	return st
}

// event wraps an editor call that needs no request data.
func (s *Server) event(fn func(ed *editor.Editor)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		fn(s.sess.Editor)
		writeJSON(w, http.StatusOK, s.state())
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.state())
}

type createRequest struct {
	Kind   string  `json:"kind"`
	X      *int    `json:"x"`
	Y      *int    `json:"y"`
	Width  *int    `json:"width"`
	Height *int    `json:"height"`
	Fill   *string `json:"fill"`
	Text   *string `json:"text"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.sess.Editor.Create(domain.Kind(req.Kind), domain.Attrs{
		X: req.X, Y: req.Y, Width: req.Width, Height: req.Height, Fill: req.Fill, Text: req.Text,
	})
	if errors.Is(err, editor.ErrUnknownKind) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.log.Info("element created", slog.String("element", el.ID), slog.String("kind", string(el.Kind)))
	writeJSON(w, http.StatusCreated, s.state())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sess.Editor.Element(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no element %q", id))
		return
	}
	s.sess.Editor.Remove(id)
	writeJSON(w, http.StatusOK, s.state())
}

type pointRequest struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

func (p pointRequest) point() domain.Point { return domain.Point{X: p.X, Y: p.Y} }

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sess.Editor.Element(req.ID); !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no element %q", req.ID))
		return
	}
	s.sess.Editor.Select(req.ID)
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handlePointerDown(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.Editor.PointerDown(req.ID, req.point())
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handlePointerMove(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.Editor.PointerMove(req.point())
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleHandleDown(w http.ResponseWriter, r *http.Request) {
	c, ok := editor.ParseCorner(chi.URLParam(r, "corner"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown corner %q", chi.URLParam(r, "corner")))
		return
	}
	var req pointRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.Editor.HandleDown(c, req.point())
	writeJSON(w, http.StatusOK, s.state())
}

type keyRequest struct {
	Key         string `json:"key"`
	InTextInput bool   `json:"inTextInput"`
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.Editor.KeyDown(editor.Key(req.Key), req.InTextInput)
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	var req editor.PropertyEdit
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.Editor.EditProperties(req)
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleSelectLayer(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid layer index: %w", err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.Editor.SelectLayer(i)
	writeJSON(w, http.StatusOK, s.state())
}

// handleExport answers with one rendered file as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, ok := export.ParseFormat(chi.URLParam(r, "format"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown export format %q", chi.URLParam(r, "format")))
		return
	}
	s.mu.Lock()
	l, err := s.sess.Layout()
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	b, err := export.Render(f, l)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.FileName()))
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
	if s.onEvent != nil {
		s.onEvent("export", map[string]any{"format": string(f)})
	}
	s.log.Info("export served", slog.String("format", string(f)), slog.Int("bytes", len(b)))
}
