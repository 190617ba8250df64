/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package server exposes an editor session over HTTP for a browser
// surface. The browser draws from the state document and reports pointer,
// key and property events; every event answers with the new state.
// Requests are serialized so the editor sees one event at a time.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"golayout/internal/config"
	"golayout/internal/domain"
	"golayout/internal/editor"
	applog "golayout/internal/log"
	"golayout/internal/session"
	"golayout/internal/storage"
	"golayout/internal/version"
)

// Options configures a Server.
type Options struct {
	Config config.AppConfig
	// Token enables bearer auth on /api when non-empty.
	Token string
	// Store overrides the configured storage backend.
	Store   storage.Store
	OnEvent func(name string, props map[string]any)
}

// Server owns one editor session and its headless projections.
type Server struct {
	mu      sync.Mutex
	sess    *session.Session
	surface *editor.MemorySurface
	panel   *editor.MemoryPanel
	layers  *editor.MemoryLayers
	token   string
	addr    string
	onEvent func(string, map[string]any)
	log     *slog.Logger
	router  chi.Router
}

// New opens the session and builds the router.
func New(ctx context.Context, opts Options) (*Server, error) {
	s := &Server{
		surface: editor.NewMemorySurface(domain.Size{W: opts.Config.Canvas.Width, H: opts.Config.Canvas.Height}),
		panel:   &editor.MemoryPanel{},
		layers:  &editor.MemoryLayers{},
		token:   opts.Token,
		addr:    opts.Config.Server.Addr,
		onEvent: opts.OnEvent,
		log:     applog.WithComponent("server"),
	}
	sess, err := session.Open(ctx, opts.Config, session.Options{
		Surface: s.surface,
		Panel:   s.panel,
		Layers:  s.layers,
		Store:   opts.Store,
		OnEvent: opts.OnEvent,
		OnError: func(err error) { s.log.Warn("storage error", slog.Any("err", err)) },
	})
	if err != nil {
		return nil, err
	}
	s.sess = sess
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Close releases the session.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Close()
}

// ListenAndServe serves on the configured address until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("listening", slog.String("addr", s.addr), slog.Bool("auth", s.token != ""))
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(version.String()))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.withAuth)
		r.Get("/state", s.handleState)

		r.Post("/elements", s.handleCreate)
		r.Delete("/elements/{id}", s.handleDelete)

		r.Post("/selection", s.handleSelect)
		r.Delete("/selection", s.event(func(ed *editor.Editor) { ed.Deselect() }))
		r.Post("/selection/raise", s.event(func(ed *editor.Editor) { ed.Raise() }))
		r.Post("/selection/lower", s.event(func(ed *editor.Editor) { ed.Lower() }))
		r.Post("/canvas/click", s.event(func(ed *editor.Editor) { ed.ClickCanvas() }))

		r.Post("/pointer/down", s.handlePointerDown)
		r.Post("/pointer/move", s.handlePointerMove)
		r.Post("/pointer/up", s.event(func(ed *editor.Editor) { ed.PointerUp() }))
		r.Post("/handles/{corner}/down", s.handleHandleDown)

		r.Post("/keys", s.handleKey)
		r.Patch("/properties", s.handleProperties)
		r.Post("/layers/{index}/select", s.handleSelectLayer)

		r.Get("/export/{format}", s.handleExport)
	})
	return r
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(strings.ToLower(auth), strings.ToLower(prefix)) {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}
		token := strings.TrimSpace(auth[len(prefix):])
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			writeError(w, http.StatusUnauthorized, errors.New("invalid token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// decode reads a JSON body of at most 1 MiB into v. An empty body leaves
// v untouched.
func decode(r *http.Request, v any) error {
	b, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	_ = r.Body.Close()
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}
