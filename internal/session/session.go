/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package session wires an editor to the configured store. Every outer
// surface (CLI, HTTP server, desktop UI) opens a Session the same way.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"golayout/internal/config"
	"golayout/internal/domain"
	"golayout/internal/editor"
	"golayout/internal/export"
	applog "golayout/internal/log"
	"golayout/internal/storage"
)

// Options supplies the projections and callbacks of the editor. Nil
// surfaces are replaced by no-op ones sized to the configured canvas.
type Options struct {
	Surface editor.Surface
	Panel   editor.PropertyPanel
	Layers  editor.LayerList
	OnError func(error)
	OnEvent func(name string, props map[string]any)
	// Store overrides the configured backend.
	Store storage.Store
}

// Session is an editor bound to a store.
type Session struct {
	Editor    *editor.Editor
	Store     storage.Store
	Persister *storage.Persister
	Config    config.AppConfig
	onEvent   func(string, map[string]any)
	log       *slog.Logger
}

// Open connects to the store named by cfg.Storage and restores the saved
// layout. A damaged layout is not fatal: the error is logged and remains
// visible through Editor.LastError.
func Open(ctx context.Context, cfg config.AppConfig, opts Options) (*Session, error) {
	l := applog.WithComponent("session")
	st := opts.Store
	if st == nil {
		var err error
		st, err = storage.Open(ctx, storage.Options{
			Backend:     cfg.Storage.Backend,
			Dir:         cfg.Storage.Dir,
			PostgresDSN: cfg.Storage.PostgresDSN,
			KeepBackups: cfg.Storage.KeepBackups,
		})
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
	}
	p := storage.NewPersister(st, cfg.Storage.Key, cfg.Storage.Timeout())
	ed := editor.New(editor.Options{
		Surface:   opts.Surface,
		Panel:     opts.Panel,
		Layers:    opts.Layers,
		Persister: p,
		Canvas:    domain.Size{W: cfg.Canvas.Width, H: cfg.Canvas.Height},
		NudgeStep: cfg.Canvas.NudgeStep,
		FreeNudge: cfg.Canvas.FreeNudge,
		OnError:   opts.OnError,
		OnEvent:   opts.OnEvent,
	})
	if err := ed.Restore(); err != nil {
		l.Warn("layout restored with errors", slog.Any("err", err))
	}
	l.Info("session opened",
		slog.String("backend", cfg.Storage.Backend),
		slog.String("key", p.Key()),
		slog.Int("elements", len(ed.Elements())))
	return &Session{Editor: ed, Store: st, Persister: p, Config: cfg, onEvent: opts.OnEvent, log: l}, nil
}

// Layout collects what the exporters need from the live session.
func (s *Session) Layout() (export.Layout, error) {
	raw, err := s.Persister.Raw()
	if err != nil {
		return export.Layout{}, err
	}
	return export.Layout{Elements: s.Editor.Elements(), Canvas: s.Editor.Canvas(), Raw: raw}, nil
}

// Export writes the formats named by target, a format or preset name,
// into sink and returns the formats written.
func (s *Session) Export(sink export.Sink, target string) ([]export.Format, error) {
	formats, err := export.ParseTarget(target)
	if err != nil {
		return nil, err
	}
	l, err := s.Layout()
	if err != nil {
		return nil, err
	}
	if err := export.BatchExport(sink, l, export.BatchOptions{Preset: export.PresetName(target), Formats: formats}); err != nil {
		return nil, err
	}
	if s.onEvent != nil {
		for _, f := range formats {
			s.onEvent("export", map[string]any{"format": string(f)})
		}
	}
	s.log.Info("layout exported", slog.String("target", target), slog.Int("files", len(formats)))
	return formats, nil
}

// Close releases the store.
func (s *Session) Close() error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}
