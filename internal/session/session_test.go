/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package session

import (
	"context"
	"strings"
	"testing"

	"golayout/internal/config"
	"golayout/internal/domain"
	"golayout/internal/export"
)

func testConfig(t *testing.T, backend string) config.AppConfig {
	t.Helper()
	cfg := config.Defaults()
	cfg.Storage.Backend = backend
	cfg.Storage.Dir = t.TempDir()
	return cfg
}

func TestOpenRestoresSavedLayout(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	s, err := Open(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	el, err := s.Editor.Create(domain.KindText, domain.Attrs{Text: domain.String("hello")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	s.Editor.Select(el.ID)
	s.Editor.PointerDown(el.ID, domain.Point{X: 60, Y: 60})
	s.Editor.PointerMove(domain.Point{X: 90, Y: 80})
	s.Editor.PointerUp()
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s2.Close() }()
	got := s2.Editor.Elements()
	if len(got) != 1 || got[0].ID != el.ID || got[0].Pos != (domain.Point{X: 80, Y: 70}) || got[0].Text != "hello" {
		t.Fatalf("restored: %+v", got)
	}
}

func TestExportTargetsAndEvents(t *testing.T) {
	var events []string
	s, err := Open(context.Background(), testConfig(t, "memory"), Options{
		OnEvent: func(name string, props map[string]any) {
			if f, ok := props["format"]; ok {
				name += ":" + f.(string)
			}
			events = append(events, name)
		},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Editor.Create(domain.KindRect, domain.Attrs{}); err != nil {
		t.Fatalf("create: %v", err)
	}
	var sink export.MemorySink
	formats, err := s.Export(&sink, "print")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(formats) != 2 || len(sink.Names()) != 2 {
		t.Fatalf("formats %v files %v", formats, sink.Names())
	}
	if _, err := s.Export(&sink, "json"); err != nil {
		t.Fatalf("export json: %v", err)
	}
	raw, _ := sink.File("design.json")
	if !strings.Contains(string(raw), `"kind":"rect"`) {
		t.Fatalf("json export: %s", raw)
	}
	if _, err := s.Export(&sink, "gif"); err == nil {
		t.Fatalf("unknown target accepted")
	}
	want := "element_created,export:pdf,export:png,export:json"
	if got := strings.Join(events, ","); got != want {
		t.Fatalf("events = %s, want %s", got, want)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), testConfig(t, "floppy"), Options{}); err == nil {
		t.Fatalf("expected error")
	}
}
