/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"golayout/internal/config"
	"golayout/internal/crash"
)

func TestRunAddDeleteExport(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Dir = t.TempDir()
	cs := &crash.Session{}

	if err := run(cfg, "", cs, "add", []string{"rect"}); err != nil {
		t.Fatalf("add rect: %v", err)
	}
	if err := run(cfg, "", cs, "add", []string{"text", "Hello"}); err != nil {
		t.Fatalf("add text: %v", err)
	}
	if cs.Editor == nil || len(cs.Editor.Elements()) != 2 {
		t.Fatalf("crash session not bound to the editor")
	}
	id := cs.Editor.Elements()[0].ID
	if err := run(cfg, "", cs, "delete", []string{id}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := run(cfg, "", cs, "list", nil); err != nil {
		t.Fatalf("list: %v", err)
	}
	if n := len(cs.Editor.Elements()); n != 1 {
		t.Fatalf("elements after delete = %d", n)
	}

	out := t.TempDir()
	if err := run(cfg, "", cs, "export", []string{"web", out}); err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, name := range []string{"design.json", "design.html", "design.svg", "design.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestRunExportDirUnresolvable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("cannot remove the working directory on windows")
	}
	cfg := config.Defaults()
	cfg.Storage.Dir = t.TempDir()
	gone := filepath.Join(t.TempDir(), "gone")
	if err := os.Mkdir(gone, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Chdir(gone)
	if err := os.Remove(gone); err != nil {
		t.Fatalf("remove: %v", err)
	}
	cs := &crash.Session{}
	err := run(cfg, "", cs, "export", []string{"json", "out"})
	if err == nil {
		t.Fatalf("export into a relative dir without a working directory succeeded")
	}
	if cs.Editor != nil {
		t.Fatalf("storage opened before the export dir was resolved")
	}
}

func TestRunUsageErrors(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Dir = t.TempDir()
	var ue usageError
	for _, tc := range []struct {
		cmd  string
		args []string
	}{
		{"add", nil},
		{"add", []string{"circle"}},
		{"delete", nil},
		{"export", nil},
		{"token", []string{"set"}},
		{"frobnicate", nil},
	} {
		if err := run(cfg, "", &crash.Session{}, tc.cmd, tc.args); !errors.As(err, &ue) {
			t.Fatalf("%s %v: err = %v, want usage error", tc.cmd, tc.args, err)
		}
	}
	if err := run(cfg, "", &crash.Session{}, "delete", []string{"el_missing"}); err == nil || errors.As(err, &ue) {
		t.Fatalf("delete of a missing id: %v", err)
	}
}
