/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
)

func isolate(t *testing.T) string {
	t.Helper()
	keyring.MockInit()
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	return dir
}

func TestDefaultsWithoutFile(t *testing.T) {
	dir := isolate(t)
	cfg, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "" {
		t.Fatalf("token = %q, want empty", tok)
	}
	if cfg.Canvas.Width != 800 || cfg.Canvas.Height != 600 || cfg.Canvas.NudgeStep != 5 || cfg.Canvas.FreeNudge {
		t.Fatalf("canvas defaults: %#v", cfg.Canvas)
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.Key != "layout" || cfg.Storage.Dir != dir {
		t.Fatalf("storage defaults: %#v", cfg.Storage)
	}
	if cfg.Storage.Timeout() != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.Storage.Timeout())
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTelemetryOptIn, "true")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestEnvOverridesCanvasAndStorage(t *testing.T) {
	isolate(t)
	t.Setenv(EnvCanvasWidth, "1024")
	t.Setenv(EnvCanvasHeight, "-3")
	t.Setenv(EnvFreeNudge, "yes")
	t.Setenv(EnvStorageBackend, "SQLite")
	t.Setenv(EnvStorageDir, "/tmp/layouts")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Canvas.Width != 1024 || cfg.Canvas.Height != 600 || !cfg.Canvas.FreeNudge {
		t.Fatalf("canvas overrides: %#v", cfg.Canvas)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Dir != "/tmp/layouts" {
		t.Fatalf("storage overrides: %#v", cfg.Storage)
	}
	if name, ok := EnvOverrideFor("canvas.width"); !ok || name != EnvCanvasWidth {
		t.Fatalf("EnvOverrideFor(canvas.width) = %q, %v", name, ok)
	}
	if _, ok := EnvOverrideFor("server.addr"); ok {
		t.Fatalf("server.addr reported as overridden")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/gly.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/gly.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/gly.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/gly.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestSaveLoadRoundTripWithToken(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Canvas.Width = 1280
	cfg.Storage.Backend = "memory"
	cfg.Server.Addr = ":9090"
	if err := Save(cfg, "s3cret"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	path, _ := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) == "" || strings.Contains(string(data), "s3cret") {
		t.Fatalf("token must not be written to the config file:\n%s", data)
	}
	got, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Canvas.Width != 1280 || got.Storage.Backend != "memory" || got.Server.Addr != ":9090" {
		t.Fatalf("round trip: %#v", got)
	}
	if tok != "s3cret" {
		t.Fatalf("token = %q", tok)
	}
	if err := SetToken(""); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if err := SetToken(""); err != nil {
		t.Fatalf("clearing twice should be a no-op: %v", err)
	}
	if _, tok, _ = Load(); tok != "" {
		t.Fatalf("token after clear = %q", tok)
	}
}

func TestMalformedFileKeepsDefaults(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("canvas: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := Load()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Canvas.Width != 800 {
		t.Fatalf("defaults lost: %#v", cfg.Canvas)
	}
}
