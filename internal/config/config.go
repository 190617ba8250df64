/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the per-user golayout configuration: a YAML file in
// the user config directory, overridden by GLY_ environment variables. The
// HTTP API token is kept in the OS keyring, never in the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type GeneralConfig struct {
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
}

type CanvasConfig struct {
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	NudgeStep int  `yaml:"nudge_step"`
	FreeNudge bool `yaml:"free_nudge"` // let arrow keys move elements past the canvas edge
}

type StorageConfig struct {
	Backend     string `yaml:"backend"` // "file" | "sqlite" | "postgres" | "memory"
	Dir         string `yaml:"dir"`
	Key         string `yaml:"key"`
	KeepBackups int    `yaml:"keep_backups"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Storage       StorageConfig `yaml:"storage"`
	Server        ServerConfig  `yaml:"server"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults. Storage.Dir is resolved
// against the user data directory when empty.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false},
		Canvas:        CanvasConfig{Width: 800, Height: 600, NudgeStep: 5},
		Storage:       StorageConfig{Backend: "file", Key: "layout", KeepBackups: 20, TimeoutMs: 5000},
		Server:        ServerConfig{Addr: "127.0.0.1:8080"},
		Export:        ExportConfig{Dir: "."},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvTelemetryOptIn = "GLY_TELEMETRY_OPT_IN"
	EnvCanvasWidth    = "GLY_CANVAS_WIDTH"
	EnvCanvasHeight   = "GLY_CANVAS_HEIGHT"
	EnvNudgeStep      = "GLY_NUDGE_STEP"
	EnvFreeNudge      = "GLY_FREE_NUDGE"
	EnvStorageBackend = "GLY_STORAGE_BACKEND"
	EnvStorageDir     = "GLY_STORAGE_DIR"
	EnvStorageKey     = "GLY_STORAGE_KEY"
	EnvPostgresDSN    = "GLY_PG_DSN"
	EnvServerAddr     = "GLY_SERVER_ADDR"
	EnvExportDir      = "GLY_EXPORT_DIR"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GLY_LOG_LEVEL"
	EnvLogFormat = "GLY_LOG_FORMAT"
	EnvLogSource = "GLY_LOG_SOURCE"
	EnvLogFile   = "GLY_LOG_FILE"
	// EnvConfigDir relocates the config file, mostly for tests.
	EnvConfigDir = "GLY_CONFIG_DIR"
)

// Service/keys for OS keyring.
const (
	keyringService = "golayout"
	keyringToken   = "server_token"
)

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// userDir returns the per-user directory for kind ("config" or "data").
func userDir(kind string) (string, error) {
	if d := strings.TrimSpace(os.Getenv(EnvConfigDir)); d != "" {
		return d, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "golayout")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "golayout")
	default: // linux and others
		if kind == "data" {
			base = filepath.Join(os.Getenv("HOME"), ".local", "share", "golayout")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "golayout")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := userDir("config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir returns the default storage directory.
func DataDir() (string, error) { return userDir("data") }

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also loads the server token from keyring (not kept inside the struct; returned separately).
// A malformed file is reported but the defaults are still returned.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	var loadErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			loadErr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	if cfg.Storage.Dir == "" {
		if d, err := DataDir(); err == nil {
			cfg.Storage.Dir = d
		}
	}
	// token from keyring; absence is not an error
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, loadErr
}

// Save writes the user config YAML and persists the token into OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		return SetToken(token)
	}
	return nil
}

// SetToken stores the HTTP API token in the OS keyring. An empty value
// removes it.
func SetToken(token string) error {
	if token == "" {
		err := tokenStore.Delete(keyringService, keyringToken)
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return err
	}
	return tokenStore.Set(keyringService, keyringToken, token)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.Canvas.Width > 0 {
		dst.Canvas.Width = src.Canvas.Width
	}
	if src.Canvas.Height > 0 {
		dst.Canvas.Height = src.Canvas.Height
	}
	if src.Canvas.NudgeStep > 0 {
		dst.Canvas.NudgeStep = src.Canvas.NudgeStep
	}
	dst.Canvas.FreeNudge = src.Canvas.FreeNudge
	// storage
	if v := strings.ToLower(strings.TrimSpace(src.Storage.Backend)); v != "" {
		dst.Storage.Backend = v
	}
	if v := strings.TrimSpace(src.Storage.Dir); v != "" {
		dst.Storage.Dir = v
	}
	if v := strings.TrimSpace(src.Storage.Key); v != "" {
		dst.Storage.Key = v
	}
	if src.Storage.KeepBackups != 0 {
		dst.Storage.KeepBackups = src.Storage.KeepBackups
	}
	if src.Storage.TimeoutMs != 0 {
		dst.Storage.TimeoutMs = src.Storage.TimeoutMs
	}
	if v := strings.TrimSpace(src.Storage.PostgresDSN); v != "" {
		dst.Storage.PostgresDSN = v
	}
	if v := strings.TrimSpace(src.Server.Addr); v != "" {
		dst.Server.Addr = v
	}
	if v := strings.TrimSpace(src.Export.Dir); v != "" {
		dst.Export.Dir = v
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func envInt(name string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func envString(name string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = envBool(v)
	}
	envInt(EnvCanvasWidth, &cfg.Canvas.Width)
	envInt(EnvCanvasHeight, &cfg.Canvas.Height)
	envInt(EnvNudgeStep, &cfg.Canvas.NudgeStep)
	if v := strings.TrimSpace(os.Getenv(EnvFreeNudge)); v != "" {
		cfg.Canvas.FreeNudge = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageBackend)); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	envString(EnvStorageDir, &cfg.Storage.Dir)
	envString(EnvStorageKey, &cfg.Storage.Key)
	envString(EnvPostgresDSN, &cfg.Storage.PostgresDSN)
	envString(EnvServerAddr, &cfg.Server.Addr)
	envString(EnvExportDir, &cfg.Export.Dir)
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = envBool(v)
	}
	envString(EnvLogFile, &cfg.Logging.File)
}

var envByKey = map[string]string{
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"canvas.width":             EnvCanvasWidth,
	"canvas.height":            EnvCanvasHeight,
	"canvas.nudge_step":        EnvNudgeStep,
	"canvas.free_nudge":        EnvFreeNudge,
	"storage.backend":          EnvStorageBackend,
	"storage.dir":              EnvStorageDir,
	"storage.key":              EnvStorageKey,
	"storage.postgres_dsn":     EnvPostgresDSN,
	"server.addr":              EnvServerAddr,
	"export.dir":               EnvExportDir,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envByKey[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Timeout returns the storage operation timeout.
func (s StorageConfig) Timeout() time.Duration {
	if s.TimeoutMs <= 0 {
		return time.Duration(Defaults().Storage.TimeoutMs) * time.Millisecond
	}
	return time.Duration(s.TimeoutMs) * time.Millisecond
}
