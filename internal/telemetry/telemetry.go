/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in anonymous usage events (element_created,
// element_deleted, export) and crash reports. Nothing is sent unless the
// user opted in and an endpoint is configured.
//
// Events are queued without blocking the editor and posted in batches.
// Only the property keys in allowedProps are ever transmitted.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	applog "golayout/internal/log"
	"golayout/internal/version"
)

// Config holds runtime configuration for telemetry and crash uploads.
//
// Environment variables (read by FromEnv):
//   - GLY_TELEMETRY_OPT_IN: "1", "true", "yes", "on" to enable events
//   - GLY_TELEMETRY_URL: endpoint receiving event batches
//   - GLY_CRASH_UPLOAD_URL: endpoint receiving crash reports
//   - GLY_TELEMETRY_TIMEOUT_MS: request timeout, default 1500
//   - GLY_TELEMETRY_BATCH: events per request, default 16
//   - GLY_TELEMETRY_DEBUG: if set, logs send attempts
type Config struct {
	OptIn     bool
	EventsURL string
	CrashURL  string
	Timeout   time.Duration
	// BatchSize is the number of events per request.
	BatchSize int
	// Interval bounds how long a partial batch waits before it is sent.
	Interval time.Duration
	Debug    bool
}

const (
	defaultTimeout   = 1500 * time.Millisecond
	defaultBatchSize = 16
	defaultInterval  = 2 * time.Second
	queueSize        = 64
)

// FromEnv builds a Config from GLY_ environment variables.
func FromEnv() Config {
	cfg := Config{
		OptIn:     parseBool(os.Getenv("GLY_TELEMETRY_OPT_IN")),
		EventsURL: strings.TrimSpace(os.Getenv("GLY_TELEMETRY_URL")),
		CrashURL:  strings.TrimSpace(os.Getenv("GLY_CRASH_UPLOAD_URL")),
		Debug:     os.Getenv("GLY_TELEMETRY_DEBUG") != "",
	}
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("GLY_TELEMETRY_TIMEOUT_MS"))); err == nil && n > 0 {
		cfg.Timeout = time.Duration(n) * time.Millisecond
	}
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("GLY_TELEMETRY_BATCH"))); err == nil && n > 0 {
		cfg.BatchSize = n
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	return c
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Event is one usage record as it appears on the wire.
type Event struct {
	Name  string         `json:"name"`
	Time  time.Time      `json:"ts"`
	Props map[string]any `json:"props,omitempty"`
}

// batch is the body of one events request.
type batch struct {
	App     string  `json:"app"`
	Version string  `json:"version"`
	OS      string  `json:"os"`
	Arch    string  `json:"arch"`
	Events  []Event `json:"events"`
}

// allowedProps lists the property keys that may leave the machine. Element
// ids, text and colors never do.
var allowedProps = map[string]bool{
	"kind":    true,
	"format":  true,
	"preset":  true,
	"count":   true,
	"backend": true,
}

// Client queues events and posts them from a single goroutine. The zero
// value is not usable; construct with New.
type Client struct {
	cfg     Config
	log     *slog.Logger
	cli     *http.Client
	q       chan Event
	flushCh chan chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// NewDefault replaces the package-level client with one built from cfg.
// A previous default client is closed.
func NewDefault(cfg Config) *Client {
	c := New(cfg)
	defaultMu.Lock()
	prev := defaultClient
	defaultClient = c
	defaultMu.Unlock()
	if prev != nil {
		prev.Close()
	}
	return c
}

// Default returns the package-level client, creating it from the
// environment on first use.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = New(FromEnv())
	}
	return defaultClient
}

// New constructs a client and starts its sender.
func New(cfg Config) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:     cfg,
		log:     applog.WithComponent("telemetry"),
		cli:     &http.Client{Timeout: cfg.Timeout},
		q:       make(chan Event, queueSize),
		flushCh: make(chan chan struct{}),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go c.loop()
	return c
}

// Enabled reports whether events are sent at all.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Dropped returns how many events were discarded because the queue was full.
func (c *Client) Dropped() int64 { return c.dropped.Load() }

// Event queues a usage event. Properties outside allowedProps are removed.
// It never blocks.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	ev := Event{Name: name, Time: time.Now().UTC()}
	for k, v := range props {
		if allowedProps[k] {
			if ev.Props == nil {
				ev.Props = make(map[string]any, len(props))
			}
			ev.Props[k] = v
		}
	}
	select {
	case c.q <- ev:
	default:
		c.dropped.Add(1)
	}
}

// Hook adapts c to the editor's event callback.
func (c *Client) Hook() func(name string, props map[string]any) {
	return c.Event
}

// Flush sends everything queued so far and waits for the request to
// finish or ctx to end.
func (c *Client) Flush(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	ack := make(chan struct{})
	select {
	case c.flushCh <- ack:
	case <-c.stopped:
		return
	case <-ctx.Done():
		return
	}
	select {
	case <-ack:
	case <-ctx.Done():
	}
}

// Close sends the pending batch and stops the sender.
func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
	<-c.stopped
}

func (c *Client) loop() {
	defer close(c.stopped)
	tick := time.NewTicker(c.cfg.Interval)
	defer tick.Stop()
	var pending []Event
	send := func() {
		if len(pending) > 0 {
			c.post(pending)
			pending = nil
		}
	}
	drain := func() {
		for {
			select {
			case ev := <-c.q:
				pending = append(pending, ev)
			default:
				return
			}
		}
	}
	for {
		select {
		case ev := <-c.q:
			pending = append(pending, ev)
			if len(pending) >= c.cfg.BatchSize {
				send()
			}
		case <-tick.C:
			send()
		case ack := <-c.flushCh:
			drain()
			send()
			close(ack)
		case <-c.done:
			drain()
			send()
			return
		}
	}
}

func (c *Client) post(events []Event) {
	body, err := json.Marshal(batch{
		App:     "golayout",
		Version: version.String(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Events:  events,
	})
	if err != nil {
		c.log.Warn("telemetry batch not encodable", slog.Any("err", err))
		return
	}
	if err := c.do(context.Background(), c.cfg.EventsURL, "application/json", body); err != nil {
		if c.cfg.Debug {
			c.log.Debug("telemetry send failed", slog.Int("events", len(events)), slog.Any("err", err))
		}
		return
	}
	if c.cfg.Debug {
		c.log.Debug("telemetry batch sent", slog.Int("events", len(events)))
	}
}

// ErrNotConfigured is returned by UploadCrash when uploads are off.
var ErrNotConfigured = errors.New("crash upload not configured")

// UploadCrash posts a crash report and waits for the response. The caller
// is usually about to exit, so the upload is not queued.
func (c *Client) UploadCrash(ctx context.Context, report []byte) error {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return ErrNotConfigured
	}
	return c.do(ctx, c.cfg.CrashURL, "text/plain; charset=utf-8", report)
}

func (c *Client) do(ctx context.Context, url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.cli.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telemetry endpoint answered %s", resp.Status)
	}
	return nil
}
