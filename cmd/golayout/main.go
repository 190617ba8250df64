/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golayout/internal/config"
	"golayout/internal/crash"
	"golayout/internal/domain"
	"golayout/internal/export"
	applog "golayout/internal/log"
	"golayout/internal/server"
	"golayout/internal/session"
	"golayout/internal/telemetry"
	"golayout/internal/ui"
	"golayout/internal/version"
)

func usage() {
	fmt.Println("golayout: visual layout editor")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  golayout version|-v|--version              Show version")
	fmt.Println("  golayout list                              List elements bottom to top")
	fmt.Println("  golayout add rect|text [text]              Add an element with default geometry")
	fmt.Println("  golayout delete <id>                       Remove an element")
	fmt.Println("  golayout export <format|preset> [outDir]   Write design.<ext> files (json, html, svg, png, pdf, web, print)")
	fmt.Println("  golayout serve                             Serve the HTTP API on the configured address")
	fmt.Println("  golayout ui                                Launch desktop UI (build with -tags fyne)")
	fmt.Println("  golayout token set <value>|clear           Store or remove the HTTP API token")
}

func main() {
	cfg, token, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded; using defaults", slog.Any("err", cfgErr))
	}
	tcfg := telemetry.FromEnv()
	tcfg.OptIn = tcfg.OptIn || cfg.General.TelemetryOptIn
	tc := telemetry.NewDefault(tcfg)
	defer tc.Close()

	cs := &crash.Session{Dir: cfg.Storage.Dir}
	defer crash.Recover(cs)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	if err := run(cfg, token, cs, args[1], args[2:]); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Println(ue.msg)
			usage()
			tc.Close()
			os.Exit(2)
		}
		l.Error("command failed", slog.String("cmd", args[1]), slog.Any("err", err))
		fmt.Println("Error:", err)
		tc.Close()
		os.Exit(1)
	}
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func open(cfg config.AppConfig, cs *crash.Session) (*session.Session, error) {
	s, err := session.Open(context.Background(), cfg, session.Options{OnEvent: telemetry.Default().Hook()})
	if err != nil {
		return nil, err
	}
	cs.Editor = s.Editor
	if err := s.Editor.LastError(); err != nil {
		fmt.Println("Warning:", err)
	}
	return s, nil
}

func run(cfg config.AppConfig, token string, cs *crash.Session, cmd string, args []string) error {
	switch cmd {
	case "version", "--version", "-v":
		fmt.Println("golayout")
		fmt.Println(version.String())
		return nil
	case "list":
		s, err := open(cfg, cs)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		for i, e := range s.Editor.Elements() {
			fmt.Printf("%d\t%s\t%s\t%d,%d\t%dx%d\t%s", i, e.Kind, e.ID, e.Pos.X, e.Pos.Y, e.Size.W, e.Size.H, e.Fill)
			if e.HasText() {
				fmt.Printf("\t%q", e.Text)
			}
			fmt.Println()
		}
		return nil
	case "add":
		if len(args) < 1 {
			return usageError{"add requires rect or text"}
		}
		k, ok := domain.ParseKind(args[0])
		if !ok {
			return usageError{fmt.Sprintf("unknown element kind %q", args[0])}
		}
		var a domain.Attrs
		if len(args) > 1 {
			a.Text = domain.String(args[1])
		}
		s, err := open(cfg, cs)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		el, err := s.Editor.Create(k, a)
		if err != nil {
			return err
		}
		if err := s.Editor.LastError(); err != nil {
			return err
		}
		fmt.Println(el.ID)
		return nil
	case "delete":
		if len(args) < 1 {
			return usageError{"delete requires <id>"}
		}
		s, err := open(cfg, cs)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		if _, ok := s.Editor.Element(args[0]); !ok {
			return fmt.Errorf("no element %q", args[0])
		}
		s.Editor.Remove(args[0])
		return s.Editor.LastError()
	case "export":
		if len(args) < 1 {
			return usageError{"export requires a format or preset"}
		}
		dir := cfg.Export.Dir
		if len(args) > 1 {
			dir = args[1]
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve export dir: %w", err)
		}
		s, err := open(cfg, cs)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		formats, err := s.Export(export.DirSink{Dir: abs}, args[0])
		if err != nil {
			return err
		}
		for _, f := range formats {
			fmt.Println(filepath.Join(abs, f.FileName()))
		}
		return nil
	case "serve":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		srv, err := server.New(ctx, server.Options{Config: cfg, Token: token, OnEvent: telemetry.Default().Hook()})
		if err != nil {
			return err
		}
		defer func() { _ = srv.Close() }()
		fmt.Println("Serving on", cfg.Server.Addr)
		return srv.ListenAndServe(ctx)
	case "ui":
		return ui.Run(cfg)
	case "token":
		if len(args) == 1 && args[0] == "clear" {
			return config.SetToken("")
		}
		if len(args) < 2 || args[0] != "set" || args[1] == "" {
			return usageError{"token requires set <value> or clear"}
		}
		if err := config.SetToken(args[1]); err != nil {
			return err
		}
		fmt.Println("Token stored in the OS keyring.")
		return nil
	}
	return usageError{fmt.Sprintf("unknown command %q", cmd)}
}
