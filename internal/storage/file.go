/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

// BackupsDirName is the subdirectory holding timestamped backups.
const BackupsDirName = "backups"

// FileStore keeps each key in <dir>/<key>.json. Every Put writes
// transactionally and first copies the previous value to a timestamped
// backup; at most KeepBackups backups are retained per key.
type FileStore struct {
	Dir         string
	KeepBackups int
}

// NewFileStore creates dir and its backups folder if needed.
func NewFileStore(dir string, keepBackups int) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage dir is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	if keepBackups <= 0 {
		keepBackups = DefaultKeepBackups
	}
	return &FileStore{Dir: dir, KeepBackups: keepBackups}, nil
}

// Path returns the file backing key.
func (s *FileStore) Path(key string) string { return filepath.Join(s.Dir, key+".json") }

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return b, nil
}

func (s *FileStore) Put(_ context.Context, key string, data []byte) error {
	target := s.Path(key)
	bdir := filepath.Join(s.Dir, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	if _, statErr := os.Stat(target); statErr == nil {
		stamp := time.Now().UTC().Format("20060102-150405.000000000")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.json.%s.bak", key, stamp))
		if err := backupFile(target, bpath); err != nil {
			_ = os.Remove(bpath)
			return fmt.Errorf("backup current %s: %w", key, mapNoSpace(err))
		}
		if err := s.prune(key); err != nil {
			return fmt.Errorf("prune backups: %w", err)
		}
	}

	temp := filepath.Join(s.Dir, fmt.Sprintf(".%s.json.tmp-%d-%d", key, os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp %s: %w", key, mapNoSpace(err))
	}
	// Rename does not replace an existing file on Windows.
	if runtime.GOOS == "windows" {
		if _, err := os.Stat(target); err == nil {
			_ = os.Remove(target)
		}
	}
	if err := os.Rename(temp, target); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", key, mapNoSpace(err))
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Backups returns earlier values of key, newest first.
func (s *FileStore) Backups(_ context.Context, key string) ([][]byte, error) {
	paths, err := s.backupPaths(key)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(paths))
	for i := len(paths) - 1; i >= 0; i-- {
		b, err := os.ReadFile(paths[i])
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// backupPaths lists backups oldest first; the timestamp in the name sorts
// lexicographically.
func (s *FileStore) backupPaths(key string) ([]string, error) {
	bdir := filepath.Join(s.Dir, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := key + ".json."
	var paths []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			paths = append(paths, filepath.Join(bdir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *FileStore) prune(key string) error {
	paths, err := s.backupPaths(key)
	if err != nil {
		return err
	}
	for len(paths) > s.KeepBackups {
		if err := os.Remove(paths[0]); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		paths = paths[1:]
	}
	return nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// backupFile is swapped in tests to simulate a full disk.
var backupFile = copyFile

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
