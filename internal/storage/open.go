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
	"fmt"
	"path/filepath"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Options selects and configures a Store.
type Options struct {
	Backend     string
	Dir         string
	PostgresDSN string
	KeepBackups int
	// Quota applies to the memory backend only.
	Quota int
}

// Open returns the Store named by opts.Backend. An empty backend selects
// the file store.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFileStore(opts.Dir, opts.KeepBackups)
	case BackendSQLite:
		return OpenSQLite(filepath.Join(opts.Dir, SQLiteFileName), opts.KeepBackups)
	case BackendPostgres:
		return OpenPostgres(ctx, opts.PostgresDSN, opts.KeepBackups)
	case BackendMemory:
		s := NewMemoryStore(opts.Quota)
		if opts.KeepBackups > 0 {
			s.KeepBackups = opts.KeepBackups
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
