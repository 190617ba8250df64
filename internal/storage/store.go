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
)

// DefaultKey is the key the layout is stored under.
const DefaultKey = "layout"

// DefaultKeepBackups is how many earlier values a store retains per key.
const DefaultKeepBackups = 20

var (
	// ErrNotFound is returned by Get when nothing is stored under the key.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt marks a stored layout that fails validation or decoding.
	ErrCorrupt = errors.New("corrupt layout")
	// ErrQuotaExceeded is returned by Put when a store is out of space.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Store is a durable key-value store holding text blobs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// BackupReader is implemented by stores that retain earlier values.
// Backups returns them newest first.
type BackupReader interface {
	Backups(ctx context.Context, key string) ([][]byte, error)
}
