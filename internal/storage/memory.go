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
	"sync"
)

// MemoryStore is an in-process Store. Quota, when positive, caps the total
// number of bytes held across keys, like a browser storage area.
type MemoryStore struct {
	Quota       int
	KeepBackups int

	mu      sync.Mutex
	values  map[string][]byte
	backups map[string][][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(quota int) *MemoryStore {
	return &MemoryStore{
		Quota:       quota,
		KeepBackups: DefaultKeepBackups,
		values:      map[string][]byte{},
		backups:     map[string][][]byte{},
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Quota > 0 {
		used := len(data)
		for k, v := range s.values {
			if k != key {
				used += len(v)
			}
		}
		if used > s.Quota {
			return fmt.Errorf("%w: %d of %d bytes", ErrQuotaExceeded, used, s.Quota)
		}
	}
	if prev, ok := s.values[key]; ok {
		b := append([][]byte{prev}, s.backups[key]...)
		if s.KeepBackups > 0 && len(b) > s.KeepBackups {
			b = b[:s.KeepBackups]
		}
		s.backups[key] = b
	}
	s.values[key] = append([]byte(nil), data...)
	return nil
}

// Backups returns earlier values of key, newest first.
func (s *MemoryStore) Backups(_ context.Context, key string) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.backups[key]...), nil
}

func (s *MemoryStore) Close() error { return nil }
