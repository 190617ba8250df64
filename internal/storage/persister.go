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
	"log/slog"
	"time"

	"golayout/internal/domain"
	applog "golayout/internal/log"
)

// DefaultTimeout bounds a single store call made by the Persister.
const DefaultTimeout = 5 * time.Second

// Persister saves and restores the layout through a Store. It satisfies
// editor.Persister.
type Persister struct {
	store   Store
	key     string
	timeout time.Duration
	log     *slog.Logger
}

// NewPersister returns a Persister writing under key. An empty key selects
// DefaultKey and a non-positive timeout selects DefaultTimeout.
func NewPersister(s Store, key string, timeout time.Duration) *Persister {
	if key == "" {
		key = DefaultKey
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Persister{
		store:   s,
		key:     key,
		timeout: timeout,
		log:     applog.WithComponent("storage").With(slog.String("key", key)),
	}
}

// Key returns the key the layout is stored under.
func (p *Persister) Key() string { return p.key }

// Save encodes elems and writes them under the key.
func (p *Persister) Save(elems []domain.Element) error {
	data, err := Encode(elems)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.store.Put(ctx, p.key, data); err != nil {
		p.log.Error("save layout failed", slog.Any("err", err))
		return fmt.Errorf("save %s: %w", p.key, err)
	}
	return nil
}

// Load reads and decodes the layout. Nothing stored yields no elements and
// no error. When the current value cannot be read or decoded the newest
// decodable backup is returned together with the error that made the
// current value unusable (ErrCorrupt for a damaged layout). If no backup
// decodes either, no elements are returned.
func (p *Persister) Load() ([]domain.Element, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	l := applog.WithOperation(p.log, "load")

	raw, err := p.store.Get(ctx, p.key)
	if errors.Is(err, ErrNotFound) {
		l.Debug("no saved layout")
		return nil, nil
	}
	var cause error
	if err != nil {
		cause = fmt.Errorf("read %s: %w", p.key, err)
	} else {
		elems, derr := Decode(raw)
		if derr == nil {
			return elems, nil
		}
		cause = derr
	}
	l.Warn("layout unreadable, trying backups", slog.Any("err", cause))

	elems, n, berr := p.fromBackups(ctx)
	if berr != nil {
		l.Error("no usable backup", slog.Any("err", berr))
		return nil, fmt.Errorf("load %s: %w; backup attempt: %v", p.key, cause, berr)
	}
	l.Info("layout recovered from backup", slog.Int("backup", n), slog.Int("elements", len(elems)))
	return elems, fmt.Errorf("load %s: recovered from backup %d: %w", p.key, n, cause)
}

func (p *Persister) fromBackups(ctx context.Context) ([]domain.Element, int, error) {
	br, ok := p.store.(BackupReader)
	if !ok {
		return nil, 0, errors.New("store keeps no backups")
	}
	backups, err := br.Backups(ctx, p.key)
	if err != nil {
		return nil, 0, fmt.Errorf("list backups: %w", err)
	}
	for i, b := range backups {
		if elems, err := Decode(b); err == nil {
			return elems, i, nil
		}
	}
	return nil, 0, fmt.Errorf("none of %d backups decode", len(backups))
}

// Raw returns the stored layout bytes unchanged, or "[]" when nothing has
// been saved yet.
func (p *Persister) Raw() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	raw, err := p.store.Get(ctx, p.key)
	if errors.Is(err, ErrNotFound) {
		return []byte("[]"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.key, err)
	}
	return raw, nil
}
