/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists the layout. The layout is a compact JSON array
// of element records stored under one key (default "layout") in a Store.
// Stores keep earlier values as backups so a damaged layout can be
// recovered on restore. Backends: a directory of JSON files with
// timestamped backups, an embedded SQLite database with a revision journal,
// a PostgreSQL database, and an in-memory store used by tests.
package storage
