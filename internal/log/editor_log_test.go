/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package log_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"golayout/internal/domain"
	"golayout/internal/editor"
	applog "golayout/internal/log"
)

func TestEditorRecordsCarryElement(t *testing.T) {
	var buf bytes.Buffer
	applog.Init(applog.Options{Level: "debug", Format: "json", Console: &buf})
	t.Cleanup(func() { applog.Init(applog.Options{Level: "info"}) })

	ed := editor.New(editor.Options{Canvas: domain.Size{W: 800, H: 600}})
	el, err := ed.Create(domain.KindRect, domain.Attrs{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ed.Remove(el.ID)

	seen := map[string]bool{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad line %q: %v", line, err)
		}
		if m["component"] != "editor" || m["app"] != "golayout" {
			continue
		}
		if m["element"] == el.ID {
			seen[m["msg"].(string)] = true
		}
	}
	for _, msg := range []string{"element created", "element removed"} {
		if !seen[msg] {
			t.Fatalf("no %q record for %s in:\n%s", msg, el.ID, buf.String())
		}
	}
}
