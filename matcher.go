// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package urlmatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-urlmatch/urlmatch/engine"
	"github.com/go-urlmatch/urlmatch/link"
	"github.com/go-urlmatch/urlmatch/route"
)

// Matcher is the immutable, built result of a Builder: safe for
// concurrent use from multiple goroutines, backed by whichever engine
// Build compiled (§5 "Registration / build separation").
type Matcher struct {
	engine engine.Engine
	links  *link.Generator
	cfg    config
	obs    *observability
}

// Match attempts to match path against the registered templates and
// returns the winning entry's endpoint. With EnginePackedTree, candidates
// are tried in precedence order and one rejected by its template or
// constraints falls through to the next; EngineDFA and EngineInstruction
// commit to the single highest-precedence candidate their tables reach,
// and a rejection by that candidate is a no-match. The returned Values
// holds every captured and defaulted parameter.
func (m *Matcher) Match(path string) (route.Endpoint, *route.Values, bool) {
	started := time.Now()

	values := route.NewValues()
	entry, ok := m.engine.Match(path, values)

	if m.obs != nil {
		m.obs.recordMatch(path, ok, time.Since(started))
	}

	if !ok {
		return nil, nil, false
	}
	return entry.Endpoint, values, true
}

// TryGetLink builds a URL for ctx.Address from the supplied/ambient
// values in ctx, returning ("", false) if no registered endpoint for that
// address could be bound (§4.7). Emission options (WithLowercaseURLs,
// WithAppendTrailingSlash, WithLowercaseQueryStrings) are applied to the
// result before it's returned.
func (m *Matcher) TryGetLink(ctx link.Context) (string, bool) {
	raw, ok := m.links.TryGetLink(ctx)
	if !ok {
		return "", false
	}
	return m.applyEmissionOptions(raw), true
}

// GetLink is TryGetLink but wraps ErrNoMatchingEndpoint instead of
// returning a boolean.
func (m *Matcher) GetLink(ctx link.Context) (string, error) {
	raw, err := m.links.GetLink(ctx)
	if err != nil {
		return "", fmt.Errorf("urlmatch: address %q: %w", ctx.Address, ErrNoMatchingEndpoint)
	}
	return m.applyEmissionOptions(raw), nil
}

// applyEmissionOptions implements §6's "Options... each applies only at
// emission time": link generation itself is always case-sensitive-in,
// case-preserving-out; these knobs post-process the rendered URL.
func (m *Matcher) applyEmissionOptions(raw string) string {
	if !m.cfg.lowercaseURLs && !m.cfg.appendTrailingSlash && !m.cfg.lowercaseQueryStrings {
		return raw
	}

	p, q, hasQuery := strings.Cut(raw, "?")

	if m.cfg.lowercaseURLs {
		p = strings.ToLower(p)
	}
	if m.cfg.appendTrailingSlash && !strings.HasSuffix(p, "/") {
		p += "/"
	}

	if !hasQuery {
		return p
	}
	if m.cfg.lowercaseQueryStrings {
		q = strings.ToLower(q)
	}
	return p + "?" + q
}
