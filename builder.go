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
	"github.com/go-urlmatch/urlmatch/internal/diagnostic"
	"github.com/go-urlmatch/urlmatch/link"
	"github.com/go-urlmatch/urlmatch/route"
)

// Builder accumulates route registrations before being compiled into an
// immutable Matcher via Build. Constructing and populating a Builder
// never fails; only Build can, the same New/MustNew split the teacher
// uses for its Router.
type Builder struct {
	cfg   config
	table *route.Table
}

// NewBuilder returns an empty Builder configured by opts.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{table: route.NewTable()}
	for _, opt := range opts {
		opt(&b.cfg)
	}
	return b
}

// Handle parses templateText and registers it against endpoint. name, if
// non-empty, is the address link generation looks this entry up by; an
// entry registered with an empty name can still be matched inbound but
// never targeted directly by TryGetLink/GetLink.
//
// Returns ErrNilArgument if endpoint is nil (a route with no resolvable
// payload is a programmer error, not a registration outcome), a wrapped
// *route.ParseError if templateText is malformed, or a wrapped
// ErrDuplicateRoute if another entry already shares the exact same
// canonical template text.
func (b *Builder) Handle(name, templateText string, defaults map[string]string, constraints route.ConstraintMap, endpoint route.Endpoint) (*route.InboundRouteEntry, error) {
	if endpoint == nil {
		return nil, ErrNilArgument
	}

	tmpl, err := route.Parse(templateText)
	if err != nil {
		return nil, fmt.Errorf("urlmatch: %w", err)
	}

	constraints, err = resolveConstraints(tmpl, constraints)
	if err != nil {
		return nil, fmt.Errorf("urlmatch: template %q: %w", tmpl.TemplateText, err)
	}

	if existing, ok := b.table.DuplicateOf(tmpl); ok {
		diagnostic.Emit(bridgeDiagnostics(b.cfg.diagnostics), diagnostic.KindDuplicateRoute, "duplicate route template", map[string]any{
			"template":      tmpl.TemplateText,
			"existing_name": existing.Name,
		})
		return nil, fmt.Errorf("urlmatch: template %q: %w", tmpl.TemplateText, ErrDuplicateRoute)
	}

	return b.table.Add(name, tmpl, defaults, constraints, endpoint), nil
}

// resolveConstraints compiles every parameter's inline ":constraint"
// suffixes (§4.1's grammar, §4.3) and merges them ahead of the caller's
// explicit out-of-band constraints, so a template like "{id:int}" enforces
// its inline constraint first and any additionally supplied constraint for
// "id" after it, in declaration order (§4.3 "evaluated in declaration
// order"). Returns explicit unchanged if no parameter declares an inline
// constraint.
func resolveConstraints(tmpl *route.RouteTemplate, explicit route.ConstraintMap) (route.ConstraintMap, error) {
	var merged route.ConstraintMap

	for _, seg := range tmpl.Segments {
		for _, part := range seg.Parts {
			if part.Kind != route.PartParameter || len(part.Opts.InlineConstraints) == 0 {
				continue
			}
			for _, raw := range part.Opts.InlineConstraints {
				c, err := route.ResolveInlineConstraint(part.Name, raw)
				if err != nil {
					return nil, fmt.Errorf("%w: %s", ErrInvalidConstraint, err)
				}
				if merged == nil {
					merged = make(route.ConstraintMap, len(tmpl.Parameters))
				}
				key := strings.ToLower(part.Name)
				merged[key] = append(merged[key], c)
			}
		}
	}

	if merged == nil {
		return explicit, nil
	}
	for name, cs := range explicit {
		merged[name] = append(merged[name], cs...)
	}
	return merged, nil
}

// Build compiles every registered route into an immutable Matcher, using
// the engine selected by WithEngine (default EnginePackedTree).
func (b *Builder) Build() (*Matcher, error) {
	started := time.Now()
	obs := newObservability(b.cfg)

	m, err := b.build(obs)

	if obs != nil {
		obs.recordBuild(b.cfg.engine, err, time.Since(started))
	}
	return m, err
}

func (b *Builder) build(obs *observability) (*Matcher, error) {
	diag := bridgeDiagnostics(b.cfg.diagnostics)

	var eng engine.Engine
	switch b.cfg.engine {
	case EnginePackedTree:
		eng = engine.BuildPackedTree(b.table, diag)
	case EngineDFA:
		eng = engine.BuildDFA(b.table, diag)
	case EngineInstruction:
		eng = engine.BuildProgram(b.table, diag)
	default:
		return nil, fmt.Errorf("urlmatch: engine kind %d: %w", b.cfg.engine, ErrUnknownEngine)
	}

	finder := newTableFinder(b.table.Entries)
	return &Matcher{
		engine: eng,
		links:  link.New(finder),
		cfg:    b.cfg,
		obs:    obs,
	}, nil
}

// MustBuild is Build but panics on error, for package-level Matchers built
// from compile-time-known templates.
func (b *Builder) MustBuild() *Matcher {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}

// tableFinder implements link.EndpointFinder over a Builder's route table,
// returning candidates in registration order (§4.7 "in declaration
// order") regardless of the precedence order the table's Entries slice
// ends up in once an engine's Build sorts it in place.
type tableFinder struct {
	byName map[string][]*route.InboundRouteEntry
}

func newTableFinder(entries []*route.InboundRouteEntry) *tableFinder {
	ordered := append([]*route.InboundRouteEntry(nil), entries...)
	for i := 1; i < len(ordered); i++ {
		j := i
		for j > 0 && ordered[j].Order < ordered[j-1].Order {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
			j--
		}
	}

	f := &tableFinder{byName: make(map[string][]*route.InboundRouteEntry)}
	for _, e := range ordered {
		if e.Name == "" {
			continue
		}
		f.byName[e.Name] = append(f.byName[e.Name], e)
	}
	return f
}

func (f *tableFinder) Find(address string) []*route.InboundRouteEntry {
	return f.byName[address]
}
