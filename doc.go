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

// Package urlmatch is a standalone URL routing core: template parsing,
// precedence ordering, constraint evaluation, inbound matching and
// reverse (link) generation, decoupled from any HTTP server or handler
// type.
//
// # Key Features
//
//   - Route templates with literal, parameter, optional, and catch-all
//     segments, plus "complex" segments mixing literal and parameter parts
//   - Per-parameter constraints (int, float, UUID, regex, enum, date,
//     length, range, custom predicate)
//   - A deterministic precedence order so the most specific of several
//     overlapping templates always wins, independent of registration order
//   - Three interchangeable match engines — a packed tree, a two-pass DFA,
//     and a stack-tokenising instruction interpreter — built from the same
//     route table and selectable via WithEngine
//   - Reverse link generation from a named route and a mix of supplied and
//     ambient parameter values
//
// # Constructor Pattern
//
// This package follows the same pragmatic constructor pattern as the
// router this core was distilled from:
//
//   - NewBuilder returns *Builder (no error): accumulating registrations
//     cannot fail, since nothing is validated until Build.
//   - Build returns (*Matcher, error); MustBuild panics on that error, for
//     call sites building a package-level Matcher from compile-time-known
//     templates.
//   - All configuration options use the "With" prefix (WithEngine,
//     WithDiagnostics, WithTracerProvider, ...).
//
// # Quick Start
//
//	b := urlmatch.NewBuilder(urlmatch.WithEngine(urlmatch.EngineDFA))
//	b.Handle("users.show", "/users/{id:int}", nil, nil, "usersShowHandler")
//	m := b.MustBuild()
//
//	endpoint, values, ok := m.Match("/users/42")
//	if ok {
//	    id, _ := values.Get("id")
//	    _ = endpoint // "usersShowHandler"
//	    _ = id
//	}
//
//	href, ok := m.TryGetLink(link.Context{Address: "users.show", SuppliedValues: values})
//
// # Observability
//
// Diagnostic events (constraint rejections, duplicate routes, complex
// segments an engine can't fully overlay, tokenizer overflow) flow through
// an optional DiagnosticHandler (WithDiagnostics), never through a
// concrete logger import. OpenTelemetry tracing and metrics around Match
// and Build are likewise opt-in, via WithTracerProvider/WithMeterProvider.
package urlmatch
