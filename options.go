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
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// EngineKind selects which of the three interchangeable match engines a
// Builder compiles its route table into.
type EngineKind int

const (
	// EnginePackedTree builds the flattened, breadth-first packed tree
	// (engine.PackedTree). The only engine that fully supports complex
	// (mixed literal+parameter) segments.
	EnginePackedTree EngineKind = iota
	// EngineDFA builds the two-pass literal-skeleton-plus-overlay DFA
	// (engine.DFA).
	EngineDFA
	// EngineInstruction builds the stack-tokenising bytecode interpreter
	// (engine.Program).
	EngineInstruction
)

// config accumulates every option applied to a Builder. Unexported: the
// public surface is entirely through With... functions and the fields
// they populate, matching the teacher's Router/Option split.
type config struct {
	engine      EngineKind
	diagnostics DiagnosticHandler

	lowercaseURLs         bool
	appendTrailingSlash   bool
	lowercaseQueryStrings bool

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures a Builder. Options are applied in NewBuilder and never
// fail there; an option naming something invalid (an unrecognised
// EngineKind) only surfaces as an error from Build.
type Option func(*config)

// WithEngine selects the match engine Build compiles to. Default:
// EnginePackedTree.
func WithEngine(kind EngineKind) Option {
	return func(c *config) { c.engine = kind }
}

// WithDiagnostics sets a handler for informational build/match events
// (constraint rejections, duplicate routes, complex segments an engine
// can't fully overlay, tokenizer overflow). Diagnostics never change
// matching behavior; a Builder/Matcher with no handler set behaves
// identically, just silently.
//
// Example with logging:
//
//	handler := urlmatch.DiagnosticHandlerFunc(func(e urlmatch.DiagnosticEvent) {
//	    slog.Warn(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	b := urlmatch.NewBuilder(urlmatch.WithDiagnostics(handler))
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(c *config) { c.diagnostics = handler }
}

// WithLowercaseURLs lowercases the path portion of every link TryGetLink/
// GetLink produces. Applied only at emission time; it has no effect on
// inbound matching, which is already case-insensitive.
func WithLowercaseURLs(enable bool) Option {
	return func(c *config) { c.lowercaseURLs = enable }
}

// WithAppendTrailingSlash appends a trailing "/" to a generated link's
// path if it doesn't already end with one. Applied after trailing-optional
// segment elision, so a link that elided its way down to "/users" becomes
// "/users/", not "/users//".
func WithAppendTrailingSlash(enable bool) Option {
	return func(c *config) { c.appendTrailingSlash = enable }
}

// WithLowercaseQueryStrings lowercases the query portion of every link
// TryGetLink/GetLink produces, after percent-encoding.
func WithLowercaseQueryStrings(enable bool) Option {
	return func(c *config) { c.lowercaseQueryStrings = enable }
}

// WithTracerProvider sets the OpenTelemetry TracerProvider used to create
// a span around each Matcher.Match and Builder.Build call. Unset (the
// default) disables tracing entirely, rather than falling back to a
// global or no-op provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) { c.tracerProvider = tp }
}

// WithMeterProvider sets the OpenTelemetry MeterProvider used to record
// match outcome/duration and build duration instruments.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) { c.meterProvider = mp }
}
