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

import "github.com/go-urlmatch/urlmatch/internal/diagnostic"

// DiagnosticEvent is an informational event raised during Build or Match.
// Emitting events never changes matching behavior; a Matcher with no
// DiagnosticHandler set produces identical results, just silently.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticKind categorizes a DiagnosticEvent.
type DiagnosticKind string

const (
	// DiagConstraintRejected fires when a constraint vetoes a candidate
	// during inbound matching.
	DiagConstraintRejected = DiagnosticKind(diagnostic.KindConstraintRejected)
	// DiagDuplicateRoute fires when Builder.Handle is given a template
	// whose canonical text already has an entry, alongside the
	// ErrDuplicateRoute it also returns.
	DiagDuplicateRoute = DiagnosticKind(diagnostic.KindDuplicateRoute)
	// DiagComplexSegmentUnsupported fires when a complex (mixed
	// literal+parameter) segment reaches an engine that only overlays
	// simple parameter segments (the DFA and instruction engines; the
	// packed tree engine supports complex segments fully).
	DiagComplexSegmentUnsupported = DiagnosticKind(diagnostic.KindComplexSegmentUnsupported)
	// DiagTokenizerOverflow fires when a path has more segments than the
	// instruction matcher's fixed-size stack tokenizer, and it spilled to
	// a heap-allocated slice instead.
	DiagTokenizerOverflow = DiagnosticKind(diagnostic.KindTokenizerOverflow)
)

// DiagnosticHandler receives diagnostic events raised by a Builder or
// Matcher. Implementations may log, emit metrics, trace events, or ignore
// them entirely.
//
// Example with logging:
//
//	handler := urlmatch.DiagnosticHandlerFunc(func(e urlmatch.DiagnosticEvent) {
//	    slog.Warn(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	b := urlmatch.NewBuilder(urlmatch.WithDiagnostics(handler))
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc is a function adapter for DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

// OnDiagnostic implements DiagnosticHandler.
func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) {
	if f != nil {
		f(e)
	}
}

// diagnosticBridge adapts a public DiagnosticHandler to the internal
// diagnostic.Handler the route/engine/link packages actually emit
// through, so those packages never import the module root (which would
// be a cycle).
type diagnosticBridge struct {
	handler DiagnosticHandler
}

func (b diagnosticBridge) OnDiagnostic(e diagnostic.Event) {
	b.handler.OnDiagnostic(DiagnosticEvent{
		Kind:    DiagnosticKind(e.Kind),
		Message: e.Message,
		Fields:  e.Fields,
	})
}

// bridgeDiagnostics wraps a public DiagnosticHandler for internal use, or
// returns nil (a valid, nil-safe diagnostic.Handler) if h is nil.
func bridgeDiagnostics(h DiagnosticHandler) diagnostic.Handler {
	if h == nil {
		return nil
	}
	return diagnosticBridge{handler: h}
}
