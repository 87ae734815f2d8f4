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

// Package diagnostic carries the DiagnosticEvent/Handler plumbing shared by
// route, engine and link without creating an import cycle back to the
// module root, the same way the teacher's route.Registrar interface kept
// the route package decoupled from the router package.
package diagnostic

// Kind categorizes a diagnostic event raised during build or match.
type Kind string

const (
	// KindConstraintRejected fires when a constraint vetoes a candidate
	// during inbound matching (§4.3: "logged at debug level").
	KindConstraintRejected Kind = "constraint_rejected"
	// KindDuplicateRoute fires when two entries compare equal in
	// precedence and template text (§7 DuplicateRoute).
	KindDuplicateRoute Kind = "duplicate_route"
	// KindComplexSegmentUnsupported fires when a complex (mixed
	// literal+parameter) segment reaches an engine that does not
	// support it (§9 Open Question (a)).
	KindComplexSegmentUnsupported Kind = "complex_segment_unsupported"
	// KindTokenizerOverflow fires when a path has more segments than
	// the instruction matcher's fixed-size tokenizer slots (§9).
	KindTokenizerOverflow Kind = "tokenizer_overflow"
)

// Event is an informational event raised by the build or match pipeline.
// Emitting events never changes matching behavior; a caller that never
// observes them gets identical results.
type Event struct {
	Kind    Kind
	Message string
	Fields  map[string]any
}

// Handler receives diagnostic events. Implementations may log, emit
// metrics, trace events, or ignore them entirely.
type Handler interface {
	OnDiagnostic(Event)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(Event)

// OnDiagnostic implements Handler.
func (f HandlerFunc) OnDiagnostic(e Event) {
	if f != nil {
		f(e)
	}
}

// Emit is a nil-safe convenience helper: emitting to a nil Handler is a no-op.
func Emit(h Handler, kind Kind, msg string, fields map[string]any) {
	if h == nil {
		return
	}
	h.OnDiagnostic(Event{Kind: kind, Message: msg, Fields: fields})
}
