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

import "errors"

// Static errors for the taxonomy in spec §7. These should be wrapped with
// fmt.Errorf and %w when a caller needs to attach context (which address,
// which template).
var (
	// ErrDuplicateRoute is raised at registration time when two entries
	// compare equal in both precedence and canonical template text.
	ErrDuplicateRoute = errors.New("urlmatch: duplicate route")

	// ErrNoMatchingEndpoint surfaces only from GetLink: every candidate
	// endpoint for the requested address failed to bind.
	ErrNoMatchingEndpoint = errors.New("urlmatch: no matching endpoint")

	// ErrNilArgument is raised by public entry points given a nil
	// required argument (a programmer error, not a match-time failure).
	ErrNilArgument = errors.New("urlmatch: nil argument")

	// ErrUnknownEngine is raised by Build when the configured EngineKind
	// doesn't match one of the built-in engines.
	ErrUnknownEngine = errors.New("urlmatch: unknown match engine kind")

	// ErrInvalidConstraint is raised by Handle when a template's inline
	// ":constraint" suffix names an unknown kind or malformed argument list.
	ErrInvalidConstraint = errors.New("urlmatch: invalid inline constraint")
)
