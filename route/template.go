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

// Package route implements the template model: parsing template strings
// into RouteTemplate values (§3, §4.1), computing their precedence key
// (§3 "Precedence key"), evaluating constraints (§4.3), matching a single
// template against a path and extracting parameter values (§4.2), and the
// case-insensitive, insertion-order-preserving Values map the rest of the
// package operates on.
package route

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// PartKind identifies which of the three tagged-variant forms a Part is.
type PartKind uint8

const (
	// PartLiteral is fixed text that must match verbatim (case-insensitively).
	PartLiteral PartKind = iota
	// PartParameter is a "{name}" placeholder, possibly optional,
	// defaulted, catch-all, or constrained.
	PartParameter
	// PartSeparator is reserved for complex-segment literal glue between
	// two parameter parts; the parser folds separator text into
	// PartLiteral, so engines only ever observe PartLiteral/PartParameter,
	// but the variant is kept distinct per §3's tagged union for callers
	// that inspect ASTs directly.
	PartSeparator
)

// ParamOptions carries the optional/default/catch-all/constraint metadata
// attached to a PartParameter (§3 "Segment part").
type ParamOptions struct {
	IsOptional         bool
	IsCatchAll         bool
	DefaultValue       *string
	InlineConstraints  []string // raw ":constraint" suffixes, resolved by the constraint engine
}

// Part is one literal or parameter fragment within a Segment.
type Part struct {
	Kind PartKind
	Text string // literal text, only meaningful when Kind == PartLiteral
	Name string // parameter name, only meaningful when Kind == PartParameter
	Opts ParamOptions
}

// Segment is an ordered, non-empty sequence of Parts.
type Segment struct {
	Parts []Part
}

// IsSimple reports whether the segment has exactly one part.
func (s Segment) IsSimple() bool { return len(s.Parts) == 1 }

// IsOptional reports whether the segment's single part is an optional parameter.
func (s Segment) IsOptional() bool {
	return s.IsSimple() && s.Parts[0].Kind == PartParameter && s.Parts[0].Opts.IsOptional
}

// IsCatchAll reports whether the segment's single part is a catch-all parameter.
func (s Segment) IsCatchAll() bool {
	return s.IsSimple() && s.Parts[0].Kind == PartParameter && s.Parts[0].Opts.IsCatchAll
}

// RouteTemplate is the parsed, canonicalised form of a template string
// (§3 "RouteTemplate"). It is immutable once returned by Parse.
type RouteTemplate struct {
	// TemplateText is the canonicalised template: leading '/' and
	// leading "~/" stripped (§6 "Template strings").
	TemplateText string
	Segments     []Segment
	// Parameters maps a case-folded parameter name to its segment index.
	Parameters map[string]int
}

// RequiredSegmentCount returns the number of leading segments that are not
// trailing-optional, i.e. the minimum segment count a path must have to
// have any chance of matching (§4.2).
func (t *RouteTemplate) RequiredSegmentCount() int {
	n := len(t.Segments)
	for n > 0 && t.Segments[n-1].IsOptional() {
		n--
	}
	return n
}

// ErrorKind enumerates the §4.1 parse failure taxonomy.
type ErrorKind string

const (
	ErrEmptyName           ErrorKind = "EmptyName"
	ErrDuplicateName       ErrorKind = "DuplicateName"
	ErrUnbalancedBrace     ErrorKind = "UnbalancedBrace"
	ErrCatchAllNotLast     ErrorKind = "CatchAllNotLast"
	ErrOptionalNotTrailing ErrorKind = "OptionalNotTrailing"
	ErrDefaultOnCatchAll   ErrorKind = "DefaultOnCatchAll"
	ErrOptionalCatchAll    ErrorKind = "OptionalCatchAll"
)

// ParseError is the build-time-only error raised by Parse, with a
// machine-readable Kind (§4.1/§7). A syntax error reported by the grammar
// always has Kind ErrUnbalancedBrace and carries the offending token's
// character offset; the semantic checks Parse runs afterwards (names,
// catch-all and optional placement, defaults) report Offset 0.
type ParseError struct {
	Offset int
	Kind   ErrorKind
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("route: parse error at offset %d (%s): %s", e.Offset, e.Kind, e.Detail)
}

// Parse parses a template string into a RouteTemplate, or returns a
// *ParseError describing the first problem found (§4.1).
//
// Leading "~/" and leading "/" are stripped before parsing (§6); the
// canonical, stripped form is what TemplateText stores and what the
// precedence tie-break (§3, §9 Open Question (b)) compares.
func Parse(text string) (*RouteTemplate, error) {
	ast, err := parseAST(text)
	if err != nil {
		offset := 0
		if tokErr, ok := err.(interface{ Position() lexer.Position }); ok {
			offset = tokErr.Position().Offset
		}
		return nil, &ParseError{Offset: offset, Kind: ErrUnbalancedBrace, Detail: err.Error()}
	}

	canonical := text
	canonical = strings.TrimPrefix(canonical, "~/")
	canonical = strings.TrimPrefix(canonical, "/")

	tmpl := &RouteTemplate{
		TemplateText: canonical,
		Parameters:   make(map[string]int),
	}

	seenNames := make(map[string]struct{})
	sawCatchAll := false
	sawOptionalSegment := false

	for si, as := range ast.Segments {
		seg := Segment{Parts: make([]Part, 0, len(as.Parts))}

		for _, ap := range as.Parts {
			switch {
			case ap.Literal != nil:
				lit := unescapeLiteral(*ap.Literal)
				// Escaped braces ("{{"/"}}") lex as separate tokens from
				// the surrounding free-form text, so a purely literal run
				// spanning an escape arrives here as several consecutive
				// Literal AST nodes; merge them back into one Part so an
				// all-literal segment stays IsSimple() and keeps the
				// strict whole-segment match in matchSegment rather than
				// falling into the complex-segment matcher's anchor-only
				// (not whole-match) semantics.
				if n := len(seg.Parts); n > 0 && seg.Parts[n-1].Kind == PartLiteral {
					seg.Parts[n-1].Text += lit
				} else {
					seg.Parts = append(seg.Parts, Part{Kind: PartLiteral, Text: lit})
				}

			case ap.Param != nil:
				p := ap.Param
				if sawCatchAll {
					return nil, &ParseError{Kind: ErrCatchAllNotLast, Detail: "catch-all must be the last part of the last segment"}
				}

				name := strings.TrimSpace(p.Name)
				if name == "" {
					return nil, &ParseError{Kind: ErrEmptyName, Detail: "parameter name must not be empty"}
				}
				foldedName := strings.ToLower(name)
				if _, dup := seenNames[foldedName]; dup {
					return nil, &ParseError{Kind: ErrDuplicateName, Detail: fmt.Sprintf("duplicate parameter name %q", name)}
				}
				seenNames[foldedName] = struct{}{}

				if p.Optional && p.CatchAll {
					return nil, &ParseError{Kind: ErrOptionalCatchAll, Detail: "catch-all parameters cannot also be optional"}
				}

				opts := ParamOptions{
					IsOptional: p.Optional,
					IsCatchAll: p.CatchAll,
				}
				if p.Default != nil {
					if p.CatchAll {
						return nil, &ParseError{Kind: ErrDefaultOnCatchAll, Detail: "catch-all parameters cannot have a default value"}
					}
					v := p.Default.Text
					opts.DefaultValue = &v
				}
				for _, c := range p.Constraints {
					opts.InlineConstraints = append(opts.InlineConstraints, c.Text)
				}

				if p.CatchAll {
					sawCatchAll = true
				}
				if p.Optional {
					sawOptionalSegment = true
				} else if sawOptionalSegment && len(as.Parts) == 1 {
					return nil, &ParseError{Kind: ErrOptionalNotTrailing, Detail: "optional parameters must appear only in trailing optional segments"}
				}

				seg.Parts = append(seg.Parts, Part{Kind: PartParameter, Name: name, Opts: opts})
				tmpl.Parameters[foldedName] = si
			}
		}

		if len(seg.Parts) == 0 {
			continue // a bare "//" collapses to nothing at parse time; matching still treats "/" literally
		}

		if sawCatchAll && si != len(ast.Segments)-1 {
			return nil, &ParseError{Kind: ErrCatchAllNotLast, Detail: "catch-all must be the last segment"}
		}

		tmpl.Segments = append(tmpl.Segments, seg)
	}

	// A catch-all mid-template (not literally the template's last segment,
	// because trailing segments were skipped as empty) is still invalid.
	for i, seg := range tmpl.Segments {
		if seg.IsCatchAll() && i != len(tmpl.Segments)-1 {
			return nil, &ParseError{Kind: ErrCatchAllNotLast, Detail: "catch-all must be the last segment"}
		}
	}

	return tmpl, nil
}

// MustParse is Parse but panics on error; intended for tests and
// compile-time-known templates, mirroring the teacher's Must* convention.
func MustParse(text string) *RouteTemplate {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

func unescapeLiteral(s string) string {
	s = strings.ReplaceAll(s, "{{", "{")
	s = strings.ReplaceAll(s, "}}", "}")
	return s
}
