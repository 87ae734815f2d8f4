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

package route

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The template grammar, restated from spec §4.1:
//
//	template   := "~/"? "/"? segment ("/" segment)*
//	segment    := part+                  # simple if |parts| == 1
//	part       := literal | "{" param "}"
//	param      := "*"? name ("=" default)? ("?" )? (":" constraint)*
//
// This is lowered with a stateful lexer, the same technique the reference
// corpus uses for bind-parameter grammars: a "Root"/"Segment"/"Param" state
// machine where entering a `{...}` pushes a state and the matching `}` pops
// it, so literal text and parameter syntax never fight over the same
// tokens.

// astParamValue is the ("=" default) part of a parameter.
type astParamValue struct {
	Text string `parser:"@Ident"`
}

// astConstraint is one ":constraint" suffix on a parameter.
type astConstraint struct {
	Text string `parser:"@Ident"`
}

// astParam is the contents of a "{...}" part.
type astParam struct {
	CatchAll    bool             `parser:"@CatchAll?"`
	Name        string           `parser:"@Ident"`
	Default     *astParamValue   `parser:"( '=' @@ )?"`
	Optional    bool             `parser:"@Optional?"`
	Constraints []*astConstraint `parser:"( ':' @@ )*"`
}

// astPart is one literal-or-parameter fragment within a segment.
type astPart struct {
	Literal *string   `parser:"  @(Ident | Escaped)"`
	Param   *astParam `parser:"| '{' @@ '}'"`
}

// astSegment is the text between two '/' separators.
type astSegment struct {
	Parts []*astPart `parser:"@@*"`
}

// astTemplate is the whole parsed template string.
type astTemplate struct {
	AppRelative bool          `parser:"@AppRelative?"`
	Segments    []*astSegment `parser:"'/'? ( @@ ( '/' @@ )* )?"`
}

// templateLexer recognises the handful of tokens the grammar above needs.
// Everything that is not a brace, slash, colon, equals, comma, '?' or '*'
// is collected as free-form literal text (Ident), including `{{`/`}}`
// escapes (Escaped) per §4.1 "literal text may contain {{ / }} as escaped
// braces".
var templateLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "AppRelative", Pattern: `~/`},
	{Name: "Escaped", Pattern: `\{\{|\}\}`},
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "Slash", Pattern: `/`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Equals", Pattern: `=`},
	{Name: "CatchAll", Pattern: `\*`},
	{Name: "Optional", Pattern: `\?`},
	{Name: "Ident", Pattern: `[^{}/:=*?]+`},
})

var templateParser = participle.MustBuild[astTemplate](
	participle.Lexer(templateLexer),
	participle.Elide(),
	participle.UseLookahead(2),
)

// parseAST parses the raw template text into the grammar AST. Syntax
// errors from participle are translated into a ParseError by the caller,
// which keeps the token offset and reports every such error as
// ErrUnbalancedBrace.
func parseAST(text string) (*astTemplate, error) {
	return templateParser.ParseString("", text)
}
