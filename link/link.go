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

// Package link implements reverse routing: building a URL for a named
// endpoint from supplied and ambient parameter values (§4.7). Grounded on
// the teacher's route.ReversePattern/BuildURL (rivaas.dev/router/route),
// generalised from "static segment vs single :param" to the full
// RouteTemplate segment/part model so percent-encoding, defaults,
// trailing-optional elision, and outbound constraints all apply.
package link

import (
	"strings"

	"github.com/go-urlmatch/urlmatch/route"
)

// EndpointFinder resolves an address (typically a route name) to the
// candidate InboundRouteEntry values that might service it, in
// declaration order (§4.7 "Resolve candidate endpoints by address via an
// external EndpointFinder").
type EndpointFinder interface {
	Find(address string) []*route.InboundRouteEntry
}

// Options carries link-generation knobs that don't belong on Context
// itself (currently empty; reserved for a future "force absolute URL"
// or "fragment" option without breaking Context's shape).
type Options struct{}

// Context is the input to TryGetLink/GetLink (§4.7 "Context").
type Context struct {
	Address        string
	SuppliedValues *route.Values
	AmbientValues  *route.Values
	Options        Options
}

// NoMatchingEndpoint is returned (wrapped) when no candidate for the
// requested address could be bound (§7).
type NoMatchingEndpoint struct {
	Address string
}

func (e *NoMatchingEndpoint) Error() string {
	return "link: no matching endpoint for address " + e.Address
}

// Generator builds links against a fixed EndpointFinder.
type Generator struct {
	Finder EndpointFinder
}

// New constructs a Generator.
func New(finder EndpointFinder) *Generator {
	return &Generator{Finder: finder}
}

// TryGetLink implements §4.7's algorithm, returning ("", false) if no
// candidate endpoint could be bound.
func (g *Generator) TryGetLink(ctx Context) (string, bool) {
	candidates := g.Finder.Find(ctx.Address)
	for _, e := range candidates {
		if link, ok := tryBind(e, ctx); ok {
			return link, true
		}
	}
	return "", false
}

// GetLink is TryGetLink but returns an error instead of a boolean.
func (g *Generator) GetLink(ctx Context) (string, error) {
	link, ok := g.TryGetLink(ctx)
	if !ok {
		return "", &NoMatchingEndpoint{Address: ctx.Address}
	}
	return link, nil
}

// boundValue records the resolved text for one template parameter plus
// whether it came out equal to the declared default, which trailing
// optional-segment elision needs to know (§4.7 step 2c).
type boundValue struct {
	text          string
	equalsDefault bool
}

// tryBind attempts step 2 of §4.7's algorithm against one candidate entry.
func tryBind(e *route.InboundRouteEntry, ctx Context) (string, bool) {
	bound := make(map[string]boundValue, len(e.Template.Parameters))

	// "falling back to ambient_values only if all earlier parameters were
	// also satisfied from ambient" — tracked as we walk parameters in
	// template (segment) order, the natural declaration order.
	allEarlierFromAmbient := true

	consumedSupplied := make(map[string]bool)

	for _, seg := range e.Template.Segments {
		for _, part := range seg.Parts {
			if part.Kind != route.PartParameter {
				continue
			}
			name := part.Name
			foldedName := strings.ToLower(name)

			var text string
			var have bool
			var fromAmbient bool

			if ctx.SuppliedValues != nil {
				if cell, ok := ctx.SuppliedValues.Get(name); ok {
					text, have = cell.String(), true
					consumedSupplied[foldedName] = true
				}
			}
			if !have && allEarlierFromAmbient && ctx.AmbientValues != nil {
				if cell, ok := ctx.AmbientValues.Get(name); ok {
					text, have, fromAmbient = cell.String(), true, true
				}
			}
			def := part.Opts.DefaultValue
			if !have && def != nil {
				text, have = *def, true
			}
			if !have && e.Defaults != nil {
				if v, ok := e.Defaults[foldedName]; ok {
					text, have = v, true
				}
			}

			if !have {
				if part.Opts.IsOptional {
					allEarlierFromAmbient = false
					continue
				}
				return "", false
			}
			if !fromAmbient {
				allEarlierFromAmbient = false
			}

			equalsDefault := def != nil && text == *def

			if ok, _ := e.Constraints.Evaluate(name, text, route.Outbound); !ok {
				return "", false
			}

			bound[foldedName] = boundValue{text: text, equalsDefault: equalsDefault}
		}
	}

	path := renderPath(e.Template, bound)
	query := renderQuery(ctx.SuppliedValues, consumedSupplied)

	if query == "" {
		return path, true
	}
	return path + "?" + query, true
}

// renderPath implements §4.7 step 2c: render each segment's parts, percent
// encoding parameter values with the path-segment safe set, and omit
// trailing optional segments whose bound value equals the declared
// default.
func renderPath(tmpl *route.RouteTemplate, bound map[string]boundValue) string {
	segs := tmpl.Segments

	// Determine how many trailing segments can be elided: walk backwards
	// while each segment is a simple optional parameter whose bound value
	// equals its default (or was never bound at all, i.e. omitted
	// entirely, which is only possible for optional parameters).
	end := len(segs)
	for end > 0 {
		seg := segs[end-1]
		if !seg.IsOptional() {
			break
		}
		name := strings.ToLower(seg.Parts[0].Name)
		bv, ok := bound[name]
		if ok && !bv.equalsDefault {
			break
		}
		end--
	}

	var b strings.Builder
	for i := 0; i < end; i++ {
		b.WriteByte('/')
		for _, part := range segs[i].Parts {
			switch part.Kind {
			case route.PartLiteral:
				b.WriteString(part.Text)
			case route.PartParameter:
				bv := bound[strings.ToLower(part.Name)]
				b.WriteString(percentEncodePathSegment(bv.text))
			}
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// renderQuery implements §4.7 step 2d: every supplied_values key not
// consumed by the template becomes a query-string entry, in supplied
// insertion order; list-valued keys repeat the key once per element; an
// empty list contributes nothing.
func renderQuery(supplied *route.Values, consumed map[string]bool) string {
	if supplied == nil {
		return ""
	}
	var b strings.Builder
	first := true
	for _, key := range supplied.Keys() {
		if consumed[strings.ToLower(key)] {
			continue
		}
		cell, _ := supplied.Get(key)
		values := cellStrings(cell)
		for _, v := range values {
			if !first {
				b.WriteByte('&')
			}
			first = false
			b.WriteString(percentEncodeQueryComponent(key))
			b.WriteByte('=')
			b.WriteString(percentEncodeQueryComponent(v))
		}
	}
	return b.String()
}

func cellStrings(c route.Cell) []string {
	switch c.Kind {
	case route.CellList:
		return c.List
	case route.CellNil:
		return nil
	default:
		return []string{c.String()}
	}
}

// isPathSegmentSafe and isQueryComponentSafe implement §4.7's "URI
// path-segment safe set" / "query-component safe set": the RFC 3986
// unreserved set (ALPHA / DIGIT / "-" / "." / "_" / "~") plus, per
// segment, the sub-delims and ":" / "@" that RFC 3986 allows unescaped
// within a pchar; the query set additionally excludes "&" and "=" (which
// must stay reserved as the pair/entry separators) and "+" (ambiguous with
// space in form encoding, so left escaped here).
func isUnreserved(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') ||
		b == '-' || b == '.' || b == '_' || b == '~'
}

func isPathSegmentSafe(b byte) bool {
	if isUnreserved(b) {
		return true
	}
	switch b {
	case '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=', ':', '@':
		return true
	}
	return false
}

func isQueryComponentSafe(b byte) bool {
	if isUnreserved(b) {
		return true
	}
	switch b {
	case '!', '$', '\'', '(', ')', '*', ',', ';', ':', '@':
		return true
	}
	return false
}

const hexDigits = "0123456789ABCDEF"

func percentEncode(s string, safe func(byte) bool) string {
	var needsEscape bool
	for i := 0; i < len(s); i++ {
		if !safe(s[i]) {
			needsEscape = true
			break
		}
	}
	if !needsEscape {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if safe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String()
}

func percentEncodePathSegment(s string) string {
	return percentEncode(s, isPathSegmentSafe)
}

func percentEncodeQueryComponent(s string) string {
	return percentEncode(s, isQueryComponentSafe)
}
