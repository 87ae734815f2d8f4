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

import "strings"

// Endpoint is the opaque payload an InboundRouteEntry resolves to on a
// successful match. The matching core never inspects it; callers supply
// whatever identifies a handler (a name, a function pointer, a struct) and
// get it back unchanged (§3 "endpoint", §6 "External Interfaces").
type Endpoint any

// InboundRouteEntry is one registered route: a parsed template, its
// defaults and constraints, the endpoint it resolves to, and the metadata
// needed to order it against every other entry (§3 "InboundRouteEntry").
type InboundRouteEntry struct {
	Template    *RouteTemplate
	Defaults    map[string]string
	Constraints ConstraintMap
	Endpoint    Endpoint

	// Name, if set, is the identifier link generation looks entries up by
	// (§4.7 "EndpointFinder"). Unnamed entries can still be matched
	// inbound but cannot be targeted directly by name for link generation.
	Name string

	// Order is the registration sequence number, used only as the final
	// tie-break if two entries share both Precedence and TemplateText
	// (two literally identical templates registered under different
	// names, say) — first-registered wins (§3 "Tie-break").
	Order int

	// Precedence is computed once at registration time via
	// route.Compute and cached here since every build of every match
	// engine needs it to order entries.
	Precedence Precedence
}

// NewInboundRouteEntry constructs an entry and computes its precedence.
func NewInboundRouteEntry(name string, tmpl *RouteTemplate, defaults map[string]string, constraints ConstraintMap, endpoint Endpoint, order int) *InboundRouteEntry {
	return &InboundRouteEntry{
		Template:    tmpl,
		Defaults:    defaults,
		Constraints: constraints,
		Endpoint:    endpoint,
		Name:        name,
		Order:       order,
		Precedence:  Compute(tmpl, constraints),
	}
}

// Matcher returns a TemplateMatcher bound to this entry's template and defaults.
func (e *InboundRouteEntry) Matcher() *TemplateMatcher {
	return NewTemplateMatcher(e.Template, e.Defaults)
}

// LessThan orders entries by Precedence, then TemplateText, then
// registration Order — the full total order §3's "Tie-break" describes,
// extended with Order as the final deterministic tie-break for two
// otherwise-identical entries.
func (e *InboundRouteEntry) LessThan(o *InboundRouteEntry) bool {
	if c := e.Precedence.Compare(o.Precedence); c != 0 {
		return c < 0
	}
	if c := strings.Compare(e.Template.TemplateText, o.Template.TemplateText); c != 0 {
		return c < 0
	}
	return e.Order < o.Order
}

// Table is an ordered collection of InboundRouteEntry values, sorted by
// precedence once via Sort and then shared read-only by every match
// engine built from it (§3, §5 "Registration / build separation").
type Table struct {
	Entries []*InboundRouteEntry
}

// NewTable builds a Table from entries added via Add, in registration order.
func NewTable() *Table { return &Table{} }

// Add appends an entry, assigning it the next Order value.
func (t *Table) Add(name string, tmpl *RouteTemplate, defaults map[string]string, constraints ConstraintMap, endpoint Endpoint) *InboundRouteEntry {
	e := NewInboundRouteEntry(name, tmpl, defaults, constraints, endpoint, len(t.Entries))
	t.Entries = append(t.Entries, e)
	return e
}

// Sort orders Entries by precedence ascending (most specific first), per
// §3's total order. Engines build their internal structures by walking
// Entries in this order so that, wherever two templates could both match
// the same path, the more specific one is considered first.
func (t *Table) Sort() {
	// Insertion sort, mirroring the teacher's sortRoutesBySpecificity: the
	// number of routes registered against one matcher is small enough
	// (tens to low hundreds) that insertion sort's simplicity and
	// stability (ties keep registration order before LessThan's Order
	// tie-break even needs to run) beat a generic sort.Slice here.
	for i := 1; i < len(t.Entries); i++ {
		j := i
		for j > 0 && t.Entries[j].LessThan(t.Entries[j-1]) {
			t.Entries[j], t.Entries[j-1] = t.Entries[j-1], t.Entries[j]
			j--
		}
	}
}

// ByName looks up the first entry with the given registered Name. Link
// generation does not go through it: the root package resolves addresses
// with its own finder over the table's entries.
func (t *Table) ByName(name string) (*InboundRouteEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// DuplicateOf reports another entry already registered with the exact
// same canonical TemplateText, used to raise ErrDuplicateRoute at
// registration time (§7) rather than let the ambiguity surface as a
// silent precedence tie at match time.
func (t *Table) DuplicateOf(tmpl *RouteTemplate) (*InboundRouteEntry, bool) {
	for _, e := range t.Entries {
		if e.Template.TemplateText == tmpl.TemplateText {
			return e, true
		}
	}
	return nil, false
}
