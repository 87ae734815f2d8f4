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

// Cell is a captured or supplied parameter value. Exactly one of the
// fields is meaningful, selected by Kind (§3 "Values map").
type Cell struct {
	Kind CellKind
	Str  string
	Int  int64
	List []string
}

// CellKind discriminates the Cell variants.
type CellKind uint8

const (
	CellString CellKind = iota
	CellInt
	CellList
	CellNil
)

// StringCell is a convenience constructor for the common case.
func StringCell(s string) Cell { return Cell{Kind: CellString, Str: s} }

// String returns the cell's value rendered as a string, for template
// matching and link generation where a plain textual form is needed.
func (c Cell) String() string {
	switch c.Kind {
	case CellString:
		return c.Str
	case CellInt:
		return itoa(c.Int)
	case CellList:
		return strings.Join(c.List, ",")
	default:
		return ""
	}
}

func itoa(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// entry is one key/value pair in a Values map, keeping the case the key
// was inserted with while comparisons are case-insensitive.
type entry struct {
	key   string
	value Cell
}

// Values is an order-insensitive mapping from case-insensitive parameter
// name to Cell that preserves insertion order for deterministic
// query-string emission, and supports the cheap "mark + truncate"
// snapshot/restore protocol §4.3/§4.4/§9 require: a failed constraint
// check must leave the caller's Values map observably unchanged without
// paying for a full copy.
type Values struct {
	entries []entry
	index   map[string]int // case-folded key -> index into entries
}

// NewValues returns an empty Values map.
func NewValues() *Values {
	return &Values{index: make(map[string]int)}
}

// Set inserts or overwrites a value. Overwriting an existing key updates
// it in place and does not change its position, matching the
// insertion-order contract.
func (v *Values) Set(key string, value Cell) {
	fk := strings.ToLower(key)
	if i, ok := v.index[fk]; ok {
		v.entries[i].value = value
		return
	}
	v.index[fk] = len(v.entries)
	v.entries = append(v.entries, entry{key: key, value: value})
}

// SetString is a convenience wrapper around Set(key, StringCell(s)).
func (v *Values) SetString(key, s string) {
	v.Set(key, StringCell(s))
}

// Get looks up a value by case-insensitive key.
func (v *Values) Get(key string) (Cell, bool) {
	fk := strings.ToLower(key)
	i, ok := v.index[fk]
	if !ok {
		return Cell{}, false
	}
	return v.entries[i].value, true
}

// Has reports whether key is present.
func (v *Values) Has(key string) bool {
	_, ok := v.index[strings.ToLower(key)]
	return ok
}

// Len returns the number of entries.
func (v *Values) Len() int { return len(v.entries) }

// Keys returns keys in insertion order, in their originally-inserted case.
func (v *Values) Keys() []string {
	keys := make([]string, len(v.entries))
	for i, e := range v.entries {
		keys[i] = e.key
	}
	return keys
}

// Mark is an opaque cursor into the Values map's insertion history, taken
// before attempting a candidate match.
type Mark int

// Mark returns a cursor that Restore can truncate back to. This is an
// O(1) operation: no data is copied.
func (v *Values) Mark() Mark { return Mark(len(v.entries)) }

// Restore truncates the map back to its length at the given Mark,
// discarding every entry added since (§4.3, §9). It does not undo
// overwrites: an entry that already existed at the Mark and was
// overwritten since keeps its new value.
//
// Because Set never removes a key, a single Mark()/Restore() pair around a
// whole candidate attempt (as the packed tree, DFA and instruction engines
// do) undoes it exactly, provided the candidate only calls Set for
// parameters that either land in the restored suffix or are idempotently
// reset by a later successful candidate.
func (v *Values) Restore(m Mark) {
	for i := len(v.entries) - 1; i >= int(m); i-- {
		delete(v.index, strings.ToLower(v.entries[i].key))
	}
	v.entries = v.entries[:m]
}

// Clone returns a deep copy. No engine calls it; the per-candidate match
// path uses Mark/Restore instead.
func (v *Values) Clone() *Values {
	out := &Values{
		entries: append([]entry(nil), v.entries...),
		index:   make(map[string]int, len(v.index)),
	}
	for k, i := range v.index {
		out.index[k] = i
	}
	return out
}
