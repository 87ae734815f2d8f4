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
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Direction distinguishes the two directions the constraint engine may be
// asked to evaluate a value in (§4.3, §4.7).
type Direction uint8

const (
	// Inbound evaluates a value captured from an incoming path.
	Inbound Direction = iota
	// Outbound evaluates a value about to be emitted into a generated URL.
	Outbound
)

// ConstraintKind enumerates the built-in per-parameter constraint forms.
// Grounded on the teacher's route.ConstraintKind, extended with Length and
// Range (named in spec.md's glossary — "regex, type, length, range…" —
// but absent from the teacher's enum) and Custom.
type ConstraintKind uint8

const (
	ConstraintNone ConstraintKind = iota
	ConstraintInt
	ConstraintFloat
	ConstraintUUID
	ConstraintRegex
	ConstraintEnum
	ConstraintDate     // RFC3339 full-date
	ConstraintDateTime // RFC3339 date-time
	ConstraintLength   // min/max string length
	ConstraintRange    // min/max integer range
	ConstraintCustom   // user-supplied predicate
)

// Constraint is one compiled, per-parameter validation rule. Multiple
// constraints on a parameter are conjunctive and evaluated in declaration
// order (§4.3).
type Constraint struct {
	Param string
	Kind  ConstraintKind

	re  *regexp.Regexp // ConstraintRegex / ConstraintEnum, compiled lazily
	raw string         // raw pattern/enum source, for diagnostics

	Min, Max int64 // ConstraintLength / ConstraintRange
	HasMin   bool
	HasMax   bool

	Custom func(value string, dir Direction) bool // ConstraintCustom
}

// NewRegexConstraint builds a Constraint from a raw regular expression.
// Panics on an invalid pattern, matching the teacher's ConstraintFromPattern
// "fail fast at startup" design.
func NewRegexConstraint(param, pattern string) Constraint {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		panic("route: invalid constraint pattern for parameter '" + param + "': " + err.Error())
	}
	return Constraint{Param: param, Kind: ConstraintRegex, re: re, raw: pattern}
}

// NewEnumConstraint builds a Constraint that accepts only the given values.
func NewEnumConstraint(param string, values ...string) Constraint {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = regexp.QuoteMeta(v)
	}
	pattern := "(?:" + strings.Join(escaped, "|") + ")"
	re := regexp.MustCompile("^" + pattern + "$")
	return Constraint{Param: param, Kind: ConstraintEnum, re: re, raw: strings.Join(values, ",")}
}

// NewLengthConstraint builds a Constraint bounding string length.
func NewLengthConstraint(param string, min, max int64, hasMin, hasMax bool) Constraint {
	return Constraint{Param: param, Kind: ConstraintLength, Min: min, Max: max, HasMin: hasMin, HasMax: hasMax}
}

// NewRangeConstraint builds a Constraint bounding an integer's value.
func NewRangeConstraint(param string, min, max int64, hasMin, hasMax bool) Constraint {
	return Constraint{Param: param, Kind: ConstraintRange, Min: min, Max: max, HasMin: hasMin, HasMax: hasMax}
}

// NewCustomConstraint wraps an arbitrary predicate.
func NewCustomConstraint(param string, fn func(value string, dir Direction) bool) Constraint {
	return Constraint{Param: param, Kind: ConstraintCustom, Custom: fn}
}

var (
	intPattern    = regexp.MustCompile(`^-?\d+$`)
	floatPattern  = regexp.MustCompile(`^-?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)
	dateExact     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimeExact = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})$`)
)

// Match evaluates the constraint against value in the given direction.
// Returns true if the value satisfies the constraint (§4.3 "Match(value,
// context, direction) → bool").
func (c Constraint) Match(value string, dir Direction) bool {
	switch c.Kind {
	case ConstraintNone:
		return true
	case ConstraintInt:
		return intPattern.MatchString(value)
	case ConstraintFloat:
		return floatPattern.MatchString(value)
	case ConstraintUUID:
		_, err := uuid.Parse(value)
		return err == nil
	case ConstraintRegex, ConstraintEnum:
		return c.re != nil && c.re.MatchString(value)
	case ConstraintDate:
		if !dateExact.MatchString(value) {
			return false
		}
		_, err := time.Parse("2006-01-02", value)
		return err == nil
	case ConstraintDateTime:
		if !dateTimeExact.MatchString(value) {
			return false
		}
		_, err := time.Parse(time.RFC3339Nano, value)
		return err == nil
	case ConstraintLength:
		n := int64(len(value))
		if c.HasMin && n < c.Min {
			return false
		}
		if c.HasMax && n > c.Max {
			return false
		}
		return true
	case ConstraintRange:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return false
		}
		if c.HasMin && n < c.Min {
			return false
		}
		if c.HasMax && n > c.Max {
			return false
		}
		return true
	case ConstraintCustom:
		return c.Custom != nil && c.Custom(value, dir)
	default:
		return false
	}
}

// ResolveInlineConstraint parses one ":name" or ":name(arg,arg,...)"
// inline constraint suffix (§3 "inline_constraints[]", §4.3) into a
// Constraint. The supported names are the keyword forms — int, float,
// uuid, date, datetime, enum(...), length(min,max), range(min,max) — since
// the template lexer's Ident token excludes '?' and '*' (§4.1's grammar),
// which a hand-written regex pattern would routinely need; a regex or
// custom-predicate constraint is only available out-of-band, via the
// ConstraintMap passed directly to Handle.
func ResolveInlineConstraint(param, raw string) (Constraint, error) {
	name, args := splitConstraintArgs(raw)
	switch strings.ToLower(name) {
	case "int":
		return Constraint{Param: param, Kind: ConstraintInt}, nil
	case "float":
		return Constraint{Param: param, Kind: ConstraintFloat}, nil
	case "uuid":
		return Constraint{Param: param, Kind: ConstraintUUID}, nil
	case "date":
		return Constraint{Param: param, Kind: ConstraintDate}, nil
	case "datetime":
		return Constraint{Param: param, Kind: ConstraintDateTime}, nil
	case "enum":
		if len(args) == 0 {
			return Constraint{}, fmt.Errorf("route: enum constraint on parameter %q requires at least one value", param)
		}
		return NewEnumConstraint(param, args...), nil
	case "length":
		min, max, hasMin, hasMax, err := parseBoundsArgs(param, "length", args)
		if err != nil {
			return Constraint{}, err
		}
		return NewLengthConstraint(param, min, max, hasMin, hasMax), nil
	case "range":
		min, max, hasMin, hasMax, err := parseBoundsArgs(param, "range", args)
		if err != nil {
			return Constraint{}, err
		}
		return NewRangeConstraint(param, min, max, hasMin, hasMax), nil
	default:
		return Constraint{}, fmt.Errorf("route: unknown inline constraint %q on parameter %q", name, param)
	}
}

// splitConstraintArgs splits "name(a,b)" into ("name", ["a","b"]), or
// returns raw unchanged with no args if it carries no parenthesised list.
func splitConstraintArgs(raw string) (name string, args []string) {
	open := strings.IndexByte(raw, '(')
	if open < 0 || !strings.HasSuffix(raw, ")") {
		return raw, nil
	}
	name = raw[:open]
	inner := raw[open+1 : len(raw)-1]
	if inner == "" {
		return name, nil
	}
	for _, a := range strings.Split(inner, ",") {
		args = append(args, strings.TrimSpace(a))
	}
	return name, args
}

// parseBoundsArgs parses a length/range constraint's "(min,max)" argument
// pair. Either bound may be omitted (an empty element between/around the
// comma), leaving that side unenforced; exactly one comma is required.
func parseBoundsArgs(param, kind string, args []string) (min, max int64, hasMin, hasMax bool, err error) {
	if len(args) != 2 {
		return 0, 0, false, false, fmt.Errorf("route: %s constraint on parameter %q requires exactly two arguments (min,max)", kind, param)
	}
	if args[0] != "" {
		min, err = strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return 0, 0, false, false, fmt.Errorf("route: %s constraint on parameter %q has invalid min %q: %w", kind, param, args[0], err)
		}
		hasMin = true
	}
	if args[1] != "" {
		max, err = strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return 0, 0, false, false, fmt.Errorf("route: %s constraint on parameter %q has invalid max %q: %w", kind, param, args[1], err)
		}
		hasMax = true
	}
	return min, max, hasMin, hasMax, nil
}

// ConstraintMap is the ordered collection of constraints declared for a
// route entry, keyed by case-folded parameter name (§3 "constraints_map").
type ConstraintMap map[string][]Constraint

// Evaluate runs every constraint attached to name against value, in
// declaration order, short-circuiting on the first rejection (§4.3).
func (m ConstraintMap) Evaluate(name, value string, dir Direction) (ok bool, rejected *Constraint) {
	cs := m[strings.ToLower(name)]
	for i := range cs {
		if !cs[i].Match(value, dir) {
			return false, &cs[i]
		}
	}
	return true, nil
}

// EvaluateAll runs every parameter's constraints against the supplied
// Values, used by the per-template matcher after a successful structural
// match (§4.2 "the constraint engine").
func (m ConstraintMap) EvaluateAll(values *Values, dir Direction) (ok bool, rejectedParam string, rejected *Constraint) {
	for _, key := range values.Keys() {
		cell, _ := values.Get(key)
		if good, c := m.Evaluate(key, cell.String(), dir); !good {
			return false, key, c
		}
	}
	return true, "", nil
}
