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

// Precedence is the rational ordering key described in spec.md §3
// ("Precedence key"): an (Integer, Fractional) pair where lower is more
// specific / higher inbound priority. It generalises the teacher's
// sortRoutesBySpecificity, which only ever compared "count of static
// segments" — here every segment contributes a digit-weight, and
// trailing-optional segments and defaults contribute fractional
// increments, per the full algorithm in §3.
//
// Integer/Fractional are decimal digit sequences, most significant digit
// first (one segment = one digit), not free-standing magnitudes: a
// template's digit count varies with its segment count, so two
// Precedences must be compared position-by-position — a leading digit
// always dominates regardless of how many digits either side has — rather
// than as raw int64 values. IntegerDigits/FractionalDigits record how many
// digits each sequence holds so Compare can align them before comparing.
type Precedence struct {
	Integer       int64
	IntegerDigits int

	Fractional       int64
	FractionalDigits int
}

// digit weights, §3 "Precedence key": "literal segment = 1, constrained
// parameter = 3, unconstrained parameter = 4, catch-all = 5".
const (
	weightLiteral               = 1
	weightConstrainedParameter  = 3
	weightUnconstrainedParameter = 4
	weightCatchAll              = 5
)

// Compute derives the Precedence for a template given its constraint map
// (so it can distinguish constrained from unconstrained parameters).
func Compute(t *RouteTemplate, constraints ConstraintMap) Precedence {
	var integer int64
	var integerDigits int
	var fractional int64
	var fractionalDigits int

	for _, seg := range t.Segments {
		digit := segmentWeight(seg, constraints)

		if seg.IsOptional() || hasDefault(seg) {
			// Trailing-optional segments and defaulted parameters
			// contribute to the fractional component instead of the
			// integer one, so they sort after their required
			// counterparts at the same position but still influence
			// tie-breaking among templates that share a required prefix.
			fractional = fractional*10 + digit
			fractionalDigits++
		} else {
			integer = integer*10 + digit
			integerDigits++
		}
	}

	return Precedence{
		Integer:       integer,
		IntegerDigits: integerDigits,

		Fractional:       fractional,
		FractionalDigits: fractionalDigits,
	}
}

func segmentWeight(seg Segment, constraints ConstraintMap) int64 {
	if seg.IsCatchAll() {
		return weightCatchAll
	}
	if seg.IsSimple() && seg.Parts[0].Kind == PartParameter {
		name := strings.ToLower(seg.Parts[0].Name)
		if len(constraints[name]) > 0 || len(seg.Parts[0].Opts.InlineConstraints) > 0 {
			return weightConstrainedParameter
		}
		return weightUnconstrainedParameter
	}
	// Literal segments, and complex (mixed literal+parameter) segments,
	// are weighted as literal: a complex segment is at least as specific
	// as a plain literal because it still anchors on fixed text.
	return weightLiteral
}

func hasDefault(seg Segment) bool {
	return seg.IsSimple() && seg.Parts[0].Kind == PartParameter && seg.Parts[0].Opts.DefaultValue != nil
}

// Compare implements the total order over Precedence values described by
// §3: lower Integer first, then lower Fractional, then (at the call site)
// the lexicographic tie-break on the canonical TemplateText (§9 Open
// Question (b) resolves this as the *canonical*, post-strip form, since
// that's the only form RouteTemplate retains).
func (p Precedence) Compare(o Precedence) int {
	pInt, oInt := alignDigits(p.Integer, p.IntegerDigits, o.Integer, o.IntegerDigits)
	if pInt != oInt {
		if pInt < oInt {
			return -1
		}
		return 1
	}
	pFrac, oFrac := alignDigits(p.Fractional, p.FractionalDigits, o.Fractional, o.FractionalDigits)
	if pFrac != oFrac {
		if pFrac < oFrac {
			return -1
		}
		return 1
	}
	return 0
}

// alignDigits pads whichever of a/b has fewer digits with trailing
// (least-significant) zero digits so both represent the same number of
// decimal places before they're compared by magnitude — otherwise a
// shorter digit sequence with a large leading digit (e.g. a single
// catch-all's "5") could compare as numerically smaller than a longer
// sequence with small leading digits (e.g. two literals' "11"), even
// though the leading digit should dominate the comparison.
func alignDigits(a int64, aDigits int, b int64, bDigits int) (int64, int64) {
	for aDigits < bDigits {
		a *= 10
		aDigits++
	}
	for bDigits < aDigits {
		b *= 10
		bDigits++
	}
	return a, b
}

// Less reports whether p sorts before o under the full ordering,
// including the template-text tie-break (§3 "Tie-break").
func Less(pt *RouteTemplate, p Precedence, ot *RouteTemplate, o Precedence) bool {
	if c := p.Compare(o); c != 0 {
		return c < 0
	}
	return strings.Compare(pt.TemplateText, ot.TemplateText) < 0
}
