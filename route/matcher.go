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

// TemplateMatcher attempts to bind a single RouteTemplate against a path
// (§4.2). It is stateless and safe for concurrent use once constructed;
// all per-call state lives in the caller-supplied Values map.
type TemplateMatcher struct {
	Template *RouteTemplate
	Defaults map[string]string
}

// NewTemplateMatcher builds the per-template matcher for t, with the given
// default values (§3 "InboundRouteEntry" defaults).
func NewTemplateMatcher(t *RouteTemplate, defaults map[string]string) *TemplateMatcher {
	return &TemplateMatcher{Template: t, Defaults: defaults}
}

// splitSegments splits path by '/' without collapsing consecutive
// separators (§6: "consecutive / are not collapsed"), mirroring the
// teacher's manual-parse loop in radix.go/templates.go rather than
// strings.Split, to avoid an intermediate allocation here too. A single
// trailing '/' is a terminator, not an extra empty segment, so "/simple/"
// splits the same as "/simple".
func splitSegments(path string) []string {
	if path == "" {
		return nil
	}
	start := 0
	if path[0] == '/' {
		start = 1
	}
	n := len(path)
	if n > start && path[n-1] == '/' {
		n--
	}
	if start >= n {
		return nil
	}
	var out []string
	for start <= n {
		end := start
		for end < n && path[end] != '/' {
			end++
		}
		out = append(out, path[start:end])
		if end >= n {
			break
		}
		start = end + 1
	}
	return out
}

// TryMatch attempts to bind path against t's template, writing captures
// into values. Returns false (leaving values untouched beyond whatever the
// caller already Mark()/Restore()s around the call) if the path's
// structure does not fit the template (§4.2).
//
// Complex segments (mixed literal+parameter parts within one segment) are
// supported here: the per-template matcher walks parts left to right
// within the segment, matching literal parts verbatim and parameter parts
// against the shortest run of characters that lets the remaining literal
// parts still match — this is the one place in the engine family that
// implements complex segments (§9 Open Question (a); the DFA and
// instruction engines only overlay *simple* segments).
func (m *TemplateMatcher) TryMatch(path string, values *Values) bool {
	segs := splitSegments(path)
	tmpl := m.Template
	total := len(tmpl.Segments)

	if total > 0 && tmpl.Segments[total-1].IsCatchAll() {
		// A catch-all is always the template's last segment (enforced at
		// parse time), and nothing before it can be optional (an earlier
		// optional segment would not be trailing once the catch-all
		// follows it, which Parse already rejects as OptionalNotTrailing).
		// So the prefix before the catch-all is strictly required, and the
		// catch-all itself consumes whatever residue remains — zero or
		// more further path segments, slash-joined verbatim (§4.2).
		prefix := total - 1
		if len(segs) < prefix {
			return false
		}
		for i := 0; i < prefix; i++ {
			if !matchSegment(tmpl.Segments[i], segs[i], values, false) {
				return false
			}
		}
		residue := strings.Join(segs[prefix:], "/")
		catchPart := tmpl.Segments[total-1].Parts[0]
		if residue != "" {
			values.SetString(catchPart.Name, residue)
		} else if catchPart.Opts.DefaultValue != nil {
			values.SetString(catchPart.Name, *catchPart.Opts.DefaultValue)
		}
		applyDefaults(tmpl, m.Defaults, values)
		return true
	}

	required := tmpl.RequiredSegmentCount()

	if len(segs) < required || len(segs) > total {
		return false
	}

	for i, tseg := range tmpl.Segments {
		if i >= len(segs) {
			// A trailing optional segment with no corresponding path
			// segment: nothing to bind, defaults (if any) are applied below.
			continue
		}
		if !matchSegment(tseg, segs[i], values, i == len(tmpl.Segments)-1) {
			return false
		}
	}

	applyDefaults(tmpl, m.Defaults, values)
	return true
}

// matchSegment matches one template segment against one path segment (or,
// for a catch-all, against the residue of the path starting at that
// segment's position — the caller passes the already-rejoined residue for
// catch-alls because catch-alls are always the final template segment).
func matchSegment(seg Segment, raw string, values *Values, isLastTemplateSegment bool) bool {
	if seg.IsSimple() {
		p := seg.Parts[0]
		switch p.Kind {
		case PartLiteral:
			return strings.EqualFold(p.Text, raw)
		case PartParameter:
			if raw == "" && !p.Opts.IsOptional && p.Opts.DefaultValue == nil {
				return false
			}
			if raw == "" {
				return true // left for defaults to fill in
			}
			values.SetString(p.Name, raw)
			return true
		}
		return false
	}

	// Complex segment: walk parts left to right, greedily consuming
	// literal anchors and assigning the remainder between anchors to the
	// (at most one, in the common case) parameter parts between them.
	return matchComplexSegment(seg.Parts, raw, values)
}

// matchComplexSegment implements the "mixed literal+parameter" form of
// §3's "complex segment". It supports the practically useful subset: any
// number of literal parts interleaved with parameter parts, resolved via
// the literal anchors (each literal must appear, in order, in raw) so
// parameter boundaries are unambiguous.
func matchComplexSegment(parts []Part, raw string, values *Values) bool {
	pos := 0
	for i, p := range parts {
		switch p.Kind {
		case PartLiteral:
			idx := indexFold(raw[pos:], p.Text)
			if idx < 0 {
				return false
			}
			pos += idx + len(p.Text)
		case PartParameter:
			// Find where this parameter's capture ends: the start of the
			// next literal part, or the end of the segment if this is
			// the last part.
			end := len(raw)
			if i+1 < len(parts) && parts[i+1].Kind == PartLiteral {
				next := parts[i+1]
				idx := indexFold(raw[pos:], next.Text)
				if idx < 0 {
					return false
				}
				end = pos + idx
			}
			if end < pos {
				return false
			}
			capture := raw[pos:end]
			if capture == "" && !p.Opts.IsOptional && p.Opts.DefaultValue == nil {
				return false
			}
			if capture != "" {
				values.SetString(p.Name, capture)
			}
			pos = end
		}
	}
	return true
}

func indexFold(haystack, needle string) int {
	if needle == "" {
		return 0
	}
	lh, ln := strings.ToLower(haystack), strings.ToLower(needle)
	return strings.Index(lh, ln)
}

// applyDefaults fills in any declared default whose parameter was not
// captured during matching (§4.2: "values is populated with ... any
// defaults that were not overridden by a capture").
func applyDefaults(tmpl *RouteTemplate, defaults map[string]string, values *Values) {
	for _, seg := range tmpl.Segments {
		for _, p := range seg.Parts {
			if p.Kind != PartParameter {
				continue
			}
			if values.Has(p.Name) {
				continue
			}
			if p.Opts.DefaultValue != nil {
				values.SetString(p.Name, *p.Opts.DefaultValue)
			} else if v, ok := defaults[strings.ToLower(p.Name)]; ok {
				values.SetString(p.Name, v)
			}
		}
	}
}

