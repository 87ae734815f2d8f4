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

// Package engine provides the three interchangeable match engines described
// in spec.md §4.4-§4.6: a packed (flattened) tree, a two-pass DFA, and a
// stack-tokenising instruction/bytecode interpreter. All three are built
// from the same ordered route.Table and implement the Engine interface, so
// a caller can swap between them without touching registration code.
package engine

import (
	"strings"

	"github.com/go-urlmatch/urlmatch/internal/diagnostic"
	"github.com/go-urlmatch/urlmatch/route"
)

// Engine is the common contract every match engine satisfies (§6 "External
// Interfaces"): given a request path and a Values map to populate, return
// the InboundRouteEntry the path resolves to. The packed tree tries
// candidates in precedence order and skips any whose template or
// constraints reject the path; the DFA and instruction engines commit to
// the single highest-precedence candidate their tables reach and report
// no match if that candidate rejects the path.
type Engine interface {
	Match(path string, values *route.Values) (*route.InboundRouteEntry, bool)
}

// segmentKind distinguishes a builder node's incoming edge.
type segmentKind uint8

const (
	kindLiteral segmentKind = iota
	kindParameter
)

// builderNode is the mutable tree the packed tree is built from before
// flattening, keyed by segment kind+value exactly as §4.4 describes
// ("builder tree keyed by segment kind+value, deduplicating identical
// prefixes"). Grounded on the teacher's radix.go node/edge/param split in
// router's route tree, generalised from "static vs param vs wildcard
// per-node fields" to a single keyed-child map so any number of distinct
// literal children and one parameter child coexist uniformly.
type builderNode struct {
	literalChildren map[string]*builderNode
	paramChild      *builderNode
	matches         []*route.InboundRouteEntry

	// catchAllMatches holds entries whose catch-all segment is the
	// transition into this node. A catch-all is always an entry's last
	// segment, so these never gain further children of their own for that
	// entry; they are matched against the whole remaining path residue
	// rather than one more segment (§4.2, §4.4).
	catchAllMatches []*route.InboundRouteEntry
}

func newBuilderNode() *builderNode {
	return &builderNode{literalChildren: make(map[string]*builderNode)}
}

func (n *builderNode) child(kind segmentKind, text string) *builderNode {
	if kind == kindParameter {
		if n.paramChild == nil {
			n.paramChild = newBuilderNode()
		}
		return n.paramChild
	}
	key := strings.ToLower(text)
	if c, ok := n.literalChildren[key]; ok {
		return c
	}
	c := newBuilderNode()
	n.literalChildren[key] = c
	return c
}

// PackedEntry is one flattened node, linked via array indices rather than
// pointers so the whole tree lives in one contiguous slice (§4.4 "Flatten
// breadth-first into the packed array, linking first_child_index and
// next_sibling_index; nodes with no children or no further sibling carry
// -1").
type PackedEntry struct {
	Kind             segmentKind
	Value            string // literal text; empty/unused for parameter nodes
	FirstChildIndex  int
	NextSiblingIndex int
	Matches          []*route.InboundRouteEntry

	// CatchAllMatches holds entries whose catch-all segment transitions
	// into this node; matched against the whole remaining path residue
	// rather than one further segment (§4.2, §4.4).
	CatchAllMatches []*route.InboundRouteEntry
}

// PackedTree is the built, immutable matcher described in §4.4.
type PackedTree struct {
	nodes []PackedEntry
	diag  diagnostic.Handler
}

// BuildPackedTree builds a PackedTree from every entry in t, after sorting
// t by precedence descending — "high precedence = more specific first"
// (§4.4). route.Table.Sort sorts ascending by Precedence.Compare (lower
// Integer/Fractional = more specific), which is the same order §4.4 wants
// under the name "descending [specificity]"; we reuse it directly rather
// than re-deriving a second ordering. diag, if non-nil, receives
// constraint-rejection diagnostics during Match; it is never consulted
// during the build itself, since the packed tree is the one engine that
// fully supports complex segments (§9 Open Question (a)).
func BuildPackedTree(t *route.Table, diag diagnostic.Handler) *PackedTree {
	t.Sort()

	root := newBuilderNode()
	for _, e := range t.Entries {
		insertEntry(root, e)
	}

	pt := &PackedTree{diag: diag}
	pt.flatten(root)
	return pt
}

func insertEntry(root *builderNode, e *route.InboundRouteEntry) {
	cur := root
	segs := e.Template.Segments
	required := e.Template.RequiredSegmentCount()

	for i, seg := range segs {
		if seg.IsCatchAll() {
			cur = cur.child(kindParameter, "")
			cur.catchAllMatches = append(cur.catchAllMatches, e)
			return // catch-all is always the last segment; nothing follows
		}
		if i >= required {
			// This and every remaining segment is trailing-optional (§4.2):
			// a path that stops here, one level short of the fully-consumed
			// node below, must still be able to reach this entry.
			cur.matches = append(cur.matches, e)
		}
		// A complex segment goes under the parameter child as well: no
		// literal key could equal the path segments it matches, and the
		// per-template matcher validates its literal and parameter parts.
		if !seg.IsSimple() || seg.Parts[0].Kind == route.PartParameter {
			cur = cur.child(kindParameter, "")
			continue
		}
		cur = cur.child(kindLiteral, segmentLiteralKey(seg))
	}
	cur.matches = append(cur.matches, e)
}

// segmentLiteralKey renders a segment's fixed text for builder-tree keying.
// Parameter parts of a complex (mixed literal+parameter) segment become NUL
// placeholders, so a complex segment's key is one no real path segment
// equals: the DFA and instruction engines, which key complex segments this
// way, never reach them, while the packed tree places complex segments
// under its parameter child instead.
func segmentLiteralKey(seg route.Segment) string {
	var b strings.Builder
	for _, p := range seg.Parts {
		if p.Kind == route.PartLiteral {
			b.WriteString(strings.ToLower(p.Text))
		} else {
			b.WriteByte(0) // non-colliding separator; parameter parts never contribute text to the key
		}
	}
	return b.String()
}

// flatten performs the breadth-first flatten into pt.nodes (§4.4): each
// queued item remembers its parent's already-assigned array index, so
// first_child_index/next_sibling_index can be wired as soon as a node's
// children are enqueued, in one pass.
func (pt *PackedTree) flatten(root *builderNode) {
	type queued struct {
		node   *builderNode
		kind   segmentKind
		text   string
		parent int // index into pt.nodes, or -1 for the root
	}

	queue := []queued{{node: root, parent: -1}}

	for i := 0; i < len(queue); i++ {
		q := queue[i]
		idx := len(pt.nodes)
		pt.nodes = append(pt.nodes, PackedEntry{
			Kind:             q.kind,
			Value:            q.text,
			FirstChildIndex:  -1,
			NextSiblingIndex: -1,
			Matches:          q.node.matches,
			CatchAllMatches:  q.node.catchAllMatches,
		})

		if q.parent != -1 {
			p := &pt.nodes[q.parent]
			if p.FirstChildIndex == -1 {
				p.FirstChildIndex = idx
			} else {
				// Walk to the parent's last-enqueued-so-far child and
				// link it forward; children are enqueued in order so the
				// last one wired always has NextSiblingIndex == -1 here.
				last := p.FirstChildIndex
				for pt.nodes[last].NextSiblingIndex != -1 {
					last = pt.nodes[last].NextSiblingIndex
				}
				pt.nodes[last].NextSiblingIndex = idx
			}
		}

		// Deterministic child order: literal children sorted by key, then
		// the parameter child last (parameters are tried after every
		// literal alternative fails to match, matching the tree's
		// "specific literal before generic parameter" matching bias).
		n := q.node
		literalKeys := make([]string, 0, len(n.literalChildren))
		for k := range n.literalChildren {
			literalKeys = append(literalKeys, k)
		}
		sortStrings(literalKeys)
		for _, k := range literalKeys {
			queue = append(queue, queued{node: n.literalChildren[k], kind: kindLiteral, text: k, parent: idx})
		}
		if n.paramChild != nil {
			queue = append(queue, queued{node: n.paramChild, kind: kindParameter, parent: idx})
		}
	}
}

// sortStrings is a tiny insertion sort; child fan-out per node is small
// (handful of literal alternatives at most), so this avoids pulling in
// sort.Strings for what is, in practice, a few-element slice.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		j := i
		for j > 0 && s[j] < s[j-1] {
			s[j], s[j-1] = s[j-1], s[j]
			j--
		}
	}
}

// Match implements §4.4's matching algorithm: recurse from the root,
// advancing one segment per level, trying literal children before the
// parameter child, and on reaching the last segment of a path, trying each
// MatchEntry's full per-template matcher + constraint evaluation in turn.
func (pt *PackedTree) Match(path string, values *route.Values) (*route.InboundRouteEntry, bool) {
	if len(pt.nodes) == 0 {
		return nil, false
	}
	segs := splitPath(path)
	return pt.matchAt(0, segs, 0, values)
}

func (pt *PackedTree) matchAt(nodeIdx int, segs []string, segIdx int, values *route.Values) (*route.InboundRouteEntry, bool) {
	n := &pt.nodes[nodeIdx]

	if segIdx >= len(segs) {
		// Path exhausted at this node: only entries whose every remaining
		// template segment is trailing-optional can match here, plus any
		// catch-all child willing to accept a zero-segment residue.
		for _, e := range n.Matches {
			if tryEntry(e, path(segs), values, pt.diag) {
				return e, true
			}
		}
		for ci := n.FirstChildIndex; ci != -1; ci = pt.nodes[ci].NextSiblingIndex {
			child := &pt.nodes[ci]
			if len(child.CatchAllMatches) == 0 {
				continue
			}
			full := path(segs)
			for _, e := range child.CatchAllMatches {
				if tryEntry(e, full, values, pt.diag) {
					return e, true
				}
			}
		}
		return nil, false
	}

	isLast := segIdx == len(segs)-1

	if isLast && len(n.Matches) > 0 {
		full := path(segs)
		for _, e := range n.Matches {
			if tryEntry(e, full, values, pt.diag) {
				return e, true
			}
		}
	}

	for ci := n.FirstChildIndex; ci != -1; ci = pt.nodes[ci].NextSiblingIndex {
		child := &pt.nodes[ci]
		if child.Kind == kindLiteral && !strings.EqualFold(child.Value, segs[segIdx]) {
			continue
		}
		if len(child.CatchAllMatches) > 0 {
			// A catch-all absorbs the entire remaining path residue in one
			// shot rather than one tree level per path segment (§4.2). The
			// per-template matcher re-validates against the whole original
			// path (it owns the literal prefix segments too), not just the
			// residue from this tree position.
			full := path(segs)
			for _, e := range child.CatchAllMatches {
				if tryEntry(e, full, values, pt.diag) {
					return e, true
				}
			}
		}
		if e, ok := pt.matchAt(ci, segs, segIdx+1, values); ok {
			return e, true
		}
	}

	return nil, false
}

func tryEntry(e *route.InboundRouteEntry, fullPath string, values *route.Values, diag diagnostic.Handler) bool {
	mark := values.Mark()
	m := e.Matcher()
	if !m.TryMatch(fullPath, values) {
		values.Restore(mark)
		return false
	}
	if ok, rejectedParam, c := e.Constraints.EvaluateAll(values, route.Inbound); !ok {
		diagnostic.Emit(diag, diagnostic.KindConstraintRejected, "constraint rejected candidate", map[string]any{
			"template": e.Template.TemplateText,
			"param":    rejectedParam,
			"kind":     c.Kind,
		})
		values.Restore(mark)
		return false
	}
	return true
}

// splitPath splits path by '/'. A single trailing '/' is a terminator,
// not an extra empty segment, so "/simple/" splits the same as "/simple".
func splitPath(path string) []string {
	if path == "" || path == "/" {
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

func path(segs []string) string {
	return "/" + strings.Join(segs, "/")
}
