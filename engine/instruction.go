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

package engine

import (
	"strings"

	"github.com/go-urlmatch/urlmatch/internal/diagnostic"
	"github.com/go-urlmatch/urlmatch/route"
)

// maxStackSegments bounds the stack-allocated tokenizer array (§4.6: "a
// stack-allocated array of up to 32 slash offsets"). Grounded on the
// teacher's templates.go, which used a fixed [16]string segment buffer for
// the same reason: avoid a heap allocation on the hot match path for the
// overwhelming majority of real templates, which never nest this deep.
const maxStackSegments = 32

// opcode is one instruction in the lowered program (§4.6).
type opcode uint8

const (
	opAccept opcode = iota
	opBranch
	opJump
)

type instruction struct {
	op      opcode
	payload int // endpoint index (Accept), jump table index (Branch), or target PC (Jump)
}

// programJumpTable is one Branch instruction's segment-dispatch table: it
// knows its own depth (which tokenized segment it reads) and maps each
// literal label to a destination PC. Unlike the DFA's jump table, a single
// "exit" destination is not enough here: "no segment exists at this depth"
// (the tokenized path is shorter than this branch needs) and "a segment
// exists but matches no literal" (fall through to a parameter capture) are
// different outcomes that can both be live at the same depth — exactly the
// trailing-optional-parameter case (§4.2) — so they get distinct fields.
type programJumpTable struct {
	depth     int
	labels    []string
	dests     []int
	paramExit int // destination when a segment is present but matches no literal label
	shortExit int // destination when the tokenized path has no segment at this depth
}

func (jt *programJumpTable) literalDest(segment string) (int, bool) {
	for i, label := range jt.labels {
		if len(label) == len(segment) && strings.EqualFold(label, segment) {
			return jt.dests[i], true
		}
	}
	return 0, false
}

// nodeKind tags the typed builder tree §4.6 lowers from.
type nodeKind uint8

const (
	nodeSequence nodeKind = iota
	nodeBranch
	nodeParameter
	nodeAccept
)

// instrNode is one node of the per-order typed tree (§4.6 "construct a
// per-order tree of typed nodes"). Each InboundRouteEntry contributes one
// Sequence chain of its segments, terminated by an Accept; entries sharing
// a literal prefix share the Branch node built for that segment depth.
type instrNode struct {
	kind     nodeKind
	depth    int                      // nodeBranch: which tokenized segment this dispatches on
	literal  string                   // nodeBranch child selector key, set on children reached via a literal edge
	children []*instrNode             // nodeSequence/nodeBranch/nodeParameter
	endpoint *route.InboundRouteEntry // nodeAccept
}

// Program is the built, immutable instruction-matcher described in §4.6.
type Program struct {
	instructions []instruction
	tables       []programJumpTable
	endpoints    []*route.InboundRouteEntry
	diag         diagnostic.Handler
}

// BuildProgram builds a Program from t, sorted by precedence. At runtime
// the last Accept executed wins, so wherever several Accepts share one
// block they are lowered least specific first, leaving the most specific
// one to execute last. diag, if non-nil, receives a
// KindComplexSegmentUnsupported warning for every complex segment
// encountered, mirroring the DFA engine's limitation (§9 Open Question
// (a)).
func BuildProgram(t *route.Table, diag diagnostic.Handler) *Program {
	t.Sort()

	root := buildTree(t.Entries, 0, diag)

	p := &Program{diag: diag}
	p.lower(root)
	return p
}

// buildTree recursively partitions entries by the segment at depth,
// producing nodeBranch nodes keyed on literal text with a single
// nodeParameter fallback, and nodeAccept leaves once an entry's segments
// are exhausted. Entries are processed in their (precedence-sorted)
// order; each run of Accepts is emitted in reverse of that order, so the
// most specific entry's Accept executes last and is the one that wins.
func buildTree(entries []*route.InboundRouteEntry, depth int, diag diagnostic.Handler) *instrNode {
	type bucket struct {
		literal string
		isParam bool
		isCatch bool
		entries []*route.InboundRouteEntry
	}

	var buckets []*bucket
	index := map[string]*bucket{}
	var paramBucket *bucket
	var hereAccepts []*route.InboundRouteEntry

	for _, e := range entries {
		segs := e.Template.Segments
		required := e.Template.RequiredSegmentCount()
		if depth >= required {
			// Every segment from here on (if any) is trailing-optional
			// (§4.2): the entry can accept with the tokenizer exhausted
			// right here, even if it also still has further segments to
			// bucket below when the path does continue.
			hereAccepts = append(hereAccepts, e)
		}
		if depth >= len(segs) {
			continue
		}
		seg := segs[depth]
		if isParamOrCatchAll(seg) {
			if paramBucket == nil {
				paramBucket = &bucket{isParam: true, isCatch: seg.IsCatchAll()}
			}
			paramBucket.entries = append(paramBucket.entries, e)
			continue
		}
		if !seg.IsSimple() {
			diagnostic.Emit(diag, diagnostic.KindComplexSegmentUnsupported, "instruction engine only overlays simple parameter segments", map[string]any{
				"template": e.Template.TemplateText,
			})
		}
		key := segmentLiteralKey(seg)
		b, ok := index[key]
		if !ok {
			b = &bucket{literal: key}
			index[key] = b
			buckets = append(buckets, b)
		}
		b.entries = append(b.entries, e)
	}

	if len(buckets) == 0 && paramBucket == nil {
		// Leaf: every entry here is exhausted. Lower as a Sequence of
		// Accepts, most specific last so it is the Accept that wins.
		seq := &instrNode{kind: nodeSequence}
		for i := len(hereAccepts) - 1; i >= 0; i-- {
			seq.children = append(seq.children, &instrNode{kind: nodeAccept, endpoint: hereAccepts[i]})
		}
		return seq
	}

	branch := &instrNode{kind: nodeBranch, depth: depth}
	for _, b := range buckets {
		child := buildTree(b.entries, depth+1, diag)
		child.literal = b.literal
		branch.children = append(branch.children, child)
	}
	if paramBucket != nil {
		var paramChild *instrNode
		if paramBucket.isCatch {
			paramChild = &instrNode{kind: nodeSequence}
			for i := len(paramBucket.entries) - 1; i >= 0; i-- {
				paramChild.children = append(paramChild.children, &instrNode{kind: nodeAccept, endpoint: paramBucket.entries[i]})
			}
		} else {
			paramChild = buildTree(paramBucket.entries, depth+1, diag)
		}
		wrapped := &instrNode{kind: nodeParameter, children: []*instrNode{paramChild}}
		branch.children = append(branch.children, wrapped)
	}

	if len(hereAccepts) > 0 {
		// An entry whose template ends exactly at this depth, coexisting
		// with longer siblings sharing its prefix (e.g. "/a" and
		// "/a/{id}"): lower its Accept as an extra branch-less tail,
		// executed only when the tokenizer has no further segment — the
		// Branch instruction's own exit path (no table entry matches an
		// exhausted read) reaches it, so it is appended as a final
		// sequence child rather than a table entry.
		seq := &instrNode{kind: nodeSequence}
		for i := len(hereAccepts) - 1; i >= 0; i-- {
			seq.children = append(seq.children, &instrNode{kind: nodeAccept, endpoint: hereAccepts[i]})
		}
		branch.children = append(branch.children, seq)
	}

	return branch
}

// lower implements §4.6's lowering algorithm.
func (p *Program) lower(n *instrNode) {
	p.lowerNode(n)
}

func (p *Program) lowerNode(n *instrNode) {
	switch n.kind {
	case nodeSequence:
		for _, c := range n.children {
			p.lowerNode(c)
		}

	case nodeParameter:
		for _, c := range n.children {
			p.lowerNode(c)
		}

	case nodeAccept:
		idx := len(p.endpoints)
		p.endpoints = append(p.endpoints, n.endpoint)
		p.instructions = append(p.instructions, instruction{op: opAccept, payload: idx})

	case nodeBranch:
		tableIdx := len(p.tables)
		p.tables = append(p.tables, programJumpTable{depth: n.depth, paramExit: -1, shortExit: -1})
		p.instructions = append(p.instructions, instruction{op: opBranch, payload: tableIdx})

		var pops []int
		for _, c := range n.children {
			startPC := len(p.instructions)
			switch {
			case c.kind == nodeParameter:
				p.tables[tableIdx].paramExit = startPC
			case c.literal == "" && c.kind == nodeSequence:
				// The trailing "accept here, no further segments" block
				// appended by buildTree: reachable only when the
				// tokenizer has no segment at this depth.
				p.tables[tableIdx].shortExit = startPC
			default:
				p.tables[tableIdx].labels = append(p.tables[tableIdx].labels, c.literal)
				p.tables[tableIdx].dests = append(p.tables[tableIdx].dests, startPC)
			}

			p.lowerNode(c)

			popPC := len(p.instructions)
			p.instructions = append(p.instructions, instruction{op: opJump, payload: -1})
			pops = append(pops, popPC)
		}

		endPC := len(p.instructions)
		for _, popPC := range pops {
			p.instructions[popPC].payload = endPC
		}
		if p.tables[tableIdx].paramExit == -1 {
			p.tables[tableIdx].paramExit = endPC
		}
		if p.tables[tableIdx].shortExit == -1 {
			p.tables[tableIdx].shortExit = endPC
		}
	}
}

// tokenize pre-tokenises path into a stack-allocated array of segment
// [start,end) offsets, per §4.6. Paths with more than maxStackSegments
// segments spill to a heap slice rather than being silently truncated or
// rejected (§9 Open Question resolution: truncating would make an
// otherwise-valid deep path invisible to the matcher, and rejecting would
// make this engine behave differently from the other two for the same
// registered templates, which §5 requires not to happen).
func tokenize(path string) []int {
	var stack [maxStackSegments*2 + 2]int
	offsets := stack[:0]

	n := len(path)
	start := 0
	if n > 0 && path[0] == '/' {
		start = 1
	}
	if n > start && path[n-1] == '/' {
		// A single trailing '/' is a terminator, not an extra empty
		// segment: "/simple/" tokenises the same as "/simple".
		n--
	}
	count := 0
	for start <= n {
		end := start
		for end < n && path[end] != '/' {
			end++
		}
		if count < maxStackSegments {
			offsets = append(offsets, start, end)
		} else {
			if cap(offsets) == len(offsets) {
				grown := make([]int, len(offsets), len(offsets)*2+2)
				copy(grown, offsets)
				offsets = grown
			}
			offsets = append(offsets, start, end)
		}
		count++
		if end >= n {
			break
		}
		start = end + 1
	}
	return offsets
}

// Match implements §4.6's runtime: tokenize once, then step the program
// counter through the instruction stream, tracking the last-seen Accept.
func (p *Program) Match(path string, values *route.Values) (*route.InboundRouteEntry, bool) {
	if len(p.instructions) == 0 {
		return nil, false
	}

	offsets := tokenize(path)
	segCount := len(offsets) / 2
	if segCount > maxStackSegments {
		diagnostic.Emit(p.diag, diagnostic.KindTokenizerOverflow, "path segment count exceeded stack tokenizer capacity, spilled to heap", map[string]any{
			"path":        path,
			"segments":    segCount,
			"stack_limit": maxStackSegments,
		})
	}

	var result *route.InboundRouteEntry
	pc := 0

	for pc < len(p.instructions) {
		instr := p.instructions[pc]
		switch instr.op {
		case opAccept:
			result = p.endpoints[instr.payload]
			pc++
		case opJump:
			pc = instr.payload
		case opBranch:
			jt := &p.tables[instr.payload]
			if jt.depth >= segCount {
				pc = jt.shortExit
				continue
			}
			s, e := offsets[jt.depth*2], offsets[jt.depth*2+1]
			if dest, ok := jt.literalDest(path[s:e]); ok {
				pc = dest
			} else {
				pc = jt.paramExit
			}
		default:
			pc++
		}
	}

	if result == nil {
		return nil, false
	}

	mark := values.Mark()
	m := result.Matcher()
	if !m.TryMatch(path, values) {
		values.Restore(mark)
		return nil, false
	}
	if ok, rejectedParam, c := result.Constraints.EvaluateAll(values, route.Inbound); !ok {
		diagnostic.Emit(p.diag, diagnostic.KindConstraintRejected, "constraint rejected candidate", map[string]any{
			"template": result.Template.TemplateText,
			"param":    rejectedParam,
			"kind":     c.Kind,
		})
		values.Restore(mark)
		return nil, false
	}
	return result, true
}
