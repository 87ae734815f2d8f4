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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-urlmatch/urlmatch/route"
)

func TestDFA_PrecedenceOrdering(t *testing.T) {
	table := buildTable(t, "{controller}/{action}/{id?}", "{controller}/{action}", "{controller}")
	d := BuildDFA(table, nil)

	e, ok := d.Match("/Home", route.NewValues())
	require.True(t, ok)
	require.Equal(t, "{controller}", e.Endpoint)

	e, ok = d.Match("/Home/Index", route.NewValues())
	require.True(t, ok)
	require.Equal(t, "{controller}/{action}", e.Endpoint)

	e, ok = d.Match("/Home/Index/7", route.NewValues())
	require.True(t, ok)
	require.Equal(t, "{controller}/{action}/{id?}", e.Endpoint)
}

// A lone trailing-optional template, with no shorter literal sibling to
// absorb the shorter path, must still match once the optional segment is
// omitted: the literal skeleton's intermediate node needs its own matches,
// not only the node reached after every segment (including optional ones)
// has been consumed.
func TestDFA_SoleTrailingOptionalTemplateMatchesWithSegmentOmitted(t *testing.T) {
	table := buildTable(t, "{controller}/{action}/{id?}")
	d := BuildDFA(table, nil)

	e, ok := d.Match("/Home/Index", route.NewValues())
	require.True(t, ok)
	require.Equal(t, "{controller}/{action}/{id?}", e.Endpoint)

	values := route.NewValues()
	e, ok = d.Match("/Home/Index/7", values)
	require.True(t, ok)
	require.Equal(t, "{controller}/{action}/{id?}", e.Endpoint)
	idCell, _ := values.Get("id")
	require.Equal(t, "7", idCell.String())
}

func TestDFA_LiteralBeatsParameterAtSamePosition(t *testing.T) {
	table := buildTable(t, "{slug}", "about")
	d := BuildDFA(table, nil)

	e, ok := d.Match("/about", route.NewValues())
	require.True(t, ok)
	require.Equal(t, "about", e.Endpoint)

	e, ok = d.Match("/contact", route.NewValues())
	require.True(t, ok)
	require.Equal(t, "{slug}", e.Endpoint)
}

func TestDFA_CatchAllAbsorbsResidue(t *testing.T) {
	table := buildTable(t, "assets/{*path}")
	d := BuildDFA(table, nil)

	values := route.NewValues()
	e, ok := d.Match("/assets/css/site/main.css", values)
	require.True(t, ok)
	require.Equal(t, "assets/{*path}", e.Endpoint)
	p, _ := values.Get("path")
	require.Equal(t, "css/site/main.css", p.String())
}

func TestDFA_ConstraintRejectionOnTopMatchIsACleanNoMatch(t *testing.T) {
	table := route.NewTable()
	table.Add("numeric", route.MustParse("items/{id}"), nil,
		route.ConstraintMap{"id": {route.NewRegexConstraint("id", `\d+`)}}, "numeric")
	table.Add("fallback", route.MustParse("items/{slug}"), nil, nil, "fallback")

	d := BuildDFA(table, nil)

	// Unlike the packed tree and instruction engines, the DFA commits to
	// states[current].Matches[0] with no per-candidate fallback (§4.5):
	// the numeric constraint wins the state but fails inbound, so the
	// match fails even though "fallback" would have accepted "abc".
	_, ok := d.Match("/items/abc", route.NewValues())
	require.False(t, ok)
}

// A single trailing '/' is a terminator, not an extra empty segment: it
// must not prevent a purely literal template from matching.
func TestDFA_TrailingSlashDoesNotPreventMatch(t *testing.T) {
	table := buildTable(t, "simple")
	d := BuildDFA(table, nil)

	e, ok := d.Match("/simple/", route.NewValues())
	require.True(t, ok)
	require.Equal(t, "simple", e.Endpoint)
}

func TestDFA_NoMatchOnEmptyTable(t *testing.T) {
	d := BuildDFA(route.NewTable(), nil)
	_, ok := d.Match("/anything", route.NewValues())
	require.False(t, ok)
}
