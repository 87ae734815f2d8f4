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

func TestProgram_PrecedenceOrdering(t *testing.T) {
	table := buildTable(t, "{controller}/{action}/{id?}", "{controller}/{action}", "{controller}")
	p := BuildProgram(table, nil)

	e, ok := p.Match("/Home", route.NewValues())
	require.True(t, ok)
	require.Equal(t, "{controller}", e.Endpoint)

	e, ok = p.Match("/Home/Index", route.NewValues())
	require.True(t, ok)
	require.Equal(t, "{controller}/{action}", e.Endpoint)

	e, ok = p.Match("/Home/Index/7", route.NewValues())
	require.True(t, ok)
	require.Equal(t, "{controller}/{action}/{id?}", e.Endpoint)
}

// The Branch instruction's jump table distinguishes "no segment exists at
// this depth" (shortExit) from "a segment exists but matches no literal"
// (paramExit). A lone trailing-optional template exercises a depth where
// both a parameter bucket and a hereAccepts tail are live, which collapsing
// the two into one destination would misroute.
func TestProgram_SoleTrailingOptionalTemplateMatchesWithSegmentOmitted(t *testing.T) {
	table := buildTable(t, "{controller}/{action}/{id?}")
	p := BuildProgram(table, nil)

	e, ok := p.Match("/Home/Index", route.NewValues())
	require.True(t, ok)
	require.Equal(t, "{controller}/{action}/{id?}", e.Endpoint)

	values := route.NewValues()
	e, ok = p.Match("/Home/Index/7", values)
	require.True(t, ok)
	require.Equal(t, "{controller}/{action}/{id?}", e.Endpoint)
	idCell, _ := values.Get("id")
	require.Equal(t, "7", idCell.String())

	_, ok = p.Match("/Home/Index/7/extra", route.NewValues())
	require.False(t, ok)
}

// A literal template and a parameter template at the same segment position
// both remain reachable: "about" matches exactly, anything else falls to
// the parameter bucket.
func TestProgram_LiteralBeatsParameterAtSamePosition(t *testing.T) {
	table := buildTable(t, "{slug}", "about")
	p := BuildProgram(table, nil)

	e, ok := p.Match("/about", route.NewValues())
	require.True(t, ok)
	require.Equal(t, "about", e.Endpoint)

	e, ok = p.Match("/contact", route.NewValues())
	require.True(t, ok)
	require.Equal(t, "{slug}", e.Endpoint)
}

func TestProgram_CatchAllAbsorbsResidue(t *testing.T) {
	table := buildTable(t, "assets/{*path}")
	p := BuildProgram(table, nil)

	values := route.NewValues()
	e, ok := p.Match("/assets/css/site/main.css", values)
	require.True(t, ok)
	require.Equal(t, "assets/{*path}", e.Endpoint)
	pathCell, _ := values.Get("path")
	require.Equal(t, "css/site/main.css", pathCell.String())
}

func TestProgram_ConstraintRejectionLeavesValuesUntouched(t *testing.T) {
	table := route.NewTable()
	table.Add("numeric", route.MustParse("items/{id}"), nil,
		route.ConstraintMap{"id": {route.NewRegexConstraint("id", `\d+`)}}, "numeric")
	p := BuildProgram(table, nil)

	values := route.NewValues()
	values.SetString("sentinel", "kept")
	_, ok := p.Match("/items/abc", values)
	require.False(t, ok)
	require.Equal(t, 1, values.Len())
}

// A single trailing '/' is a terminator, not an extra empty segment: it
// must not prevent a purely literal template from matching.
func TestProgram_TrailingSlashDoesNotPreventMatch(t *testing.T) {
	table := buildTable(t, "simple")
	p := BuildProgram(table, nil)

	e, ok := p.Match("/simple/", route.NewValues())
	require.True(t, ok)
	require.Equal(t, "simple", e.Endpoint)
}

func TestProgram_NoMatchOnEmptyTable(t *testing.T) {
	p := BuildProgram(route.NewTable(), nil)
	_, ok := p.Match("/anything", route.NewValues())
	require.False(t, ok)
}
