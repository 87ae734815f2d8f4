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

package link

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-urlmatch/urlmatch/route"
)

// stubFinder resolves every address to a fixed, caller-supplied candidate
// list, mirroring how a real route.Table groups entries by name.
type stubFinder map[string][]*route.InboundRouteEntry

func (f stubFinder) Find(address string) []*route.InboundRouteEntry {
	return f[address]
}

func entry(t *testing.T, name, tmplText string, constraints route.ConstraintMap, order int) *route.InboundRouteEntry {
	t.Helper()
	tmpl := route.MustParse(tmplText)
	return route.NewInboundRouteEntry(name, tmpl, nil, constraints, tmplText, order)
}

func TestGenerator_TryGetLink_SuppliedValueWins(t *testing.T) {
	e := entry(t, "home", "{controller}", nil, 0)
	g := New(stubFinder{"home": {e}})

	supplied := route.NewValues()
	supplied.SetString("controller", "Home")

	href, ok := g.TryGetLink(Context{Address: "home", SuppliedValues: supplied})
	require.True(t, ok)
	require.Equal(t, "/Home", href)
}

// Ambient values fall back only while every earlier parameter was also
// satisfied from ambient (§4.7 step 2b). Once "b" is supplied explicitly,
// "c" cannot quietly inherit from ambient even though ambient has a value.
func TestGenerator_TryGetLink_AmbientFallbackStopsAfterSuppliedValue(t *testing.T) {
	e := entry(t, "chain", "{a}/{b}/{c}", nil, 0)
	g := New(stubFinder{"chain": {e}})

	ambient := route.NewValues()
	ambient.SetString("a", "fromAmbientA")
	ambient.SetString("c", "fromAmbientC")

	supplied := route.NewValues()
	supplied.SetString("b", "fromSuppliedB")

	_, ok := g.TryGetLink(Context{Address: "chain", SuppliedValues: supplied, AmbientValues: ambient})
	require.False(t, ok)
}

// When every earlier parameter is ambient, a later one may also fall back
// to ambient.
func TestGenerator_TryGetLink_AmbientFallbackAppliesWhenAllEarlierAmbient(t *testing.T) {
	e := entry(t, "chain", "{a}/{b}", nil, 0)
	g := New(stubFinder{"chain": {e}})

	ambient := route.NewValues()
	ambient.SetString("a", "A")
	ambient.SetString("b", "B")

	href, ok := g.TryGetLink(Context{Address: "chain", AmbientValues: ambient})
	require.True(t, ok)
	require.Equal(t, "/A/B", href)
}

// The first candidate whose outbound constraints reject the bound value is
// skipped in favour of the next candidate registered under the same
// address (mirroring the matcher's own fallback-to-next-candidate shape).
func TestGenerator_TryGetLink_SkipsCandidateFailingOutboundConstraint(t *testing.T) {
	numeric := entry(t, "item", "items/{id}",
		route.ConstraintMap{"id": {route.NewRegexConstraint("id", `\d+`)}}, 0)
	fallback := entry(t, "item", "items/{id}", nil, 1)
	g := New(stubFinder{"item": {numeric, fallback}})

	supplied := route.NewValues()
	supplied.SetString("id", "abc")

	href, ok := g.TryGetLink(Context{Address: "item", SuppliedValues: supplied})
	require.True(t, ok)
	require.Equal(t, "/items/abc", href)
}

func TestGenerator_GetLink_WrapsNoMatchingEndpoint(t *testing.T) {
	g := New(stubFinder{})

	_, err := g.GetLink(Context{Address: "missing"})
	require.Error(t, err)
	var nme *NoMatchingEndpoint
	require.ErrorAs(t, err, &nme)
	require.Equal(t, "missing", nme.Address)
}

func TestRenderPath_ElidesOnlyWhenBoundValueEqualsDefault(t *testing.T) {
	tmpl := route.MustParse("{controller}/{action}/{id=0?}")

	elided := renderPath(tmpl, map[string]boundValue{
		"controller": {text: "Home"},
		"action":     {text: "Index"},
		"id":         {text: "0", equalsDefault: true},
	})
	require.Equal(t, "/Home/Index", elided)

	kept := renderPath(tmpl, map[string]boundValue{
		"controller": {text: "Home"},
		"action":     {text: "Index"},
		"id":         {text: "7"},
	})
	require.Equal(t, "/Home/Index/7", kept)
}

func TestRenderPath_AllSegmentsElidedFallsBackToRootSlash(t *testing.T) {
	tmpl := route.MustParse("{controller=Home?}")

	path := renderPath(tmpl, map[string]boundValue{
		"controller": {text: "Home", equalsDefault: true},
	})
	require.Equal(t, "/", path)
}

func TestRenderQuery_SkipsConsumedKeysAndPreservesOrder(t *testing.T) {
	supplied := route.NewValues()
	supplied.SetString("controller", "Home")
	supplied.SetString("sort", "name")
	supplied.SetString("page", "2")

	query := renderQuery(supplied, map[string]bool{"controller": true})
	require.Equal(t, "sort=name&page=2", query)
}

func TestRenderQuery_ListValueRepeatsKeyPerElementAndSkipsEmptyList(t *testing.T) {
	supplied := route.NewValues()
	supplied.Set("tags", route.Cell{Kind: route.CellList, List: []string{"a", "b"}})
	supplied.Set("empty", route.Cell{Kind: route.CellList})

	query := renderQuery(supplied, nil)
	require.Equal(t, "tags=a&tags=b", query)
}

func TestPercentEncodePathSegment_LeavesSubDelimsAndColonUnescaped(t *testing.T) {
	require.Equal(t, "a:b@c,d", percentEncodePathSegment("a:b@c,d"))
	require.Equal(t, "a%20b", percentEncodePathSegment("a b"))
}

func TestPercentEncodeQueryComponent_EscapesAmpersandEqualsAndPlus(t *testing.T) {
	require.Equal(t, "a%26b%3Dc%2Bd", percentEncodeQueryComponent("a&b=c+d"))
}
