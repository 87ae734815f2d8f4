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

package urlmatch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-urlmatch/urlmatch"
	"github.com/go-urlmatch/urlmatch/link"
	"github.com/go-urlmatch/urlmatch/route"
)

// Scenario 1: a single-parameter template renders a link from supplied
// values, and matching that link back recovers the same value.
func TestLink_SingleParameterRoundTrip(t *testing.T) {
	b := urlmatch.NewBuilder()
	_, err := b.Handle("home", "{controller}", nil, nil, "homeHandler")
	require.NoError(t, err)
	m := b.MustBuild()

	supplied := route.NewValues()
	supplied.SetString("controller", "Home")

	href, ok := m.TryGetLink(link.Context{Address: "home", SuppliedValues: supplied})
	require.True(t, ok)
	require.Equal(t, "/Home", href)

	_, values, ok := m.Match(href)
	require.True(t, ok)
	c, _ := values.Get("controller")
	require.Equal(t, "Home", c.String())
}

// Scenario 2: a supplied value for a trailing optional segment is rendered
// into the link, and a path that omits that segment still matches,
// binding only the required parameters.
func TestLink_TrailingOptionalRenderedAndOmittableOnMatch(t *testing.T) {
	b := urlmatch.NewBuilder()
	_, err := b.Handle("action", "{controller}/{action}/{id?}", nil, nil, "actionHandler")
	require.NoError(t, err)
	m := b.MustBuild()

	supplied := route.NewValues()
	supplied.SetString("controller", "Home")
	supplied.SetString("action", "Index")
	supplied.SetString("id", "10")

	href, ok := m.TryGetLink(link.Context{Address: "action", SuppliedValues: supplied})
	require.True(t, ok)
	require.Equal(t, "/Home/Index/10", href)

	_, values, ok := m.Match("/Home/Index")
	require.True(t, ok)
	c, _ := values.Get("controller")
	require.Equal(t, "Home", c.String())
	a, _ := values.Get("action")
	require.Equal(t, "Index", a.String())
	require.False(t, values.Has("id"))
}

// Scenario 3: an unconsumed supplied value becomes a percent-encoded
// query-string entry.
func TestLink_PercentEncodedQueryValue(t *testing.T) {
	b := urlmatch.NewBuilder()
	_, err := b.Handle("action", "{controller}/{action}", nil, nil, "actionHandler")
	require.NoError(t, err)
	m := b.MustBuild()

	supplied := route.NewValues()
	supplied.SetString("controller", "Home")
	supplied.SetString("action", "Index")
	supplied.SetString("name", "name with %special #characters")

	href, ok := m.TryGetLink(link.Context{Address: "action", SuppliedValues: supplied})
	require.True(t, ok)
	require.Equal(t, "/Home/Index?name=name%20with%20%25special%20%23characters", href)
}

// Scenario 4: a list-valued supplied value repeats the query key once
// per element, in order.
func TestLink_ListValuedQueryParameter(t *testing.T) {
	b := urlmatch.NewBuilder()
	_, err := b.Handle("action", "{controller}/{action}", nil, nil, "actionHandler")
	require.NoError(t, err)
	m := b.MustBuild()

	supplied := route.NewValues()
	supplied.SetString("controller", "Home")
	supplied.SetString("action", "Index")
	supplied.Set("items", route.Cell{Kind: route.CellList, List: []string{"10", "20", "30"}})

	href, ok := m.TryGetLink(link.Context{Address: "action", SuppliedValues: supplied})
	require.True(t, ok)
	require.Equal(t, "/Home/Index?items=10&items=20&items=30", href)
}

// TryGetLink reports false, and GetLink returns a wrapped
// ErrNoMatchingEndpoint, for an address nothing was registered under.
func TestLink_UnknownAddress(t *testing.T) {
	b := urlmatch.NewBuilder()
	m := b.MustBuild()

	_, ok := m.TryGetLink(link.Context{Address: "nope"})
	require.False(t, ok)

	_, err := m.GetLink(link.Context{Address: "nope"})
	require.ErrorIs(t, err, urlmatch.ErrNoMatchingEndpoint)
}
