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
	"github.com/go-urlmatch/urlmatch/route"
)

func TestBuilder_HandleRejectsNilEndpoint(t *testing.T) {
	b := urlmatch.NewBuilder()
	_, err := b.Handle("home", "{controller}", nil, nil, nil)
	require.ErrorIs(t, err, urlmatch.ErrNilArgument)
}

func TestBuilder_HandleRejectsMalformedTemplate(t *testing.T) {
	b := urlmatch.NewBuilder()
	_, err := b.Handle("bad", "{unterminated", nil, nil, "handler")
	require.Error(t, err)
}

func TestBuilder_HandleRejectsDuplicateTemplate(t *testing.T) {
	b := urlmatch.NewBuilder()
	_, err := b.Handle("first", "{controller}/{action}", nil, nil, "firstHandler")
	require.NoError(t, err)

	_, err = b.Handle("second", "{controller}/{action}", nil, nil, "secondHandler")
	require.ErrorIs(t, err, urlmatch.ErrDuplicateRoute)
}

func TestBuilder_DuplicateDiagnosticFires(t *testing.T) {
	var diagnosed []urlmatch.DiagnosticKind
	handler := urlmatch.DiagnosticHandlerFunc(func(e urlmatch.DiagnosticEvent) {
		diagnosed = append(diagnosed, e.Kind)
	})

	b := urlmatch.NewBuilder(urlmatch.WithDiagnostics(handler))
	_, err := b.Handle("first", "{controller}", nil, nil, "firstHandler")
	require.NoError(t, err)

	_, err = b.Handle("second", "{controller}", nil, nil, "secondHandler")
	require.Error(t, err)
	require.Contains(t, diagnosed, urlmatch.DiagDuplicateRoute)
}

func TestBuilder_DefaultEngineIsPackedTree(t *testing.T) {
	b := urlmatch.NewBuilder()
	_, err := b.Handle("home", "{controller}", nil, nil, "homeHandler")
	require.NoError(t, err)

	m, err := b.Build()
	require.NoError(t, err)

	endpoint, _, ok := m.Match("/Home")
	require.True(t, ok)
	require.Equal(t, "homeHandler", endpoint)
}

func TestBuilder_InlineConstraintIsEnforcedAtMatch(t *testing.T) {
	b := urlmatch.NewBuilder()
	_, err := b.Handle("users.show", "users/{id:int}", nil, nil, "usersShowHandler")
	require.NoError(t, err)

	m := b.MustBuild()

	endpoint, values, ok := m.Match("/users/42")
	require.True(t, ok)
	require.Equal(t, "usersShowHandler", endpoint)
	id, _ := values.Get("id")
	require.Equal(t, "42", id.String())

	_, _, ok = m.Match("/users/not-a-number")
	require.False(t, ok)
}

func TestBuilder_InlineConstraintCombinesWithOutOfBandConstraint(t *testing.T) {
	b := urlmatch.NewBuilder()
	_, err := b.Handle("items.show", "items/{id:int}", nil,
		route.ConstraintMap{"id": {route.NewRangeConstraint("id", 1, 100, true, true)}}, "itemsShowHandler")
	require.NoError(t, err)

	m := b.MustBuild()

	_, _, ok := m.Match("/items/42")
	require.True(t, ok)

	// Fails the inline int constraint before the out-of-band range constraint
	// is ever consulted.
	_, _, ok = m.Match("/items/abc")
	require.False(t, ok)

	// Passes the inline int constraint but fails the out-of-band range.
	_, _, ok = m.Match("/items/999")
	require.False(t, ok)
}

func TestBuilder_HandleRejectsUnknownInlineConstraint(t *testing.T) {
	b := urlmatch.NewBuilder()
	_, err := b.Handle("bad", "items/{id:bogus}", nil, nil, "handler")
	require.ErrorIs(t, err, urlmatch.ErrInvalidConstraint)
}

func TestBuilder_MustBuildPanicsOnError(t *testing.T) {
	b := urlmatch.NewBuilder(urlmatch.WithEngine(urlmatch.EngineKind(99)))
	_, err := b.Handle("home", "{controller}", nil, nil, "homeHandler")
	require.NoError(t, err)

	require.Panics(t, func() {
		b.MustBuild()
	})
}
