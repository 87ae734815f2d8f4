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

	"github.com/go-urlmatch/urlmatch/route"
)

// buildTable registers each templateText (in order) against an endpoint
// equal to its own template text, for tests that just need to assert which
// template won.
func buildTable(t *testing.T, templates ...string) *route.Table {
	t.Helper()
	table := route.NewTable()
	for _, tmplText := range templates {
		tmpl := route.MustParse(tmplText)
		table.Add("", tmpl, nil, nil, tmplText)
	}
	return table
}

// buildAll compiles table with every engine, so a test can assert a
// property holds identically across all three (§5, §8 "packed/DFA/
// instruction return the same winning endpoint on every path").
func buildAll(t *testing.T, table *route.Table) map[string]Engine {
	t.Helper()
	return map[string]Engine{
		"packed":      BuildPackedTree(table, nil),
		"dfa":         BuildDFA(table, nil),
		"instruction": BuildProgram(table, nil),
	}
}
