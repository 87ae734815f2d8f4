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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitSegments_TrailingSlashIsATerminatorNotAnEmptySegment(t *testing.T) {
	require.Equal(t, []string{"simple"}, splitSegments("/simple/"))
	require.Equal(t, []string{"simple"}, splitSegments("/simple"))
	require.Nil(t, splitSegments("/"))
	require.Nil(t, splitSegments(""))
}

func TestSplitSegments_ConsecutiveInteriorSlashesNotCollapsed(t *testing.T) {
	require.Equal(t, []string{"a", "", "b"}, splitSegments("/a//b"))
}

func TestTemplateMatcher_CapturesSimpleParameters(t *testing.T) {
	tmpl := MustParse("{controller}/{action}")
	m := NewTemplateMatcher(tmpl, nil)

	values := NewValues()
	require.True(t, m.TryMatch("/Home/Index", values))
	c, _ := values.Get("controller")
	require.Equal(t, "Home", c.String())
	a, _ := values.Get("action")
	require.Equal(t, "Index", a.String())
}

func TestTemplateMatcher_TrailingOptionalOmitted(t *testing.T) {
	tmpl := MustParse("{controller}/{action}/{id?}")
	m := NewTemplateMatcher(tmpl, nil)

	values := NewValues()
	require.True(t, m.TryMatch("/Home/Index", values))
	require.False(t, values.Has("id"))
}

func TestTemplateMatcher_RejectsWrongSegmentCount(t *testing.T) {
	tmpl := MustParse("{controller}/{action}")
	m := NewTemplateMatcher(tmpl, nil)

	values := NewValues()
	require.False(t, m.TryMatch("/Home/Index/Extra", values))
	require.False(t, m.TryMatch("/Home", values))
}

func TestTemplateMatcher_LiteralIsCaseInsensitive(t *testing.T) {
	tmpl := MustParse("simple")
	m := NewTemplateMatcher(tmpl, nil)

	for _, p := range []string{"/simple", "/Simple", "/SIMPLE", "/simple/"} {
		values := NewValues()
		require.Truef(t, m.TryMatch(p, values), "expected %q to match", p)
	}
	for _, p := range []string{"/siple", "/simple1"} {
		values := NewValues()
		require.Falsef(t, m.TryMatch(p, values), "expected %q not to match", p)
	}
}

func TestTemplateMatcher_CatchAllAbsorbsResidue(t *testing.T) {
	tmpl := MustParse("assets/{*path}")
	m := NewTemplateMatcher(tmpl, nil)

	values := NewValues()
	require.True(t, m.TryMatch("/assets/css/site/main.css", values))
	p, _ := values.Get("path")
	require.Equal(t, "css/site/main.css", p.String())
}

func TestTemplateMatcher_CatchAllAcceptsEmptyResidue(t *testing.T) {
	tmpl := MustParse("assets/{*path}")
	m := NewTemplateMatcher(tmpl, nil)

	values := NewValues()
	require.True(t, m.TryMatch("/assets", values))
	require.False(t, values.Has("path"))
}

func TestTemplateMatcher_DefaultsFillUncapturedParameters(t *testing.T) {
	tmpl := MustParse("{controller}/{action}")
	m := NewTemplateMatcher(tmpl, map[string]string{"action": "Index"})

	values := NewValues()
	require.True(t, m.TryMatch("/Home/Index", values))
	a, _ := values.Get("action")
	require.Equal(t, "Index", a.String())
}

func TestTemplateMatcher_ComplexSegmentBindsBetweenLiteralAnchors(t *testing.T) {
	tmpl := MustParse("file-{name}.{ext}")
	m := NewTemplateMatcher(tmpl, nil)

	values := NewValues()
	require.True(t, m.TryMatch("/file-report.pdf", values))
	name, _ := values.Get("name")
	require.Equal(t, "report", name.String())
	ext, _ := values.Get("ext")
	require.Equal(t, "pdf", ext.String())
}

func TestTemplateMatcher_FailureLeavesValuesUnchanged(t *testing.T) {
	tmpl := MustParse("{controller}/{action}")
	m := NewTemplateMatcher(tmpl, nil)

	values := NewValues()
	values.SetString("sentinel", "untouched")
	mark := values.Mark()

	require.False(t, m.TryMatch("/only-one-segment", values))
	values.Restore(mark)

	require.Equal(t, 1, values.Len())
	c, _ := values.Get("sentinel")
	require.Equal(t, "untouched", c.String())
}
