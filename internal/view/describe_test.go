package view

import (
	"encoding/json"
	"testing"

	"github.com/spanlens/spanlens/internal/dao"
	"github.com/spanlens/spanlens/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wI2L/jsondiff"
)

func TestDescribeFormats(t *testing.T) {
	rid := dao.ResourceID{Resource: dao.SpansResource, Scope: "p1"}
	d := NewDescribe(rid, "s1", json.RawMessage(`{"name":"chat","tokens":12,"ok":true,"parent":null}`))
	require.NoError(t, d.Init(t.Context()))

	assert.Equal(t, formatYAML, d.Format())
	assert.Equal(t, " spans@p1/s1 [YAML] ", d.GetTitle())
	txt := d.GetText(true)
	assert.Contains(t, txt, "name: chat")
	assert.Contains(t, txt, "tokens: 12")

	a, ok := d.actions.Get(ui.KeyJ)
	require.True(t, ok)
	a.Action(nil)
	assert.Equal(t, formatJSON, d.Format())
	assert.Contains(t, d.GetText(true), `"tokens": 12`)
}

func TestNodeYAMLInvalid(t *testing.T) {
	_, err := nodeYAML(json.RawMessage(`{`))
	require.Error(t, err)
}

func TestColorizeValue(t *testing.T) {
	uu := map[string]string{
		"true":  "[green::]true[-::]",
		"ERROR": "[red::]ERROR[-::]",
		"null":  "[gray::]null[-::]",
		"12.5":  "[fuchsia::]12.5[-::]",
		"chat":  "chat",
	}

	for v, e := range uu {
		assert.Equal(t, e, colorizeValue(v), v)
	}
}

func TestHighlightYAML(t *testing.T) {
	out := highlightYAML("a:\n  b: 1\n  c: [x]\n")

	assert.Equal(t, "[aqua::]a:[-::]\n  [aqua::]b:[-::] [fuchsia::]1[-::]\n  [aqua::]c:[-::] [x[]\n", out)
}

func TestDiffNodes(t *testing.T) {
	from := json.RawMessage(`{"name":"a","tokens":1,"tags":["x"]}`)
	to := json.RawMessage(`{"name":"b","tokens":1,"model":"gpt"}`)

	p, err := DiffNodes(from, to)
	require.NoError(t, err)
	ops := make(map[string]string, len(p))
	for _, op := range p {
		ops[op.Path] = op.Type
	}
	assert.Equal(t, map[string]string{
		"/name":  jsondiff.OperationReplace,
		"/tags":  jsondiff.OperationRemove,
		"/model": jsondiff.OperationAdd,
	}, ops)

	p, err = DiffNodes(from, from)
	require.NoError(t, err)
	assert.Empty(t, p)

	_, err = DiffNodes(json.RawMessage(`{`), to)
	require.Error(t, err)
}

func TestDiffView(t *testing.T) {
	rid := dao.ResourceID{Resource: dao.SpansResource, Scope: "p1"}
	d := NewDiff(rid, "s1", "s2", json.RawMessage(`{"name":"a"}`), json.RawMessage(`{"name":"b"}`))
	require.NoError(t, d.Init(t.Context()))

	assert.Len(t, d.Patch(), 1)
	assert.Equal(t, " spans@p1: s1 ⇢ s2 [1] ", d.GetTitle())
	assert.Contains(t, d.GetText(true), `~ /name: "b"`)
}
