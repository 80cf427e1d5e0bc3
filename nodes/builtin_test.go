package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/chainz"
)

func build(t *testing.T, ref string, params Params) chainz.Node {
	t.Helper()
	n, err := Default().Build(ref, "", params)
	require.NoError(t, err)
	return n
}

func process(t *testing.T, n chainz.Node, r chainz.Record) (chainz.Record, error) {
	t.Helper()
	return n.Process(context.Background(), r)
}

func TestRequire(t *testing.T) {
	n := build(t, "require", Params{"field": "id"})

	out, err := process(t, n, map[string]any{"id": 1, "content": "aaa"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": 1, "content": "aaa"}, out)

	for _, r := range []map[string]any{
		{"content": "aaa"},
		{"id": "", "content": "aaa"},
		{"id": nil},
		{"id": 0},
		{"id": float64(0)},
		{"id": false},
		{"id": []any{}},
	} {
		_, err := process(t, n, r)
		assert.ErrorIs(t, err, chainz.ErrDrop, "record %v", r)
	}

	_, err = process(t, n, map[string]any{"id": float64(7)})
	assert.NoError(t, err)

	multi := build(t, "require", Params{"fields": []any{"id", "time"}})
	_, err = process(t, multi, map[string]any{"id": 1})
	assert.ErrorIs(t, err, chainz.ErrDrop)

	_, err = Default().Build("require", "", Params{})
	assert.Error(t, err)
}

func TestToInt(t *testing.T) {
	n := build(t, "to_int", Params{"field": "count"})

	for _, v := range []any{"137", " 137 ", 137, int64(137), float64(137)} {
		out, err := process(t, n, map[string]any{"count": v})
		require.NoError(t, err, "value %v", v)
		assert.Equal(t, 137, out.(map[string]any)["count"])
	}

	_, err := process(t, n, map[string]any{"count": "abc"})
	assert.ErrorContains(t, err, "invalid syntax")

	_, err = process(t, n, map[string]any{"count": 1.5})
	assert.ErrorContains(t, err, "not an integer")

	_, err = process(t, n, map[string]any{})
	assert.ErrorContains(t, err, `field "count" is missing`)

	_, err = process(t, n, "not a map")
	assert.ErrorContains(t, err, "expected map record")
}

func TestToFloat(t *testing.T) {
	n := build(t, "to_float", Params{"field": "price"})

	for _, v := range []any{"9.5", 9.5} {
		out, err := process(t, n, map[string]any{"price": v})
		require.NoError(t, err)
		assert.Equal(t, 9.5, out.(map[string]any)["price"])
	}
	out, err := process(t, n, map[string]any{"price": 3})
	require.NoError(t, err)
	assert.Equal(t, 3.0, out.(map[string]any)["price"])

	_, err = process(t, n, map[string]any{"price": true})
	assert.Error(t, err)
}

func TestFormatTime(t *testing.T) {
	n := build(t, "format_time", Params{"field": "time"})

	out, err := process(t, n, map[string]any{"time": 1677661655})
	require.NoError(t, err)
	assert.Equal(t, "2023-03-01 09:07:35", out.(map[string]any)["time"])

	custom := build(t, "format_time", Params{"field": "time", "layout": "2006-01-02", "location": "Asia/Shanghai"})
	out, err = process(t, custom, map[string]any{"time": float64(1677661655)})
	require.NoError(t, err)
	assert.Equal(t, "2023-03-01", out.(map[string]any)["time"])

	_, err = Default().Build("format_time", "", Params{"field": "time", "location": "Nowhere/City"})
	assert.Error(t, err)
}

func TestRename(t *testing.T) {
	n := build(t, "rename", Params{"from": "ts", "to": "time"})

	out, err := process(t, n, map[string]any{"ts": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"time": 1}, out)

	out, err = process(t, n, map[string]any{"other": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"other": 1}, out)
}

func TestSetDefault(t *testing.T) {
	n := build(t, "default", Params{"field": "tags", "value": []any{"new"}})

	first, err := process(t, n, map[string]any{})
	require.NoError(t, err)
	second, err := process(t, n, map[string]any{})
	require.NoError(t, err)

	first.(map[string]any)["tags"].([]any)[0] = "changed"
	assert.Equal(t, []any{"new"}, second.(map[string]any)["tags"], "defaults must not be shared between records")

	out, err := process(t, n, map[string]any{"tags": []any{"kept"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"kept"}, out.(map[string]any)["tags"])

	_, err = Default().Build("default", "", Params{"field": "x"})
	assert.Error(t, err)
}

func TestDropFields(t *testing.T) {
	n := build(t, "drop_fields", Params{"fields": []string{"debug", "trace"}})

	out, err := process(t, n, map[string]any{"id": 1, "debug": true, "trace": "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": 1}, out)
}

func TestLowercase(t *testing.T) {
	n := build(t, "lowercase", Params{"field": "email"})

	out, err := process(t, n, map[string]any{"email": "A@B.IO"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.io", out.(map[string]any)["email"])

	out, err = process(t, n, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, out)

	_, err = process(t, n, map[string]any{"email": 5})
	assert.Error(t, err)
}

func TestBuiltinsInPipeline(t *testing.T) {
	reg := Default()
	var chain []chainz.Node
	for _, def := range []struct {
		ref    string
		params Params
	}{
		{"require", Params{"field": "id"}},
		{"to_int", Params{"field": "count"}},
		{"format_time", Params{"field": "time"}},
	} {
		n, err := reg.Build(def.ref, "", def.params)
		require.NoError(t, err)
		chain = append(chain, n)
	}

	p := chainz.New("sample", chain...)
	batch, err := p.Process(context.Background(), []chainz.Record{
		map[string]any{"id": 1, "content": "aaa", "count": "3", "time": 1677661655},
		map[string]any{"id": "", "content": "ddd", "count": "4", "time": 1677361677},
		map[string]any{"id": 5, "content": "eeee", "count": "4"},
	})
	require.NoError(t, err)

	assert.Equal(t, map[chainz.Outcome]int{chainz.Success: 1, chainz.Filtered: 1, chainz.Failed: 1}, batch.Counts())
	assert.Equal(t, "require", batch.Filtered()[0].Node)
	assert.Equal(t, "format_time", batch.Errors()[0].Node)
	assert.Equal(t, map[string]any{"id": 1, "content": "aaa", "count": 3, "time": "2023-03-01 09:07:35"}, batch.Success()[0].Data)

	for _, info := range p.Schema() {
		assert.Equal(t, "map", info.Input)
		assert.NotEmpty(t, info.Doc.Func)
	}
}
