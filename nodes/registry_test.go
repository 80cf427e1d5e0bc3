package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/chainz"
)

func TestRegistry(t *testing.T) {
	t.Run("default refs", func(t *testing.T) {
		var refs []string
		for _, e := range Default().Entries() {
			refs = append(refs, e.Ref)
			assert.NotEmpty(t, e.Doc.Func, e.Ref)
		}
		assert.Equal(t, []string{
			"default", "drop_fields", "format_time", "lowercase",
			"rename", "require", "to_float", "to_int",
		}, refs)
	})

	t.Run("custom factory", func(t *testing.T) {
		reg := NewRegistry()
		err := reg.Register("upper", chainz.Doc{Func: "uppercase"}, func(id string, _ Params) (chainz.Node, error) {
			return chainz.Transform(id, func(_ context.Context, s string) string { return s + "!" }), nil
		})
		require.NoError(t, err)

		n, err := reg.Build("upper", "shout", nil)
		require.NoError(t, err)
		assert.Equal(t, "shout", n.ID())

		out, err := n.Process(context.Background(), "hi")
		require.NoError(t, err)
		assert.Equal(t, "hi!", out)
	})

	t.Run("id defaults to ref", func(t *testing.T) {
		n, err := Default().Build("to_int", "", Params{"field": "n"})
		require.NoError(t, err)
		assert.Equal(t, "to_int", n.ID())
	})

	t.Run("errors", func(t *testing.T) {
		reg := NewRegistry()
		factory := func(string, Params) (chainz.Node, error) { return nil, nil }

		require.NoError(t, reg.Register("x", chainz.Doc{}, factory))
		assert.Error(t, reg.Register("x", chainz.Doc{}, factory))
		assert.Error(t, reg.Register("", chainz.Doc{}, factory))
		assert.Error(t, reg.Register("y", chainz.Doc{}, nil))
		assert.Panics(t, func() { reg.MustRegister("x", chainz.Doc{}, factory) })

		_, err := reg.Build("missing", "", nil)
		assert.ErrorIs(t, err, ErrUnknownRef)
	})
}

func TestParams(t *testing.T) {
	p := Params{"name": "a", "blank": " ", "list": []any{"x", "y"}, "bad": []any{1}, "num": 3}

	s, err := p.String("name")
	require.NoError(t, err)
	assert.Equal(t, "a", s)

	_, err = p.String("blank")
	assert.Error(t, err)
	_, err = p.String("num")
	assert.Error(t, err)

	s, err = p.StringOr("absent", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", s)

	list, err := p.Strings("list")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, list)

	list, err = p.Strings("name")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, list)

	_, err = p.Strings("bad")
	assert.Error(t, err)

	fields, err := Params{"field": "id"}.Fields()
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, fields)
}
