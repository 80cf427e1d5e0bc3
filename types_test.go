package chainz

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type order map[string]any

type invoice struct {
	ID string
}

func TestTypeLineage(t *testing.T) {
	t.Run("Excludes Object", func(t *testing.T) {
		for _, l := range Map.Lineage() {
			if l == Object {
				t.Fatal("lineage must not contain Object")
			}
		}
		if got := len(Object.Lineage()); got != 0 {
			t.Errorf("expected empty lineage for Object, got %d entries", got)
		}
	})

	t.Run("Breadth First Without Duplicates", func(t *testing.T) {
		base := NewType("base")
		left := NewType("left", base)
		right := NewType("right", base)
		leaf := NewType("leaf", left, right)

		var names []string
		for _, l := range leaf.Lineage() {
			names = append(names, l.Name())
		}
		want := []string{"leaf", "left", "right", "base"}
		if diff := cmp.Diff(want, names); diff != "" {
			t.Errorf("lineage mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Is", func(t *testing.T) {
		if !Int.Is(Number) {
			t.Error("Int should descend from Number")
		}
		if Number.Is(Int) {
			t.Error("Number should not descend from Int")
		}
	})

	t.Run("Wildcard Name", func(t *testing.T) {
		if Any.Name() != "any" {
			t.Errorf("expected 'any', got %q", Any.Name())
		}
		if Any.Lineage() != nil {
			t.Error("wildcard has no lineage")
		}
	})
}

func TestCompatible(t *testing.T) {
	paid := NewType("PaidOrder", NewType("Order", Map))

	tests := []struct {
		x, y *Type
		name string
		want bool
	}{
		{name: "wildcard output", x: Any, y: Map, want: true},
		{name: "wildcard input", x: String, y: Any, want: true},
		{name: "both wildcard", x: Any, y: Any, want: true},
		{name: "same type", x: Map, y: Map, want: true},
		{name: "subtype to parent", x: paid, y: Map, want: true},
		{name: "parent to subtype", x: Map, y: paid, want: true},
		{name: "siblings share ancestor", x: Int, y: Float, want: true},
		{name: "unrelated", x: String, y: Map, want: false},
		{name: "only object shared", x: Bool, y: Bytes, want: false},
		{name: "object itself", x: Object, y: Object, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compatible(tt.x, tt.y); got != tt.want {
				t.Errorf("Compatible(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestTypeFor(t *testing.T) {
	t.Run("Builtin Kinds", func(t *testing.T) {
		cases := map[string]struct {
			got, want *Type
		}{
			"map":   {TypeFor[map[string]any](), Map},
			"list":  {TypeFor[[]any](), List},
			"bytes": {TypeFor[[]byte](), Bytes},
			"str":   {TypeFor[string](), String},
			"int64": {TypeFor[int64](), Int},
			"float": {TypeFor[float64](), Float},
			"bool":  {TypeFor[bool](), Bool},
			"time":  {TypeFor[time.Time](), Time},
			"any":   {TypeFor[any](), Any},
			"error": {TypeFor[error](), Any},
		}
		for name, c := range cases {
			if c.got != c.want {
				t.Errorf("%s: got %v, want %v", name, c.got, c.want)
			}
		}
	})

	t.Run("Named Types Are Stable", func(t *testing.T) {
		a, b := TypeFor[order](), TypeFor[order]()
		if a != b {
			t.Fatal("expected the same descriptor for repeated calls")
		}
		if a.Name() != "chainz.order" {
			t.Errorf("expected 'chainz.order', got %q", a.Name())
		}
		if !Compatible(a, Map) {
			t.Error("named map type should be compatible with Map")
		}
	})

	t.Run("Pointers Resolve To Element", func(t *testing.T) {
		if TypeFor[*invoice]() != TypeFor[invoice]() {
			t.Error("pointer and element should share a descriptor")
		}
		if Compatible(TypeFor[invoice](), Map) {
			t.Error("struct type should not be compatible with Map")
		}
	})

	t.Run("Unnamed Types Have Own Lineage", func(t *testing.T) {
		type pair = struct{ A, B int }
		p := TypeFor[pair]()
		if p == Object || p != TypeFor[pair]() {
			t.Fatalf("expected a stable descriptor of its own, got %v", p)
		}
		if p.Name() != "struct { A int; B int }" {
			t.Errorf("unexpected name %q", p.Name())
		}
		if !Compatible(p, p) {
			t.Error("an anonymous struct should be compatible with itself")
		}
		if !Compatible(TypeFor[func()](), TypeFor[func()]()) {
			t.Error("a func type should be compatible with itself")
		}
		if Compatible(p, TypeFor[struct{ C string }]()) {
			t.Error("distinct anonymous structs should not be compatible")
		}
	})
}
