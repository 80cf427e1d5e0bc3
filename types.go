package chainz

import (
	"reflect"
	"strings"
	"sync"
	"time"
)

// Type describes the declared shape of the records a node accepts or produces.
// A Type carries a name and its parents; the lineage of a Type is the type
// itself plus every transitive parent. Types are compared only by identity,
// so each descriptor should be created once and shared.
//
// A nil *Type is the wildcard: it accepts or produces anything.
//
// Example:
//
//	var Order = chainz.NewType("Order", chainz.Map)
//	var PaidOrder = chainz.NewType("PaidOrder", Order)
//
// PaidOrder is compatible with Order (shared lineage) and with Map.
type Type struct {
	name    string
	parents []*Type
}

// Any is the wildcard descriptor. It is nil on purpose so that the zero value
// of a node's declared types means "accepts/produces anything".
var Any *Type

// Object is the universal root. Every descriptor descends from it implicitly,
// and it is excluded from compatibility comparisons.
var Object = &Type{name: "object"}

// Predeclared descriptors for the shapes produced by generic decoders.
var (
	Map    = NewType("map", Object)
	List   = NewType("list", Object)
	String = NewType("string", Object)
	Number = NewType("number", Object)
	Int    = NewType("int", Number)
	Float  = NewType("float", Number)
	Bool   = NewType("bool", Object)
	Bytes  = NewType("bytes", Object)
	Time   = NewType("time", Object)
)

// NewType creates a descriptor with the given parents. With no parents the
// type descends directly from Object.
func NewType(name string, parents ...*Type) *Type {
	t := &Type{name: name}
	for _, p := range parents {
		if p != nil {
			t.parents = append(t.parents, p)
		}
	}
	return t
}

// Name returns the descriptor name. The wildcard is reported as "any".
func (t *Type) Name() string {
	if t == nil {
		return "any"
	}
	return t.name
}

// String implements fmt.Stringer.
func (t *Type) String() string {
	return t.Name()
}

// Parents returns the direct parents of the descriptor.
func (t *Type) Parents() []*Type {
	if t == nil {
		return nil
	}
	out := make([]*Type, len(t.parents))
	copy(out, t.parents)
	return out
}

// Lineage returns the descriptor and all of its ancestors in breadth-first
// order, without duplicates. Object is never included.
func (t *Type) Lineage() []*Type {
	if t == nil {
		return nil
	}
	var (
		out  []*Type
		seen = map[*Type]bool{}
		next = []*Type{t}
	)
	for len(next) > 0 {
		cur := next[0]
		next = next[1:]
		if cur == Object || seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		next = append(next, cur.parents...)
	}
	return out
}

// Is reports whether other appears in the lineage of t.
func (t *Type) Is(other *Type) bool {
	for _, l := range t.Lineage() {
		if l == other {
			return true
		}
	}
	return false
}

// Compatible reports whether a value declared as x can feed a node that
// declares y. Two descriptors are compatible when either is the wildcard or
// when their lineages share at least one type other than Object.
func Compatible(x, y *Type) bool {
	if x == nil || y == nil {
		return true
	}
	lx := x.Lineage()
	if len(lx) == 0 {
		return false
	}
	set := make(map[*Type]struct{}, len(lx))
	for _, l := range lx {
		set[l] = struct{}{}
	}
	for _, l := range y.Lineage() {
		if _, ok := set[l]; ok {
			return true
		}
	}
	return false
}

var (
	typeCache sync.Map // reflect.Type -> *Type
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
	timeType  = reflect.TypeOf(time.Time{})
)

// TypeFor returns a stable descriptor for the Go type T.
//
// Unnamed builtin kinds map to the predeclared descriptors (map[string]any is
// Map, []any is List, int64 is Int, and so on). Named types get their own
// descriptor whose parent is the descriptor of their underlying kind, so a
// named map type stays compatible with Map. Other unnamed types, such as
// anonymous structs or funcs, get a descriptor named after the Go type.
// Interface types, including any, map to the wildcard.
func TypeFor[T any]() *Type {
	return typeOf(reflect.TypeOf((*T)(nil)).Elem())
}

func typeOf(rt reflect.Type) *Type {
	if rt == nil || rt == anyType || rt.Kind() == reflect.Interface {
		return Any
	}
	if cached, ok := typeCache.Load(rt); ok {
		return cached.(*Type)
	}
	kind := kindType(rt)
	t := kind
	switch {
	case rt.Name() != "" && rt.PkgPath() != "" && rt != timeType:
		t = NewType(qualifiedName(rt), kind)
	case kind == Object:
		// Unnamed structs, funcs and chans still need a lineage of their own.
		t = NewType(rt.String(), Object)
	}
	actual, _ := typeCache.LoadOrStore(rt, t)
	return actual.(*Type)
}

func kindType(rt reflect.Type) *Type {
	switch rt.Kind() {
	case reflect.Map:
		return Map
	case reflect.Slice, reflect.Array:
		if rt.Elem().Kind() == reflect.Uint8 {
			return Bytes
		}
		return List
	case reflect.String:
		return String
	case reflect.Bool:
		return Bool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int
	case reflect.Float32, reflect.Float64:
		return Float
	case reflect.Pointer:
		return typeOf(rt.Elem())
	case reflect.Struct:
		if rt == timeType {
			return Time
		}
		return Object
	default:
		return Object
	}
}

func qualifiedName(rt reflect.Type) string {
	pkg := rt.PkgPath()
	if i := strings.LastIndex(pkg, "/"); i >= 0 {
		pkg = pkg[i+1:]
	}
	return pkg + "." + rt.Name()
}
