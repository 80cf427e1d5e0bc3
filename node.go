package chainz

import (
	"context"
	"reflect"
)

// Record is a single value flowing through a pipeline. Records are usually
// map[string]any values decoded from JSON or YAML, but any value matching
// the declared node types is accepted.
type Record = any

// Node is one transformation step of a pipeline.
//
// Process returns the transformed record, ErrDrop to filter the record out,
// or any other error to fail it. Returning a nil record with a nil error is
// a legitimate output and is passed to the next node.
//
// ID identifies the node in results, errors and documentation. An empty ID
// falls back to the Go type name of the node.
type Node interface {
	ID() string
	Process(ctx context.Context, record Record) (Record, error)
}

// Typed is implemented by nodes that declare the shape of their input and
// output. A node that does not implement Typed, or returns nil from either
// method, is treated as accepting and producing any type.
type Typed interface {
	InputType() *Type
	OutputType() *Type
}

// Initializer is implemented by nodes that acquire resources before the
// first record. Init is called exactly once by the owning pipeline.
type Initializer interface {
	Init(ctx context.Context) error
}

// Exiter is implemented by nodes that release resources. Exit is called
// exactly once by the owning pipeline, after a successful Init.
type Exiter interface {
	Exit(ctx context.Context) error
}

// Documented is implemented by nodes that describe themselves for Doc.
type Documented interface {
	Doc() Doc
}

// Doc is the structured description of a node.
type Doc struct {
	Func   string `json:"func,omitempty" yaml:"func,omitempty"`
	Desc   string `json:"desc,omitempty" yaml:"desc,omitempty"`
	Input  string `json:"input,omitempty" yaml:"input,omitempty"`
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// Base provides the defaults for struct-based nodes: a settable id and
// declared types, no-op lifecycle hooks and a Process that reports
// ErrNotImplemented. Embed it and override Process:
//
//	type DropIfMissingID struct{ chainz.Base }
//
//	func (DropIfMissingID) Process(_ context.Context, r chainz.Record) (chainz.Record, error) {
//	    m := r.(map[string]any)
//	    if m["id"] == nil || m["id"] == "" {
//	        return chainz.Drop()
//	    }
//	    return m, nil
//	}
type Base struct {
	In   *Type
	Out  *Type
	Name string
}

// ID returns the configured name, or "" to let the pipeline derive one.
func (b Base) ID() string { return b.Name }

// InputType implements Typed.
func (b Base) InputType() *Type { return b.In }

// OutputType implements Typed.
func (b Base) OutputType() *Type { return b.Out }

// Init is a no-op.
func (Base) Init(context.Context) error { return nil }

// Exit is a no-op.
func (Base) Exit(context.Context) error { return nil }

// Process reports ErrNotImplemented.
func (Base) Process(context.Context, Record) (Record, error) {
	return nil, ErrNotImplemented
}

// NodeID returns the id a pipeline uses for n: n.ID() when set, otherwise
// the name of the node's Go type.
func NodeID(n Node) string {
	if isNilNode(n) {
		return "<nil>"
	}
	if id := n.ID(); id != "" {
		return id
	}
	rt := reflect.TypeOf(n)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Name() == "" {
		return rt.String()
	}
	return rt.Name()
}

func inputType(n Node) *Type {
	if t, ok := n.(Typed); ok {
		return t.InputType()
	}
	return Any
}

func outputType(n Node) *Type {
	if t, ok := n.(Typed); ok {
		return t.OutputType()
	}
	return Any
}

func isNilNode(n Node) bool {
	if n == nil {
		return true
	}
	rv := reflect.ValueOf(n)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
