package chainz

import (
	"context"
	"fmt"
)

// FuncNode is a node built from a plain function. It is what the adapter
// functions return, and it keeps the declared input and output types of the
// wrapped function so the compatibility check sees them.
type FuncNode struct {
	fn   func(context.Context, Record) (Record, error)
	init func(context.Context) error
	exit func(context.Context) error
	in   *Type
	out  *Type
	id   string
	doc  Doc
}

// Func creates a node from an untyped function with explicitly declared
// input and output types. Pass Any (nil) for either side to accept or
// produce anything.
//
//	convert := chainz.Func("convert-count", chainz.Map, chainz.Map,
//	    func(_ context.Context, r chainz.Record) (chainz.Record, error) {
//	        m := r.(map[string]any)
//	        n, err := strconv.Atoi(m["count"].(string))
//	        if err != nil {
//	            return nil, err
//	        }
//	        m["count"] = n
//	        return m, nil
//	    })
func Func(id string, in, out *Type, fn func(context.Context, Record) (Record, error)) *FuncNode {
	return &FuncNode{id: id, in: in, out: out, fn: fn}
}

// Apply creates a node from a typed function that may fail. The declared
// types are derived from In and Out with TypeFor. A record that is not an
// In fails with a type error.
//
//	parse := chainz.Apply("parse", func(_ context.Context, raw string) (map[string]any, error) {
//	    var m map[string]any
//	    return m, json.Unmarshal([]byte(raw), &m)
//	})
func Apply[In, Out any](id string, fn func(context.Context, In) (Out, error)) *FuncNode {
	return &FuncNode{
		id:  id,
		in:  TypeFor[In](),
		out: TypeFor[Out](),
		fn: func(ctx context.Context, r Record) (Record, error) {
			v, err := assertRecord[In](r)
			if err != nil {
				return nil, err
			}
			return fn(ctx, v)
		},
	}
}

// Transform creates a node from a typed function that cannot fail.
func Transform[In, Out any](id string, fn func(context.Context, In) Out) *FuncNode {
	return &FuncNode{
		id:  id,
		in:  TypeFor[In](),
		out: TypeFor[Out](),
		fn: func(ctx context.Context, r Record) (Record, error) {
			v, err := assertRecord[In](r)
			if err != nil {
				return nil, err
			}
			return fn(ctx, v), nil
		},
	}
}

// Effect creates a node that inspects the record without changing it.
// An error from fn fails the record; otherwise the record passes through.
func Effect[T any](id string, fn func(context.Context, T) error) *FuncNode {
	t := TypeFor[T]()
	return &FuncNode{
		id:  id,
		in:  t,
		out: t,
		fn: func(ctx context.Context, r Record) (Record, error) {
			v, err := assertRecord[T](r)
			if err != nil {
				return nil, err
			}
			if err := fn(ctx, v); err != nil {
				return nil, err
			}
			return r, nil
		},
	}
}

// Filter creates a node that keeps records for which keep returns true and
// drops the rest.
//
//	hasID := chainz.Filter("has-id", func(_ context.Context, m map[string]any) bool {
//	    return m["id"] != nil && m["id"] != ""
//	})
func Filter[T any](id string, keep func(context.Context, T) bool) *FuncNode {
	t := TypeFor[T]()
	return &FuncNode{
		id:  id,
		in:  t,
		out: t,
		fn: func(ctx context.Context, r Record) (Record, error) {
			v, err := assertRecord[T](r)
			if err != nil {
				return nil, err
			}
			if !keep(ctx, v) {
				return Drop()
			}
			return r, nil
		},
	}
}

// WithInit sets the hook run when the owning pipeline initializes.
func (f *FuncNode) WithInit(fn func(context.Context) error) *FuncNode {
	f.init = fn
	return f
}

// WithExit sets the hook run when the owning pipeline exits.
func (f *FuncNode) WithExit(fn func(context.Context) error) *FuncNode {
	f.exit = fn
	return f
}

// Describe attaches documentation used by Pipeline.Doc.
func (f *FuncNode) Describe(doc Doc) *FuncNode {
	f.doc = doc
	return f
}

// ID implements Node.
func (f *FuncNode) ID() string { return f.id }

// Process implements Node.
func (f *FuncNode) Process(ctx context.Context, r Record) (Record, error) {
	if f.fn == nil {
		return nil, ErrNotImplemented
	}
	return f.fn(ctx, r)
}

// InputType implements Typed.
func (f *FuncNode) InputType() *Type { return f.in }

// OutputType implements Typed.
func (f *FuncNode) OutputType() *Type { return f.out }

// Init implements Initializer.
func (f *FuncNode) Init(ctx context.Context) error {
	if f.init == nil {
		return nil
	}
	return f.init(ctx)
}

// Exit implements Exiter.
func (f *FuncNode) Exit(ctx context.Context) error {
	if f.exit == nil {
		return nil
	}
	return f.exit(ctx)
}

// Doc implements Documented.
func (f *FuncNode) Doc() Doc { return f.doc }

func assertRecord[T any](r Record) (T, error) {
	v, ok := r.(T)
	if !ok {
		var zero T
		if r == nil {
			// A nil record satisfies an any input.
			if _, isIface := any(&zero).(*any); isIface {
				return zero, nil
			}
		}
		return zero, fmt.Errorf("unexpected record type %T, want %T", r, zero)
	}
	return v, nil
}
