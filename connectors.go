package chainz

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// RetryNode runs a node up to a fixed number of times until it succeeds.
// Every attempt receives a fresh deep copy of the input, so an attempt that
// mutated the record before failing does not leak into the next one. A drop
// is never retried.
type RetryNode struct {
	node     Node
	id       string
	attempts int
}

// Retry wraps n so that failures are retried. attempts below 1 are clamped
// to 1.
//
//	fetch := chainz.Retry("fetch", lookup, 3)
func Retry(id string, n Node, attempts int) *RetryNode {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryNode{id: id, node: n, attempts: attempts}
}

// ID implements Node.
func (r *RetryNode) ID() string { return r.id }

// Attempts returns the maximum number of attempts.
func (r *RetryNode) Attempts() int { return r.attempts }

// Process implements Node. The error of the last attempt is returned when
// every attempt fails.
func (r *RetryNode) Process(ctx context.Context, record Record) (Record, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		input := record
		if attempt < r.attempts {
			input = Snapshot(record)
		}
		out, err := r.node.Process(ctx, input)
		if err == nil || errors.Is(err, ErrDrop) {
			return out, err
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%s failed after %d attempts: %w", NodeID(r.node), r.attempts, lastErr)
}

// InputType implements Typed.
func (r *RetryNode) InputType() *Type { return inputType(r.node) }

// OutputType implements Typed.
func (r *RetryNode) OutputType() *Type { return outputType(r.node) }

// Init implements Initializer.
func (r *RetryNode) Init(ctx context.Context) error { return initAll(ctx, r.node) }

// Exit implements Exiter.
func (r *RetryNode) Exit(ctx context.Context) error { return exitAll(ctx, r.node) }

// Doc implements Documented.
func (r *RetryNode) Doc() Doc {
	d := childDoc(r.node)
	d.Desc = strings.TrimSpace(fmt.Sprintf("%s (retried up to %d times)", d.Desc, r.attempts))
	return d
}

// FallbackNode tries alternatives in order and returns the first success.
// Each alternative receives a fresh deep copy of the input. A drop from any
// alternative drops the record.
type FallbackNode struct {
	id    string
	nodes []Node
}

// Fallback creates a node that tries primary, then each fallback in turn.
// Declared types are those of primary.
//
//	geo := chainz.Fallback("geo", primaryLookup, cachedLookup)
func Fallback(id string, primary Node, fallbacks ...Node) *FallbackNode {
	return &FallbackNode{id: id, nodes: append([]Node{primary}, fallbacks...)}
}

// ID implements Node.
func (f *FallbackNode) ID() string { return f.id }

// Process implements Node. When every alternative fails the errors are
// joined in order.
func (f *FallbackNode) Process(ctx context.Context, record Record) (Record, error) {
	errs := make([]error, 0, len(f.nodes))
	for i, n := range f.nodes {
		input := record
		if i < len(f.nodes)-1 {
			input = Snapshot(record)
		}
		out, err := n.Process(ctx, input)
		if err == nil || errors.Is(err, ErrDrop) {
			return out, err
		}
		errs = append(errs, fmt.Errorf("%s: %w", NodeID(n), err))
	}
	return nil, errors.Join(errs...)
}

// InputType implements Typed.
func (f *FallbackNode) InputType() *Type { return inputType(f.nodes[0]) }

// OutputType implements Typed.
func (f *FallbackNode) OutputType() *Type { return outputType(f.nodes[0]) }

// Init implements Initializer.
func (f *FallbackNode) Init(ctx context.Context) error { return initAll(ctx, f.nodes...) }

// Exit implements Exiter.
func (f *FallbackNode) Exit(ctx context.Context) error { return exitAll(ctx, f.nodes...) }

// Doc implements Documented.
func (f *FallbackNode) Doc() Doc {
	d := childDoc(f.nodes[0])
	ids := make([]string, len(f.nodes))
	for i, n := range f.nodes {
		ids[i] = NodeID(n)
	}
	d.Desc = strings.TrimSpace(d.Desc + " (tries " + strings.Join(ids, ", then ") + ")")
	return d
}

func childDoc(n Node) Doc {
	if d, ok := n.(Documented); ok {
		return d.Doc()
	}
	return Doc{}
}

func initAll(ctx context.Context, nodes ...Node) error {
	for _, n := range nodes {
		if i, ok := n.(Initializer); ok {
			if err := i.Init(ctx); err != nil {
				return fmt.Errorf("init %q: %w", NodeID(n), err)
			}
		}
	}
	return nil
}

func exitAll(ctx context.Context, nodes ...Node) error {
	var errs []error
	for _, n := range nodes {
		if e, ok := n.(Exiter); ok {
			if err := e.Exit(ctx); err != nil {
				errs = append(errs, fmt.Errorf("exit %q: %w", NodeID(n), err))
			}
		}
	}
	return errors.Join(errs...)
}
