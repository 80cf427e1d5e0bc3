package chainz

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	// ErrDrop is returned by a node to stop the chain and classify the record
	// as Filtered. It is a control signal, like filepath.SkipDir, and never
	// produces an Error result.
	ErrDrop = errors.New("chainz: drop record")

	// ErrNotImplemented is returned by nodes whose Process was never defined.
	ErrNotImplemented = errors.New("chainz: process not implemented")

	// ErrComposition marks invalid node sequences.
	ErrComposition = errors.New("chainz: invalid composition")

	// ErrLifecycle marks operations called in the wrong pipeline state.
	ErrLifecycle = errors.New("chainz: lifecycle violation")

	// ErrNodeNotFound is returned by the modification API for unknown ids.
	ErrNodeNotFound = errors.New("chainz: node not found")
)

// Drop is shorthand for returning the filter signal from a node.
func Drop() (Record, error) {
	return nil, ErrDrop
}

// CompositionError reports why a node sequence cannot form a pipeline.
// For type mismatches From/To name the two adjacent nodes and Output/Input
// their declared types at the failing point.
type CompositionError struct {
	Output *Type
	Input  *Type
	From   string
	To     string
	Reason string
	Index  int
}

// Error implements the error interface.
func (e *CompositionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("chainz: invalid node at index %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("chainz: node(%s) -> %s|%s -> node(%s)", e.From, e.Output, e.Input, e.To)
}

// Is matches ErrComposition.
func (*CompositionError) Is(target error) bool {
	return target == ErrComposition
}

// LifecycleError reports an operation attempted in a state that forbids it.
type LifecycleError struct {
	Op     string
	State  State
	Detail string
}

// Error implements the error interface.
func (e *LifecycleError) Error() string {
	msg := fmt.Sprintf("chainz: cannot %s pipeline in state %s", e.Op, e.State)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches ErrLifecycle.
func (*LifecycleError) Is(target error) bool {
	return target == ErrLifecycle
}

// NodeError captures a failure raised by a single node while processing one
// record. It is never returned from Process; it is stored in the record's
// Result and rendered into Result.Error.
type NodeError struct {
	Input     Record
	Timestamp time.Time
	Err       error
	Panic     any
	Node      string
	Stack     []byte
	Duration  time.Duration
	Index     int
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	location := fmt.Sprintf("node %q (stage %d)", e.Node, e.Index+1)
	if e.Panic != nil {
		return fmt.Sprintf("%s panicked after %v: %v", location, e.Duration, e.Panic)
	}
	return fmt.Sprintf("%s failed after %v: %v", location, e.Duration, e.Err)
}

// Unwrap returns the underlying error.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// Diagnostic returns the full diagnostic text: the error message and, for
// recovered panics, the goroutine stack at the point of the panic.
func (e *NodeError) Diagnostic() string {
	if len(e.Stack) == 0 {
		return e.Error()
	}
	return e.Error() + "\n\n" + string(e.Stack)
}
