// Package chainz provides a composable record-transformation pipeline: an
// ordered chain of single-purpose nodes through which records flow one at a
// time, each node free to transform, drop or fail the record.
//
// # Overview
//
// chainz targets flows where transformation logic changes often and must be
// recombined without rewriting the flow. Every step is a Node with a single
// Process method; a Pipeline owns an ordered list of nodes, checks once that
// adjacent nodes fit together, and classifies every record it processes as
// Success, Filtered or Error.
//
// # Nodes
//
// A node is any value that implements Node:
//
//	type Node interface {
//	    ID() string
//	    Process(ctx context.Context, record Record) (Record, error)
//	}
//
// Optional interfaces add behavior:
//
//   - Typed: declares input and output *Type for the compatibility check
//   - Initializer and Exiter: acquire and release resources
//   - Documented: supplies the structured description used by Doc
//
// Struct nodes usually embed Base. Function nodes come from the adapters:
//
//   - Func: an untyped function with explicitly declared types
//   - Apply: a typed function that may fail
//   - Transform: a typed function that cannot fail
//   - Effect: a side effect that passes the record through
//   - Filter: a predicate that drops records
//
// # Outcomes
//
// A node drops a record by returning ErrDrop (see Drop). Any other error, or
// a panic, fails the record; the failure is wrapped in a *NodeError that
// names the node and is stored in the record's Result. A failing record
// never aborts a batch.
//
//	p := chainz.New("orders", hasID, countToInt, formatTime)
//	batch, err := p.Process(ctx, records)
//	if err != nil {
//	    return err // composition or lifecycle problem
//	}
//	for _, r := range batch.Errors() {
//	    log.Printf("%s failed: %s", r.Node, r.Error)
//	}
//
// # Types
//
// Declared types form a small lineage graph. Two adjacent nodes are
// compatible when either side is Any, or when the lineages of the output and
// the input share a type. Object is the universal root and never counts as a
// shared type. TypeFor derives a *Type from a Go type parameter.
//
// # Lifecycle
//
// A Pipeline moves from Uninitialized to Initialized to Exited. Process and
// Test initialize lazily; Run wraps Init and Exit around a function. The
// node sequence can be modified with Push, Unshift, After, Before, Remove and
// Replace until the pipeline is initialized.
//
// # Observability
//
// Every pipeline owns a metricz registry, a tracez tracer and a hookz event
// bus. Records and node invocations produce spans, outcomes increment
// counters, and filtered records, failed records, batches and lifecycle
// transitions emit events. Handlers registered with OnFiltered, OnError,
// OnBatch and OnLifecycle run asynchronously and never affect processing.
//
// # Tracing and documentation
//
// Test runs one record with tracing and records a deep copy of the record
// after every node. Doc writes a Markdown artifact describing every node.
package chainz
