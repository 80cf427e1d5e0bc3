package chainz

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
	"go.uber.org/zap"
)

// State is the lifecycle state of a Pipeline.
type State int

// Lifecycle states.
const (
	Uninitialized State = iota
	Initialized
	Exited
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Exited:
		return "exited"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Pipeline runs records through an ordered chain of nodes and classifies
// each record as Success, Filtered or Error.
//
// The lifecycle is Uninitialized -> Initialized -> Exited. Init validates the
// chain with Check and then initializes every node in order; Process and
// Test initialize lazily on first use. Exit releases every node in order.
//
// A node error never aborts a batch: it is captured in the record's Result,
// attributed to the node that raised it, and the next record is processed.
// Only composition and lifecycle violations are returned as errors.
//
// Pipelines run records sequentially on the calling goroutine. A single
// Pipeline expects one driver at a time; calls are serialized internally.
//
// Example:
//
//	p := chainz.New("orders",
//	    chainz.Filter("has-id", hasID),
//	    chainz.Apply("count-to-int", countToInt),
//	    chainz.Apply("format-time", formatTime),
//	)
//	err := chainz.Run(ctx, p, func(p *chainz.Pipeline) error {
//	    batch, err := p.Process(ctx, records)
//	    if err != nil {
//	        return err
//	    }
//	    for _, r := range batch.Errors() {
//	        log.Printf("%s: %s", r.Node, r.Error)
//	    }
//	    return nil
//	})
type Pipeline struct {
	clock   clockz.Clock
	broken  error
	logger  *zap.Logger
	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[Event]
	name    string
	nodes   []Node
	state   State
	mu      sync.Mutex
	unique  bool
}

// New creates an Uninitialized pipeline over the given nodes. The order of
// nodes is the order every record flows through them.
func New(name string, nodes ...Node) *Pipeline {
	metrics := metricz.New()
	metrics.Counter(RecordsTotal)
	metrics.Counter(RecordsSuccess)
	metrics.Counter(RecordsFiltered)
	metrics.Counter(RecordsError)
	metrics.Counter(BatchesTotal)
	metrics.Gauge(NodesTotal)
	metrics.Gauge(BatchDurationMs)

	return &Pipeline{
		name:    name,
		nodes:   slices.Clone(nodes),
		clock:   clockz.RealClock,
		logger:  zap.NewNop(),
		metrics: metrics,
		tracer:  tracez.New(),
		hooks:   hookz.New[Event](),
	}
}

// WithLogger sets the logger used for lifecycle and per-record diagnostics.
func (p *Pipeline) WithLogger(logger *zap.Logger) *Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	if logger == nil {
		logger = zap.NewNop()
	}
	p.logger = logger.With(zap.String("pipeline", p.name))
	return p
}

// WithClock sets the clock used for timestamps and durations.
func (p *Pipeline) WithClock(clock clockz.Clock) *Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clock = clock
	return p
}

// WithUniqueIDs makes Init reject chains in which two nodes share an id.
func (p *Pipeline) WithUniqueIDs() *Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unique = true
	return p
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return p.name
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Nodes returns a copy of the node sequence.
func (p *Pipeline) Nodes() []Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.nodes)
}

// Len returns the number of nodes.
func (p *Pipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.nodes)
}

// IDs returns the id of every node in order.
func (p *Pipeline) IDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, len(p.nodes))
	for i, n := range p.nodes {
		ids[i] = NodeID(n)
	}
	return ids
}

// Check validates the current node sequence without changing state.
func (p *Pipeline) Check() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.check()
}

func (p *Pipeline) check() error {
	if err := Check(p.nodes); err != nil {
		return err
	}
	if p.unique {
		return checkUnique(p.nodes)
	}
	return nil
}

// Init validates the chain and initializes every node in order.
//
// Init fails with a *LifecycleError unless the pipeline is Uninitialized,
// and with a *CompositionError when the chain is invalid; in that case no
// node has been initialized. A failing node Init is returned as is and the
// pipeline must be discarded: nodes initialized before it are not rolled back
// and later calls to Init fail.
func (p *Pipeline) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.init(ctx)
}

func (p *Pipeline) init(ctx context.Context) error {
	if p.state != Uninitialized {
		return &LifecycleError{Op: "init", State: p.state}
	}
	if p.broken != nil {
		return &LifecycleError{Op: "init", State: p.state, Detail: "discard after failed init: " + p.broken.Error()}
	}
	if err := p.check(); err != nil {
		p.logger.Error("composition check failed", zap.Error(err))
		return err
	}
	for _, n := range p.nodes {
		i, ok := n.(Initializer)
		if !ok {
			continue
		}
		if err := i.Init(ctx); err != nil {
			p.broken = fmt.Errorf("chainz: init node %q: %w", NodeID(n), err)
			p.logger.Error("node init failed", zap.String("node", NodeID(n)), zap.Error(err))
			return p.broken
		}
	}
	p.state = Initialized
	p.metrics.Gauge(NodesTotal).Set(float64(len(p.nodes)))
	p.logger.Info("pipeline initialized", zap.Int("nodes", len(p.nodes)))
	p.emit(ctx, EventLifecycle, Event{Lifecycle: Initialized})
	return nil
}

// ready initializes lazily and rejects use after Exit.
func (p *Pipeline) ready(ctx context.Context, op string) error {
	switch p.state {
	case Uninitialized:
		return p.init(ctx)
	case Initialized:
		return nil
	default:
		return &LifecycleError{Op: op, State: p.state}
	}
}

// Process runs every record through the chain, in input order, and groups
// the results by outcome. The pipeline is initialized first if needed.
//
// The returned error is non-nil only when initialization fails or the
// pipeline has exited; node failures are reported in the BatchResult.
func (p *Pipeline) Process(ctx context.Context, records []Record) (BatchResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ready(ctx, "process"); err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	start := p.clock.Now()
	batch := BatchResult{}
	for _, record := range records {
		result, stage := p.run(ctx, record, false)
		batch.add(result)
		p.observe(ctx, batchID, stage, result)
	}

	elapsed := p.clock.Since(start)
	counts := batch.Counts()
	p.metrics.Counter(BatchesTotal).Inc()
	p.metrics.Gauge(BatchDurationMs).Set(float64(elapsed.Milliseconds()))
	p.logger.Debug("batch processed",
		zap.String("batch_id", batchID),
		zap.Int("records", len(records)),
		zap.Int("success", counts[Success]),
		zap.Int("filtered", counts[Filtered]),
		zap.Int("error", counts[Failed]),
		zap.Duration("duration", elapsed),
	)
	p.emit(ctx, EventBatchComplete, Event{BatchID: batchID, Counts: counts, Duration: elapsed})
	return batch, nil
}

func (p *Pipeline) observe(ctx context.Context, batchID string, stage int, r Result) {
	switch r.State {
	case Filtered:
		p.logger.Debug("record filtered", zap.String("batch_id", batchID), zap.String("node", r.Node))
		p.emit(ctx, EventRecordFiltered, Event{BatchID: batchID, Node: r.Node, Index: stage, State: r.State, Duration: r.Duration})
	case Failed:
		p.logger.Warn("record failed", zap.String("batch_id", batchID), zap.String("node", r.Node), zap.Error(r.Err))
		p.emit(ctx, EventRecordError, Event{BatchID: batchID, Node: r.Node, Index: stage, State: r.State, Err: r.Err, Duration: r.Duration})
	}
}

// run is the single-record algorithm shared by Process and Test. It also
// returns the index of the node that filtered or failed the record, or -1.
func (p *Pipeline) run(ctx context.Context, record Record, trace bool) (Result, int) {
	ctx, span := p.tracer.StartSpan(ctx, RecordSpan)
	span.SetTag(TagPipeline, p.name)
	span.SetTag(TagTraced, strconv.FormatBool(trace))
	start := p.clock.Now()

	result := Result{State: Success, Source: Snapshot(record)}
	if trace {
		result.Flow = []Step{}
	}

	current, stage := record, -1
	for i, n := range p.nodes {
		id := NodeID(n)
		out, err := p.invoke(ctx, i, n, current)
		if err != nil {
			result.Node = id
			stage = i
			var nodeErr *NodeError
			if errors.As(err, &nodeErr) {
				result.State = Failed
				result.Err = nodeErr
				result.Error = nodeErr.Diagnostic()
				span.SetTag(TagError, nodeErr.Error())
			} else {
				result.State = Filtered
			}
			break
		}
		current = out
		if trace {
			result.Flow = append(result.Flow, Step{Node: id, Data: Snapshot(current)})
		}
	}
	result.Data = current
	result.Duration = p.clock.Since(start)

	p.metrics.Counter(RecordsTotal).Inc()
	switch result.State {
	case Success:
		p.metrics.Counter(RecordsSuccess).Inc()
	case Filtered:
		p.metrics.Counter(RecordsFiltered).Inc()
	case Failed:
		p.metrics.Counter(RecordsError).Inc()
	}
	span.SetTag(TagOutcome, string(result.State))
	if result.Node != "" {
		span.SetTag(TagNode, result.Node)
	}
	span.Finish()
	return result, stage
}

// invoke calls one node. It returns ErrDrop for the filter signal and a
// *NodeError for any failure, including a recovered panic.
func (p *Pipeline) invoke(ctx context.Context, index int, n Node, in Record) (out Record, err error) {
	id := NodeID(n)
	ctx, span := p.tracer.StartSpan(ctx, NodeSpan)
	span.SetTag(TagNode, id)
	span.SetTag(TagStage, strconv.Itoa(index+1))
	start := p.clock.Now()

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &NodeError{
				Node:      id,
				Index:     index,
				Input:     in,
				Err:       fmt.Errorf("panic: %v", r),
				Panic:     r,
				Stack:     debug.Stack(),
				Duration:  p.clock.Since(start),
				Timestamp: p.clock.Now(),
			}
		}
		switch {
		case err == nil:
			span.SetTag(TagOutcome, string(Success))
		case errors.Is(err, ErrDrop):
			span.SetTag(TagOutcome, string(Filtered))
		default:
			span.SetTag(TagOutcome, string(Failed))
			span.SetTag(TagError, err.Error())
		}
		span.Finish()
	}()

	out, err = n.Process(ctx, in)
	if err == nil {
		return out, nil
	}
	if errors.Is(err, ErrDrop) {
		return in, ErrDrop
	}
	return nil, &NodeError{
		Node:      id,
		Index:     index,
		Input:     in,
		Err:       err,
		Duration:  p.clock.Since(start),
		Timestamp: p.clock.Now(),
	}
}

// Exit calls every node's Exit hook in order and moves the pipeline to
// Exited. All nodes are visited even if one fails; failures are joined.
// Exit fails with a *LifecycleError unless the pipeline is Initialized.
func (p *Pipeline) Exit(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Initialized {
		return &LifecycleError{Op: "exit", State: p.state}
	}
	var errs []error
	for _, n := range p.nodes {
		e, ok := n.(Exiter)
		if !ok {
			continue
		}
		if err := e.Exit(ctx); err != nil {
			p.logger.Error("node exit failed", zap.String("node", NodeID(n)), zap.Error(err))
			errs = append(errs, fmt.Errorf("chainz: exit node %q: %w", NodeID(n), err))
		}
	}
	p.state = Exited
	p.logger.Info("pipeline exited")
	p.emit(ctx, EventLifecycle, Event{Lifecycle: Exited})
	return errors.Join(errs...)
}

// Run initializes p, calls fn and exits p. Once Init has succeeded, Exit
// always runs, whether fn returns an error or panics; a panic is re-raised
// after Exit.
func Run(ctx context.Context, p *Pipeline, fn func(*Pipeline) error) (err error) {
	if err := p.Init(ctx); err != nil {
		return err
	}
	defer func() {
		r := recover()
		if exitErr := p.Exit(ctx); exitErr != nil {
			err = errors.Join(err, exitErr)
		}
		if r != nil {
			panic(r)
		}
	}()
	return fn(p)
}

// Sequence modification. Changes are only accepted before Init, so the next
// Init always checks the modified chain.

func (p *Pipeline) mutable(op string) error {
	if p.state != Uninitialized {
		return &LifecycleError{Op: op, State: p.state}
	}
	return nil
}

// Push appends nodes to the end of the chain.
func (p *Pipeline) Push(nodes ...Node) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.mutable("push to"); err != nil {
		return err
	}
	p.nodes = append(p.nodes, nodes...)
	return nil
}

// Unshift adds nodes to the front of the chain.
func (p *Pipeline) Unshift(nodes ...Node) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.mutable("unshift to"); err != nil {
		return err
	}
	p.nodes = slices.Insert(p.nodes, 0, nodes...)
	return nil
}

// After inserts nodes after the first node with the given id.
func (p *Pipeline) After(id string, nodes ...Node) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.mutable("insert into"); err != nil {
		return err
	}
	i := p.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	p.nodes = slices.Insert(p.nodes, i+1, nodes...)
	return nil
}

// Before inserts nodes before the first node with the given id.
func (p *Pipeline) Before(id string, nodes ...Node) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.mutable("insert into"); err != nil {
		return err
	}
	i := p.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	p.nodes = slices.Insert(p.nodes, i, nodes...)
	return nil
}

// Remove removes the first node with the given id.
func (p *Pipeline) Remove(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.mutable("remove from"); err != nil {
		return err
	}
	i := p.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	p.nodes = slices.Delete(p.nodes, i, i+1)
	return nil
}

// Replace swaps the first node with the given id for n.
func (p *Pipeline) Replace(id string, n Node) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.mutable("replace in"); err != nil {
		return err
	}
	i := p.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	p.nodes[i] = n
	return nil
}

func (p *Pipeline) index(id string) int {
	for i, n := range p.nodes {
		if NodeID(n) == id {
			return i
		}
	}
	return -1
}
