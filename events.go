package chainz

import (
	"context"
	"time"

	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for Pipeline.
const (
	// Metrics.
	RecordsTotal    = metricz.Key("chainz.records.total")
	RecordsSuccess  = metricz.Key("chainz.records.success")
	RecordsFiltered = metricz.Key("chainz.records.filtered")
	RecordsError    = metricz.Key("chainz.records.error")
	BatchesTotal    = metricz.Key("chainz.batches.total")
	NodesTotal      = metricz.Key("chainz.nodes.total")
	BatchDurationMs = metricz.Key("chainz.batch.duration.ms")

	// Spans.
	RecordSpan = tracez.Key("chainz.record")
	NodeSpan   = tracez.Key("chainz.node")

	// Tags.
	TagPipeline = tracez.Tag("chainz.pipeline")
	TagNode     = tracez.Tag("chainz.node_id")
	TagStage    = tracez.Tag("chainz.stage")
	TagOutcome  = tracez.Tag("chainz.outcome")
	TagError    = tracez.Tag("chainz.error")
	TagTraced   = tracez.Tag("chainz.traced")

	// Hook event keys.
	EventRecordFiltered = hookz.Key("chainz.record.filtered")
	EventRecordError    = hookz.Key("chainz.record.error")
	EventBatchComplete  = hookz.Key("chainz.batch.complete")
	EventLifecycle      = hookz.Key("chainz.lifecycle")
)

// Event is emitted through hookz when a record is filtered or fails, when a
// batch completes and when the pipeline changes lifecycle state. Handlers run
// asynchronously and cannot influence processing. For record events Index is
// the position of the node that filtered or failed the record.
type Event struct {
	Timestamp time.Time
	Err       error
	Counts    map[Outcome]int
	Pipeline  string
	BatchID   string
	Node      string
	State     Outcome
	Lifecycle State
	Index     int
	Duration  time.Duration
}

// OnFiltered registers a handler for records dropped by a node.
func (p *Pipeline) OnFiltered(handler func(context.Context, Event) error) error {
	_, err := p.hooks.Hook(EventRecordFiltered, handler)
	return err
}

// OnError registers a handler for records that failed in a node.
func (p *Pipeline) OnError(handler func(context.Context, Event) error) error {
	_, err := p.hooks.Hook(EventRecordError, handler)
	return err
}

// OnBatch registers a handler for completed Process calls.
func (p *Pipeline) OnBatch(handler func(context.Context, Event) error) error {
	_, err := p.hooks.Hook(EventBatchComplete, handler)
	return err
}

// OnLifecycle registers a handler for Init and Exit transitions.
func (p *Pipeline) OnLifecycle(handler func(context.Context, Event) error) error {
	_, err := p.hooks.Hook(EventLifecycle, handler)
	return err
}

// Metrics returns the metrics registry for this pipeline.
func (p *Pipeline) Metrics() *metricz.Registry {
	return p.metrics
}

// Tracer returns the tracer for this pipeline.
func (p *Pipeline) Tracer() *tracez.Tracer {
	return p.tracer
}

// Close shuts down the observability components. It does not exit the
// nodes; call Exit for that.
func (p *Pipeline) Close() error {
	if p.tracer != nil {
		p.tracer.Close()
	}
	p.hooks.Close()
	return nil
}

func (p *Pipeline) emit(ctx context.Context, key hookz.Key, event Event) {
	event.Pipeline = p.name
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock.Now()
	}
	_ = p.hooks.Emit(ctx, key, event) //nolint:errcheck
}
