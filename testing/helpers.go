// Package testing provides test utilities for chainz pipelines.
//
// It includes a configurable mock node and assertion helpers for node calls,
// lifecycle hooks and batch outcomes.
//
// Example usage:
//
//	func TestMyPipeline(t *testing.T) {
//		mock := chainztest.NewMockNode(t, "mock-node").WithReturn("processed", nil)
//
//		p := chainz.New("test-pipeline", mock)
//		batch, err := p.Process(context.Background(), []chainz.Record{"input"})
//		if err != nil {
//			t.Fatal(err)
//		}
//		chainztest.AssertOutcome(t, batch, chainz.Success, 1)
//		chainztest.AssertProcessed(t, mock, 1)
//	}
package testing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/chainz"
)

// MockNode is a configurable chainz.Node. By default it passes records
// through unchanged; it can instead return a fixed value or error, drop
// records, or panic. It tracks calls and lifecycle hook invocations.
type MockNode struct { //nolint:govet // fieldalignment: Test helper struct optimized for functionality over memory efficiency
	t           *testing.T
	id          string
	in          *chainz.Type
	out         *chainz.Type
	callCount   int64
	initCount   int64
	exitCount   int64
	lastInput   chainz.Record
	returnVal   chainz.Record
	returnErr   error
	initErr     error
	exitErr     error
	fixed       bool
	drop        bool
	panicMsg    string
	mu          sync.RWMutex
	callHistory []MockCall
	maxHistory  int
}

// MockCall represents a single call to the mock node.
type MockCall struct {
	Input     chainz.Record
	Timestamp time.Time
	Context   context.Context
}

// NewMockNode creates a pass-through mock node that accepts and produces
// any type.
func NewMockNode(t *testing.T, id string) *MockNode {
	return &MockNode{
		t:          t,
		id:         id,
		maxHistory: 100, // Keep last 100 calls by default
	}
}

// WithTypes sets the declared input and output types.
func (m *MockNode) WithTypes(in, out *chainz.Type) *MockNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.in, m.out = in, out
	return m
}

// WithReturn configures the mock to return specific values for all
// subsequent calls instead of passing the input through.
func (m *MockNode) WithReturn(val chainz.Record, err error) *MockNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returnVal = val
	m.returnErr = err
	m.fixed = true
	return m
}

// WithDrop configures the mock to drop every record.
func (m *MockNode) WithDrop() *MockNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drop = true
	return m
}

// WithPanic configures the mock to panic with a specific message.
func (m *MockNode) WithPanic(msg string) *MockNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicMsg = msg
	return m
}

// WithInitError makes Init fail with err.
func (m *MockNode) WithInitError(err error) *MockNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initErr = err
	return m
}

// WithExitError makes Exit fail with err.
func (m *MockNode) WithExitError(err error) *MockNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exitErr = err
	return m
}

// WithHistorySize configures how many calls to keep in history.
// Set to 0 to disable history tracking.
func (m *MockNode) WithHistorySize(size int) *MockNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxHistory = size
	if size == 0 {
		m.callHistory = nil
	} else if len(m.callHistory) > size {
		m.callHistory = m.callHistory[len(m.callHistory)-size:]
	}
	return m
}

// ID implements chainz.Node.
func (m *MockNode) ID() string {
	return m.id
}

// InputType implements chainz.Typed.
func (m *MockNode) InputType() *chainz.Type {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.in
}

// OutputType implements chainz.Typed.
func (m *MockNode) OutputType() *chainz.Type {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.out
}

// Init implements chainz.Initializer.
func (m *MockNode) Init(context.Context) error {
	atomic.AddInt64(&m.initCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initErr
}

// Exit implements chainz.Exiter.
func (m *MockNode) Exit(context.Context) error {
	atomic.AddInt64(&m.exitCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.exitErr
}

// Process implements chainz.Node. It records the call and then panics,
// drops, returns the configured values or passes the record through.
func (m *MockNode) Process(ctx context.Context, record chainz.Record) (chainz.Record, error) {
	atomic.AddInt64(&m.callCount, 1)

	m.mu.Lock()
	m.lastInput = record
	if m.maxHistory > 0 {
		m.callHistory = append(m.callHistory, MockCall{
			Input:     record,
			Timestamp: time.Now(),
			Context:   ctx,
		})
		if len(m.callHistory) > m.maxHistory {
			m.callHistory = m.callHistory[1:]
		}
	}
	panicMsg, drop, fixed := m.panicMsg, m.drop, m.fixed
	returnVal, returnErr := m.returnVal, m.returnErr
	m.mu.Unlock()

	switch {
	case panicMsg != "":
		panic(panicMsg)
	case drop:
		return chainz.Drop()
	case fixed:
		return returnVal, returnErr
	default:
		return record, nil
	}
}

// CallCount returns the number of times Process has been called.
func (m *MockNode) CallCount() int {
	return int(atomic.LoadInt64(&m.callCount))
}

// InitCount returns the number of times Init has been called.
func (m *MockNode) InitCount() int {
	return int(atomic.LoadInt64(&m.initCount))
}

// ExitCount returns the number of times Exit has been called.
func (m *MockNode) ExitCount() int {
	return int(atomic.LoadInt64(&m.exitCount))
}

// LastInput returns the input from the most recent call.
func (m *MockNode) LastInput() chainz.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastInput
}

// CallHistory returns a copy of all recorded calls.
func (m *MockNode) CallHistory() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.maxHistory == 0 {
		return nil
	}
	history := make([]MockCall, len(m.callHistory))
	copy(history, m.callHistory)
	return history
}

// Reset clears all call tracking.
func (m *MockNode) Reset() {
	atomic.StoreInt64(&m.callCount, 0)
	atomic.StoreInt64(&m.initCount, 0)
	atomic.StoreInt64(&m.exitCount, 0)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastInput = nil
	m.callHistory = nil
}

// Assertion Helpers

// AssertProcessed verifies that a mock node was called exactly n times.
func AssertProcessed(t *testing.T, mock *MockNode, expectedCalls int) {
	t.Helper()
	if actual := mock.CallCount(); actual != expectedCalls {
		t.Errorf("expected node %q to be called %d times, but was called %d times",
			mock.id, expectedCalls, actual)
	}
}

// AssertNotProcessed verifies that a mock node was never called.
func AssertNotProcessed(t *testing.T, mock *MockNode) {
	t.Helper()
	AssertProcessed(t, mock, 0)
}

// AssertProcessedWith verifies that the most recent input equals expected.
func AssertProcessedWith(t *testing.T, mock *MockNode, expected chainz.Record) {
	t.Helper()
	if mock.CallCount() == 0 {
		t.Errorf("expected node %q to be called with %v, but it was never called", mock.id, expected)
		return
	}
	if diff := cmp.Diff(expected, mock.LastInput()); diff != "" {
		t.Errorf("node %q last input mismatch (-want +got):\n%s", mock.id, diff)
	}
}

// AssertInitialized verifies that Init was called exactly n times.
func AssertInitialized(t *testing.T, mock *MockNode, expected int) {
	t.Helper()
	if actual := mock.InitCount(); actual != expected {
		t.Errorf("expected node %q to be initialized %d times, got %d", mock.id, expected, actual)
	}
}

// AssertExited verifies that Exit was called exactly n times.
func AssertExited(t *testing.T, mock *MockNode, expected int) {
	t.Helper()
	if actual := mock.ExitCount(); actual != expected {
		t.Errorf("expected node %q to be exited %d times, got %d", mock.id, expected, actual)
	}
}

// AssertOutcome verifies the number of results in one bucket of a batch.
func AssertOutcome(t *testing.T, batch chainz.BatchResult, outcome chainz.Outcome, expected int) {
	t.Helper()
	if actual := len(batch[outcome]); actual != expected {
		t.Errorf("expected %d %s results, got %d", expected, outcome, actual)
	}
}

// AssertFailedAt verifies that r is an Error result raised by the node with
// the given id and, when target is not nil, that its error matches target.
func AssertFailedAt(t *testing.T, r chainz.Result, node string, target error) {
	t.Helper()
	if r.State != chainz.Failed {
		t.Errorf("expected %s result, got %s", chainz.Failed, r.State)
		return
	}
	if r.Node != node {
		t.Errorf("expected failure at node %q, got %q", node, r.Node)
	}
	if target != nil && !errors.Is(r.Err, target) {
		t.Errorf("expected error matching %v, got %v", target, r.Err)
	}
}

// Helper Functions

// WaitFor waits until ch delivers a value or the timeout expires. It is
// meant for asynchronous hook handlers.
func WaitFor[T any](t *testing.T, ch <-chan T, timeout time.Duration) (T, bool) {
	t.Helper()
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		var zero T
		t.Errorf("timed out after %v", timeout)
		return zero, false
	}
}
