package chainz

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNodeError(t *testing.T) {
	t.Run("Error Text", func(t *testing.T) {
		cause := errors.New("bad input")
		err := &NodeError{Node: "validate", Index: 2, Err: cause, Duration: 5 * time.Millisecond}
		want := `node "validate" (stage 3) failed after 5ms: bad input`
		if err.Error() != want {
			t.Errorf("expected %q, got %q", want, err.Error())
		}
		if !errors.Is(err, cause) {
			t.Error("expected Unwrap to expose the cause")
		}
		if err.Diagnostic() != want {
			t.Errorf("diagnostic without stack should equal the message, got %q", err.Diagnostic())
		}
	})

	t.Run("Panic Text", func(t *testing.T) {
		err := &NodeError{Node: "p", Panic: "boom", Err: errors.New("panic: boom"), Stack: []byte("goroutine 1 [running]:")}
		if !strings.Contains(err.Error(), `node "p" (stage 1) panicked after 0s: boom`) {
			t.Errorf("unexpected panic text %q", err.Error())
		}
		if !strings.HasSuffix(err.Diagnostic(), "goroutine 1 [running]:") {
			t.Errorf("expected stack in diagnostic, got %q", err.Diagnostic())
		}
	})
}

func TestLifecycleError(t *testing.T) {
	err := &LifecycleError{Op: "process", State: Exited}
	if err.Error() != "chainz: cannot process pipeline in state exited" {
		t.Errorf("unexpected text %q", err.Error())
	}
	if !errors.Is(err, ErrLifecycle) || errors.Is(err, ErrComposition) {
		t.Error("lifecycle error must match only ErrLifecycle")
	}
	detailed := &LifecycleError{Op: "init", State: Uninitialized, Detail: "broken"}
	if !strings.HasSuffix(detailed.Error(), ": broken") {
		t.Errorf("expected detail suffix, got %q", detailed.Error())
	}
}

func TestCompositionErrorReason(t *testing.T) {
	err := &CompositionError{Index: 4, Reason: "duplicate node id"}
	if err.Error() != "chainz: invalid node at index 4: duplicate node id" {
		t.Errorf("unexpected text %q", err.Error())
	}
	if !errors.Is(err, ErrComposition) {
		t.Error("expected errors.Is(err, ErrComposition)")
	}
}

func TestStateString(t *testing.T) {
	for state, want := range map[State]string{
		Uninitialized: "uninitialized",
		Initialized:   "initialized",
		Exited:        "exited",
		State(9):      "state(9)",
	} {
		if state.String() != want {
			t.Errorf("expected %q, got %q", want, state.String())
		}
	}
}
