package chainz

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
)

func TestAdapters(t *testing.T) {
	ctx := context.Background()

	t.Run("Apply", func(t *testing.T) {
		atoi := Apply("atoi", func(_ context.Context, s string) (int, error) {
			return strconv.Atoi(s)
		})
		if atoi.ID() != "atoi" {
			t.Errorf("expected id 'atoi', got %q", atoi.ID())
		}
		if atoi.InputType() != String || atoi.OutputType() != Int {
			t.Errorf("unexpected types %v -> %v", atoi.InputType(), atoi.OutputType())
		}

		out, err := atoi.Process(ctx, "42")
		if err != nil || out != 42 {
			t.Errorf("expected 42, got %v (%v)", out, err)
		}
		if _, err := atoi.Process(ctx, "x"); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("Apply Rejects Wrong Record Type", func(t *testing.T) {
		upper := Apply("upper", func(_ context.Context, s string) (string, error) {
			return strings.ToUpper(s), nil
		})
		_, err := upper.Process(ctx, 7)
		if err == nil || !strings.Contains(err.Error(), "unexpected record type int") {
			t.Errorf("expected type error, got %v", err)
		}
	})

	t.Run("Transform", func(t *testing.T) {
		double := Transform("double", func(_ context.Context, n int) int { return n * 2 })
		out, err := double.Process(ctx, 21)
		if err != nil || out != 42 {
			t.Errorf("expected 42, got %v (%v)", out, err)
		}
	})

	t.Run("Effect Passes Through", func(t *testing.T) {
		var seen string
		tap := Effect("tap", func(_ context.Context, s string) error {
			seen = s
			return nil
		})
		out, err := tap.Process(ctx, "hello")
		if err != nil || out != "hello" || seen != "hello" {
			t.Errorf("unexpected effect result %v (%v), seen %q", out, err, seen)
		}

		boom := errors.New("boom")
		fail := Effect("fail", func(context.Context, string) error { return boom })
		if _, err := fail.Process(ctx, "x"); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	})

	t.Run("Filter Drops", func(t *testing.T) {
		hasID := Filter("has-id", func(_ context.Context, m map[string]any) bool {
			return m["id"] != nil
		})
		if hasID.InputType() != Map || hasID.OutputType() != Map {
			t.Errorf("unexpected types %v -> %v", hasID.InputType(), hasID.OutputType())
		}

		kept := map[string]any{"id": 1}
		out, err := hasID.Process(ctx, kept)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.(map[string]any)["id"] != 1 {
			t.Errorf("expected record to pass, got %v", out)
		}
		if _, err := hasID.Process(ctx, map[string]any{}); !errors.Is(err, ErrDrop) {
			t.Errorf("expected ErrDrop, got %v", err)
		}
	})

	t.Run("Func With Explicit Types", func(t *testing.T) {
		n := Func("raw", Any, Map, func(_ context.Context, r Record) (Record, error) {
			return map[string]any{"value": r}, nil
		})
		if n.InputType() != Any || n.OutputType() != Map {
			t.Errorf("unexpected types %v -> %v", n.InputType(), n.OutputType())
		}
		out, err := n.Process(ctx, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m := out.(map[string]any); m["value"] != nil {
			t.Errorf("expected nil value, got %v", m["value"])
		}
	})

	t.Run("Nil Function Is Not Implemented", func(t *testing.T) {
		n := Func("empty", Any, Any, nil)
		if _, err := n.Process(ctx, 1); !errors.Is(err, ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})

	t.Run("Any Input Accepts Nil", func(t *testing.T) {
		n := Transform("wrap", func(_ context.Context, r any) []any { return []any{r} })
		out, err := n.Process(ctx, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l := out.([]any); len(l) != 1 || l[0] != nil {
			t.Errorf("unexpected output %v", out)
		}
	})

	t.Run("Lifecycle Hooks And Doc", func(t *testing.T) {
		var inits, exits int
		n := Transform("noop", func(_ context.Context, r any) any { return r }).
			WithInit(func(context.Context) error { inits++; return nil }).
			WithExit(func(context.Context) error { exits++; return nil }).
			Describe(Doc{Func: "does nothing"})

		if err := n.Init(ctx); err != nil {
			t.Fatal(err)
		}
		if err := n.Exit(ctx); err != nil {
			t.Fatal(err)
		}
		if inits != 1 || exits != 1 {
			t.Errorf("expected one init and one exit, got %d and %d", inits, exits)
		}
		if n.Doc().Func != "does nothing" {
			t.Errorf("unexpected doc %+v", n.Doc())
		}
	})
}

func TestBase(t *testing.T) {
	b := Base{Name: "base", In: Map, Out: List}
	if b.ID() != "base" || b.InputType() != Map || b.OutputType() != List {
		t.Errorf("unexpected base fields: %+v", b)
	}
	if _, err := b.Process(context.Background(), nil); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}
	if b.Init(context.Background()) != nil || b.Exit(context.Background()) != nil {
		t.Error("base hooks should be no-ops")
	}
}
