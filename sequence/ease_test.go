package sequence

import "testing"

func TestEaseEndpoints(t *testing.T) {
	for _, e := range []Ease{Linear, Smooth, Cubic, Ease("bogus")} {
		if v := e.Apply(0); v != 0 {
			t.Fatalf("%s: expected 0 at x=0, got %v", e, v)
		}
		if v := e.Apply(1); v != 1 {
			t.Fatalf("%s: expected 1 at x=1, got %v", e, v)
		}
		if v := e.Apply(0.5); v != 0.5 {
			t.Fatalf("%s: expected 0.5 at x=0.5, got %v", e, v)
		}
		if v := e.Apply(-1); v != 0 {
			t.Fatalf("%s: expected clamp to 0, got %v", e, v)
		}
		if v := e.Apply(2); v != 1 {
			t.Fatalf("%s: expected clamp to 1, got %v", e, v)
		}
	}
}

func TestEaseShape(t *testing.T) {
	if v := Smooth.Apply(0.25); v >= 0.25 {
		t.Fatalf("smooth should start slower than linear, got %v", v)
	}
	if v := Cubic.Apply(0.25); v >= Smooth.Apply(0.25) {
		t.Fatalf("cubic should start slower than smooth, got %v", v)
	}
}

func TestParseEase(t *testing.T) {
	for in, want := range map[string]Ease{"": Linear, "linear": Linear, "smooth": Smooth, "cubic": Cubic} {
		got, err := ParseEase(in)
		if err != nil || got != want {
			t.Fatalf("ParseEase(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseEase("bounce"); err == nil {
		t.Fatal("expected error for unknown ease")
	}
}

func TestInterpolate(t *testing.T) {
	if v := interpolate(0, 10, 0.5); v != 5 {
		t.Fatalf("expected 5, got %v", v)
	}
	if v := interpolate(1, 0, 0.25); v != 0.75 {
		t.Fatalf("expected 0.75, got %v", v)
	}
}
