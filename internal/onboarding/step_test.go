package onboarding

import (
	"math"
	"testing"
)

func TestDeriveStepClamps(t *testing.T) {
	const w = 375.0

	cases := []struct {
		name    string
		offsetX float64
		want    int
	}{
		{"start", 0, 0},
		{"negative overscroll", -200, 0},
		{"mid first page", 150, 0},
		{"rounds to second page", 190, 1},
		{"second page", 375, 1},
		{"last page", 750, 2},
		{"overscroll past last page", 5000, 2},
		{"huge offset", 1e12, 2},
	}
	for _, tc := range cases {
		if got := DeriveStep(tc.offsetX, w, TotalCarouselSteps); got != tc.want {
			t.Fatalf("%s: DeriveStep(%v) = %d, want %d", tc.name, tc.offsetX, got, tc.want)
		}
	}
}

func TestDeriveStepDegenerateInputs(t *testing.T) {
	if got := DeriveStep(500, 0, TotalCarouselSteps); got != 0 {
		t.Fatalf("zero viewport width should resolve to 0, got %d", got)
	}
	if got := DeriveStep(500, -10, TotalCarouselSteps); got != 0 {
		t.Fatalf("negative viewport width should resolve to 0, got %d", got)
	}
	if got := DeriveStep(math.NaN(), 375, TotalCarouselSteps); got != 0 {
		t.Fatalf("NaN offset should resolve to 0, got %d", got)
	}
	if got := DeriveStep(math.Inf(1), 375, TotalCarouselSteps); got != 2 && got != 0 {
		// Inf is rejected before division, so it lands on 0.
		t.Fatalf("Inf offset out of range: %d", got)
	}
	if got := DeriveStep(100, 375, 0); got != 0 {
		t.Fatalf("zero total should resolve to 0, got %d", got)
	}
}

func TestDeriveStepIdempotent(t *testing.T) {
	for _, x := range []float64{-100, 0, 187.5, 375, 9999} {
		a := DeriveStep(x, 375, TotalCarouselSteps)
		b := DeriveStep(x, 375, TotalCarouselSteps)
		if a != b {
			t.Fatalf("DeriveStep(%v) not idempotent: %d then %d", x, a, b)
		}
	}
}

func TestCanSkip(t *testing.T) {
	if !CanSkip(0) || !CanSkip(1) {
		t.Fatalf("skip should be available on early steps")
	}
	if CanSkip(2) {
		t.Fatalf("skip must be hidden on the last step")
	}
	if CanSkip(-1) {
		t.Fatalf("skip must be hidden for invalid steps")
	}
}
