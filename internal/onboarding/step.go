// Package onboarding decides which onboarding/auth screen is active. The
// carousel step is derived from the continuous scroll offset by a pure
// function; screen transitions are explicit events on the Flow controller.
package onboarding

import "math"

// TotalCarouselSteps is the number of carousel pages.
const TotalCarouselSteps = 3

// DeriveStep maps a horizontal scroll offset to a discrete carousel step.
// Malformed offsets clamp instead of propagating: negative overscroll lands
// on the first page, overscroll past the end on the last. A non-positive
// viewport width has no meaningful page boundary and resolves to step 0.
func DeriveStep(offsetX, viewportWidth float64, total int) int {
	if total <= 0 {
		return 0
	}
	if viewportWidth <= 0 || math.IsNaN(offsetX) || math.IsInf(offsetX, 0) {
		return 0
	}

	step := int(math.Round(offsetX / viewportWidth))
	if step < 0 {
		return 0
	}
	if step > total-1 {
		return total - 1
	}
	return step
}

// CanSkip reports whether the skip affordance applies on the given carousel
// step. Skipping is hidden on the last step, where the call-to-action pair
// takes over.
func CanSkip(step int) bool {
	return step >= 0 && step < TotalCarouselSteps-1
}
