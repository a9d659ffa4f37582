package onboarding

import (
	"sync"

	"go.uber.org/zap"
)

// ScreenKind enumerates the onboarding screens.
type ScreenKind int

const (
	// ScreenCarousel is the intro carousel; Step carries the page index.
	ScreenCarousel ScreenKind = iota

	// ScreenSignUp is the account-creation form.
	ScreenSignUp

	// ScreenSignIn is the login form.
	ScreenSignIn

	// ScreenPreparing is the post-login preparation screen.
	ScreenPreparing

	// ScreenSuccess is the alternate terminal screen, entered only through
	// an explicit success event.
	ScreenSuccess
)

// Screen is the active onboarding screen. Step is meaningful only for
// ScreenCarousel.
type Screen struct {
	Kind ScreenKind
	Step int
}

// AuthState is the read-only view of the session store the flow consults.
// The flow never writes authentication state.
type AuthState interface {
	IsAuthenticated() bool
}

// Callbacks are fired when the flow hands control back to the outer
// navigation. Nil fields are replaced with no-ops at construction so the
// transition code never conditionally invokes them.
type Callbacks struct {
	// OnFinish fires when onboarding completes (preparation done, or the
	// unauthenticated guard tripped on the preparing screen).
	OnFinish func()

	// OnSkip fires when the user skips the carousel.
	OnSkip func()
}

// Flow is the onboarding state machine. Transitions are one-directional
// gestures recorded as explicit events; the one derived input is the scroll
// offset, which only moves the carousel step.
type Flow struct {
	auth AuthState
	log  *zap.Logger

	onFinish func()
	onSkip   func()

	mu       sync.Mutex
	screen   Screen
	finished bool
}

// NewFlow creates a Flow on the first carousel page.
func NewFlow(auth AuthState, cb Callbacks, log *zap.Logger) *Flow {
	if cb.OnFinish == nil {
		cb.OnFinish = func() {}
	}
	if cb.OnSkip == nil {
		cb.OnSkip = func() {}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{
		auth:     auth,
		log:      log,
		onFinish: cb.OnFinish,
		onSkip:   cb.OnSkip,
		screen:   Screen{Kind: ScreenCarousel, Step: 0},
	}
}

// Screen returns the active screen.
func (f *Flow) Screen() Screen {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screen
}

// HandleScroll updates the carousel step from a raw scroll position. It is a
// no-op once a form screen is active.
func (f *Flow) HandleScroll(offsetX, viewportWidth float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.screen.Kind != ScreenCarousel {
		return
	}
	f.screen.Step = DeriveStep(offsetX, viewportWidth, TotalCarouselSteps)
}

// Next advances the carousel one page. On the last page, and on any non-
// carousel screen, it does nothing.
func (f *Flow) Next() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.screen.Kind != ScreenCarousel {
		return
	}
	if f.screen.Step < TotalCarouselSteps-1 {
		f.screen.Step++
	}
}

// Skip leaves onboarding from the carousel. The affordance only exists while
// CanSkip allows it; form screens never skip.
func (f *Flow) Skip() {
	f.mu.Lock()
	if f.screen.Kind != ScreenCarousel || !CanSkip(f.screen.Step) {
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()

	f.log.Debug("onboarding skipped")
	f.onSkip()
}

// CreateAccount opens the sign-up form from the last carousel page.
func (f *Flow) CreateAccount() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.screen.Kind == ScreenCarousel && f.screen.Step == TotalCarouselSteps-1 {
		f.screen = Screen{Kind: ScreenSignUp}
	}
}

// Login opens the sign-in form from the last carousel page.
func (f *Flow) Login() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.screen.Kind == ScreenCarousel && f.screen.Step == TotalCarouselSteps-1 {
		f.screen = Screen{Kind: ScreenSignIn}
	}
}

// GoToSignIn switches laterally from sign-up to sign-in.
func (f *Flow) GoToSignIn() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.screen.Kind == ScreenSignUp {
		f.screen = Screen{Kind: ScreenSignIn}
	}
}

// GoToSignUp switches laterally from sign-in to sign-up.
func (f *Flow) GoToSignUp() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.screen.Kind == ScreenSignIn {
		f.screen = Screen{Kind: ScreenSignUp}
	}
}

// Complete records that the active form finished. The flow moves to the
// preparing screen; the preparation sequencer then drives PreparationDone,
// short-circuiting immediately when the session guard is not satisfied.
func (f *Flow) Complete() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.screen.Kind == ScreenSignUp || f.screen.Kind == ScreenSignIn {
		f.screen = Screen{Kind: ScreenPreparing}
	}
}

// Succeed moves to the alternate success terminal screen.
func (f *Flow) Succeed() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.screen.Kind == ScreenPreparing {
		f.screen = Screen{Kind: ScreenSuccess}
	}
}

// PreparationDone fires the finish callback once preparation reports
// completion, either straight from the preparing screen or after the success
// screen was shown. Repeated calls fire the callback at most once; the
// sequencer's own exactly-once guard makes double delivery unlikely, but a
// second layer here keeps the external navigation from double-finishing.
func (f *Flow) PreparationDone() {
	f.mu.Lock()
	if (f.screen.Kind != ScreenPreparing && f.screen.Kind != ScreenSuccess) || f.finished {
		f.mu.Unlock()
		return
	}
	f.finished = true
	f.mu.Unlock()

	f.onFinish()
}
