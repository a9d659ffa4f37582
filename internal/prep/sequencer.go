// Package prep runs the staged post-login preparation: a fixed ordered list
// of simulated loading steps with progress reporting, retry, and an
// authentication guard.
package prep

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Step is one preparation stage. Target is the cumulative progress
// percentage reached when the step finishes; the last step's target is 100.
type Step struct {
	Name     string
	Duration time.Duration
	Target   int

	// Run, when set, does the step's actual work after the duration elapses.
	// An error halts the sequence. Nil steps just simulate latency.
	Run func(ctx context.Context) error
}

// DefaultSteps is the production preparation sequence.
func DefaultSteps() []Step {
	return []Step{
		{Name: "Syncing your profile", Duration: 600 * time.Millisecond, Target: 25},
		{Name: "Loading medication schedule", Duration: 700 * time.Millisecond, Target: 55},
		{Name: "Fetching appointment calendar", Duration: 500 * time.Millisecond, Target: 80},
		{Name: "Warming reminder cache", Duration: 400 * time.Millisecond, Target: 100},
	}
}

// Progress is a snapshot of the sequencer state, delivered to the observer
// on every change.
type Progress struct {
	// Percent is 0..100, monotonically non-decreasing within one run.
	Percent int

	// Step is the name of the step that most recently ran.
	Step string

	// Err is the user-facing error message, empty when none. Progress keeps
	// its last successful value alongside an error.
	Err string

	// Preparing is true while steps are executing.
	Preparing bool
}

// AuthState gates preparation on a live session.
type AuthState interface {
	IsAuthenticated() bool
}

// Config tunes a Sequencer. Zero values get defaults in New.
type Config struct {
	Steps      []Step
	Settle     time.Duration // pause between reaching 100 and the done signal
	OnProgress func(Progress)
	OnComplete func() // fired exactly once per Sequencer
	Logger     *zap.Logger
}

// Sequencer executes the preparation steps strictly in order. It only runs
// while the auth guard holds; when the guard fails on entry or mid-run it
// short-circuits straight to the completion signal so an unauthenticated
// user is never shown a preparation screen.
type Sequencer struct {
	auth       AuthState
	steps      []Step
	settle     time.Duration
	onProgress func(Progress)
	onComplete func()
	log        *zap.Logger

	mu        sync.Mutex
	running   bool
	completed bool
	state     Progress
}

// New creates a Sequencer.
func New(auth AuthState, cfg Config) *Sequencer {
	if cfg.Steps == nil {
		cfg.Steps = DefaultSteps()
	}
	if cfg.Settle == 0 {
		cfg.Settle = 400 * time.Millisecond
	}
	if cfg.OnProgress == nil {
		cfg.OnProgress = func(Progress) {}
	}
	if cfg.OnComplete == nil {
		cfg.OnComplete = func() {}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Sequencer{
		auth:       auth,
		steps:      cfg.Steps,
		settle:     cfg.Settle,
		onProgress: cfg.OnProgress,
		onComplete: cfg.OnComplete,
		log:        cfg.Logger,
	}
}

// State returns the current progress snapshot.
func (s *Sequencer) State() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run starts the sequence. It is fire-and-forget: results arrive through the
// progress observer and the completion signal. Calling Run while a run is in
// flight, or after completion already signalled, does nothing; that is the
// guard against re-entrant effects scheduling a duplicate run.
func (s *Sequencer) Run(ctx context.Context) {
	s.mu.Lock()
	if s.running || s.completed {
		s.mu.Unlock()
		return
	}

	if !s.auth.IsAuthenticated() {
		// Defensive consistency recovery, not an error: nothing to prepare
		// for a user who is not signed in.
		s.state.Preparing = false
		snapshot := s.state
		s.mu.Unlock()

		s.log.Debug("preparation skipped, no authenticated session")
		s.onProgress(snapshot)
		s.signalDone()
		return
	}

	s.running = true
	s.state.Err = ""
	s.state.Preparing = true
	snapshot := s.state
	s.mu.Unlock()

	s.onProgress(snapshot)
	go s.loop(ctx)
}

// Retry clears the error, resets progress to zero, and reruns the full
// sequence from the beginning. There is no partial resume.
func (s *Sequencer) Retry(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.state = Progress{}
	snapshot := s.state
	s.mu.Unlock()

	s.onProgress(snapshot)
	s.Run(ctx)
}

// Continue signals completion despite a failed step: the "continue anyway"
// affordance next to retry.
func (s *Sequencer) Continue() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.signalDone()
}

func (s *Sequencer) loop(ctx context.Context) {
	for _, step := range s.steps {
		if ctx.Err() != nil {
			s.stopQuietly()
			return
		}
		if !s.auth.IsAuthenticated() {
			// Guard flipped mid-run: stop scheduling steps and finish.
			s.mu.Lock()
			s.running = false
			s.state.Preparing = false
			snapshot := s.state
			s.mu.Unlock()

			s.log.Debug("session lost mid-preparation, short-circuiting")
			s.onProgress(snapshot)
			s.signalDone()
			return
		}

		// Timer-based wait so cancellation clears the pending timer instead
		// of leaving it to fire after teardown.
		timer := time.NewTimer(step.Duration)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.stopQuietly()
			return
		case <-timer.C:
		}

		if step.Run != nil {
			if err := step.Run(ctx); err != nil {
				s.mu.Lock()
				s.running = false
				s.state.Err = err.Error()
				s.state.Step = step.Name
				s.state.Preparing = false
				snapshot := s.state
				s.mu.Unlock()

				s.log.Warn("preparation step failed",
					zap.String("step", step.Name), zap.Error(err))
				s.onProgress(snapshot)
				return
			}
		}

		s.mu.Lock()
		if step.Target > s.state.Percent {
			s.state.Percent = step.Target
		}
		s.state.Step = step.Name
		snapshot := s.state
		s.mu.Unlock()

		s.onProgress(snapshot)
	}

	// Settle briefly so the full bar is visible before the screen flips.
	timer := time.NewTimer(s.settle)
	select {
	case <-ctx.Done():
		timer.Stop()
		s.stopQuietly()
		return
	case <-timer.C:
	}

	s.mu.Lock()
	s.running = false
	s.state.Preparing = false
	snapshot := s.state
	s.mu.Unlock()

	s.onProgress(snapshot)
	s.signalDone()
}

// stopQuietly ends a cancelled run without a completion signal; the owning
// screen is gone.
func (s *Sequencer) stopQuietly() {
	s.mu.Lock()
	s.running = false
	s.state.Preparing = false
	s.mu.Unlock()
}

// signalDone fires the completion callback exactly once per Sequencer.
func (s *Sequencer) signalDone() {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		return
	}
	s.completed = true
	s.mu.Unlock()

	s.onComplete()
}
