// Package schedule runs stories on recurring cron expressions, for
// CI-style soak and regression scenarios. Every firing gets a fresh
// orchestrator run: the state manager lives and dies with the run, so
// consecutive firings never see each other's variables.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	rcron "github.com/robfig/cron/v3"

	scenario "github.com/goliatone/go-scenario"
)

// Logger is the logging contract this package needs.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// StoryRunner executes one story run and returns its finalized result.
// Typically a closure over an orchestrator and a backend factory.
type StoryRunner func(ctx context.Context, story scenario.Story) *scenario.TestResult

// Scheduler wraps cron scheduling of story runs.
type Scheduler struct {
	mu      sync.Mutex
	cron    *rcron.Cron
	logger  Logger
	onError func(error)
	entries map[rcron.EntryID]string
	started bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger installs a logger.
func WithLogger(l Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// WithLocation sets the cron evaluation timezone.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.cron = rcron.New(rcron.WithLocation(loc))
		}
	}
}

// WithErrorHandler installs the hook invoked when a scheduled run fails.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.onError = fn
		}
	}
}

// NewScheduler builds an idle scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:    rcron.New(),
		entries: make(map[rcron.EntryID]string),
		onError: func(error) {},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ScheduleStory registers a story to run on the given cron expression.
func (s *Scheduler) ScheduleStory(expression string, st scenario.Story, run StoryRunner) (rcron.EntryID, error) {
	if expression == "" {
		return 0, errors.New("cron expression cannot be empty", errors.CategoryBadInput).
			WithTextCode("EMPTY_EXPRESSION")
	}
	if run == nil {
		return 0, errors.New("story runner cannot be nil", errors.CategoryBadInput).
			WithTextCode("NIL_RUNNER")
	}

	id, err := s.cron.AddFunc(expression, func() {
		result := run(context.Background(), st)
		if result == nil {
			s.onError(errors.New(
				fmt.Sprintf("scheduled story %q produced no result", st.Name),
				errors.CategoryHandler).WithTextCode("NO_RESULT"))
			return
		}
		if s.logger != nil {
			s.logger.Info("scheduled story %q: success=%t assertions failed=%d",
				st.Name, result.Success, result.AssertionsFailed)
		}
		if !result.Success {
			s.onError(errors.New(
				fmt.Sprintf("scheduled story %q failed: %d assertion(s) failed", st.Name, result.AssertionsFailed),
				errors.CategoryHandler).WithTextCode("SCHEDULED_STORY_FAILED"))
		}
	})
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryBadInput, "cron registration failed").
			WithTextCode("CRON_REGISTRATION_FAILED")
	}

	s.mu.Lock()
	s.entries[id] = st.Name
	s.mu.Unlock()
	return id, nil
}

// Remove drops a scheduled story.
func (s *Scheduler) Remove(id rcron.EntryID) {
	s.cron.Remove(id)
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Entries lists the scheduled story names keyed by entry id.
func (s *Scheduler) Entries() map[rcron.EntryID]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[rcron.EntryID]string, len(s.entries))
	for id, name := range s.entries {
		out[id] = name
	}
	return out
}

// Start begins firing schedules. Idempotent.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight runs to finish.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	return s.cron.Stop()
}
