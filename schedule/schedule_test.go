package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scenario "github.com/goliatone/go-scenario"
)

func noopRunner(result *scenario.TestResult) StoryRunner {
	return func(context.Context, scenario.Story) *scenario.TestResult {
		return result
	}
}

func passedResult(story scenario.Story) *scenario.TestResult {
	result := scenario.NewTestResult(story)
	result.Finalize(nil)
	return result
}

func TestScheduleStoryValidation(t *testing.T) {
	s := NewScheduler()
	story := scenario.Story{Name: "nightly smoke"}

	_, err := s.ScheduleStory("", story, noopRunner(passedResult(story)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expression")

	_, err = s.ScheduleStory("@hourly", story, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runner")

	_, err = s.ScheduleStory("not a cron line", story, noopRunner(passedResult(story)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cron registration failed")
}

func TestScheduleEntriesAndRemove(t *testing.T) {
	s := NewScheduler()
	storyA := scenario.Story{Name: "soak A"}
	storyB := scenario.Story{Name: "soak B"}

	idA, err := s.ScheduleStory("@hourly", storyA, noopRunner(passedResult(storyA)))
	require.NoError(t, err)
	idB, err := s.ScheduleStory("*/5 * * * *", storyB, noopRunner(passedResult(storyB)))
	require.NoError(t, err)

	entries := s.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "soak A", entries[idA])
	assert.Equal(t, "soak B", entries[idB])

	s.Remove(idA)
	entries = s.Entries()
	assert.Len(t, entries, 1)
	_, ok := entries[idA]
	assert.False(t, ok)
}

func TestStartStopIdempotent(t *testing.T) {
	s := NewScheduler()
	s.Start()
	s.Start()

	done := s.Stop()
	<-done.Done()

	s.Start()
	<-s.Stop().Done()
}

func TestFailedRunReachesErrorHandler(t *testing.T) {
	var seen []error
	s := NewScheduler(WithErrorHandler(func(err error) {
		seen = append(seen, err)
	}))

	story := scenario.Story{Name: "flaky"}
	failed := scenario.NewTestResult(story)
	failed.RecordStep(scenario.StepRecord{Assertion: true, Passed: false})
	failed.Finalize(nil)

	id, err := s.ScheduleStory("@hourly", story, noopRunner(failed))
	require.NoError(t, err)

	// Fire the job body directly instead of waiting an hour.
	entry := s.cron.Entry(id)
	require.NotNil(t, entry.Job)
	entry.Job.Run()

	require.Len(t, seen, 1)
	assert.Contains(t, seen[0].Error(), "flaky")
	assert.Contains(t, seen[0].Error(), "1 assertion(s) failed")
}

func TestNilResultReachesErrorHandler(t *testing.T) {
	var seen []error
	s := NewScheduler(WithErrorHandler(func(err error) {
		seen = append(seen, err)
	}))

	story := scenario.Story{Name: "silent"}
	id, err := s.ScheduleStory("@hourly", story,
		func(context.Context, scenario.Story) *scenario.TestResult { return nil })
	require.NoError(t, err)

	entry := s.cron.Entry(id)
	require.NotNil(t, entry.Job)
	entry.Job.Run()

	require.Len(t, seen, 1)
	assert.Contains(t, seen[0].Error(), "produced no result")
}
