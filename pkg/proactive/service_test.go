package proactive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rafiq-ai/rafiq/pkg/graph"
)

func TestSameDayMatchesCalendarDate(t *testing.T) {
	a := time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
	b := time.Date(2026, 7, 31, 23, 0, 0, 0, time.UTC)
	assert.True(t, sameDay(a, b))
}

func TestSameDayRejectsDifferentDate(t *testing.T) {
	a := time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
	b := time.Date(2026, 8, 1, 0, 1, 0, 0, time.UTC)
	assert.False(t, sameDay(a, b))
}

func TestTodayRemindersFiltersToCurrentDay(t *testing.T) {
	now := time.Now().UTC()
	due := []graph.Reminder{
		{Title: "today", DueDate: now},
		{Title: "yesterday", DueDate: now.AddDate(0, 0, -1)},
	}
	got := todayReminders(due)
	assert.Len(t, got, 1)
	assert.Equal(t, "today", got[0].Title)
}

func TestDueWithinFiltersToGivenDay(t *testing.T) {
	target := time.Now().UTC().AddDate(0, 0, 1)
	reminders := []graph.Reminder{
		{Title: "tomorrow", DueDate: target},
		{Title: "today", DueDate: time.Now().UTC()},
	}
	got := dueWithin(reminders, target)
	assert.Len(t, got, 1)
	assert.Equal(t, "tomorrow", got[0].Title)
}
