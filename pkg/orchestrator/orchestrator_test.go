package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafiq-ai/rafiq/pkg/llmgateway"
)

func TestParseTimeAcceptsRFC3339(t *testing.T) {
	got, err := parseTime("2026-08-01T09:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Year())
}

func TestParseTimeAcceptsDateOnly(t *testing.T) {
	got, err := parseTime("2026-08-01")
	require.NoError(t, err)
	assert.Equal(t, time.August, got.Month())
}

func TestParseTimeEmptyIsZero(t *testing.T) {
	got, err := parseTime("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	_, err := parseTime("not a date")
	assert.Error(t, err)
}

func TestFuzzyMatchIdenticalTitles(t *testing.T) {
	assert.Equal(t, 1.0, fuzzyMatch("Buy groceries", "buy groceries"))
}

func TestFuzzyMatchPartialOverlap(t *testing.T) {
	score := fuzzyMatch("buy milk and eggs", "buy milk")
	assert.Greater(t, score, 0.3)
	assert.Less(t, score, 1.0)
}

func TestFuzzyMatchNoOverlap(t *testing.T) {
	assert.Equal(t, 0.0, fuzzyMatch("buy milk", "call ahmad"))
}

func TestStripOWUIGarbageRemovesToolMarkers(t *testing.T) {
	got := stripOWUIGarbage("hello <tool_call>{\"name\":\"x\"}</tool_call> world")
	assert.NotContains(t, got, "<tool_call>")
	assert.Contains(t, got, "hello")
	assert.Contains(t, got, "world")
}

func TestStableOrderSortsToCatalogDefinitionOrder(t *testing.T) {
	c := &Catalog{index: map[string]int{"b": 1, "a": 0}}
	calls := []llmgateway.ToolCall{{Name: "b", ID: "1"}, {Name: "a", ID: "2"}}
	out := stableOrder(c, calls)
	assert.Equal(t, "a", out[0].Name)
	assert.Equal(t, "b", out[1].Name)
}

func TestMarshalResultProducesValidJSON(t *testing.T) {
	got := marshalResult(ok("Task", "abc", "done"))
	assert.Contains(t, got, `"entity_id":"abc"`)
}
