package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDebtPaymentBeforeDebtSummary(t *testing.T) {
	r := New(nil)
	route, err := r.Classify(context.Background(), "I paid my debt to Ahmad")
	require.NoError(t, err)
	assert.Equal(t, RouteDebtPayment, route)
}

func TestClassifyDebtSummaryFallsBackWhenNotPayment(t *testing.T) {
	r := New(nil)
	route, err := r.Classify(context.Background(), "how much debt do I have")
	require.NoError(t, err)
	assert.Equal(t, RouteDebtSummary, route)
}

func TestClassifyInventoryDuplicatesBeforeGenericQuery(t *testing.T) {
	r := New(nil)
	route, err := r.Classify(context.Background(), "show me duplicate items in my inventory")
	require.NoError(t, err)
	assert.Equal(t, RouteInventoryDuplicates, route)
}

func TestClassifyInventoryUnusedBeforeGenericQuery(t *testing.T) {
	r := New(nil)
	route, err := r.Classify(context.Background(), "what items are unused")
	require.NoError(t, err)
	assert.Equal(t, RouteInventoryUnused, route)
}

func TestClassifyGenericInventoryQuery(t *testing.T) {
	r := New(nil)
	route, err := r.Classify(context.Background(), "show me my inventory")
	require.NoError(t, err)
	assert.Equal(t, RouteInventoryQuery, route)
}
