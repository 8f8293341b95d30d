package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunScripts(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, nil)
	pool := NewPool(mgr, 3)

	scripts := [][]string{
		{"promote my cars to kids", "instagram"},
		{"promote my sneakers to teens", "tiktok and instagram"},
		{"promote my candles to parents", "email"},
	}

	results, err := pool.RunScripts(ctx, scripts)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, res := range results {
		require.NotNil(t, res, "script %d", i)
		assert.Equal(t, TurnReady, res.Type, "script %d", i)
		require.NotNil(t, res.Request, "script %d", i)
	}
	assert.Equal(t, "cars", results[0].Request.Product)
	assert.Equal(t, []string{"TikTok", "Instagram"}, results[1].Request.Channels)
	assert.Equal(t, []string{"Email"}, results[2].Request.Channels)

	s := mgr.Stats()
	assert.Equal(t, 3, s.Created)
	assert.Equal(t, 3, s.Completed)
}

func TestPool_ShortScriptStopsAtLastResult(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, nil)
	pool := NewPool(mgr, 2)

	results, err := pool.RunScripts(ctx, [][]string{{"hello there"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, TurnQuestion, results[0].Type)
}

func TestPool_EmptyScriptFails(t *testing.T) {
	mgr := newTestManager(t, nil)
	pool := NewPool(mgr, 2)

	_, err := pool.RunScripts(context.Background(), [][]string{{}})
	assert.Error(t, err)
}
