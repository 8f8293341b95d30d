package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketnerd/internal/campaign"
	"marketnerd/internal/session"
)

func TestParseScripts(t *testing.T) {
	scripts, err := parseScripts([]byte(`
- ["promote my cars to kids", "instagram", "$500"]
- ["sell vinyl records"]
`))
	require.NoError(t, err)
	require.Len(t, scripts, 2)
	assert.Equal(t, []string{"promote my cars to kids", "instagram", "$500"}, scripts[0])
	assert.Equal(t, []string{"sell vinyl records"}, scripts[1])
}

func TestParseScripts_Invalid(t *testing.T) {
	_, err := parseScripts([]byte("not: a: list"))
	assert.Error(t, err)

	_, err = parseScripts([]byte("[]"))
	assert.ErrorContains(t, err, "empty")

	_, err = parseScripts([]byte("- []"))
	assert.ErrorContains(t, err, "script 1 is empty")
}

func TestDescribeResult(t *testing.T) {
	ready := &session.TurnResult{
		Type: session.TurnReady,
		Request: &campaign.Request{
			Product:  "cars",
			Audience: "kids",
			Channels: []string{"Instagram"},
		},
	}
	assert.Contains(t, describeResult(ready), "cars -> kids")

	failed := &session.TurnResult{Type: session.TurnFailed, Reason: "corrupted history"}
	assert.Contains(t, describeResult(failed), "corrupted history")

	question := &session.TurnResult{Type: session.TurnQuestion, Question: "What channels?"}
	assert.Contains(t, describeResult(question), "What channels?")
}
