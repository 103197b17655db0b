package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danielpatrickdp/paradox-engine/internal/engine"
	"github.com/danielpatrickdp/paradox-engine/internal/gate"
	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
	"github.com/danielpatrickdp/paradox-engine/internal/registry"
)

func TestPrintScore(t *testing.T) {
	var buf bytes.Buffer
	printScore(&buf, engine.ScoreResult{
		ParadoxID:       "p-1",
		ResolutionState: registry.StateTranscended,
		Synthesis: paradox.Synthesis{
			Type:           paradox.CategoryTranscendent,
			Overlay:        []string{"spiral", "infinity"},
			Statement:      "both hold",
			ContentHash:    "abc",
			ResolutionPath: gate.PathTranscend,
			Metrics:        paradox.Metrics{PhiGate: 0.97},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "p-1 (transcended)")
	assert.Contains(t, out, "spiral infinity")
	assert.Contains(t, out, "phiGate   0.9700")
}

func TestPrintBatch(t *testing.T) {
	var buf bytes.Buffer
	printBatch(&buf, engine.BatchResult{
		Results: []engine.BatchItem{
			{ParadoxID: "a", Status: engine.BatchResolved, PhiGate: 0.9},
			{ParadoxID: "b", Status: engine.BatchSkipped, Reason: "paradox not found"},
		},
		QuantumCoherence: 0.7,
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "phiGate=0.9000")
	assert.NotContains(t, lines[1], "phiGate")
	assert.Contains(t, lines[1], "paradox not found")
	assert.Equal(t, "coherence 0.7000", lines[2])
}

func TestClientCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "score", "query", "batch", "archive", "stats"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
