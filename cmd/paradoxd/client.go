package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/paradox-engine/internal/codec"
	"github.com/danielpatrickdp/paradox-engine/internal/engine"
	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
	"github.com/danielpatrickdp/paradox-engine/internal/signals"
)

// #region flags
var (
	clientAddr    string
	clientTimeout time.Duration
	jsonOutput    bool

	scoreSession    string
	scoreEmotion    []float64
	scoreDescriptor string
	scoreSync       string

	queryType  string
	queryLimit int

	batchStrategy string
)

// #endregion flags

// #region commands
var scoreCmd = &cobra.Command{
	Use:   "score [thesis] [antithesis]",
	Short: "Score a thesis/antithesis pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := paradox.Input{SessionID: scoreSession, Thesis: args[0], Antithesis: args[1]}
		if len(scoreEmotion) > 0 {
			if len(scoreEmotion) != 4 {
				return fmt.Errorf("--emotion takes 4 values (valence,arousal,dominance,entropy), got %d", len(scoreEmotion))
			}
			in.Emotion = &signals.EmotionalVector{
				Valence:   scoreEmotion[0],
				Arousal:   scoreEmotion[1],
				Dominance: scoreEmotion[2],
				Entropy:   scoreEmotion[3],
			}
		}
		if scoreDescriptor != "" || scoreSync != "" {
			in.Post = &paradox.Post{Descriptor: scoreDescriptor, TargetSync: paradox.TargetSync(scoreSync)}
		}
		return withClient(cmd, func(ctx context.Context, c *codec.ParadoxClient) (any, error) {
			return c.Score(ctx, in)
		}, printScore)
	},
}

var queryCmd = &cobra.Command{
	Use:   "query [thesis] [antithesis]",
	Short: "Query the memory bank",
	Long: `Query types: similarParadoxes, baselinePrediction (both need a pair),
memoryStats, memoryEvolution.`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := engine.MemoryQuery{QueryType: engine.QueryType(queryType), Limit: queryLimit}
		if len(args) == 2 {
			q.Thesis, q.Antithesis = args[0], args[1]
		}
		return withClient(cmd, func(ctx context.Context, c *codec.ParadoxClient) (any, error) {
			return c.QueryMemory(ctx, q)
		}, nil)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch [paradox-id...]",
	Short: "Re-attempt registered paradoxes with a strategy",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *codec.ParadoxClient) (any, error) {
			return c.BatchResolve(ctx, scoreSession, args, batchStrategy)
		}, printBatch)
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Move synthesized and transcended paradoxes into the genealogy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *codec.ParadoxClient) (any, error) {
			return c.ArchiveResolved(ctx)
		}, nil)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show service statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *codec.ParadoxClient) (any, error) {
			return c.Stats(ctx)
		}, nil)
	},
}

func addClientCommands(root *cobra.Command) {
	for _, c := range []*cobra.Command{scoreCmd, queryCmd, batchCmd, archiveCmd, statsCmd} {
		c.Flags().StringVar(&clientAddr, "addr", "", "service address (overrides server.addr)")
		c.Flags().DurationVar(&clientTimeout, "timeout", 10*time.Second, "rpc timeout")
		c.Flags().BoolVar(&jsonOutput, "json", false, "print the raw JSON response")
		root.AddCommand(c)
	}

	scoreCmd.Flags().StringVar(&scoreSession, "session", "cli", "session id")
	scoreCmd.Flags().Float64SliceVar(&scoreEmotion, "emotion", nil, "valence,arousal,dominance,entropy")
	scoreCmd.Flags().StringVar(&scoreDescriptor, "descriptor", "", "post-synthesis target descriptor")
	scoreCmd.Flags().StringVar(&scoreSync, "sync", "", "target sync: Passive, Active or Recursive")

	queryCmd.Flags().StringVar(&queryType, "type", string(engine.QueryMemoryStats), "query type")
	queryCmd.Flags().IntVar(&queryLimit, "limit", engine.DefaultEvolutionLimit, "evolution limit")

	batchCmd.Flags().StringVar(&scoreSession, "session", "cli", "session id")
	batchCmd.Flags().StringVar(&batchStrategy, "strategy", string(paradox.StrategyTranscend), "collapse, sustain or transcend")
}

// #endregion commands

// #region helpers

// withClient dials, runs call under the timeout, and prints the response
// as JSON or through the optional pretty printer.
func withClient(cmd *cobra.Command, call func(context.Context, *codec.ParadoxClient) (any, error), pretty func(io.Writer, any)) error {
	addr := cfg.Server.Addr
	if clientAddr != "" {
		addr = clientAddr
	}
	c, err := codec.NewParadoxClient(addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
	defer cancel()

	resp, err := call(ctx, c)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput || pretty == nil {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	pretty(out, resp)
	return nil
}

func printScore(w io.Writer, v any) {
	res := v.(engine.ScoreResult)
	syn := res.Synthesis
	fmt.Fprintf(w, "paradox   %s (%s)\n", res.ParadoxID, res.ResolutionState)
	fmt.Fprintf(w, "type      %s / %s / %s\n", syn.Type, syn.ResolutionPath, syn.QuantumState)
	fmt.Fprintf(w, "phiGate   %.4f  tension %.4f  opposition %.4f\n", syn.Metrics.PhiGate, syn.Metrics.Tension, syn.Metrics.Opposition)
	fmt.Fprintf(w, "overlay   %s\n", strings.Join(syn.Overlay, " "))
	fmt.Fprintf(w, "statement %s\n", syn.Statement)
	fmt.Fprintf(w, "hash      %s\n", syn.ContentHash)
}

func printBatch(w io.Writer, v any) {
	res := v.(engine.BatchResult)
	for _, item := range res.Results {
		line := fmt.Sprintf("%-36s %-8s", item.ParadoxID, item.Status)
		if item.Status != engine.BatchSkipped {
			line += fmt.Sprintf(" phiGate=%.4f", item.PhiGate)
		}
		if item.Reason != "" {
			line += " " + item.Reason
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "coherence %.4f\n", res.QuantumCoherence)
}

// #endregion helpers
