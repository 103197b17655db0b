package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/danielpatrickdp/paradox-engine/internal/logging"
	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
	"github.com/danielpatrickdp/paradox-engine/internal/registry"
	"github.com/danielpatrickdp/paradox-engine/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to paradox.db")
	view := flag.String("view", "memories", "memories | genealogy | provenance")
	last := flag.Int("last", 20, "show N most recent rows")
	paradoxID := flag.String("paradox", "", "show single archived paradox detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/paradox.db [--view memories|genealogy|provenance] [--last N] [--paradox id] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *paradoxID != "" {
		err = runDetailMode(st, *paradoxID, *jsonOut)
	} else {
		switch *view {
		case "memories":
			err = runMemoriesMode(st, *last, *jsonOut)
		case "genealogy":
			err = runGenealogyMode(st, *last, *jsonOut)
		case "provenance":
			err = runProvenanceMode(st, *last, *jsonOut)
		default:
			err = fmt.Errorf("unknown view %q", *view)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region memories

type memoryRow struct {
	Hash           string  `json:"hash"`
	Path           string  `json:"resolution_path"`
	Baseline       float64 `json:"baseline"`
	FinalCoherence float64 `json:"final_coherence"`
	Delta          float64 `json:"delta"`
	Symbol         string  `json:"symbol"`
	Pair           string  `json:"pair"`
	Time           string  `json:"time"`
}

func runMemoriesMode(st *store.Store, last int, jsonOut bool) error {
	mems, err := st.LoadMemories()
	if err != nil {
		return err
	}
	if len(mems) == 0 {
		fmt.Fprintln(os.Stderr, "no memories found")
		return nil
	}
	// LoadMemories is oldest first; keep the tail.
	if last > 0 && len(mems) > last {
		mems = mems[len(mems)-last:]
	}

	rows := make([]memoryRow, len(mems))
	for i, m := range mems {
		rows[i] = memoryRow{
			Hash:           m.ParadoxHash,
			Path:           m.ResolutionPath,
			Baseline:       m.BaselineCoherence,
			FinalCoherence: m.FinalCoherence,
			Delta:          m.CoherenceDelta,
			Symbol:         m.SynthesisSymbol,
			Pair:           pair(m.Thesis, m.Antithesis),
			Time:           time.UnixMilli(m.TimestampMs).UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-12s  %-10s  %8s  %8s  %8s  %-20s  %s\n",
		"Hash", "Path", "Baseline", "Final", "Delta", "Time", "Pair")
	fmt.Printf("%-12s+-%-10s+-%8s+-%8s+-%8s+-%-20s+-%s\n",
		"------------", "----------", "--------", "--------", "--------", "--------------------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-12s  %-10s  %8.4f  %8.4f  %+8.4f  %-20s  %s\n",
			shortID(r.Hash), r.Path, r.Baseline, r.FinalCoherence, r.Delta, r.Time, r.Pair)
	}
	return nil
}

// #endregion memories

// #region genealogy

type genealogyRow struct {
	ParadoxID  string  `json:"paradox_id"`
	State      string  `json:"state"`
	Attempts   int     `json:"attempts"`
	BestGate   float64 `json:"best_phi_gate"`
	Tension    float64 `json:"tension_score"`
	Pair       string  `json:"pair"`
	ArchivedAt string  `json:"archived_at"`
}

func runGenealogyMode(st *store.Store, last int, jsonOut bool) error {
	entries, err := st.LoadGenealogy(last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no archived paradoxes found")
		return nil
	}

	rows := make([]genealogyRow, len(entries))
	for i, e := range entries {
		rows[i] = genealogyRow{
			ParadoxID:  e.Record.ParadoxID,
			State:      string(e.Record.CurrentState),
			Attempts:   len(e.Record.ResolutionAttempts),
			BestGate:   e.Record.BestPhiGate(),
			Tension:    e.Record.TensionScore,
			Pair:       pair(e.Record.Thesis, e.Record.Antithesis),
			ArchivedAt: e.ArchivedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-12s  %-12s  %8s  %8s  %7s  %-20s  %s\n",
		"Paradox", "State", "Attempts", "Best", "Tension", "Archived", "Pair")
	fmt.Printf("%-12s+-%-12s+-%8s+-%8s+-%7s+-%-20s+-%s\n",
		"------------", "------------", "--------", "--------", "-------", "--------------------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-12s  %-12s  %8d  %8.4f  %7.1f  %-20s  %s\n",
			shortID(r.ParadoxID), r.State, r.Attempts, r.BestGate, r.Tension, r.ArchivedAt, r.Pair)
	}
	return nil
}

func runDetailMode(st *store.Store, paradoxID string, jsonOut bool) error {
	entries, err := st.LoadGenealogy(0)
	if err != nil {
		return err
	}
	var found *registry.GenealogyEntry
	for i := range entries {
		if entries[i].Record.ParadoxID == paradoxID || strings.HasPrefix(entries[i].Record.ParadoxID, paradoxID) {
			found = &entries[i]
			break
		}
	}
	if found == nil {
		return fmt.Errorf("paradox %s not in genealogy", paradoxID)
	}
	if jsonOut {
		return printJSON(found)
	}

	rec := found.Record
	fmt.Printf("Paradox:    %s\n", rec.ParadoxID)
	fmt.Printf("Thesis:     %s\n", rec.Thesis)
	fmt.Printf("Antithesis: %s\n", rec.Antithesis)
	fmt.Printf("State:      %s\n", rec.CurrentState)
	fmt.Printf("Tension:    %.1f\n", rec.TensionScore)
	fmt.Printf("Created:    %s\n", rec.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Printf("Archived:   %s\n", found.ArchivedAt.UTC().Format(time.RFC3339))

	fmt.Printf("\nAttempts:\n")
	for i, a := range rec.ResolutionAttempts {
		fmt.Printf("  %2d  %-9s  phiGate=%.4f  %-9s  success=%v\n", i+1, a.Strategy, a.PhiGate, a.ResolutionPath, a.Success)
	}

	if syn := rec.Synthesis; syn != nil {
		fmt.Printf("\nSynthesis:\n")
		fmt.Printf("  Type:      %s\n", syn.Type)
		fmt.Printf("  Overlay:   %s\n", strings.Join(syn.Overlay, " "))
		fmt.Printf("  Statement: %s\n", syn.Statement)
		fmt.Printf("  Hash:      %s\n", syn.ContentHash)
		ok, err := paradox.Verify(rec.Input, *syn)
		switch {
		case err != nil:
			fmt.Printf("  Verified:  error (%v)\n", err)
		default:
			fmt.Printf("  Verified:  %v\n", ok)
		}
	}
	return nil
}

// #endregion genealogy

// #region provenance

func runProvenanceMode(st *store.Store, last int, jsonOut bool) error {
	entries, err := logging.ListDecisions(st.DB(), last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no provenance entries found")
		return nil
	}
	if jsonOut {
		return printJSON(entries)
	}

	fmt.Printf("%-20s  %-8s  %-12s  %-12s  %-12s  %s\n",
		"Time", "Stage", "Decision", "Paradox", "Hash", "Reason")
	fmt.Printf("%-20s+-%-8s+-%-12s+-%-12s+-%-12s+-%s\n",
		"--------------------", "--------", "------------", "------------", "------------", "--------------------")
	for _, e := range entries {
		fmt.Printf("%-20s  %-8s  %-12s  %-12s  %-12s  %s\n",
			e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"), e.Stage, e.Decision,
			shortID(e.ParadoxID), shortID(e.ContentHash), e.Reason)
	}
	return nil
}

// #endregion provenance

// #region helpers

func pair(thesis, antithesis string) string {
	return paradox.Excerpt(thesis, 24) + " / " + paradox.Excerpt(antithesis, 24)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// #endregion helpers
