package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
	"github.com/danielpatrickdp/paradox-engine/internal/replay"
	"github.com/danielpatrickdp/paradox-engine/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to paradox.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/paradox.db")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-mode

// runDBMode recomputes the content hash of every archived synthesis from
// its stored input and reports any record whose hash no longer matches.
func runDBMode(dbPath string) int {
	st, err := store.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer st.Close()

	entries, err := st.LoadGenealogy(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load genealogy: %v\n", err)
		return 2
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no archived paradoxes found in genealogy")
		return 2
	}

	fmt.Printf("%-36s| %-12s| %-9s| %s\n", "Paradox", "State", "Phi Gate", "Hash")
	fmt.Printf("%-36s+%-13s+%-10s+%s\n",
		"------------------------------------", "-------------", "----------", "------")

	bad := 0
	for _, e := range entries {
		rec := e.Record
		result := "OK"
		gateValue := 0.0
		if rec.Synthesis == nil {
			result = "MISSING"
			bad++
		} else {
			gateValue = rec.Synthesis.Metrics.PhiGate
			ok, err := paradox.Verify(rec.Input, *rec.Synthesis)
			switch {
			case err != nil:
				result = "ERROR " + err.Error()
				bad++
			case !ok:
				result = "DIFF"
				bad++
			}
		}
		fmt.Printf("%-36s| %-12s| %-9.4f| %s\n", rec.ParadoxID, rec.CurrentState, gateValue, result)
	}

	fmt.Printf("\nSummary: %d total, %d verified, %d diverge\n", len(entries), len(entries)-bad, bad)
	if bad > 0 {
		return 1
	}
	return 0
}

// #endregion db-mode

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	ctx := context.Background()
	steps := f.ToSteps()
	config := f.Config.ToReplayConfig()

	results, final, err := replay.Replay(ctx, steps, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}
	printResults(results)

	exitCode := 0
	if problems := f.Check(results); len(problems) > 0 {
		fmt.Println("\nExpectation mismatches:")
		for _, p := range problems {
			fmt.Printf("  %s\n", p)
		}
		exitCode = 1
	}

	report, err := replay.Verify(ctx, steps, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		return 2
	}
	if !report.Deterministic() {
		fmt.Println("\nNon-deterministic steps:")
		for _, m := range report.Mismatches {
			fmt.Printf("  %s: %s != %s\n", m.StepID, shortHash(m.First), shortHash(m.Second))
		}
		exitCode = 1
	}

	s := replay.Summarize(results, final)
	fmt.Printf("\nSummary: %d steps, %d resolving, %d synthesized, %d transcended, %d archived, %d errors\n",
		s.TotalSteps, s.Resolving, s.Synthesized, s.Transcended, s.Archived, s.Errors)
	fmt.Printf("Final:   %d active, %d memories, %d archived, coherence %.4f, deterministic %v\n",
		s.FinalStats.ActiveParadoxes, s.FinalStats.MemorySize, s.FinalStats.GenealogySize,
		s.FinalStats.QuantumCoherence, report.Deterministic())
	return exitCode
}

// #endregion fixture-mode

// #region output

func printResults(results []replay.ReplayResult) {
	fmt.Printf("%-8s| %-8s| %-12s| %-13s| %-9s| %s\n", "Step", "Action", "State", "Category", "Phi Gate", "Hash")
	fmt.Printf("%-8s+%-9s+%-13s+%-14s+%-10s+%s\n",
		"--------", "---------", "-------------", "--------------", "----------", "------------")
	for _, r := range results {
		if r.Err != "" {
			fmt.Printf("%-8s| %-8s| ERROR %s\n", r.StepID, r.Action, r.Err)
			continue
		}
		if r.Action == replay.ActionArchive {
			fmt.Printf("%-8s| %-8s| archived %d\n", r.StepID, r.Action, r.Archived)
			continue
		}
		fmt.Printf("%-8s| %-8s| %-12s| %-13s| %-9.4f| %s\n",
			r.StepID, r.Action, r.State, r.Category, r.PhiGate, shortHash(r.ContentHash))
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// #endregion output
