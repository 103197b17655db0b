package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/paradox-engine/internal/registry"
	"github.com/danielpatrickdp/paradox-engine/internal/replay"
	"github.com/danielpatrickdp/paradox-engine/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to paradox.db")
	last := flag.Int("last", 4, "number of most recent archived paradoxes to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	expect := flag.Bool("expect-states", false, "record single-attempt states as expectations")
	archive := flag.Bool("archive", true, "append a final archive step")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--last N] [--expect-states]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *outPath, *expect, *archive); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath string, last int, outPath string, expect, archive bool) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	entries, err := st.LoadGenealogy(last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no archived paradoxes in genealogy")
	}

	f := buildFixture(entries, expect, archive)
	f.Description = fmt.Sprintf("exported %d archived paradoxes from %s", len(entries), dbPath)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	fmt.Printf("wrote %d steps to %s\n", len(f.Steps), outPath)
	return nil
}

// buildFixture turns genealogy entries into score steps. Only records with a
// single recorded attempt carry a state expectation, since batch attempts
// are not part of the export.
func buildFixture(entries []registry.GenealogyEntry, expect, archive bool) replay.Fixture {
	var f replay.Fixture
	for i, e := range entries {
		id := fmt.Sprintf("g%d", i+1)
		f.Steps = append(f.Steps, replay.FixtureStep{StepID: id, Input: e.Record.Input})

		want := replay.FixtureExpectedResult{StepID: id}
		if expect && len(e.Record.ResolutionAttempts) == 1 {
			want.State = string(e.Record.CurrentState)
			if e.Record.Synthesis != nil {
				want.Category = string(e.Record.Synthesis.Type)
			}
		}
		f.ExpectedResults = append(f.ExpectedResults, want)
	}
	if archive {
		f.Steps = append(f.Steps, replay.FixtureStep{StepID: "archive", Action: replay.ActionArchive})
		f.ExpectedResults = append(f.ExpectedResults, replay.FixtureExpectedResult{StepID: "archive"})
	}
	return f
}

// #endregion extract
