package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Config          FixtureConfig           `json:"config"`
	Steps           []FixtureStep           `json:"steps"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureStep mirrors replay.Step with JSON tags.
type FixtureStep struct {
	StepID string        `json:"step_id"`
	Action string        `json:"action,omitempty"`
	Input  paradox.Input `json:"input"`
}

// FixtureExpectedResult captures the expected outcome per step. Empty
// fields are not checked.
type FixtureExpectedResult struct {
	StepID   string `json:"step_id"`
	State    string `json:"state,omitempty"`
	Category string `json:"category,omitempty"`
	Archived *int   `json:"archived,omitempty"`
}

// FixtureConfig overrides the memory bank settings for a run.
type FixtureConfig struct {
	Memory *FixtureMemoryConfig `json:"memory,omitempty"`
}

// FixtureMemoryConfig mirrors memory.BankConfig with JSON tags.
type FixtureMemoryConfig struct {
	Capacity            int     `json:"capacity"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	MaxSimilar          int     `json:"max_similar"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToSteps converts the fixture steps to domain steps.
func (f *Fixture) ToSteps() []Step {
	steps := make([]Step, len(f.Steps))
	for i, s := range f.Steps {
		steps[i] = Step{StepID: s.StepID, Action: s.Action, Input: s.Input}
	}
	return steps
}

// ToReplayConfig converts a FixtureConfig to a domain ReplayConfig. Unset
// or non-positive values keep their defaults.
func (fc *FixtureConfig) ToReplayConfig() ReplayConfig {
	cfg := DefaultReplayConfig()
	if m := fc.Memory; m != nil {
		if m.Capacity > 0 {
			cfg.BankConfig.Capacity = m.Capacity
		}
		if m.SimilarityThreshold > 0 {
			cfg.BankConfig.SimilarityThreshold = m.SimilarityThreshold
		}
		if m.MaxSimilar > 0 {
			cfg.BankConfig.MaxSimilar = m.MaxSimilar
		}
	}
	return cfg
}

// Check compares results against the fixture's expectations and returns
// one message per deviation.
func (f *Fixture) Check(results []ReplayResult) []string {
	var problems []string
	if len(results) != len(f.ExpectedResults) {
		problems = append(problems, fmt.Sprintf("expected %d results, got %d", len(f.ExpectedResults), len(results)))
		return problems
	}
	for i, want := range f.ExpectedResults {
		got := results[i]
		if got.StepID != want.StepID {
			problems = append(problems, fmt.Sprintf("step %d: expected step_id=%s, got %s", i, want.StepID, got.StepID))
		}
		if got.Err != "" {
			problems = append(problems, fmt.Sprintf("step %d (%s): error %s", i, want.StepID, got.Err))
			continue
		}
		if want.State != "" && string(got.State) != want.State {
			problems = append(problems, fmt.Sprintf("step %d (%s): expected state=%s, got %s (phiGate %.4f)", i, want.StepID, want.State, got.State, got.PhiGate))
		}
		if want.Category != "" && string(got.Category) != want.Category {
			problems = append(problems, fmt.Sprintf("step %d (%s): expected category=%s, got %s", i, want.StepID, want.Category, got.Category))
		}
		if want.Archived != nil && got.Archived != *want.Archived {
			problems = append(problems, fmt.Sprintf("step %d (%s): expected archived=%d, got %d", i, want.StepID, *want.Archived, got.Archived))
		}
	}
	return problems
}

// #endregion fixture-loader
