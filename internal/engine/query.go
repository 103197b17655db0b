package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/paradox-engine/internal/memory"
)

// #region query-memory

// QueryMemory answers a memory-bank query. Problems with the query itself
// are reported in the result, never as an error.
func (e *Engine) QueryMemory(ctx context.Context, q MemoryQuery) MemoryQueryResult {
	res := MemoryQueryResult{QueryType: q.QueryType}
	if err := ctx.Err(); err != nil {
		return fail(res, err.Error())
	}

	switch q.QueryType {
	case QuerySimilarParadoxes:
		if err := requirePair(q); err != nil {
			return fail(res, err.Error())
		}
		similar := e.bank.FindSimilar(q.Thesis, q.Antithesis, memory.ConfiguredThreshold)
		if q.Limit > 0 && len(similar) > q.Limit {
			similar = similar[:q.Limit]
		}
		res.Similar = similar
	case QueryMemoryStats:
		st := e.bank.Stats()
		res.Stats = &st
	case QueryBaselinePrediction:
		if err := requirePair(q); err != nil {
			return fail(res, err.Error())
		}
		pred := e.bank.Predict(q.Thesis, q.Antithesis)
		res.Prediction = &pred
	case QueryMemoryEvolution:
		limit := q.Limit
		if limit <= 0 {
			limit = DefaultEvolutionLimit
		}
		res.Evolution = e.bank.Evolution(limit)
	default:
		return fail(res, fmt.Sprintf("unknown query type %q", q.QueryType))
	}

	res.Success = true
	return res
}

func requirePair(q MemoryQuery) error {
	if strings.TrimSpace(q.Thesis) == "" || strings.TrimSpace(q.Antithesis) == "" {
		return fmt.Errorf("%s requires thesis and antithesis", q.QueryType)
	}
	return nil
}

func fail(res MemoryQueryResult, msg string) MemoryQueryResult {
	res.Success = false
	res.Error = msg
	return res
}

// #endregion query-memory
