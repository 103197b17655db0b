package codec

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/danielpatrickdp/paradox-engine/internal/engine"
	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
)

// #region client-struct
// ParadoxClient calls the paradox gRPC service with JSON payloads.
type ParadoxClient struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor
// NewParadoxClient connects to a paradoxd server.
func NewParadoxClient(addr string) (*ParadoxClient, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(Name)),
	)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &ParadoxClient{conn: conn, cc: conn}, nil
}

// NewParadoxClientWithConn creates a client over an existing connection.
// Used for in-process servers and tests.
func NewParadoxClientWithConn(cc grpc.ClientConnInterface) *ParadoxClient {
	return &ParadoxClient{cc: cc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection if the client owns one.
func (c *ParadoxClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region calls
// Score scores one paradox.
func (c *ParadoxClient) Score(ctx context.Context, in paradox.Input) (engine.ScoreResult, error) {
	var out engine.ScoreResult
	if err := c.invoke(ctx, MethodScore, &in, &out); err != nil {
		return engine.ScoreResult{}, fmt.Errorf("score rpc: %w", err)
	}
	return out, nil
}

// QueryMemory runs a memory-bank query.
func (c *ParadoxClient) QueryMemory(ctx context.Context, q engine.MemoryQuery) (engine.MemoryQueryResult, error) {
	var out engine.MemoryQueryResult
	if err := c.invoke(ctx, MethodQueryMemory, &q, &out); err != nil {
		return engine.MemoryQueryResult{}, fmt.Errorf("query memory rpc: %w", err)
	}
	return out, nil
}

// BatchResolve re-scores a set of paradoxes under strategy.
func (c *ParadoxClient) BatchResolve(ctx context.Context, sessionID string, ids []string, strategy string) (engine.BatchResult, error) {
	req := BatchResolveRequest{SessionID: sessionID, ParadoxIDs: ids, Strategy: strategy}
	var out engine.BatchResult
	if err := c.invoke(ctx, MethodBatchResolve, &req, &out); err != nil {
		return engine.BatchResult{}, fmt.Errorf("batch resolve rpc: %w", err)
	}
	return out, nil
}

// ArchiveResolved archives every terminal paradox.
func (c *ParadoxClient) ArchiveResolved(ctx context.Context) (engine.ArchiveResult, error) {
	var out engine.ArchiveResult
	if err := c.invoke(ctx, MethodArchiveResolved, &ArchiveRequest{}, &out); err != nil {
		return engine.ArchiveResult{}, fmt.Errorf("archive rpc: %w", err)
	}
	return out, nil
}

// Stats reads the aggregate engine state.
func (c *ParadoxClient) Stats(ctx context.Context) (engine.Stats, error) {
	var out engine.Stats
	if err := c.invoke(ctx, MethodStats, &StatsRequest{}, &out); err != nil {
		return engine.Stats{}, fmt.Errorf("stats rpc: %w", err)
	}
	return out, nil
}

func (c *ParadoxClient) invoke(ctx context.Context, method string, req, resp any) error {
	return c.cc.Invoke(ctx, method, req, resp, grpc.CallContentSubtype(Name))
}

// #endregion calls
