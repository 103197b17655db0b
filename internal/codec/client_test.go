package codec

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/danielpatrickdp/paradox-engine/internal/engine"
	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
)

// #region mock
// mockConn answers Invoke with canned JSON per method, round-tripping the
// request through the codec the way a real connection would.
type mockConn struct {
	responses map[string]any
	err       error

	lastMethod string
	lastBody   []byte
}

func (m *mockConn) Invoke(_ context.Context, method string, args, reply any, _ ...grpc.CallOption) error {
	m.lastMethod = method
	body, err := JSONCodec{}.Marshal(args)
	if err != nil {
		return err
	}
	m.lastBody = body
	if m.err != nil {
		return m.err
	}
	data, err := JSONCodec{}.Marshal(m.responses[method])
	if err != nil {
		return err
	}
	return JSONCodec{}.Unmarshal(data, reply)
}

func (m *mockConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("streams not supported")
}

// #endregion mock

// #region codec-tests
func TestJSONCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(Name)
	if c == nil {
		t.Fatal("expected json codec to be registered")
	}
	if c.Name() != "json" {
		t.Fatalf("expected name json, got %s", c.Name())
	}
}

func TestJSONCodecPlainStruct(t *testing.T) {
	in := BatchResolveRequest{ParadoxIDs: []string{"a", "b"}, Strategy: "collapse"}
	data, err := JSONCodec{}.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"paradoxIds":["a","b"]`) {
		t.Fatalf("unexpected payload %s", data)
	}

	var out BatchResolveRequest
	if err := (JSONCodec{}).Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Strategy != "collapse" || len(out.ParadoxIDs) != 2 {
		t.Fatalf("unexpected decode %+v", out)
	}
}

func TestJSONCodecProtoMessage(t *testing.T) {
	msg := &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}
	data, err := JSONCodec{}.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), "SERVING") {
		t.Fatalf("expected protojson enum name, got %s", data)
	}

	var out healthpb.HealthCheckResponse
	if err := (JSONCodec{}).Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Status != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", out.Status)
	}
}

func TestJSONCodecUnmarshalError(t *testing.T) {
	var out engine.Stats
	if err := (JSONCodec{}).Unmarshal([]byte("{bad"), &out); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

// #endregion codec-tests

// #region constructor-tests
func TestNewParadoxClientLazyDial(t *testing.T) {
	client, err := NewParadoxClient("localhost:0")
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestCloseWithoutOwnedConn(t *testing.T) {
	client := NewParadoxClientWithConn(&mockConn{})
	if err := client.Close(); err != nil {
		t.Fatalf("expected nil close for injected conn, got %v", err)
	}
}

// #endregion constructor-tests

// #region call-tests
func TestScoreCall(t *testing.T) {
	conn := &mockConn{responses: map[string]any{
		MethodScore: engine.ScoreResult{ParadoxID: "p1", ResolutionState: "synthesized"},
	}}
	client := NewParadoxClientWithConn(conn)

	res, err := client.Score(context.Background(), paradox.Input{SessionID: "s", Thesis: "a", Antithesis: "b"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.ParadoxID != "p1" || res.ResolutionState != "synthesized" {
		t.Fatalf("unexpected result %+v", res)
	}
	if conn.lastMethod != "/paradox.v1.ParadoxService/Score" {
		t.Fatalf("unexpected method %s", conn.lastMethod)
	}
	var sent map[string]any
	if err := json.Unmarshal(conn.lastBody, &sent); err != nil {
		t.Fatalf("request body not JSON: %v", err)
	}
	if sent["sessionId"] != "s" || sent["thesis"] != "a" {
		t.Fatalf("unexpected request body %s", conn.lastBody)
	}
}

func TestQueryMemoryCall(t *testing.T) {
	conn := &mockConn{responses: map[string]any{
		MethodQueryMemory: engine.MemoryQueryResult{Success: false, Error: "unknown query type", QueryType: "nope"},
	}}
	res, err := NewParadoxClientWithConn(conn).QueryMemory(context.Background(), engine.MemoryQuery{QueryType: "nope"})
	if err != nil {
		t.Fatalf("QueryMemory: %v", err)
	}
	if res.Success || res.Error == "" {
		t.Fatalf("expected structured failure, got %+v", res)
	}
}

func TestBatchArchiveStatsCalls(t *testing.T) {
	conn := &mockConn{responses: map[string]any{
		MethodBatchResolve:    engine.BatchResult{Results: []engine.BatchItem{{ParadoxID: "p1", Status: engine.BatchResolved}}, QuantumCoherence: 0.7},
		MethodArchiveResolved: engine.ArchiveResult{Archived: 2, Remaining: 1, GenealogySize: 4},
		MethodStats:           engine.Stats{ActiveParadoxes: 3, MemorySize: 9},
	}}
	client := NewParadoxClientWithConn(conn)
	ctx := context.Background()

	batch, err := client.BatchResolve(ctx, "s", []string{"p1"}, "transcend")
	if err != nil {
		t.Fatalf("BatchResolve: %v", err)
	}
	if len(batch.Results) != 1 || batch.Results[0].Status != engine.BatchResolved {
		t.Fatalf("unexpected batch %+v", batch)
	}
	if !strings.Contains(string(conn.lastBody), `"strategy":"transcend"`) {
		t.Fatalf("strategy not sent: %s", conn.lastBody)
	}

	arch, err := client.ArchiveResolved(ctx)
	if err != nil || arch.Archived != 2 || arch.GenealogySize != 4 {
		t.Fatalf("unexpected archive %+v err=%v", arch, err)
	}

	stats, err := client.Stats(ctx)
	if err != nil || stats.ActiveParadoxes != 3 || stats.MemorySize != 9 {
		t.Fatalf("unexpected stats %+v err=%v", stats, err)
	}
}

func TestCallErrorsAreWrapped(t *testing.T) {
	conn := &mockConn{err: status.Error(codes.InvalidArgument, "thesis is required")}
	client := NewParadoxClientWithConn(conn)

	_, err := client.Score(context.Background(), paradox.Input{})
	if err == nil || !strings.Contains(err.Error(), "score rpc") {
		t.Fatalf("expected wrapped score error, got %v", err)
	}
	if status.Code(errors.Unwrap(err)) != codes.InvalidArgument {
		t.Fatalf("expected status to survive wrapping, got %v", status.Code(errors.Unwrap(err)))
	}

	if _, err := client.Stats(context.Background()); err == nil {
		t.Fatal("expected stats error")
	}
}

// #endregion call-tests
