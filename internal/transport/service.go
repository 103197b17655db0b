package transport

// #region imports
import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/danielpatrickdp/paradox-engine/internal/codec"
	"github.com/danielpatrickdp/paradox-engine/internal/engine"
	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
)

// #endregion

// #region service-interface

// ParadoxService is the engine surface exposed over gRPC.
type ParadoxService interface {
	Score(ctx context.Context, in paradox.Input) (engine.ScoreResult, error)
	QueryMemory(ctx context.Context, q engine.MemoryQuery) engine.MemoryQueryResult
	BatchResolve(ctx context.Context, ids []string, strategy paradox.Strategy) engine.BatchResult
	ArchiveResolved(ctx context.Context) (engine.ArchiveResult, error)
	Stats() engine.Stats
}

// Handler is the server-side method set registered under the service
// descriptor.
type Handler interface {
	Score(ctx context.Context, req *paradox.Input) (*engine.ScoreResult, error)
	QueryMemory(ctx context.Context, req *engine.MemoryQuery) (*engine.MemoryQueryResult, error)
	BatchResolve(ctx context.Context, req *codec.BatchResolveRequest) (*engine.BatchResult, error)
	ArchiveResolved(ctx context.Context, req *codec.ArchiveRequest) (*engine.ArchiveResult, error)
	Stats(ctx context.Context, req *codec.StatsRequest) (*engine.Stats, error)
}

// #endregion

// #region handler

type handler struct {
	svc ParadoxService
}

// NewHandler adapts svc to the gRPC method set.
func NewHandler(svc ParadoxService) Handler {
	return &handler{svc: svc}
}

func (h *handler) Score(ctx context.Context, req *paradox.Input) (*engine.ScoreResult, error) {
	res, err := h.svc.Score(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &res, nil
}

func (h *handler) QueryMemory(ctx context.Context, req *engine.MemoryQuery) (*engine.MemoryQueryResult, error) {
	res := h.svc.QueryMemory(ctx, *req)
	return &res, nil
}

func (h *handler) BatchResolve(ctx context.Context, req *codec.BatchResolveRequest) (*engine.BatchResult, error) {
	strategy, err := paradox.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, toStatus(err)
	}
	res := h.svc.BatchResolve(ctx, req.ParadoxIDs, strategy)
	return &res, nil
}

func (h *handler) ArchiveResolved(ctx context.Context, _ *codec.ArchiveRequest) (*engine.ArchiveResult, error) {
	res, err := h.svc.ArchiveResolved(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &res, nil
}

func (h *handler) Stats(_ context.Context, _ *codec.StatsRequest) (*engine.Stats, error) {
	res := h.svc.Stats()
	return &res, nil
}

// toStatus maps known domain errors to gRPC codes. Anything else is left
// for the interceptor to log and mask.
func toStatus(err error) error {
	switch {
	case errors.Is(err, paradox.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	return err
}

// #endregion

// #region service-desc

// unary builds a method handler that decodes Req and routes it through the
// interceptor chain.
func unary[Req any](fullMethod string, call func(Handler, context.Context, *Req) (any, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(Handler), ctx, req)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, req, info, func(ctx context.Context, r any) (any, error) {
			return call(srv.(Handler), ctx, r.(*Req))
		})
	}
}

// ServiceDesc describes paradox.v1.ParadoxService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: codec.ServiceName,
	HandlerType: (*Handler)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Score",
			Handler: unary(codec.MethodScore, func(h Handler, ctx context.Context, r *paradox.Input) (any, error) {
				return h.Score(ctx, r)
			}),
		},
		{
			MethodName: "QueryMemory",
			Handler: unary(codec.MethodQueryMemory, func(h Handler, ctx context.Context, r *engine.MemoryQuery) (any, error) {
				return h.QueryMemory(ctx, r)
			}),
		},
		{
			MethodName: "BatchResolve",
			Handler: unary(codec.MethodBatchResolve, func(h Handler, ctx context.Context, r *codec.BatchResolveRequest) (any, error) {
				return h.BatchResolve(ctx, r)
			}),
		},
		{
			MethodName: "ArchiveResolved",
			Handler: unary(codec.MethodArchiveResolved, func(h Handler, ctx context.Context, r *codec.ArchiveRequest) (any, error) {
				return h.ArchiveResolved(ctx, r)
			}),
		},
		{
			MethodName: "Stats",
			Handler: unary(codec.MethodStats, func(h Handler, ctx context.Context, r *codec.StatsRequest) (any, error) {
				return h.Stats(ctx, r)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "paradox/v1/paradox.proto",
}

// #endregion
