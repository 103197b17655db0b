package transport

// #region imports
import (
	"context"
	"net"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/danielpatrickdp/paradox-engine/internal/codec"
	"github.com/danielpatrickdp/paradox-engine/internal/engine"
	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
)

// #endregion

// #region server

// Server hosts the paradox service and the standard health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger *zap.Logger
}

// NewServer registers svc on a fresh gRPC server.
func NewServer(svc ParadoxService, logger *zap.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryInterceptor(logger))}, opts...)
	gs := grpc.NewServer(opts...)
	gs.RegisterService(&ServiceDesc, NewHandler(svc))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(codec.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)

	return &Server{grpc: gs, health: hs, logger: logger}
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("serving", zap.String("addr", lis.Addr().String()), zap.String("service", codec.ServiceName))
	return s.grpc.Serve(lis)
}

// Stop marks the service NOT_SERVING and drains in-flight calls, forcing a
// hard stop once timeout elapses. A zero timeout waits indefinitely.
func (s *Server) Stop(timeout time.Duration) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	if timeout <= 0 {
		<-done
		return
	}
	select {
	case <-done:
	case <-time.After(timeout):
		s.logger.Warn("graceful stop timed out, forcing", zap.Duration("timeout", timeout))
		s.grpc.Stop()
		<-done
	}
}

// #endregion

// #region interceptor

// UnaryInterceptor recovers panics, logs failures with enough request
// context to reproduce them, and masks unexpected errors as Internal.
func UnaryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				fields := append(requestFields(req),
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				logger.Error("rpc panicked", fields...)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()

		resp, err = next(ctx, req)
		elapsed := time.Since(start)
		if err == nil {
			logger.Debug("rpc ok", zap.String("method", info.FullMethod), zap.Duration("elapsed", elapsed))
			return resp, nil
		}

		if st, ok := status.FromError(err); ok {
			logger.Info("rpc rejected",
				zap.String("method", info.FullMethod),
				zap.String("code", st.Code().String()),
				zap.String("message", st.Message()))
			return nil, err
		}

		fields := append(requestFields(req),
			zap.String("method", info.FullMethod),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		logger.Error("rpc failed", fields...)
		return nil, status.Error(codes.Internal, "internal error")
	}
}

// requestFields extracts the session and an input excerpt from known requests.
func requestFields(req any) []zap.Field {
	switch r := req.(type) {
	case *paradox.Input:
		return []zap.Field{
			zap.String("session", r.SessionID),
			zap.String("input", paradox.Excerpt(r.Thesis, 60)+" | "+paradox.Excerpt(r.Antithesis, 60)),
		}
	case *codec.BatchResolveRequest:
		return []zap.Field{
			zap.String("session", r.SessionID),
			zap.Int("paradoxes", len(r.ParadoxIDs)),
			zap.String("strategy", r.Strategy),
		}
	case *engine.MemoryQuery:
		return []zap.Field{zap.String("queryType", string(r.QueryType))}
	}
	return nil
}

// #endregion
