package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/docfields/internal/common"
)

const requestIDHeader = "x-request-id"

// NewGRPCServer builds a server with the extraction and health services.
func NewGRPCServer(svc ExtractionServer, logger *slog.Logger) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(requestLogger(logger)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	RegisterExtractionServer(s, svc)
	return s, hs
}

// requestLogger tags every call with a request id, taken from metadata when
// the client sent one, and logs its outcome.
func requestLogger(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(requestIDHeader); len(v) > 0 {
				requestID = v[0]
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		reqLogger := logger.With("request_id", requestID, "method", info.FullMethod)
		ctx = common.WithRequestID(ctx, requestID)
		ctx = common.WithLogger(ctx, reqLogger)

		resp, err := handler(ctx, req)
		if err != nil {
			reqLogger.Warn("grpc.request.failed", "code", status.Code(err).String(), "elapsed_ms", time.Since(start).Milliseconds(), "err", err)
			return resp, err
		}
		reqLogger.Info("grpc.request.ok", "elapsed_ms", time.Since(start).Milliseconds())
		return resp, nil
	}
}
