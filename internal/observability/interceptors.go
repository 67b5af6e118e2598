package observability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"balance-schema-service/internal/observability/logging"
	"balance-schema-service/internal/observability/metrics"
)

// RequestIDHeader is the metadata key carrying a caller-supplied request ID.
const RequestIDHeader = "x-request-id"

// UnaryServerInterceptor returns a gRPC unary interceptor for metrics and logging.
func UnaryServerInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		kind := ""
		if s, ok := req.(*structpb.Struct); ok {
			kind = s.GetFields()["kind"].GetStringValue()
		}
		observe(ctx, m, info.FullMethod, kind, err, time.Since(start)).Msg("gRPC unary call")
		return resp, err
	}
}

// StreamServerInterceptor returns a gRPC stream interceptor for metrics and logging.
func StreamServerInterceptor(m *metrics.Metrics) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()
		err := handler(srv, ss)

		observe(ss.Context(), m, info.FullMethod, "", err, time.Since(start)).Msg("gRPC stream completed")
		return err
	}
}

// observe records the call and returns a log event at a level matching the status code.
func observe(ctx context.Context, m *metrics.Metrics, method, kind string, err error, d time.Duration) *zerolog.Event {
	code := status.Code(err)
	m.RecordRequest("grpc", method, code.String(), d.Seconds())

	logger := logging.WithRequest("grpc", requestID(ctx), kind)
	var ev *zerolog.Event
	switch code {
	case codes.OK:
		ev = logger.Info()
	case codes.Internal, codes.Unknown, codes.Unavailable, codes.DataLoss:
		ev = logger.Error().Err(err)
	default:
		ev = logger.Warn().Err(err)
	}
	return ev.
		Str("method", method).
		Str("code", code.String()).
		Dur("duration", d)
}

func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(RequestIDHeader); len(v) > 0 {
		return v[0]
	}
	return ""
}
