package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/seflow-backend/internal/domain"
	"github.com/simaogato/seflow-backend/internal/observability"
)

// AddressHeader carries the connected wallet address
const AddressHeader = "x-flow-address"

const healthMethodPrefix = "/grpc.health.v1.Health/"

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the authorization token from request metadata.
// If the token is missing or invalid, it returns status.Unauthenticated.
// A "Bearer " prefix on the token is accepted. Health checks skip auth.
func AuthInterceptor(validToken string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if err := authorize(ctx, info.FullMethod, validToken); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamAuthInterceptor applies the same token check to streaming calls
// such as server reflection and health Watch.
func StreamAuthInterceptor(validToken string) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if err := authorize(ss.Context(), info.FullMethod, validToken); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}

func authorize(ctx context.Context, fullMethod, validToken string) error {
	if strings.HasPrefix(fullMethod, healthMethodPrefix) {
		return nil
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing metadata")
	}

	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return status.Error(codes.Unauthenticated, "missing authorization header")
	}

	if strings.TrimPrefix(authHeaders[0], "Bearer ") != validToken {
		return status.Error(codes.Unauthenticated, "invalid token")
	}

	return nil
}

// SessionFromContext builds the wallet session from the x-flow-address header
// No header means no connected wallet.
func SessionFromContext(ctx context.Context) domain.Session {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return domain.Session{}
	}
	values := md.Get(AddressHeader)
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return domain.Session{}
	}
	return domain.Session{Address: strings.TrimSpace(values[0]), LoggedIn: true}
}

// LoggingInterceptor logs every call and records its status code and latency
func LoggingInterceptor(logger zerolog.Logger, metrics *observability.Metrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)

		code := status.Code(err)
		metrics.ObserveRPC(info.FullMethod, code.String(), elapsed.Seconds())

		var event *zerolog.Event
		switch code {
		case codes.OK:
			event = logger.Debug()
		case codes.Internal, codes.Unknown, codes.DataLoss:
			event = logger.Error().Err(err)
		default:
			event = logger.Info().Err(err)
		}
		event.
			Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("duration", elapsed).
			Msg("rpc")

		return resp, err
	}
}
