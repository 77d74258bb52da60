package grpc

import (
	"context"
	"strings"

	"github.com/vibast-solutions/ms-go-sessionauth/app/auth"
	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"

	"github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// SessionMetadataKey carries the session token on incoming calls.
const SessionMetadataKey = "session-id"

type currentUserKey struct{}

func UserFromContext(ctx context.Context) (*entity.User, bool) {
	user, ok := ctx.Value(currentUserKey{}).(*entity.User)
	return user, ok && user != nil
}

func SessionUnaryInterceptor(sessions sessionResolver, excludedMethods []string) gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		if !auth.RequireAuth(info.FullMethod, excludedMethods) {
			return handler(ctx, req)
		}

		user, err := validateIncomingSession(ctx, sessions)
		if err != nil {
			return nil, err
		}
		return handler(context.WithValue(ctx, currentUserKey{}, user), req)
	}
}

func SessionStreamInterceptor(sessions sessionResolver, excludedMethods []string) gogrpc.StreamServerInterceptor {
	return func(srv any, ss gogrpc.ServerStream, info *gogrpc.StreamServerInfo, handler gogrpc.StreamHandler) error {
		if !auth.RequireAuth(info.FullMethod, excludedMethods) {
			return handler(srv, ss)
		}

		user, err := validateIncomingSession(ss.Context(), sessions)
		if err != nil {
			return err
		}
		ctx := context.WithValue(ss.Context(), currentUserKey{}, user)
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
	}
}

func validateIncomingSession(ctx context.Context, sessions sessionResolver) (*entity.User, error) {
	token := incomingSessionFromMetadata(ctx)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	user, err := sessions.GetUserFromSessionID(ctx, token)
	if err != nil {
		logrus.WithError(err).Error("Session lookup failed (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}
	if user == nil {
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}
	return user, nil
}

func incomingSessionFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(SessionMetadataKey)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

type wrappedServerStream struct {
	gogrpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
