package grpc

import (
	"context"

	"github.com/vibast-solutions/ms-go-sessionauth/app/entity"

	"github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type sessionResolver interface {
	GetUserFromSessionID(ctx context.Context, sessionID string) (*entity.User, error)
}

type SessionServer struct {
	sessions sessionResolver
}

func NewSessionServer(sessions sessionResolver) *SessionServer {
	return &SessionServer{sessions: sessions}
}

func (s *SessionServer) ValidateSession(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	token := in.GetValue()
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "session id missing")
	}

	user, err := s.sessions.GetUserFromSessionID(ctx, token)
	if err != nil {
		logrus.WithError(err).Error("Session validation failed (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}
	if user == nil {
		logrus.Debug("Unknown session (grpc)")
		return nil, status.Error(codes.Unauthenticated, "invalid session")
	}

	return userStruct(user)
}

// WhoAmI returns the user resolved by SessionUnaryInterceptor.
func (s *SessionServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	return userStruct(user)
}

func userStruct(user *entity.User) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}

// NewServer builds a gRPC server exposing SessionService and the standard
// health service. Methods matching excludedMethods skip the session check.
func NewServer(sessions sessionResolver, excludedMethods []string) *gogrpc.Server {
	server := gogrpc.NewServer(
		gogrpc.UnaryInterceptor(SessionUnaryInterceptor(sessions, excludedMethods)),
		gogrpc.StreamInterceptor(SessionStreamInterceptor(sessions, excludedMethods)),
	)

	RegisterSessionServiceServer(server, NewSessionServer(sessions))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	return server
}

// DefaultExcludedMethods leaves token validation and health checks open.
// Patterns follow auth.RequireAuth, so exact entries end in '/'.
func DefaultExcludedMethods() []string {
	return []string{
		ValidateSessionMethod + "/",
		"/grpc.health.v1.Health/*",
	}
}
