package cmd

import (
	"context"
	"database/sql"
	"net"

	"github.com/vibast-solutions/ms-go-sessionauth/app/auth"
	authgrpc "github.com/vibast-solutions/ms-go-sessionauth/app/grpc"
	"github.com/vibast-solutions/ms-go-sessionauth/app/logging"
	"github.com/vibast-solutions/ms-go-sessionauth/app/password"
	"github.com/vibast-solutions/ms-go-sessionauth/app/repository"
	"github.com/vibast-solutions/ms-go-sessionauth/app/service"
	"github.com/vibast-solutions/ms-go-sessionauth/app/session"
	"github.com/vibast-solutions/ms-go-sessionauth/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  `Start both HTTP (Echo) and gRPC servers for the session authentication service.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := logging.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := openDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	hasher := password.NewBcryptHasher(cfg.Auth.BcryptCost)
	userAuthService := service.NewUserAuthService(userRepo, hasher)

	store, err := newSessionStore(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize session store")
	}

	deps := httpDeps{
		userAuthService: userAuthService,
		users:           userRepo,
		hasher:          hasher,
		excludedPaths:   cfg.Auth.ExcludedPaths,
		registerer:      prometheus.DefaultRegisterer,
		gatherer:        prometheus.DefaultGatherer,
	}
	switch cfg.Auth.Type {
	case config.AuthTypeBasic:
		deps.authenticator = auth.NewBasicAuth(userRepo, hasher)
	case config.AuthTypeSession:
		deps.sessionAuth = auth.NewSessionAuth(store, userRepo, cfg.Auth.SessionName)
		deps.authenticator = deps.sessionAuth
	}
	logrus.WithFields(logrus.Fields{
		"auth_type":     cfg.Auth.Type,
		"session_store": cfg.Auth.SessionStore,
	}).Info("Authentication configured")

	go startGRPCServer(cfg, userAuthService)

	startHTTPServer(cfg, deps)
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.Auth.SessionStore != config.SessionStoreRedis {
		return session.NewMemoryStore(), nil
	}

	client, err := session.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	logrus.WithField("addr", cfg.Redis.Addr).Info("Connected to redis")
	return session.NewRedisStore(client), nil
}

func startHTTPServer(cfg *config.Config, deps httpDeps) {
	e := newHTTPServer(deps)
	defer e.Close()

	httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}

func startGRPCServer(cfg *config.Config, userAuthService service.UserAuthService) {
	grpcAddr := net.JoinHostPort(cfg.GRPCHost, cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	grpcServer := authgrpc.NewServer(userAuthService, authgrpc.DefaultExcludedMethods())
	defer grpcServer.GracefulStop()

	logrus.WithField("addr", grpcAddr).Info("Starting gRPC server")
	if err := grpcServer.Serve(lis); err != nil {
		logrus.WithError(err).Fatal("Failed to start gRPC server")
	}
}
