// Command snaps-server starts the Snaps gateway gRPC server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/camadaviva/snaps/internal/api"
	"github.com/camadaviva/snaps/internal/config"
	pkgcrypto "github.com/camadaviva/snaps/internal/crypto"
	"github.com/camadaviva/snaps/internal/limiter"
	"github.com/camadaviva/snaps/internal/migrate"
	"github.com/camadaviva/snaps/internal/repository/postgres"
	grpcserver "github.com/camadaviva/snaps/internal/server/grpc"
	"github.com/camadaviva/snaps/internal/service"
	"github.com/camadaviva/snaps/internal/storage"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// loadConfig reads the TOML file named by -config and applies explicitly set flags on top.
func loadConfig(args []string) (*config.Config, bool, error) {
	fs := flag.NewFlagSet("snaps-server", flag.ContinueOnError)
	path := fs.String("config", "", "TOML config file (defaults are embedded)")
	printDefaults := fs.Bool("print-config", false, "print the default config and exit")
	addr := fs.String("addr", "", "listen address")
	dsn := fs.String("dsn", "", "PostgreSQL DSN")
	jwtKey := fs.String("jwt-key", "", "HS256 signing key")
	accessTTL := fs.Duration("access-ttl", 0, "access token TTL")
	certFile := fs.String("tls-cert", "", "TLS certificate (PEM)")
	keyFile := fs.String("tls-key", "", "TLS private key (PEM)")
	storageRoot := fs.String("storage-root", "", "directory holding media buckets")
	publicBase := fs.String("public-base", "", "base URL under which buckets are served")
	dev := fs.Bool("dev", false, "enable server reflection (dev only)")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	if *printDefaults {
		return nil, true, nil
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return nil, false, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Server.Addr = *addr
		case "dsn":
			cfg.Database.DSN = *dsn
		case "jwt-key":
			cfg.Auth.JWTKey = *jwtKey
		case "access-ttl":
			cfg.Auth.AccessTTL.Duration = *accessTTL
		case "tls-cert":
			cfg.Server.TLSCert = *certFile
		case "tls-key":
			cfg.Server.TLSKey = *keyFile
		case "storage-root":
			cfg.Storage.Root = *storageRoot
		case "public-base":
			cfg.Storage.PublicBase = *publicBase
		case "dev":
			cfg.Server.Dev = *dev
		}
	})
	if key := os.Getenv("SNAPS_JWT_KEY"); key != "" && cfg.Auth.JWTKey == "" {
		cfg.Auth.JWTKey = key
	}
	return cfg, false, cfg.Validate()
}

// main parses configuration, runs migrations, and starts a TLS-enabled gRPC server.
func main() {
	cfg, printOnly, err := loadConfig(os.Args[1:])
	if printOnly {
		_, _ = os.Stdout.Write(config.DefaultTOML())
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Server.Addr),
	)

	creds, err := credentials.NewServerTLSFromFile(cfg.Server.TLSCert, cfg.Server.TLSKey)
	if err != nil {
		logger.Fatal("failed to load TLS cert/key", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ver, err := migrate.Up(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}
	logger.Info("schema ready", zap.Int64("version", ver))

	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer pool.Close()

	buckets, err := storage.New(cfg.Storage.Root, cfg.Storage.PublicBase, storage.MediaBucket, storage.AvatarBucket)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}

	// Repositories
	db := &postgres.DB{Pool: pool}
	userRepo := postgres.NewUserRepo(db)
	lim := limiter.NewPG(pool, limiter.Policy{
		Window:   cfg.Auth.SignInLimit.Window.Duration,
		MaxFails: cfg.Auth.SignInLimit.MaxFails,
		BlockFor: cfg.Auth.SignInLimit.BlockFor.Duration,
	})

	// Services
	signKey := []byte(cfg.Auth.JWTKey)
	snaps := service.NewSnapService(postgres.NewSnapRepo(db))
	svc := grpcserver.Services{
		Auth:     service.NewAuthService(userRepo, pkgcrypto.NewHasher(pkgcrypto.DefaultParams), signKey, cfg.Auth.AccessTTL.Duration, lim),
		Profiles: service.NewProfileService(userRepo),
		Snaps:    snaps,
		Social:   service.NewSocialService(snaps, postgres.NewVoteRepo(db), postgres.NewSaveRepo(db), postgres.NewCommentRepo(db)),
		Files:    service.NewFileService(buckets),
	}

	maxMsg := cfg.Server.MaxMessageMB << 20
	s := grpc.NewServer(
		grpc.Creds(creds),
		grpc.MaxRecvMsgSize(maxMsg),
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(logger),
			grpcserver.LoggingUnary(logger),
			grpcserver.RateLimitUnary(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst),
			grpcserver.AuthUnary(signKey),
		),
	)
	api.RegisterSnapsServer(s, grpcserver.New(svc, logger))

	// Health & reflection (dev)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	if cfg.Server.Dev {
		reflection.Register(s)
	}

	lis, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening (TLS)", zap.String("addr", cfg.Server.Addr))
		errCh <- s.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		hs.Shutdown()
		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.Stop()
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
