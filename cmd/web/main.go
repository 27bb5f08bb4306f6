package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	cognitopkg "github.com/jaekwang-park/todo-web/internal/cognito"
	"github.com/jaekwang-park/todo-web/internal/config"
	todohttp "github.com/jaekwang-park/todo-web/internal/http"
	"github.com/jaekwang-park/todo-web/internal/http/view"
	"github.com/jaekwang-park/todo-web/internal/middleware"
	"github.com/jaekwang-park/todo-web/internal/model"
	"github.com/jaekwang-park/todo-web/internal/ratelimit"
	"github.com/jaekwang-park/todo-web/internal/repository"
	"github.com/jaekwang-park/todo-web/internal/service"
)

const shutdownTimeout = 10 * time.Second

// userResolverAdapter adapts a user repository to the middleware.UserResolver interface.
type userResolverAdapter struct {
	repo interface {
		GetByCognitoSub(ctx context.Context, cognitoSub string) (model.User, error)
	}
}

func (a *userResolverAdapter) ResolveUserID(ctx context.Context, cognitoSub string) (string, error) {
	user, err := a.repo.GetByCognitoSub(ctx, cognitoSub)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", middleware.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to resolve user: %w", err)
	}
	return user.ID, nil
}

type flagOverrides struct {
	port        string
	todoLatency time.Duration
}

func newRootCmd() *cobra.Command {
	var flags flagOverrides

	cmd := &cobra.Command{
		Use:   "todo-web",
		Short: "Serve the todo web app",
		Long: `Serves the server-rendered todo app: HTML pages, HTMX fragments and a JSON API,
with sign-in through an AWS Cognito user pool. Settings come from the environment;
flags override the matching variables.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg, flags)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&flags.port, "port", "", "port to listen on (overrides SERVER_PORT)")
	cmd.Flags().DurationVar(&flags.todoLatency, "todo-latency", 0, "simulated todo store latency, e.g. 0s or 250ms (overrides TODO_LATENCY)")
	return cmd
}

// applyFlags copies only the flags the user actually set.
func applyFlags(cmd *cobra.Command, cfg *config.Config, flags flagOverrides) {
	if cmd.Flags().Changed("port") {
		cfg.ServerPort = flags.port
	}
	if cmd.Flags().Changed("todo-latency") {
		cfg.Todo.Latency = flags.todoLatency
	}
}

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"auth_dev_mode", cfg.AuthDevMode,
		"log_level", cfg.LogLevel,
		"todo_latency", cfg.Todo.Latency.String(),
		"user_store", cfg.UserStore,
	)

	// Todo store
	seeds := model.DefaultSeeds()
	if cfg.Todo.SeedFile != "" {
		loaded, err := repository.LoadSeeds(cfg.Todo.SeedFile)
		if err != nil {
			return err
		}
		seeds = loaded
		logger.Info("seed todos loaded", "file", cfg.Todo.SeedFile, "count", len(seeds))
	}
	todoRepo := repository.NewMemoryTodo(
		repository.WithSeeds(seeds),
		repository.WithLatency(cfg.Todo.Latency),
	)

	// User store
	var userRepo repository.UserRepository
	switch cfg.UserStore {
	case config.UserStorePostgres:
		db, err := repository.NewDB(ctx, cfg.DB.DSN())
		if err != nil {
			return err
		}
		defer db.Close()
		logger.Info("database connected")
		userRepo = repository.NewPostgresUser(db)
	default:
		userRepo = repository.NewMemoryUser()
	}

	// Services
	todoSvc := service.NewTodoService(todoRepo)

	// Cognito client + Auth service
	var authSvc *service.AuthService
	if cfg.Cognito.AppClientID != "" {
		cognitoClient, err := cognitopkg.NewAWSClient(
			ctx,
			cfg.Cognito.Region,
			cfg.Cognito.AppClientID,
			cfg.Cognito.AppClientSecret,
		)
		if err != nil {
			return err
		}
		authSvc = service.NewAuthService(cognitoClient, userRepo)
		logger.Info("cognito client initialized", "region", cfg.Cognito.Region)
	} else {
		logger.Warn("cognito client not initialized: COGNITO_APP_CLIENT_ID not set")
	}

	// Session middleware
	authCfg := middleware.AuthConfig{
		DevMode: cfg.AuthDevMode,
	}
	if !cfg.AuthDevMode {
		jwksURL := middleware.CognitoJWKSURL(cfg.Cognito.Region, cfg.Cognito.UserPoolID)
		authCfg.JWKSClient = middleware.NewJWKSClient(jwksURL)
		authCfg.Issuer = middleware.CognitoIssuer(cfg.Cognito.Region, cfg.Cognito.UserPoolID)
		authCfg.AppClientID = cfg.Cognito.AppClientID
		authCfg.UserResolver = &userResolverAdapter{repo: userRepo}
	}
	auth, err := middleware.NewAuth(authCfg)
	if err != nil {
		return fmt.Errorf("failed to create auth middleware: %w", err)
	}

	// Credential endpoint throttling
	limiter := ratelimit.NewStore(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	var stats ratelimit.StatsStore = ratelimit.NewMemoryStatsStore()
	if cfg.Redis.Addr != "" {
		rdb, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		stats = ratelimit.NewRedisStatsStore(rdb)
		logger.Info("rate limit stats stored in redis", "addr", cfg.Redis.Addr)
	}

	renderer, err := view.New()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	// HTTP Server
	router := todohttp.NewRouter(todohttp.RouterDeps{
		TodoSvc:       todoSvc,
		AuthSvc:       authSvc,
		Renderer:      renderer,
		SecureCookies: cfg.CookieSecure,
	})
	srv := todohttp.NewServer(todohttp.ServerConfig{
		Port:   cfg.ServerPort,
		Logger: logger,
		Auth:   auth,
		RateLimit: middleware.RateLimitConfig{
			Store:      limiter,
			Stats:      stats,
			PathPrefix: "/api/auth/",
		},
	}, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return limiter.RunJanitor(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
