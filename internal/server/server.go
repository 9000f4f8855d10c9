package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/victornm/trivia/internal/api"
	"github.com/victornm/trivia/internal/auth"
	"github.com/victornm/trivia/internal/directory"
	"github.com/victornm/trivia/internal/event"
	"github.com/victornm/trivia/internal/leaderboard"
	"github.com/victornm/trivia/internal/question"
	"github.com/victornm/trivia/internal/score"
	"github.com/victornm/trivia/internal/session"
	"github.com/victornm/trivia/internal/telemetry"
)

type RedisConfig struct {
	Addrs  []string
	Pass   string
	Prefix string
}

type PostgresConfig struct {
	Addr string
	User string
	Pass string
	Name string
}

type Config struct {
	HTTP struct {
		Port int32
	}

	GRPC struct {
		Port int32
	}

	Redis struct {
		Session     RedisConfig
		Leaderboard RedisConfig
		Pubsub      RedisConfig
	}

	Postgres struct {
		Question  PostgresConfig
		Directory PostgresConfig
		Score     PostgresConfig
	}

	Auth struct {
		Secret string
		Issuer string
		TTL    time.Duration
	}

	Event struct {
		PoolSize int
		Timeout  time.Duration
	}
}

type Server struct {
	c Config

	eb *event.Bus

	infra struct {
		redis struct {
			session     redis.UniversalClient
			leaderboard redis.UniversalClient
			pubsub      redis.UniversalClient
		}

		postgres struct {
			question  *pgxpool.Pool
			directory *pgxpool.Pool
			score     *pgxpool.Pool
		}
	}

	service struct {
		question    *question.Service
		directory   *directory.Service
		session     *session.Service
		score       *score.Service
		leaderboard *leaderboard.Service
		auth        *auth.Pipeline
	}

	http   *http.Server
	grpc   *grpc.Server
	health *health.Server
}

func Init(c Config) (*Server, error) {
	s := &Server{c: c}

	if len(c.Auth.Secret) == 0 {
		return nil, fmt.Errorf("server: auth secret is not set")
	}

	s.eb = event.NewBus(
		event.WithPoolSize(c.Event.PoolSize),
		event.WithTimeout(c.Event.Timeout),
	)

	if err := s.initInfra(); err != nil {
		return nil, fmt.Errorf("server: init infra: %w", err)
	}

	s.initService()
	s.initAPI()
	return s, nil
}

func (s *Server) initInfra() error {
	if err := s.initRedis(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if err := s.initPostgres(); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	return nil
}

func (s *Server) initRedis() error {
	connect := func(name string, c RedisConfig) (redis.UniversalClient, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		r := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    c.Addrs,
			Password: c.Pass,
		})

		if err := telemetry.MonitorRedis(name, r); err != nil {
			return nil, err
		}

		if err := r.Ping(ctx).Err(); err != nil {
			return nil, err
		}

		return r, nil
	}

	var err error
	s.infra.redis.session, err = connect("session", s.c.Redis.Session)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	s.infra.redis.leaderboard, err = connect("leaderboard", s.c.Redis.Leaderboard)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}

	s.infra.redis.pubsub, err = connect("pubsub", s.c.Redis.Pubsub)
	if err != nil {
		return fmt.Errorf("pubsub: %w", err)
	}

	return nil
}

func (s *Server) initPostgres() (err error) {
	connect := func(c PostgresConfig) (*pgxpool.Pool, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cc, err := pgxpool.ParseConfig(fmt.Sprintf("postgres://%s:%s@%s/%s", c.User, c.Pass, c.Addr, c.Name))
		if err != nil {
			return nil, err
		}

		db, err := pgxpool.NewWithConfig(ctx, cc)
		if err != nil {
			return nil, err
		}

		if err := db.Ping(ctx); err != nil {
			return nil, err
		}

		return db, nil
	}

	s.infra.postgres.question, err = connect(s.c.Postgres.Question)
	if err != nil {
		return fmt.Errorf("postgres: question: %w", err)
	}

	s.infra.postgres.directory, err = connect(s.c.Postgres.Directory)
	if err != nil {
		return fmt.Errorf("postgres: directory: %w", err)
	}

	s.infra.postgres.score, err = connect(s.c.Postgres.Score)
	if err != nil {
		return fmt.Errorf("postgres: score: %w", err)
	}

	return nil
}

func (s *Server) initService() {
	s.service.question = question.NewService(question.Config{
		DB: s.infra.postgres.question,
	})

	s.service.directory = directory.NewService(directory.Config{
		DB: s.infra.postgres.directory,
	})

	s.service.session = session.NewService(session.Config{
		Bank:     s.service.question,
		Store:    session.NewRedisStore(s.infra.redis.session, s.c.Redis.Session.Prefix),
		EventBus: s.eb,
	})

	s.service.score = score.NewService(score.Config{
		EventBus: s.eb,
		DB:       s.infra.postgres.score,
	})

	s.service.leaderboard = leaderboard.NewService(leaderboard.Config{
		EventBus: s.eb,
		Redis:    s.infra.redis.leaderboard,
		Prefix:   s.c.Redis.Leaderboard.Prefix,
	})

	s.service.auth = auth.NewPipeline(auth.Config{
		Tokens: auth.NewTokens(auth.TokenConfig{
			Secret: []byte(s.c.Auth.Secret),
			Issuer: s.c.Auth.Issuer,
			TTL:    s.c.Auth.TTL,
		}),
		Directory: s.service.directory,
	})
}

func (s *Server) initAPI() {
	e := gin.New()
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")
	e.Use(gin.Recovery(), api.Logger())

	api.New(api.Config{
		Engine:       e,
		EventBus:     s.eb,
		Auth:         s.service.auth,
		Session:      s.service.session,
		Leaderboard:  s.service.leaderboard,
		Questions:    s.service.question,
		Accounts:     s.service.directory,
		Results:      s.service.score,
		Redis:        s.infra.redis.pubsub,
		PubsubPrefix: s.c.Redis.Pubsub.Prefix,
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.c.HTTP.Port),
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}

	s.grpc = grpc.NewServer(telemetry.GRPCServerInterceptor())
	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
}

func (s *Server) Start() {
	ctx := context.TODO()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.c.GRPC.Port))
	if err != nil {
		slog.ErrorContext(ctx, "grpc server: listen failed", "error", err)
		panic(err)
	}

	var eg errgroup.Group
	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("server: gRPC health listening on port %d", s.c.GRPC.Port))
		return s.grpc.Serve(lis)
	})

	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("server: HTTP listening on port %d", s.c.HTTP.Port))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	err = eg.Wait()
	if err != nil {
		slog.ErrorContext(ctx, "server: shutdown with error", "error", err)
	}
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.health.Shutdown()
	if err := s.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown HTTP failed", "error", err)
	}
	s.grpc.GracefulStop()

	s.eb.Stop()

	for name, r := range map[string]redis.UniversalClient{
		"session":     s.infra.redis.session,
		"leaderboard": s.infra.redis.leaderboard,
		"pubsub":      s.infra.redis.pubsub,
	} {
		if err := r.Close(); err != nil {
			slog.ErrorContext(ctx, "server: close redis failed", "redis", name, "error", err)
		}
	}
	s.infra.postgres.question.Close()
	s.infra.postgres.directory.Close()
	s.infra.postgres.score.Close()

	slog.InfoContext(ctx, "server: shutdown completed")
}
