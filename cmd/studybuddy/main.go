package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/xnice1/studybuddy/internal/app"
	"github.com/xnice1/studybuddy/internal/authn"
	"github.com/xnice1/studybuddy/internal/authz"
	"github.com/xnice1/studybuddy/internal/courses"
	"github.com/xnice1/studybuddy/internal/observability"
	"github.com/xnice1/studybuddy/internal/platform/cache"
	"github.com/xnice1/studybuddy/internal/platform/db"
	"github.com/xnice1/studybuddy/internal/questions"
	"github.com/xnice1/studybuddy/internal/quizzes"
	"github.com/xnice1/studybuddy/internal/token"
	"github.com/xnice1/studybuddy/internal/users"
	"github.com/xnice1/studybuddy/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	codec := token.NewCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)

	graph := authz.NewPGGraph(dbpool)
	evaluator := authz.NewEvaluator(graph, logger).WithRecorder(metrics)

	authRepo := authn.NewRepository(dbpool)
	authService := authn.NewService(authRepo)
	authHandler := authn.NewHandler(logger, authService, codec)
	gate := authn.NewGate(codec, authService, logger)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, evaluator)
	usersHandler := users.NewHandler(logger, usersService)

	coursesRepo := courses.NewRepository(dbpool)
	coursesService := courses.NewService(coursesRepo, evaluator)
	coursesHandler := courses.NewHandler(logger, coursesService)

	quizCache := quizzes.NewCache(redisClient, cfg.QuizCacheTTL)
	quizzesRepo := quizzes.NewRepository(dbpool)
	quizzesService := quizzes.NewService(quizzesRepo, evaluator, quizCache)
	quizzesHandler := quizzes.NewHandler(logger, quizzesService)

	questionsRepo := questions.NewRepository(dbpool)
	questionsService := questions.NewService(questionsRepo, evaluator)
	questionsHandler := questions.NewHandler(logger, questionsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, evaluator, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Gate:             gate,
		AuthHandler:      authHandler,
		UsersHandler:     usersHandler,
		CoursesHandler:   coursesHandler,
		QuizzesHandler:   quizzesHandler,
		QuestionsHandler: questionsHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
