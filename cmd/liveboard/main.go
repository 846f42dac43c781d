package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/totegamma/liveboard/internal/config"
	"github.com/totegamma/liveboard/internal/infra/database"
	"github.com/totegamma/liveboard/internal/infra/gateway"
	"github.com/totegamma/liveboard/internal/infra/repository"
	"github.com/totegamma/liveboard/internal/present/rest"
	"github.com/totegamma/liveboard/internal/present/rest/middleware"
	"github.com/totegamma/liveboard/internal/service"
	"github.com/totegamma/liveboard/internal/usecase"
)

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	conf, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		shutdown, err := setupTracer(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("Failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown(context.Background())
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("Failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("Failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessions := repository.NewSessionStore(rdb)
	directory := gateway.NewDirectoryGateway(userRepo, mc)

	postUC := usecase.NewPostUsecase(postRepo, directory)
	userUC := usecase.NewUserUsecase(userRepo)

	auth := service.NewAuthService(conf.Auth.Secret, conf.Auth.TokenExpiry, sessions)
	rooms := service.NewRoomRegistry()
	relay := service.NewBroadcastRelay(rooms)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("liveboard"))
	}

	handler := rest.NewHandler(postUC, userUC, auth, relay, rooms)
	authMW := middleware.NewAuthMiddleware(auth)
	handler.RegisterRoutes(e, authMW)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}

func setupTracer(endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
