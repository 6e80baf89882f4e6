package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "feederd",
		Usage:   "highlight feeder daemon (crossposts stickied posts into an aggregation feed)",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "feed-host",
			Usage:   "method, hostname, and port of the feed platform API",
			Value:   "https://api.example.com",
			EnvVars: []string{"FEEDER_FEED_HOST"},
		},
		&cli.StringFlag{
			Name:    "feed-auth-token",
			Usage:   "bearer token for the feed platform API",
			EnvVars: []string{"FEEDER_FEED_AUTH_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "feed-community",
			Usage:   "community receiving highlight crossposts",
			Value:   "highlights",
			EnvVars: []string{"FEEDER_FEED_COMMUNITY"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "stream-host",
			Usage:   "hostname and port of the mod-action event stream to subscribe to",
			Value:   "wss://stream.example.com",
			EnvVars: []string{"FEEDER_STREAM_HOST"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for stores and cursor state; omit for in-memory",
			EnvVars: []string{"FEEDER_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "settings-file-json",
			Usage:   "static settings JSON file, for deployments without a settings service",
			EnvVars: []string{"FEEDER_SETTINGS_FILE_JSON"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for admin and webhook APIs",
			Value:   ":3999",
			EnvVars: []string{"FEEDER_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3998",
			EnvVars: []string{"FEEDER_METRICS_LISTEN"},
		},
		&cli.IntFlag{
			Name:    "feed-api-rate-limit",
			Usage:   "max requests per second to the feed platform API",
			Value:   8,
			EnvVars: []string{"FEEDER_FEED_API_RATE_LIMIT"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := context.Background()
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		// Enable OTLP HTTP exporter
		// For relevant environment variables:
		// https://pkg.go.dev/go.opentelemetry.io/otel/exporters/otlp/otlptrace#readme-environment-variables
		// At a minimum, you need to set
		// OTEL_EXPORTER_OTLP_ENDPOINT=http://localhost:4318
		if ep := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); ep != "" {
			slog.Info("setting up trace exporter", "endpoint", ep)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			exp, err := otlptracehttp.New(ctx)
			if err != nil {
				log.Fatal("failed to create trace exporter", "error", err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := exp.Shutdown(ctx); err != nil {
					slog.Error("failed to shutdown trace exporter", "error", err)
				}
			}()

			tp := tracesdk.NewTracerProvider(
				tracesdk.WithBatcher(exp),
				tracesdk.WithResource(resource.NewWithAttributes(
					semconv.SchemaURL,
					semconv.ServiceNameKey.String("feederd"),
					attribute.String("env", os.Getenv("ENVIRONMENT")),         // DataDog
					attribute.String("environment", os.Getenv("ENVIRONMENT")), // Others
					attribute.Int64("ID", 1),
				)),
			)
			otel.SetTracerProvider(tp)
		}

		srv, err := NewServer(Config{
			StreamHost:       cctx.String("stream-host"),
			FeedHost:         cctx.String("feed-host"),
			FeedAuthToken:    cctx.String("feed-auth-token"),
			FeedCommunity:    cctx.String("feed-community"),
			RedisURL:         cctx.String("redis-url"),
			SettingsFileJSON: cctx.String("settings-file-json"),
			FeedAPIRateLimit: cctx.Int("feed-api-rate-limit"),
			Logger:           logger,
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		eg, ctx := errgroup.WithContext(ctx)
		eg.Go(func() error { return srv.RunAdminAPI(ctx, cctx.String("bind")) })
		eg.Go(func() error { return srv.RunPersistCursor(ctx) })
		eg.Go(func() error { return srv.RunConsumer(ctx) })

		if err := eg.Wait(); err != nil {
			return fmt.Errorf("failed to run highlight feeder service: %w", err)
		}
		return nil
	},
}
