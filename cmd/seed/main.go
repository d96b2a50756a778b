package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/2beens/workoutcompanion/internal/config"
	"github.com/2beens/workoutcompanion/internal/db"
	"github.com/2beens/workoutcompanion/internal/exercises"
	"github.com/2beens/workoutcompanion/internal/logging"
	"github.com/2beens/workoutcompanion/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	envFile := flag.String("envfile", ".env", "optional file with secrets as env vars")
	importWger := flag.Bool("wger", false, "import the exercise catalog from wger.de instead of the built-in list")
	wgerURL := flag.String("wger-url", exercises.DefaultWgerBaseURL, "wger API base url")
	migrateOnly := flag.Bool("migrate-only", false, "only apply schema migrations")
	flag.Parse()

	_ = godotenv.Load(*envFile)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %s\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	otelShutdown, err := tracing.HoneycombSetup(honeycombEnabled, "workoutcompanion-seed", nil)
	if err != nil {
		log.Fatalf("otel setup: %s", err)
	}
	defer otelShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, *importWger, *wgerURL, *migrateOnly, honeycombEnabled); err != nil {
		log.Errorf("seed: %s", err)
		otelShutdown()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, importWger bool, wgerURL string, migrateOnly, tracingEnabled bool) error {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     os.Getenv("WC_POSTGRES_PASS"),
		TracingEnabled: tracingEnabled,
	})
	if err != nil {
		return fmt.Errorf("new db pool: %w", err)
	}
	defer dbPool.Close()

	if err := db.Migrate(ctx, dbPool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Infoln("schema up to date")
	if migrateOnly {
		return nil
	}

	catalog := exercises.DefaultExercises
	if importWger {
		client := exercises.NewWgerClient(wgerURL, &http.Client{
			Timeout:   time.Minute,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		})
		catalog, err = client.FetchAll(ctx)
		if err != nil {
			return fmt.Errorf("fetch wger exercises: %w", err)
		}
		log.Infof("fetched %d exercises from wger", len(catalog))
	}

	upserted, err := exercises.NewRepo(dbPool).Upsert(ctx, catalog)
	if err != nil {
		return fmt.Errorf("upsert exercises: %w", err)
	}
	log.Infof("exercise catalog seeded: %d exercises", upserted)

	notifyServers(ctx, cfg)
	return nil
}

// notifyServers asks running servers to drop their cached catalog. A failure
// only delays the refresh until the cache entries expire.
func notifyServers(ctx context.Context, cfg *config.Config) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: os.Getenv("WC_REDIS_PASS"),
		DB:       0,
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}()

	receivers, err := exercises.PublishInvalidation(ctx, rdb, "seed")
	if err != nil {
		log.Warnf("publish catalog invalidation: %s", err)
		return
	}
	log.Infof("catalog invalidation sent to %d server(s)", receivers)
}
