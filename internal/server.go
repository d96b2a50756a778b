package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/workoutcompanion/internal/auth"
	"github.com/2beens/workoutcompanion/internal/config"
	"github.com/2beens/workoutcompanion/internal/db"
	"github.com/2beens/workoutcompanion/internal/exercises"
	"github.com/2beens/workoutcompanion/internal/middleware"
	"github.com/2beens/workoutcompanion/internal/telemetry/metrics"
	"github.com/2beens/workoutcompanion/internal/telemetry/tracing"
	"github.com/2beens/workoutcompanion/internal/users"
	"github.com/2beens/workoutcompanion/internal/web"
	"github.com/2beens/workoutcompanion/internal/workouts"
	"github.com/2beens/workoutcompanion/pkg"
)

const sessionsCleanupInterval = 8 * time.Hour

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	usersService    *users.Service
	exerciseCatalog *exercises.Catalog
	workoutsService *workouts.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()

	stopBackgroundJobs context.CancelFunc
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	PostgresPassword        string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBUser:         params.Config.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if err := db.Migrate(ctx, dbPool); err != nil {
		closeStores(dbPool, nil)
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	promRegistry := metrics.SetupPrometheus(dbPool, params.Config.PostgresDBName)
	metricsManager := metrics.NewManager("workoutcompanion", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0,
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "workoutcompanion", rdb)
	if err != nil {
		closeStores(dbPool, rdb)
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	sessionTTL := params.Config.SessionTTL.Duration
	authService := auth.NewAuthService(sessionTTL, rdb)

	usersService := users.NewService(users.NewRepo(dbPool), metricsManager)
	exerciseCatalog := exercises.NewCatalog(exercises.NewRepo(dbPool), params.Config.ExerciseCacheSizeMB)

	backgroundCtx, stopBackgroundJobs := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(sessionsCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-backgroundCtx.Done():
				return
			case <-ticker.C:
				authService.ScanAndClean(backgroundCtx)
			}
		}
	}()
	go exerciseCatalog.ListenForInvalidation(backgroundCtx, rdb)

	workoutsService := workouts.NewService(workouts.NewRepo(dbPool), exerciseCatalog, metricsManager)

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		versionInfo: params.VersionInfo,

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(sessionTTL, rdb),

		usersService:    usersService,
		exerciseCatalog: exerciseCatalog,
		workoutsService: workoutsService,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,

		stopBackgroundJobs: stopBackgroundJobs,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/health", s.handleHealth).Methods("GET").Name("health")
	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(middleware.Cors(s.config.AllowedOrigins))
	apiRouter.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteJSON(w, http.StatusNotFound, workouts.MessageResponse{Response: "Not found"})
	})

	exercises.NewHandler(s.exerciseCatalog).SetupRoutes(apiRouter)
	workouts.NewAPIHandler(s.workoutsService).SetupRoutes(apiRouter)

	webHandler, err := web.NewHandler(
		s.workoutsService,
		s.usersService,
		s.authService,
		web.CookieConfig{
			Name:   s.config.SessionCookieName,
			Secure: s.config.SessionCookieSecure,
			TTL:    s.config.SessionTTL.Duration,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("new web handler: %w", err)
	}

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	webHandler.SetupRoutes(r, middleware.RateLimit(
		reqRateLimiter,
		"web-auth",
		s.config.LoginRateLimitAllowedPerMin,
		s.metricsManager,
	))

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Session(s.loginChecker, s.usersService, s.config.SessionCookieName))
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.dbPool.Ping(r.Context()); err != nil {
		log.Errorf("health check, db ping: %s", err)
		pkg.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db unavailable"})
		return
	}
	pkg.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) Serve(host string, port int) error {
	router, err := s.routerSetup()
	if err != nil {
		return fmt.Errorf("setup router: %w", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
	return nil
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.stopBackgroundJobs()

	s.otelShutdown()
	log.Trace("otel shut down ...")

	closeStores(s.dbPool, s.redisClient)

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

// closeStores closes whichever of the connections were opened.
func closeStores(dbPool *pgxpool.Pool, rdb *redis.Client) {
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if dbPool != nil {
		log.Debugln("closing db pool ...")
		dbPool.Close()
		log.Debugln("db pool closed")
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeOpenConnections.Inc()
	case http.StateClosed:
		s.metricsManager.GaugeOpenConnections.Dec()
	default:
		// do nothing
	}
}
