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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/notesweb/internal/config"
	"github.com/2beens/notesweb/internal/flash"
	"github.com/2beens/notesweb/internal/middleware"
	"github.com/2beens/notesweb/internal/notes"
	"github.com/2beens/notesweb/internal/notesapi"
	"github.com/2beens/notesweb/internal/shared"
	"github.com/2beens/notesweb/internal/telemetry/metrics"
	"github.com/2beens/notesweb/internal/telemetry/tracing"
	"github.com/2beens/notesweb/internal/views"
	"github.com/2beens/notesweb/pkg"
)

const (
	// note forms are small, anything bigger is not a note
	maxRequestBodyBytes = 1 << 20

	mutationsRateLimiterName = "notesweb-mutations"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	notesApi    *notesapi.Client
	renderer    *views.Renderer
	flashStore  flash.Store
	redisClient *redis.Client

	// nil when rate limiting is disabled
	rateLimiter    middleware.RequestRateLimiter
	clientIPReader *pkg.ClientIPReader

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	clientIPReader, err := pkg.NewClientIPReader(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("client ip reader: %w", err)
	}

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("notesweb", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	var rdb *redis.Client
	if cfg.RedisRequired() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})

		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "notesweb", rdb)
	if err != nil {
		return nil, err
	}

	renderer, err := views.NewRenderer(nil)
	if err != nil {
		return nil, fmt.Errorf("new renderer: %w", err)
	}

	s := &Server{
		config:      cfg,
		versionInfo: params.VersionInfo,
		notesApi: notesapi.NewClient(
			cfg.NotesApiBaseURL,
			notesapi.NewTracedHttpClient(cfg.NotesApiTimeout()),
			metricsManager,
		),
		renderer:       renderer,
		redisClient:    rdb,
		clientIPReader: clientIPReader,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	switch cfg.FlashBackend {
	case config.FlashBackendRedis:
		s.flashStore = flash.NewRedisStore(rdb, cfg.FlashTTL())
	default:
		s.flashStore = flash.NewMemoryStore(cfg.FlashTTL())
	}
	log.Debugf("using [%s] flash messages store", cfg.FlashBackend)

	if cfg.RateLimitAllowedPerMin > 0 {
		s.rateLimiter = redis_rate.NewLimiter(rdb)
		log.Debugf("note mutations rate limited to %d per minute", cfg.RateLimitAllowedPerMin)
	}

	return s, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter().UseEncodedPath()
	r.Use(otelmux.Middleware("notesweb-router"))

	var mutationMiddlewares []mux.MiddlewareFunc
	if s.rateLimiter != nil {
		mutationMiddlewares = append(mutationMiddlewares, middleware.RateLimit(
			s.rateLimiter,
			s.clientIPReader,
			s.metricsManager,
			mutationsRateLimiterName,
			s.config.RateLimitAllowedPerMin,
		))
	}

	notesHandler := notes.NewHandler(
		s.notesApi,
		s.flashStore,
		s.renderer,
		s.metricsManager,
		s.config.PublicBaseURL,
	)
	notesHandler.SetupRoutes(r, mutationMiddlewares...)

	sharedHandler := shared.NewHandler(s.notesApi, s.renderer)
	sharedHandler.SetupRoutes(r)

	r.PathPrefix("/static/").Handler(views.StaticHandler()).Methods("GET").Name("static")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, "ok")
	}).Methods("GET").Name("healthz")
	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")

	// all the rest - unhandled paths
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest(s.clientIPReader))
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.DrainAndCloseRequest(maxRequestBodyBytes))

	return r, nil
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
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
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
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
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests first, in flight ones may still need redis
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed, http.StateHijacked:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
