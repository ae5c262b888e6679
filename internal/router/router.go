package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appointmentHandler "github.com/vetdesk/vetdesk-api/internal/handler/appointment"
	clinicHandler "github.com/vetdesk/vetdesk-api/internal/handler/clinic"
	encounterHandler "github.com/vetdesk/vetdesk-api/internal/handler/encounter"
	healthHandler "github.com/vetdesk/vetdesk-api/internal/handler/health"
	membershipHandler "github.com/vetdesk/vetdesk-api/internal/handler/membership"
	ownerHandler "github.com/vetdesk/vetdesk-api/internal/handler/owner"
	patientHandler "github.com/vetdesk/vetdesk-api/internal/handler/patient"
	prescriptionHandler "github.com/vetdesk/vetdesk-api/internal/handler/prescription"
	userHandler "github.com/vetdesk/vetdesk-api/internal/handler/user"
	"github.com/vetdesk/vetdesk-api/internal/middleware"
)

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	Timeout        time.Duration
	CORSConfig     middleware.CORSConfig
	MetricsPrefix  string
}

type Handlers struct {
	Health       *healthHandler.Handler
	User         *userHandler.Handler
	Clinic       *clinicHandler.Handler
	Membership   *membershipHandler.Handler
	Owner        *ownerHandler.Handler
	Patient      *patientHandler.Handler
	Appointment  *appointmentHandler.Handler
	Encounter    *encounterHandler.Handler
	Prescription *prescriptionHandler.Handler
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "path", "status"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, config Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		metrics:  initRouterMetrics(config.MetricsPrefix),
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorLogger(),
		r.metricsMiddleware(),
		middleware.Timeout(timeout),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimitRPS > 0 {
		rateLimiter := middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst)
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	r.handlers.Health.RegisterRoutes(api)

	// The document generator pushes rendered PDFs here; it holds a
	// webhook secret, not a user token.
	webhooks := api.Group("/webhooks")
	r.handlers.Prescription.RegisterWebhookRoutes(webhooks)

	authed := api.Group("", r.auth.Authenticate())
	r.handlers.User.RegisterRoutes(authed, r.auth)
	r.handlers.Clinic.RegisterRoutes(authed, r.auth)
	r.handlers.Membership.RegisterRoutes(authed, r.auth)
	r.handlers.Owner.RegisterRoutes(authed, r.auth)
	r.handlers.Patient.RegisterRoutes(authed, r.auth)
	r.handlers.Appointment.RegisterRoutes(authed, r.auth)
	r.handlers.Encounter.RegisterRoutes(authed, r.auth)
	r.handlers.Prescription.RegisterRoutes(authed, r.auth)
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
