package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"recipebox"
)

type RouterConfig struct {
	AllowedOrigins []string
	Tracer         trace.Tracer
	Meter          metric.Meter
}

// NewRouter wires every route onto a gin engine with CORS, tracing and request logging.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(recipebox.TracerNameServer)
	}

	meter := cfg.Meter
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(recipebox.TracerNameServer)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), tracing(tracer), instruments(meter))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", h.Health)

	g := r.Group("/api")
	{
		g.GET("/categories", h.Categories)
		g.GET("/recipes", h.ListRecipes)
		g.POST("/recipes/reset", h.ResetRecipes)
		g.GET("/recipes/:id", h.GetRecipe)

		g.GET("/cart", h.GetCart)
		g.POST("/cart", h.AddToCart)
		g.PATCH("/cart/:id", h.SetCartQuantity)
		g.DELETE("/cart/:id", h.RemoveFromCart)
		g.DELETE("/cart", h.ClearCart)

		g.GET("/wishlist", h.GetWishlist)
		g.POST("/wishlist", h.AddToWishlist)
		g.DELETE("/wishlist/:id", h.RemoveFromWishlist)
		g.DELETE("/wishlist", h.ClearWishlist)
		g.POST("/wishlist/:id/cart", h.MoveToCart)

		g.GET("/auth/session", h.Session)
		g.POST("/auth/register", h.Register)
		g.POST("/auth/login", h.Login)
		g.POST("/auth/logout", h.Logout)

		g.POST("/submissions/validate", h.ValidateSubmission)
		g.POST("/submissions", h.Submit)
	}

	r.NoRoute(func(c *gin.Context) {
		errorJSON(c, http.StatusNotFound, "Not found")
	})
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("HTTP: Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func tracing(tracer trace.Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
			))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

func instruments(meter metric.Meter) gin.HandlerFunc {
	requests, _ := meter.Int64Counter("http_server_requests_total",
		metric.WithDescription("Total number of API requests"))
	duration, _ := meter.Float64Histogram("http_server_request_duration_seconds",
		metric.WithDescription("Duration of API requests in seconds"))

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", c.FullPath()),
			attribute.Int("http.status_code", c.Writer.Status()),
		)
		requests.Add(c.Request.Context(), 1, attrs)
		duration.Record(c.Request.Context(), time.Since(start).Seconds(), attrs)
	}
}
