// Package server exposes the voucher pipeline over HTTP.
//
// POST /api/v1/vouchers/extract      upload a PDF (field "file"), returns text and record
// POST /api/v1/vouchers/render       JSON record in, standardized PDF out
// POST /api/v1/vouchers/standardize  upload a PDF, standardized PDF out
// GET  /api/v1/status                credential and asset readiness
// GET  /metrics                      Prometheus metrics
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/crholidays/voucher-standardizer/internal/common"
	"github.com/crholidays/voucher-standardizer/internal/observability"
	"github.com/crholidays/voucher-standardizer/internal/pipeline"
	"github.com/crholidays/voucher-standardizer/internal/render"
)

// AssetStatus is satisfied by *render.Renderer.
type AssetStatus interface {
	Status() render.Status
}

// Credentials is satisfied by *openai.Client.
type Credentials interface {
	APIKeyConfigured() bool
	Model() string
}

type Deps struct {
	Processor      *pipeline.Processor
	Assets         AssetStatus
	Credentials    Credentials
	Metrics        *observability.Metrics
	Logger         *slog.Logger
	AllowedOrigins []string
	MaxUploadBytes int64
}

type Server struct {
	processor   *pipeline.Processor
	assets      AssetStatus
	credentials Credentials
	metrics     *observability.Metrics
	logger      *slog.Logger
	origins     []string
	maxUpload   int64

	// one document is processed at a time
	mu sync.Mutex
}

func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = observability.NewMetrics()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 50 << 20
	}
	return &Server{
		processor:   d.Processor,
		assets:      d.Assets,
		credentials: d.Credentials,
		metrics:     d.Metrics,
		logger:      d.Logger,
		origins:     d.AllowedOrigins,
		maxUpload:   d.MaxUploadBytes,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())
	if len(s.origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  s.origins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders: []string{"Content-Disposition", "Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api/v1")
	{
		api.GET("/health", s.health)
		api.GET("/status", s.status)
		api.POST("/vouchers/extract", s.extractVoucher)
		api.POST("/vouchers/render", s.renderVoucher)
		api.POST("/vouchers/standardize", s.standardizeVoucher)
	}
	return r
}

// observe logs and measures every request.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		s.metrics.ObserveHTTP(route, c.Request.Method, c.Writer.Status(), elapsed)
		s.logger.Info("http.request",
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"elapsed_ms", elapsed.Milliseconds(),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) status(c *gin.Context) {
	resp := StatusResponse{AIExtraction: "missing", Logo: "missing", Template: "missing"}
	if s.credentials != nil {
		resp.Model = s.credentials.Model()
		if s.credentials.APIKeyConfigured() {
			resp.AIExtraction = "ready"
		}
	}
	if s.assets != nil {
		st := s.assets.Status()
		resp.TemplatePath = st.TemplatePath
		if st.LogoFound {
			resp.Logo = "found"
		}
		if st.TemplateReady {
			resp.Template = "ready"
		}
	}
	c.JSON(http.StatusOK, resp)
}

// writeError maps a pipeline error onto an HTTP status and ErrorResponse.
func (s *Server) writeError(c *gin.Context, err error, text string, raw []byte) {
	status := httpStatus(err)
	code := "internal_error"
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: common.UserMessage(err),
		Code:    status,
		Text:    text,
		Raw:     string(raw),
	})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrStageOrder):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrModelCall), errors.Is(err, common.ErrMalformedOutput):
		return http.StatusBadGateway
	case errors.Is(err, common.ErrMissingConfig), errors.Is(err, common.ErrMissingTemplate):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
