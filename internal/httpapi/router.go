package httpapi

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// NewRouter mounts every route of h on a new gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))
	if h.cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = h.cfg.MaxUploadBytes
	}

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	extract := r.Group("/extract")
	extract.POST("/text", h.extractText)
	extract.POST("/file", h.extractFile(nil))
	extract.POST("/pdf", h.extractFile([]string{"pdf"}))
	extract.POST("/image", h.extractFile([]string{"png", "jpg", "jpeg"}))

	r.GET("/extractions", h.listExtractions)
	r.GET("/extractions/:id", h.getExtraction)
	r.GET("/export.xlsx", h.exportXLSX)
	return r
}

// requestLogger stores a request-scoped logger in the request context and
// logs one line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		reqLogger := logger.With("request_id", requestID)
		ctx := common.WithRequestID(c.Request.Context(), requestID)
		ctx = common.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		reqLogger.Info("http.request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}
