// Package httpapi exposes the exporter over HTTP.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
)

const (
	// RequestIDHeader carries the request id on requests and responses.
	RequestIDHeader = "X-Request-Id"

	requestIDKey = "request_id"

	// statusClientClosedRequest is reported in logs when the client went away.
	statusClientClosedRequest = 499
)

// Handler serves export requests.
type Handler struct {
	exporter ports.Exporter
	logger   ports.Logger
	conn     domain.ConnParams
}

// NewHandler creates a Handler. conn holds the database every export runs against.
func NewHandler(exporter ports.Exporter, logger ports.Logger, conn domain.ConnParams) *Handler {
	return &Handler{
		exporter: exporter,
		logger:   logger,
		conn:     conn,
	}
}

// NewRouter builds the gin engine. metrics is mounted on /metrics when not nil.
func NewRouter(h *Handler, metrics http.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(accessLog(h.logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	api := router.Group("/api/v1")
	api.GET("/export", h.HandleExport)
	api.GET("/export/key", h.HandleKey)

	return router
}

// HandleExport streams the export described by the query string.
// GET /api/v1/export?q=&format=&filename=&skipfields=&gn=&timeout=
func (h *Handler) HandleExport(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	format, err := domain.LookupFormat(req.FormatID)
	if err != nil {
		h.fail(c, err)
		return
	}

	beforeSink := func() {
		c.Header("Content-Type", format.ContentType)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", req.Layer()+"."+format.Extension))
		c.Status(http.StatusOK)
	}

	err = h.exporter.Export(c.Request.Context(), req, c.Writer, beforeSink)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrRequestCanceled):
		h.logger.Info("client went away", "written", c.Writer.Size(), requestIDKey, c.GetString(requestIDKey))
		if !c.Writer.Written() {
			c.Status(statusClientClosedRequest)
		}
	case c.Writer.Written():
		// Headers are gone; the client sees a truncated body.
		h.logger.Error(err, requestIDKey, c.GetString(requestIDKey))
		_ = c.Error(err)
	default:
		h.fail(c, err)
	}
}

// HandleKey returns the fingerprint of the export described by the query string.
// GET /api/v1/export/key?q=&format=&filename=&skipfields=&gn=
func (h *Handler) HandleKey(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	key, err := h.exporter.Key(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key.String(), "job": key.JobID()})
}

func (h *Handler) parseRequest(c *gin.Context) (domain.ExportRequest, error) {
	req := domain.ExportRequest{
		FormatID:     c.DefaultQuery("format", "csv"),
		Conn:         h.conn,
		SQL:          c.Query("q"),
		LayerName:    c.Query("filename"),
		GeometryHint: c.Query("gn"),
		SkipFields:   splitList(c.Query("skipfields")),
	}

	if raw := c.Query("timeout"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout < 0 {
			return req, errBadTimeout
		}
		req.Timeout = timeout
	}
	return req, nil
}

var errBadTimeout = errors.New("timeout must be a non-negative duration")

// statusFor maps an export error to a response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadTimeout),
		errors.Is(err, domain.ErrUnknownFormat),
		errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, domain.ErrIntrospectionFailed):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConverterTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(err, requestIDKey, c.GetString(requestIDKey))
	}
	c.Writer.Header().Del("Content-Disposition")
	c.Writer.Header().Del("Content-Type")
	c.AbortWithStatusJSON(status, gin.H{
		"error":      err.Error(),
		"request_id": c.GetString(requestIDKey),
	})
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, field := range strings.Split(raw, ",") {
		if field = strings.TrimSpace(field); field != "" {
			out = append(out, field)
		}
	}
	return out
}

// requestID assigns every request an id, reusing a valid one sent by the client.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func accessLog(logger ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request served",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"elapsed", time.Since(start).String(),
			requestIDKey, c.GetString(requestIDKey),
		)
	}
}
