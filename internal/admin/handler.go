package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"pharmacy-store/internal/models"
	"pharmacy-store/internal/schema"
	"pharmacy-store/internal/store"
	"pharmacy-store/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// RowReader is satisfied by both store.Store and mirror.Mirror.
type RowReader interface {
	Rows(ctx context.Context, t *schema.Table, limit, offset int) ([]store.Row, error)
	Row(ctx context.Context, t *schema.Table, key interface{}) (store.Row, error)
	Count(ctx context.Context, table string) (int64, error)
}

// RowWriter is only available to the owning application.
type RowWriter interface {
	UpdateRow(ctx context.Context, t *schema.Table, key interface{}, fields map[string]interface{}) error
	DeleteRow(ctx context.Context, t *schema.Table, key interface{}) error
}

type ChangePublisher interface {
	PublishEntityChanged(ctx context.Context, event *models.EntityChangedEvent) error
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps wires a Handler. A nil Writer makes the console read-only.
type Deps struct {
	Registry  *Registry
	DB        Pinger
	Reader    RowReader
	Writer    RowWriter
	Publisher ChangePublisher
}

// Handler contains the admin console HTTP handlers
type Handler struct {
	registry  *Registry
	db        Pinger
	reader    RowReader
	writer    RowWriter
	publisher ChangePublisher
	logger    *zap.Logger
}

// NewHandler creates a new admin console handler
func NewHandler(d Deps) *Handler {
	if d.Registry == nil {
		d.Registry = DefaultRegistry()
	}
	return &Handler{
		registry:  d.Registry,
		db:        d.DB,
		reader:    d.Reader,
		writer:    d.Writer,
		publisher: d.Publisher,
		logger:    util.Named("admin"),
	}
}

// ReadOnly reports whether writes are refused.
func (h *Handler) ReadOnly() bool {
	return h.writer == nil
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	entities := router.Group("/admin/entities")
	{
		entities.GET("", h.listEntities)
		entities.GET("/:entity", h.listRows)
		entities.GET("/:entity/:id", h.getRow)
		entities.PATCH("/:entity/:id", h.requireWritable, h.updateRow)
		entities.DELETE("/:entity/:id", h.requireWritable, h.deleteRow)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"read_only": h.ReadOnly(),
		"time":      time.Now().Unix(),
	})
}

// readinessCheck reports ready once the database answers
func (h *Handler) readinessCheck(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"details": err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) requireWritable(c *gin.Context) {
	if h.ReadOnly() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Console is read-only",
		})
		return
	}
	c.Next()
}

func (h *Handler) listEntities(c *gin.Context) {
	entries := h.registry.All()
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		n, err := h.reader.Count(c.Request.Context(), e.Table.Name)
		if err != nil {
			h.respondError(c, err)
			return
		}
		out = append(out, gin.H{
			"entity": e.Describe(),
			"count":  n,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"entities":  out,
		"read_only": h.ReadOnly(),
	})
}

func (h *Handler) entry(c *gin.Context) (Entry, bool) {
	e, ok := h.registry.Get(c.Param("entity"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("Unknown entity %q", c.Param("entity")),
		})
	}
	return e, ok
}

func (h *Handler) key(c *gin.Context, e Entry) (interface{}, bool) {
	key, err := e.Table.ParseKey(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid primary key",
			"details": err.Error(),
		})
		return nil, false
	}
	return key, true
}

func pageParam(c *gin.Context, name string, def, max int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || (max > 0 && n > max) {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

func (h *Handler) listRows(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}

	limit, err := pageParam(c, "limit", defaultPageSize, maxPageSize)
	if err == nil && limit == 0 {
		err = fmt.Errorf("invalid limit 0")
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offset, err := pageParam(c, "offset", 0, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.reader.Rows(c.Request.Context(), e.Table, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	total, err := h.reader.Count(c.Request.Context(), e.Table.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entity": e.Name,
		"rows":   rows,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (h *Handler) getRow(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	key, ok := h.key(c, e)
	if !ok {
		return
	}

	row, err := h.reader.Row(c.Request.Context(), e.Table, key)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// updateRow applies a partial update. Values are checked against the column
// declarations before anything is written; the store then applies the entity
// rules (model validation, payment status transitions).
func (h *Handler) updateRow(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	key, ok := h.key(c, e)
	if !ok {
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	fields := make(map[string]interface{}, len(body))
	for name, raw := range body {
		col, ok := e.Table.Column(name)
		if !ok || name == e.Table.PrimaryKey {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Column %q cannot be updated", name),
			})
			return
		}
		v, err := col.Coerce(raw)
		if err != nil {
			h.respondError(c, err)
			return
		}
		fields[name] = v
	}

	ctx := c.Request.Context()
	if err := h.writer.UpdateRow(ctx, e.Table, key, fields); err != nil {
		h.respondError(c, err)
		return
	}

	row, err := h.reader.Row(ctx, e.Table, key)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.changed(ctx, e, key, models.ChangeUpdated, body)
	c.JSON(http.StatusOK, row)
}

func (h *Handler) deleteRow(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	key, ok := h.key(c, e)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.writer.DeleteRow(ctx, e.Table, key); err != nil {
		h.respondError(c, err)
		return
	}

	h.changed(ctx, e, key, models.ChangeDeleted, nil)
	c.Status(http.StatusNoContent)
}

func (h *Handler) changed(ctx context.Context, e Entry, key interface{}, op string, fields map[string]interface{}) {
	util.AdminChangesTotal.WithLabelValues(e.Name, op).Inc()
	h.logger.Info("Entity changed",
		zap.String("entity", e.Name),
		zap.Any("key", key),
		zap.String("operation", op))

	if h.publisher == nil {
		return
	}
	event := &models.EntityChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeEntityChanged,
			Timestamp: time.Now(),
		},
		Entity:    e.Name,
		Table:     e.Table.Name,
		Key:       fmt.Sprint(key),
		Operation: op,
		Fields:    fields,
	}
	if err := h.publisher.PublishEntityChanged(ctx, event); err != nil {
		h.logger.Error("Failed to publish EntityChanged event", zap.Error(err))
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "Internal error"
	switch {
	case errors.Is(err, store.ErrNotFound):
		status, msg = http.StatusNotFound, "Not found"
	case errors.Is(err, store.ErrDuplicate):
		status, msg = http.StatusConflict, "Duplicate row"
	case errors.Is(err, store.ErrMissingReference):
		status, msg = http.StatusConflict, "Referenced row does not exist"
	case errors.Is(err, store.ErrCheckViolation):
		status, msg = http.StatusConflict, "Constraint violated"
	case errors.Is(err, store.ErrInvalidTransition):
		status, msg = http.StatusConflict, "Invalid status transition"
	case errors.Is(err, store.ErrImmutable):
		status, msg = http.StatusBadRequest, "Column cannot be changed"
	case errors.Is(err, store.ErrReadOnly):
		status, msg = http.StatusForbidden, "Database is read-only"
	case errors.Is(err, schema.ErrInvalidValue), errors.Is(err, models.ErrInvalidEnum), errors.Is(err, models.ErrValidation):
		status, msg = http.StatusBadRequest, "Invalid value"
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Admin request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
