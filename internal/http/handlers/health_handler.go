package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Counter - источник числа активных объектов для health check.
type Counter interface {
	Count() int
}

// CounterFunc адаптирует функцию к Counter.
type CounterFunc func() int

func (f CounterFunc) Count() int { return f() }

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	db       *sqlx.DB
	counters map[string]Counter
}

// NewHealthHandler создаёт новый health handler. db может быть nil,
// если сервис работает на хранилище в памяти.
func NewHealthHandler(db *sqlx.DB, counters map[string]Counter) *HealthHandler {
	return &HealthHandler{db: db, counters: counters}
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Counters  map[string]int    `json:"counters,omitempty"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "healthy"
		}

		stats := h.db.Stats()
		if stats.MaxOpenConnections > 0 && stats.OpenConnections >= stats.MaxOpenConnections {
			checks["connection_pool"] = "warning: pool exhausted"
		} else {
			checks["connection_pool"] = "healthy"
		}
	} else {
		checks["database"] = "memory"
	}

	counters := make(map[string]int, len(h.counters))
	for name, counter := range h.counters {
		counters[name] = counter.Count()
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
		Counters:  counters,
	})
}
