package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizgen/quizgen-backend/internal/config"
	"github.com/quizgen/quizgen-backend/internal/response"
	"github.com/quizgen/quizgen-backend/internal/service"
)

const metricsInterval = 7 * time.Second

// HealthCheck probes one dependency.
type HealthCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

// SystemHandler serves liveness and streams runtime metrics via SSE.
type SystemHandler struct {
	rdb       *redis.Client
	sessions  *service.SessionService
	checks    []HealthCheck
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client, sessions *service.SessionService, log zerolog.Logger) *SystemHandler {
	h := &SystemHandler{
		rdb:       rdb,
		sessions:  sessions,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
	if pool != nil {
		h.checks = append(h.checks, HealthCheck{Name: "postgres", Probe: pool.Ping})
	}
	if rdb != nil {
		h.checks = append(h.checks, HealthCheck{Name: "redis", Probe: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	return h
}

// Health godoc
// GET /health
// 503 when any dependency fails its probe.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for _, chk := range h.checks {
		if err := chk.Probe(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", chk.Name).Msg("Health probe failed")
			deps[chk.Name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[chk.Name] = "up"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	response.Success(c, status, gin.H{
		"status":        state,
		"dependencies":  deps,
		"live_sessions": h.sessions.Count(),
		"uptime":        formatDuration(time.Since(h.startTime)),
	})
}

// ---------- SSE Endpoint ----------

type systemMetrics struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`

	LiveSessions  int   `json:"live_sessions"`
	QueueAttempts int64 `json:"queue_attempts"`
}

// SystemMetricsSSE godoc
// GET /api/v1/system/metrics
func (h *SystemHandler) SystemMetricsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	h.writeMetrics(c)
	for {
		select {
		case <-reqCtx.Done():
			return
		case <-ticker.C:
			h.writeMetrics(c)
		}
	}
}

func (h *SystemHandler) writeMetrics(c *gin.Context) {
	data, err := json.Marshal(h.collect(c.Request.Context()))
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	c.Writer.Flush()
}

func (h *SystemHandler) collect(ctx context.Context) systemMetrics {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m := systemMetrics{
		Timestamp:    time.Now().Unix(),
		Uptime:       formatDuration(time.Since(h.startTime)),
		Goroutines:   runtime.NumGoroutine(),
		HeapAlloc:    ms.HeapAlloc,
		HeapSys:      ms.HeapSys,
		NumGC:        ms.NumGC,
		GoVersion:    runtime.Version(),
		LiveSessions: h.sessions.Count(),
	}
	if h.rdb != nil {
		m.QueueAttempts, _ = h.rdb.LLen(ctx, config.WorkerKey.PersistAttemptsQueue).Result()
	}
	return m
}

// ---------- Helpers ----------

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
