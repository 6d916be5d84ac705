package handlers

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/rembed"
)

// Build information - can be set at build time using ldflags
var (
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

var startTime = time.Now()

// HealthHandler handles health check requests
type HealthHandler struct {
	embedder rembed.Embedder
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(e rembed.Embedder) *HealthHandler {
	return &HealthHandler{
		embedder: e,
	}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "rembed",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   rembed.Version(),
	})
}

// ReadinessCheck handles GET /ready
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	response := gin.H{
		"status":    "ready",
		"service":   "rembed",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if h.embedder == nil {
		response["status"] = "not_ready"
		response["error"] = "embedder not initialized"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	response["clients"] = len(h.embedder.ListRegisteredNames())
	response["uptime"] = time.Since(startTime).Round(time.Second).String()
	c.JSON(http.StatusOK, response)
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "rembed",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck handles GET /health/detailed - comprehensive health information
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	status := http.StatusOK
	response := gin.H{
		"status":  "healthy",
		"service": "rembed",
		"version": rembed.Version(),
		"build_info": gin.H{
			"git_commit": GitCommit,
			"build_time": BuildTime,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": gin.H{
			"go_version": GoVersion,
		},
	}

	if h.embedder != nil {
		response["clients"] = h.embedder.ListRegisteredNames()
	} else {
		response["status"] = "unhealthy"
		response["error"] = "embedder not initialized"
		status = http.StatusServiceUnavailable
	}

	response["system"] = getSystemMetrics()
	c.JSON(status, response)
}

// SystemMetrics holds system runtime metrics
type SystemMetrics struct {
	MemoryUsage string `json:"memory_usage"`
	Goroutines  int    `json:"goroutines"`
	GCCycles    uint32 `json:"gc_cycles"`
	HeapObjects uint64 `json:"heap_objects"`
	StackUsage  string `json:"stack_usage"`
}

// getSystemMetrics collects current system runtime metrics
func getSystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		MemoryUsage: fmt.Sprintf("%.2f MB", float64(m.Alloc)/(1024*1024)),
		Goroutines:  runtime.NumGoroutine(),
		GCCycles:    m.NumGC,
		HeapObjects: m.HeapObjects,
		StackUsage:  fmt.Sprintf("%.2f MB", float64(m.StackSys)/(1024*1024)),
	}
}
