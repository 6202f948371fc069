package monitor

import (
	"context"
	"crypto/subtle"
	"io"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Probe reports the health of one dependency; nil means healthy.
type Probe func(ctx context.Context) error

type Options struct {
	// LogFile is served by /logs when LogToken is set.
	LogFile  string
	LogToken string
	// Probes are run by /monitor, keyed by dependency name.
	Probes map[string]Probe
}

var startedAt = time.Now()

// RegisterRoutes mounts /metrics, /monitor and (optionally) /logs.
func RegisterRoutes(router *gin.Engine, opts Options) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/monitor", runtimeStatus(opts.Probes))
	if opts.LogToken != "" && opts.LogFile != "" {
		router.GET("/logs", tailLogs(opts.LogFile, opts.LogToken))
	}
}

func runtimeStatus(probes map[string]Probe) gin.HandlerFunc {
	return func(c *gin.Context) {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		healthy := true
		deps := make(map[string]string, len(probes))
		for name, probe := range probes {
			if err := probe(ctx); err != nil {
				deps[name] = err.Error()
				healthy = false
				continue
			}
			deps[name] = "ok"
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"status":         map[bool]string{true: "ok", false: "degraded"}[healthy],
			"uptime_seconds": int64(time.Since(startedAt).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"memory": gin.H{
				"alloc_bytes": mem.Alloc,
				"sys_bytes":   mem.Sys,
				"num_gc":      mem.NumGC,
			},
			"go_version":   runtime.Version(),
			"dependencies": deps,
		})
	}
}

const logTailBytes = 64 << 10

// tailLogs returns the last 64 KiB of the application log.
func tailLogs(path, token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if subtle.ConstantTimeCompare([]byte(c.Query("token")), []byte(token)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		f, err := os.Open(path)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
			return
		}
		defer f.Close()

		if info, err := f.Stat(); err == nil && info.Size() > logTailBytes {
			_, _ = f.Seek(info.Size()-logTailBytes, io.SeekStart)
		}
		data, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
	}
}
