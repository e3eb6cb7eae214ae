package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/geopulse/geopulse/internal/telemetry"
)

// rateLimiter keeps one token bucket per client IP. Stale buckets are swept
// so the map does not grow without bound.
type rateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientBucket
	rps      rate.Limit
	burst    int
	lastSeen time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type clientBucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newRateLimiter(rps, burst int) *rateLimiter {
	rl := &rateLimiter{
		clients:  make(map[string]*clientBucket),
		rps:      rate.Limit(rps),
		burst:    burst,
		lastSeen: 10 * time.Minute,
		stop:     make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, b := range rl.clients {
				if time.Since(b.seen) > rl.lastSeen {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// close stops the sweeper goroutine. Safe to call more than once.
func (rl *rateLimiter) close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.clients[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[ip] = b
	}
	b.seen = time.Now()
	return b.limiter.Allow()
}

// middleware rejects clients that exceed their per-IP budget.
func (rl *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			telemetry.RecordRateLimited()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, please try again later",
			})
			return
		}
		c.Next()
	}
}

// corsMiddleware allows browser clients from any origin; the API carries no
// credentials.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// observability logs each request and feeds the latency histogram.
func observability(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		telemetry.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).
			Observe(elapsed.Seconds())

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("elapsed", elapsed).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}
