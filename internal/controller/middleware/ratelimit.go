package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"storeplane/internal/apierr"
	"storeplane/pkg/api"

	"golang.org/x/time/rate"
)

// RateLimiter enforces per-client-IP request limits using independent token
// buckets for general API traffic and store-creation traffic. Failed
// requests (status >= 400) are refunded so they do not count against the
// limit ("skip-failed" semantics).
type RateLimiter struct {
	generalLimit  rate.Limit
	generalBurst  int
	createLimit   rate.Limit
	createBurst   int
	ttl           time.Duration
	general       sync.Map // client IP -> *cachedLimiter
	create        sync.Map // client IP -> *cachedLimiter
}

// Option configures a RateLimiter.
type Option func(*RateLimiter)

// WithTTL overrides how long an idle per-IP limiter is kept before eviction.
func WithTTL(ttl time.Duration) Option {
	return func(l *RateLimiter) { l.ttl = ttl }
}

// NewRateLimiter builds a RateLimiter from the configured windows and caps.
// window is the rate-limit window (e.g. 1 minute); maxRequests and
// maxCreates are the per-window caps for general and create traffic.
func NewRateLimiter(window time.Duration, maxRequests, maxCreates int, opts ...Option) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	l := &RateLimiter{
		generalLimit: rate.Limit(float64(maxRequests) / window.Seconds()),
		generalBurst: maxRequests,
		createLimit:  rate.Limit(float64(maxCreates) / window.Seconds()),
		createBurst:  maxCreates,
		ttl:          10 * time.Minute,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type cachedLimiter struct {
	limiter   *rate.Limiter
	expiresAt time.Time
}

func (l *RateLimiter) limiterFor(bucket *sync.Map, key string, limit rate.Limit, burst int) *rate.Limiter {
	if v, ok := bucket.Load(key); ok {
		cached := v.(*cachedLimiter)
		if time.Now().Before(cached.expiresAt) {
			return cached.limiter
		}
	}
	lim := rate.NewLimiter(limit, burst)
	bucket.Store(key, &cachedLimiter{limiter: lim, expiresAt: time.Now().Add(l.ttl)})
	return lim
}

// General rate-limits any request by client IP.
func (l *RateLimiter) General(next http.Handler) http.Handler {
	return l.limit(next, &l.general, l.generalLimit, l.generalBurst)
}

// Create rate-limits store-creation requests by client IP, in addition to
// whatever General already applied.
func (l *RateLimiter) Create(next http.Handler) http.Handler {
	return l.limit(next, &l.create, l.createLimit, l.createBurst)
}

func (l *RateLimiter) limit(next http.Handler, bucket *sync.Map, limit rate.Limit, burst int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lim := l.limiterFor(bucket, clientIP(r), limit, burst)

		now := time.Now()
		reservation := lim.ReserveN(now, 1)
		if reservation.Delay() > 0 {
			reservation.Cancel()
			w.Header().Set("Retry-After", strconv.Itoa(int(reservation.Delay().Seconds())+1))
			writeRateLimitError(w)
			return
		}

		sw := &statusCapturingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		if sw.status >= 400 {
			// Cancel as of the reservation time: a cancel dated after the
			// reservation's time-to-act restores no tokens.
			reservation.CancelAt(now)
		}
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type statusCapturingWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusCapturingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func writeRateLimitError(w http.ResponseWriter) {
	apiErr := apierr.RateLimitExceeded()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	json.NewEncoder(w).Encode(api.ErrorResponse{
		Error: api.ErrorBody{Code: apiErr.Code, Message: apiErr.Message},
	})
}
