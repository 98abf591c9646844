package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/denmor86/ya-payerpoints/internal/logger"
	"golang.org/x/time/rate"
)

type RateLimiter struct {
	limiter *rate.Limiter
	mu      sync.Mutex
}

// NewRateLimiter - ограничитель запросов в секунду, 0 и меньше - без ограничений
func NewRateLimiter(perSecond float64) *RateLimiter {
	rl := &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	rl.Update(perSecond)
	return rl
}

func (rl *RateLimiter) Update(perSecond float64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if perSecond <= 0 {
		rl.limiter.SetLimit(rate.Inf)
		rl.limiter.SetBurst(1)
		return
	}
	rl.limiter.SetLimit(rate.Limit(perSecond))
	rl.limiter.SetBurst(int(math.Max(1, math.Ceil(perSecond))))
}

// reserve - занимает токен, возвращает задержку до следующего доступного
func (rl *RateLimiter) reserve() (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	if rl.limiter.AllowN(now, 1) {
		return true, 0
	}
	r := rl.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, delay
}

// Limit - middleware ограничения частоты запросов
func Limit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, delay := rl.reserve()
			if !allowed {
				seconds := int(math.Ceil(delay.Seconds()))
				logger.Warn("Too many requests", r.RemoteAddr, r.RequestURI)
				w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			h.ServeHTTP(w, r)
		})
	}
}
