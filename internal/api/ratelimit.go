package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/ramonehamilton/duelscope/internal/api/response"
)

var errRateLimited = errors.New("rate limit exceeded")

// rateLimit rejects requests beyond a shared token bucket with 429.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reservation := limiter.Reserve()
			if !reservation.OK() {
				response.TooManyRequests(w, errRateLimited)
				return
			}
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				response.TooManyRequests(w, errRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
