package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/AnshRaj112/hiddenmood-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// Every curhat costs a classifier call, so it gets its own per-IP budget.
// Signed-in users: 6/min, burst 5. Anonymous: 2/min, burst 2.
const (
	curhatAuthPerMinute = 6
	curhatAuthBurst     = 5
	curhatAnonPerMinute = 2
	curhatAnonBurst     = 2
)

var curhatLimiters = newLimiterTable(func(key string) *rate.Limiter {
	if strings.HasPrefix(key, "auth:") {
		return rate.NewLimiter(rate.Limit(curhatAuthPerMinute/60.0), curhatAuthBurst)
	}
	return rate.NewLimiter(rate.Limit(curhatAnonPerMinute/60.0), curhatAnonBurst)
})

// CurhatRateLimit throttles classification requests. Mount it after
// OptionalAuth so signed-in users get the larger budget.
func CurhatRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, auth := UserIDFromContext(r.Context())
		key, limit := "anon:"+clientip.RealClientIP(r), curhatAnonBurst
		if auth {
			key, limit = "auth:"+clientip.RealClientIP(r), curhatAuthBurst
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		if !curhatLimiters.get(key).Allow() {
			w.Header().Set("X-RateLimit-Remaining", "0")
			writeTooManyRequests(w, "Too many curhat requests. Please wait a moment before trying again.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
