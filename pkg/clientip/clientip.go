package clientip

import (
	"net"
	"net/http"
	"strings"
	"sync/atomic"
)

var trustProxy atomic.Bool

// SetTrustProxy controls whether X-Forwarded-For and X-Real-IP are honoured.
// Only enable it when the service sits behind a proxy that overwrites them.
func SetTrustProxy(trust bool) {
	trustProxy.Store(trust)
}

// RealClientIP returns the client IP used for rate limiting and logging.
// By default only r.RemoteAddr is used; with SetTrustProxy(true) the first
// X-Forwarded-For hop wins, then X-Real-IP.
func RealClientIP(r *http.Request) string {
	if trustProxy.Load() {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
