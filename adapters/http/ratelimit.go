package authhttp

import (
	"net"
	"net/http"
	"net/netip"
)

// RateLimiter is a minimal interface used by the adapter.
type RateLimiter interface {
	AllowNamed(bucket string, key string) (bool, error)
}

// ClientIPFunc determines the client IP used for rate limiting.
//
// Returning an empty string means "unknown" and causes rate limiting to fail open.
type ClientIPFunc func(r *http.Request) string

// DefaultClientIP uses RemoteAddr when it is a public address and fails open
// otherwise, so a reverse proxy is never rate-limited as a single client.
// Hosts behind proxies should supply their own strategy via WithClientIPFunc.
func DefaultClientIP() ClientIPFunc {
	return func(r *http.Request) string {
		ip := remoteIP(r)
		if ip == "" {
			return ""
		}
		addr, err := netip.ParseAddr(ip)
		if err != nil {
			return ""
		}
		if addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsUnspecified() {
			return ""
		}
		return addr.String()
	}
}

func remoteIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
