package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the caller address observed for the request, without the
// port. It reads r.RemoteAddr only; forwarded headers are honoured solely when
// a trusted RealIP middleware has already rewritten RemoteAddr. The second
// return value is false when no address is available.
func ClientIP(r *http.Request) (string, bool) {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return "", false
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		// RealIP stores a bare address without a port.
		host = addr
	}

	host = strings.Trim(host, "[]")
	ip := net.ParseIP(host)
	if ip == nil {
		return "", false
	}
	return ip.String(), true
}

// ClientIPPtr is ClientIP in the optional form used by the session store.
func ClientIPPtr(r *http.Request) *string {
	ip, ok := ClientIP(r)
	if !ok {
		return nil
	}
	return &ip
}
