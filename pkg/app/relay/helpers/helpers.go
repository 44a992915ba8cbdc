// Package helpers has small functions shared by the HTTP surfaces.
package helpers

import (
	"net/http"
	"strings"
)

// GetRemoteFromReq resolves the originating client address, preferring the
// RFC 7239 Forwarded header, then X-Forwarded-For, then the socket peer.
func GetRemoteFromReq(r *http.Request) (rr string) {
	forwarded := r.Header.Get("Forwarded")
	if forwarded != "" {
		for _, part := range strings.Split(forwarded, ";") {
			part = strings.TrimSpace(part)
			if strings.HasPrefix(part, "for=") {
				forValue := strings.TrimPrefix(part, "for=")
				forValue = strings.Trim(forValue, "\"")
				// IPv6 addresses arrive in square brackets
				forValue = strings.Trim(forValue, "[]")
				return forValue
			}
		}
	}
	rem := r.Header.Get("X-Forwarded-For")
	if rem == "" {
		return r.RemoteAddr
	}
	split := strings.Split(rem, ",")
	return strings.TrimSpace(split[0])
}
