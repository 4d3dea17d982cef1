// Package metadata extracts client IP and User-Agent from inbound requests and
// carries them through the context so audit events can record where a call
// came from.
package metadata

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"custodia/pkg/requestcontext"
)

// ClientMetadata adds the caller's IP address and User-Agent to the context.
// Apply early in the chain so everything downstream sees them.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(),
			ClientIPFromRequest(r),
			r.Header.Get("User-Agent"),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DeviceSummary renders a raw User-Agent as "Browser version (OS)" for audit
// records. The parser reports the leading product token of any agent string
// as a "browser", so a recognized platform is required too; CLI and SDK
// agents like "custodia-cli/1.0" come back verbatim.
func DeviceSummary(rawUA string) string {
	if rawUA == "" {
		return ""
	}
	ua := useragent.New(rawUA)
	name, version := ua.Browser()
	os := ua.OS()
	if name == "" || os == "" {
		return rawUA
	}
	summary := name
	if version != "" {
		summary += " " + version
	}
	return summary + " (" + os + ")"
}

// ClientIPFromRequest extracts the original client IP, looking through proxy
// headers before falling back to the socket address.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		// RemoteAddr is "ip:port", or "[::1]:port" for IPv6.
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return strings.Trim(addr[:idx], "[]")
		}
		return addr
	}
	return "unknown"
}
