package shared

import (
	"net"
	"strings"
)

// ExtractClientIP resolves the real client address from proxy headers, in a
// fixed priority order, falling back to the transport remote address. Returns
// "" when nothing resolves.
func ExtractClientIP(headers map[string]string, remoteAddr string) string {
	if forwarded := headers["X-Forwarded-For"]; forwarded != "" {
		// First hop in the chain is the originating client.
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(headers["X-Real-IP"]); realIP != "" {
		return realIP
	}

	if cfIP := strings.TrimSpace(headers["CF-Connecting-IP"]); cfIP != "" {
		return cfIP
	}

	if remoteAddr == "" {
		return ""
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
