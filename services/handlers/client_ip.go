package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/inkwell-cms/inkwell_api/shared"
)

// clientIP resolves the caller's address through proxy headers before falling
// back to the transport remote address. fiber's c.IP() ignores forwarding
// headers unless a single ProxyHeader is configured, so behind a reverse proxy
// it would collapse every visitor to the proxy's address.
func clientIP(c *fiber.Ctx) string {
	headers := map[string]string{
		"X-Forwarded-For":  c.Get("X-Forwarded-For"),
		"X-Real-IP":        c.Get("X-Real-IP"),
		"CF-Connecting-IP": c.Get("CF-Connecting-IP"),
	}
	return shared.ExtractClientIP(headers, c.Context().RemoteAddr().String())
}
