package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func resolveIP(t *testing.T, header map[string]string) string {
	t.Helper()

	app := fiber.New()
	var got string
	app.Get("/", func(c *fiber.Ctx) error {
		got = clientIP(c)
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	return got
}

// Two visitors behind the same reverse proxy must resolve to their own
// addresses, not the proxy's, or per-IP dedup collapses them into one.
func TestClientIPHonorsForwardedHeader(t *testing.T) {
	first := resolveIP(t, map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"})
	second := resolveIP(t, map[string]string{"X-Forwarded-For": "203.0.113.8, 10.0.0.1"})

	require.Equal(t, "203.0.113.7", first)
	require.Equal(t, "203.0.113.8", second)
	require.NotEqual(t, first, second)
}

func TestClientIPRealIPHeader(t *testing.T) {
	require.Equal(t, "198.51.100.4", resolveIP(t, map[string]string{"X-Real-IP": "198.51.100.4"}))
}

func TestClientIPFallsBackToRemoteAddr(t *testing.T) {
	// app.Test connections carry a synthetic remote address; without proxy
	// headers the helper must still return something host-shaped.
	require.NotEmpty(t, resolveIP(t, nil))
}
