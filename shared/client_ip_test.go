package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "forwarded chain wins",
			headers:    map[string]string{"X-Forwarded-For": "9.9.9.9, 10.0.0.1", "X-Real-IP": "8.8.8.8"},
			remoteAddr: "127.0.0.1:1234",
			want:       "9.9.9.9",
		},
		{
			name:       "real ip next",
			headers:    map[string]string{"X-Real-IP": "8.8.8.8", "CF-Connecting-IP": "7.7.7.7"},
			remoteAddr: "127.0.0.1:1234",
			want:       "8.8.8.8",
		},
		{
			name:       "cloudflare header next",
			headers:    map[string]string{"CF-Connecting-IP": "7.7.7.7"},
			remoteAddr: "127.0.0.1:1234",
			want:       "7.7.7.7",
		},
		{
			name:       "remote addr fallback strips port",
			headers:    map[string]string{},
			remoteAddr: "6.6.6.6:5555",
			want:       "6.6.6.6",
		},
		{
			name:       "remote addr without port",
			headers:    map[string]string{},
			remoteAddr: "6.6.6.6",
			want:       "6.6.6.6",
		},
		{
			name:       "nothing resolves",
			headers:    map[string]string{},
			remoteAddr: "",
			want:       "",
		},
		{
			name:       "empty forwarded entry skipped",
			headers:    map[string]string{"X-Forwarded-For": " , 10.0.0.1", "X-Real-IP": "8.8.8.8"},
			remoteAddr: "127.0.0.1:1234",
			want:       "8.8.8.8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractClientIP(tt.headers, tt.remoteAddr))
		})
	}
}
