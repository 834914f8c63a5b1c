package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	app := newTestApplication(t)

	testCases := []struct {
		name       string
		remoteAddr string
		forwarded  string
		expected   string
	}{
		{name: "direct", remoteAddr: "1.2.3.4:5678", expected: "1.2.3.4"},
		{name: "forwarded", remoteAddr: "10.0.0.1:80", forwarded: "1.2.3.4", expected: "1.2.3.4"},
		{name: "forwarded chain", remoteAddr: "10.0.0.1:80", forwarded: "1.2.3.4, 10.0.0.2", expected: "1.2.3.4"},
		{name: "no port", remoteAddr: "1.2.3.4", expected: "1.2.3.4"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}

			assert.Equal(t, tc.expected, app.clientIP(req))
		})
	}
}
