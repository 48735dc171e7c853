package util

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"10.0.0.0/8", "192.168.1.10"})
	if err != nil {
		t.Fatalf("new trusted proxies: %v", err)
	}

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xrip       string
		trusted    *TrustedProxies
		want       string
	}{
		{"untrusted peer ignores headers", "198.51.100.10:1234", "203.0.113.5", "203.0.113.6", nil, "198.51.100.10"},
		{"trusted peer uses forwarded for", "10.0.0.20:1234", "203.0.113.5", "", trusted, "203.0.113.5"},
		{"rightmost untrusted hop wins", "10.0.0.20:1234", "203.0.113.9, 203.0.113.5, 10.0.0.10", "", trusted, "203.0.113.5"},
		{"real ip when forwarded for unusable", "192.168.1.10:80", "garbage", "203.0.113.7", trusted, "203.0.113.7"},
		{"all hops trusted returns leftmost", "10.0.0.20:1234", "10.0.0.5, 10.0.0.10", "", trusted, "10.0.0.5"},
		{"ipv6 peer", "[2001:db8::1]:443", "", "", trusted, "2001:db8::1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://example.com", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xrip != "" {
				req.Header.Set("X-Real-IP", tc.xrip)
			}
			if got := ClientIP(req, tc.trusted); got != tc.want {
				t.Fatalf("client ip = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewTrustedProxies(t *testing.T) {
	p, err := NewTrustedProxies([]string{" ", ""})
	if err != nil || p != nil {
		t.Fatalf("expected nil policy for empty input, got %v %v", p, err)
	}
	if _, err := NewTrustedProxies([]string{"bad-cidr"}); err == nil {
		t.Fatal("expected parse error for invalid entry")
	}
}
