package util

import (
	"net/http"
	"testing"
	"time"
)

func resolve(t *testing.T, httpProxy, httpsProxy, noProxy, target string) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	u, err := NewProxyFunc(httpProxy, httpsProxy, noProxy)(req)
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u == nil {
		return ""
	}
	return u.String()
}

func TestNewProxyFunc_SchemeSelection(t *testing.T) {
	got := resolve(t, "http://plain.proxy:8080", "http://secure.proxy:8443", "", "https://api.example.com/v1")
	if got != "http://secure.proxy:8443" {
		t.Errorf("https request: got %q", got)
	}

	got = resolve(t, "http://plain.proxy:8080", "http://secure.proxy:8443", "", "http://api.example.com/v1")
	if got != "http://plain.proxy:8080" {
		t.Errorf("http request: got %q", got)
	}
}

func TestNewProxyFunc_HTTPSFallsBackToHTTPProxy(t *testing.T) {
	got := resolve(t, "http://plain.proxy:8080", "", "", "https://api.example.com/v1")
	if got != "http://plain.proxy:8080" {
		t.Errorf("got %q, want http proxy", got)
	}
}

func TestNewProxyFunc_NoProxy(t *testing.T) {
	got := resolve(t, "http://plain.proxy:8080", "", "internal.example.com", "http://internal.example.com/api")
	if got != "" {
		t.Errorf("expected direct connection, got %q", got)
	}

	got = resolve(t, "http://plain.proxy:8080", "", "internal.example.com", "http://api.example.com/api")
	if got != "http://plain.proxy:8080" {
		t.Errorf("non-excluded host: got %q", got)
	}
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient(5*time.Second, "http://plain.proxy:8080", "", "")
	if client.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", client.Timeout)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport type %T", client.Transport)
	}
	if transport.Proxy == nil {
		t.Error("expected proxy func on transport")
	}
}
