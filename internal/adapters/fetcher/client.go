package fetcher

import (
	"crypto/tls"
	"net/http"
	"time"
)

// NewHTTPClient returns the client used for asset downloads.
// A zero timeout leaves requests unbounded. Redirects follow net/http defaults.
func NewHTTPClient(timeout time.Duration) *http.Client {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	transport := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		TLSClientConfig:   tlsConfig,
		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
