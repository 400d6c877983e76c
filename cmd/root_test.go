package cmd

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/opsgrid/check-cm/internal/config"
)

// A target missing --service must fail during option resolution, before
// the API is ever contacted.
func TestUsageErrorBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}

	rootCmd.SetArgs([]string{
		"--host", host,
		"--port", port,
		"--user", "admin",
		"--password", "secret",
		"--cluster", "prod",
	})
	err = rootCmd.Execute()

	var uerr *config.UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("Execute() error = %v, want a usage error", err)
	}
	if !strings.Contains(err.Error(), "--cluster and --service") {
		t.Errorf("error %q should name the required flags", err)
	}
	if got := hits.Load(); got != 0 {
		t.Errorf("API server was contacted %d time(s) before validation failed", got)
	}
}
