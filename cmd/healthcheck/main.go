package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultAddr = "127.0.0.1:3000"

func main() {
	os.Exit(check())
}

func check() int {
	addr := normalizeAddr(listenAddr())

	client := &http.Client{Timeout: 2 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s/health", addr), nil)
	if err != nil {
		return 1
	}
	if key := apiKey(); key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 1
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 1
	}

	return 0
}

func listenAddr() string {
	if v := os.Getenv("CATALOG_LISTEN_ADDR"); v != "" {
		return v
	}
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ""
}

func apiKey() string {
	if v := strings.TrimSpace(os.Getenv("CATALOG_API_KEY")); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv("CATALOG_DUMMY_TOKEN"))
}

// normalizeAddr points the probe at loopback when the server binds every
// interface; the probe runs inside the same container.
func normalizeAddr(raw string) string {
	if raw == "" {
		return defaultAddr
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return defaultAddr
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
