package design

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestMetricsHandler(t *testing.T) {
	c := newController(t)
	m := mustCreate(t, c, "cube", v3.Vec{})
	c.TrySnap(m.ID, SnapOptions{})

	srv := httptest.NewServer(MetricsHandler())
	defer srv.Close()

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/metrics", http.StatusOK, "prefab_modules"},
		{"/metrics", http.StatusOK, "prefab_snap_attempts_total"},
		{"/other", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path+" "+tt.want, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if !strings.Contains(string(body), tt.want) {
				t.Errorf("body missing %s", tt.want)
			}
		})
	}
}

func TestServeMetrics(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ServeMetrics(ctx, "127.0.0.1:0", log); err != nil {
		t.Errorf("stopped server returned %v", err)
	}

	if err := ServeMetrics(context.Background(), "127.0.0.1:not-a-port", log); err == nil {
		t.Error("bad address accepted")
	}
}
