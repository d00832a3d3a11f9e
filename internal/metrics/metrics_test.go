package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dfryer1193/flog/blog/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_ObserveSync(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveSync(domain.SyncResult{Created: 2, Deleted: 1}, nil, 10*time.Millisecond)
	c.ObserveSync(domain.SyncResult{Updated: 1}, &domain.PersistenceError{Op: "update", Slug: "x", Err: errors.New("boom")}, time.Millisecond)
	c.ObserveSync(domain.SyncResult{}, &domain.SyncInProgressError{}, 0)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"ok runs", testutil.ToFloat64(c.syncRuns.WithLabelValues("ok")), 1},
		{"persistence runs", testutil.ToFloat64(c.syncRuns.WithLabelValues("persistence")), 1},
		{"in progress runs", testutil.ToFloat64(c.syncRuns.WithLabelValues("sync_in_progress")), 1},
		{"created", testutil.ToFloat64(c.syncChanges.WithLabelValues("created")), 2},
		{"updated", testutil.ToFloat64(c.syncChanges.WithLabelValues("updated")), 1},
		{"deleted", testutil.ToFloat64(c.syncChanges.WithLabelValues("deleted")), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(c.syncDuration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestCollector_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	r := gin.New()
	r.Use(c.Middleware())
	r.GET("/api/posts/:id", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	for _, path := range []string{"/api/posts/1", "/api/posts/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/posts/:id", "200")); got != 2 {
		t.Errorf("matched requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
}

func TestHandler_ServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObserveSync(domain.SyncResult{Created: 1}, nil, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "flog_sync_runs_total") {
		t.Errorf("body missing flog_sync_runs_total:\n%s", body)
	}
}
