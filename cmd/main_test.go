package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/okian/classmates/internal/app"
	"github.com/okian/classmates/internal/config"
	"github.com/okian/classmates/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainWiring(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		t.Setenv("CLASSMATES_ADDR", ":9090")
		t.Setenv("CLASSMATES_BACKEND_URL", "http://127.0.0.1:5001")
		t.Setenv("CLASSMATES_ENV_FILE", "does-not-exist.env")
		t.Setenv("CLASSMATES_METRICS_NAMESPACE", "campus")
		t.Setenv("CLASSMATES_METRICS_REFRESH_MS", "250")

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When building the server", func() {
			backend, err := url.Parse(cfg.BackendURL)
			convey.So(err, convey.ShouldBeNil)

			metrics.Configure(cfg.MetricsOptions()...)
			convey.Reset(func() { metrics.Configure() })

			mux := http.NewServeMux()
			root := app.New(app.WithBackend(backend), app.WithBasePath(cfg.APIBasePath))
			convey.So(root.Mount(context.Background(), mux), convey.ShouldBeNil)

			srv := newServer(cfg.Addr, mux)

			convey.Convey("Then it should carry the configured address and timeouts", func() {
				convey.So(srv.Addr, convey.ShouldEqual, ":9090")
				convey.So(srv.ReadTimeout, convey.ShouldEqual, readTimeout)
				convey.So(srv.WriteTimeout, convey.ShouldEqual, writeTimeout)
				convey.So(srv.IdleTimeout, convey.ShouldEqual, idleTimeout)
				convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)
			})

			convey.Convey("And the mounted routes should answer", func() {
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("And metrics should follow the configured namespace and refresh", func() {
				updateSystemMetrics()
				convey.So(metrics.RefreshInterval(), convey.ShouldEqual, 250*time.Millisecond)

				req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
				req.Header.Set("Accept", "text/plain")
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, req)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "campus_roster_system_goroutines")
			})
		})
	})
}

func TestSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			startSystemMetricsUpdater(ctx, 5*time.Millisecond)
			close(done)
		}()
		time.Sleep(20 * time.Millisecond)
		cancel()

		convey.Convey("Then it should stop with its context", func() {
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("updater did not stop")
			}
		})

		convey.Convey("And the goroutine gauge should be populated", func() {
			n, err := testutil.GatherAndCount(metrics.GetRegistry(), "classmates_roster_system_goroutines")
			convey.So(err, convey.ShouldBeNil)
			convey.So(n, convey.ShouldEqual, 1)
		})
	})
}
