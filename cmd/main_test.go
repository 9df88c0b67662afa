package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	app "github.com/okian/shoplist/internal/app"
	"github.com/okian/shoplist/internal/config"
	"github.com/okian/shoplist/pkg/logger"
	"github.com/okian/shoplist/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("SHOPLIST_ADDR", ":8081")
			_ = os.Setenv("SHOPLIST_STORE", "memory")
			defer func() {
				_ = os.Unsetenv("SHOPLIST_ADDR")
				_ = os.Unsetenv("SHOPLIST_STORE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
			})
		})

		convey.Convey("When opening the configured store", func() {
			ctx := context.Background()
			cfg := config.New(ctx)

			convey.Convey("Then memory should be the default", func() {
				store, err := openStore(ctx, cfg)
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.Backend(), convey.ShouldEqual, "memory")
				convey.So(store.Close(ctx), convey.ShouldBeNil)
			})

			convey.Convey("And an unknown store should be rejected", func() {
				cfg.Store = "redis"
				_, err := openStore(ctx, cfg)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})

			convey.Convey("And an unreachable mongo should fail fast", func() {
				cfg.Store = config.StoreMongo
				cfg.MongoURI = "mongodb://127.0.0.1:1"
				cfg.MongoConnectTimeoutMS = 200
				_, err := openStore(ctx, cfg)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})

			convey.Convey("Then the metrics config keys should shape the global manager", func() {
				cfg := config.New(context.Background())
				cfg.MetricsEnabled = false
				cfg.MetricsNamespace = "groceries"
				cfg.MetricsRefreshMS = 1500
				cfg.MetricsLabels = map[string]string{"env": "test"}
				defer metrics.Init()

				m := metrics.Init(metricsOptions(cfg)...)
				convey.So(m.Enabled(), convey.ShouldBeFalse)
				convey.So(metrics.Enabled(), convey.ShouldBeFalse)
				convey.So(metrics.RefreshInterval(), convey.ShouldEqual, 1500*time.Millisecond)

				families, err := metrics.GetRegistry().Gather()
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(families), convey.ShouldBeGreaterThan, 0)
				for _, f := range families {
					convey.So(strings.HasPrefix(f.GetName(), "groceries_api_"), convey.ShouldBeTrue)
				}
			})

			convey.Convey("Then the defaults should match the metrics package defaults", func() {
				defer metrics.Init()
				metrics.Init(metricsOptions(config.New(context.Background()))...)
				convey.So(metrics.Enabled(), convey.ShouldBeTrue)
				convey.So(metrics.RefreshInterval(), convey.ShouldEqual, 10*time.Second)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should return once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})

			convey.Convey("Then it should tick on the configured refresh interval", func() {
				defer metrics.Init()
				metrics.Init(metrics.WithRefreshInterval(10 * time.Millisecond))

				ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
				defer cancel()
				startSystemMetricsUpdater(ctx)

				body := scrape(newRouter(context.Background(), app.New()))
				convey.So(body, convey.ShouldContainSubstring, "shoplist_api_system_goroutines")
				convey.So(body, convey.ShouldNotContainSubstring, "shoplist_api_system_goroutines 0\n")
				convey.So(body, convey.ShouldNotContainSubstring, "go_goroutines")
				convey.So(body, convey.ShouldNotContainSubstring, "process_cpu_seconds_total")
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New()
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then it should return once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})

			convey.Convey("And a single update should not panic", func() {
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given the assembled router", t, func() {
		ctx := context.Background()
		svc := app.New()
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		h := newRouter(ctx, svc)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		convey.Convey("When creating and listing items", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"name":"Kale"}`)))
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)

			list := get("/items")
			convey.So(list.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(list.Body.String(), convey.ShouldContainSubstring, `"name":"Kale"`)
		})

		convey.Convey("When requesting docs and operational endpoints", func() {
			for _, path := range []string{"/healthz", "/stats", "/metrics", "/openapi.yaml", "/api-docs"} {
				convey.So(get(path).Code, convey.ShouldEqual, http.StatusOK)
			}
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When the configured address is empty", func() {
			_ = os.Setenv("SHOPLIST_ADDR", "")
			defer func() { _ = os.Unsetenv("SHOPLIST_ADDR") }()

			convey.Convey("Then run should fail before serving", func() {
				err := run(context.Background())
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the configured log format is unknown", func() {
			_ = os.Setenv("SHOPLIST_LOG_FORMAT", "xml")
			defer func() {
				_ = os.Unsetenv("SHOPLIST_LOG_FORMAT")
				_ = logger.Init(logger.WithWriter(io.Discard))
			}()

			convey.Convey("Then run should fail", func() {
				err := run(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "log format")
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			_ = os.Setenv("SHOPLIST_ADDR", "127.0.0.1:0")
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			defer func() {
				_ = os.Unsetenv("SHOPLIST_ADDR")
				_ = logger.Init(logger.WithWriter(io.Discard))
			}()

			convey.Convey("Then run should shut down cleanly", func() {
				convey.So(run(ctx), convey.ShouldBeNil)
			})
		})
	})
}

// scrape returns the /metrics body served by h.
func scrape(h http.Handler) string {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return w.Body.String()
}
