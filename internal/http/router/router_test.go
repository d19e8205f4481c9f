package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/http/middleware"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/http/router"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/metrics"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/service"
)

type stubIngest struct {
	calls int
}

func (s *stubIngest) Ingest(context.Context, service.InboundEvent) (*service.IngestResult, error) {
	s.calls++
	return &service.IngestResult{Stage: service.StageIgnored, Ignored: true}, nil
}

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

var _ = Describe("SetupRoutes", func() {
	var (
		engine *gin.Engine
		ingest *stubIngest
	)

	BeforeEach(func() {
		ingest = &stubIngest{}
		engine = gin.New()
		engine.Use(middleware.Recovery(), middleware.Metrics(), middleware.Timeout(time.Second))
		router.SetupRoutes(engine, router.RouterConfig{Ingest: ingest, Store: stubPinger{}})
	})

	serve := func(method, target, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(method, target, strings.NewReader(body)))
		return w
	}

	DescribeTable("mounts the webhook",
		func(path string) {
			w := serve(http.MethodPost, path, `{"type":"message.created","data":{"direction":"outgoing"}}`)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(ingest.calls).To(Equal(1))
		},
		Entry("legacy path", "/webhook"),
		Entry("versioned path", "/api/v1/webhook"),
	)

	It("does not accept GET on the webhook", func() {
		w := serve(http.MethodGet, "/webhook", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(ingest.calls).To(BeZero())
	})

	It("counts requests by route template", func() {
		counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/health", "200")
		before := testutil.ToFloat64(counter)

		Expect(serve(http.MethodGet, "/health", "").Code).To(Equal(http.StatusOK))
		Expect(testutil.ToFloat64(counter)).To(Equal(before + 1))
	})

	It("exposes prometheus metrics", func() {
		serve(http.MethodGet, "/ready", "")

		w := serve(http.MethodGet, "/metrics", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("chatingest_http_requests_total"))
	})
})

var _ = Describe("middleware", func() {
	It("recovers panics as a 500", func() {
		engine := gin.New()
		engine.Use(middleware.Recovery())
		engine.GET("/boom", func(*gin.Context) { panic("boom") })

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"internal server error"}`))
	})

	It("puts a deadline on the request context", func() {
		var deadline time.Time
		var ok bool

		engine := gin.New()
		engine.Use(middleware.Timeout(time.Minute))
		engine.GET("/slow", func(c *gin.Context) {
			deadline, ok = c.Request.Context().Deadline()
			c.Status(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(ok).To(BeTrue())
		Expect(deadline).To(BeTemporally("~", time.Now().Add(time.Minute), 5*time.Second))
	})

	It("logs without failing the request", func() {
		engine := gin.New()
		engine.Use(middleware.Logger())
		engine.GET("/teapot", func(c *gin.Context) { c.Status(http.StatusTeapot) })

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teapot?text=secret", nil))
		Expect(w.Code).To(Equal(http.StatusTeapot))
	})
})
