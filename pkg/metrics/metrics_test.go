package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/adverts/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/adverts/abc", nil))

	body := scrape(t)
	assert.Contains(t, body, `propelyu_http_requests_total{method="GET",route="/adverts/{id}",status="418"} 1`)
	assert.NotContains(t, body, "/adverts/abc")
}

func TestObserveGenAI(t *testing.T) {
	err := errors.New("boom")
	ObserveGenAI("image", time.Now(), &err)
	assert.Contains(t, scrape(t), `propelyu_genai_requests_total{kind="image",outcome="error"} 1`)
}

func TestModelGauges(t *testing.T) {
	ModelVersion.Set(3)
	assert.Contains(t, scrape(t), "propelyu_model_version 3")
}
