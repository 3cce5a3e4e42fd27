package kernel

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/propelyu/app/services"
	"github.com/shashiranjanraj/propelyu/config"
	"github.com/shashiranjanraj/propelyu/pkg/middleware"
)

func boot(t *testing.T) *Kernel {
	t.Helper()
	root := t.TempDir()
	for k, v := range map[string]string{
		"DB_DRIVER":          "memory",
		"CACHE_DRIVER":       "memory",
		"STORAGE_DISK":       "local",
		"STORAGE_LOCAL_ROOT": root,
		"MODEL_RETRAIN_CRON": "@every 1h",
	} {
		config.Set(k, v)
	}
	t.Cleanup(func() { config.Set("MODEL_RETRAIN_CRON", "") })

	k, err := Boot(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, k.Shutdown(ctx))
	})
	return k
}

func TestBootWiresServices(t *testing.T) {
	k := boot(t)
	assert.NotNil(t, k.Users)
	assert.NotNil(t, k.Adverts)
	assert.NotNil(t, k.Suggestions)
	assert.NotNil(t, k.GenAI)
	assert.Equal(t, []string{RetrainJob + "  [@every 1h]"}, k.Scheduler.List())
}

func TestBootRejectsBadCron(t *testing.T) {
	config.Set("DB_DRIVER", "memory")
	config.Set("CACHE_DRIVER", "memory")
	config.Set("MODEL_RETRAIN_CRON", "every now and then")
	defer config.Set("MODEL_RETRAIN_CRON", "")

	_, err := Boot(context.Background())
	assert.Error(t, err)
}

func TestHandlerMiddlewareStack(t *testing.T) {
	k := boot(t)
	h := k.NewRouter(nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "propelyu_http_requests_total")
}

func TestRateLimiterApplies(t *testing.T) {
	k := boot(t)
	h := k.NewRouter(middleware.NewRateLimiter(1, time.Minute)).Handler()

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestServesLocalStorage(t *testing.T) {
	k := boot(t)
	root := config.StorageLocalRoot()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "adverts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "adverts", "a.txt"), []byte("hello"), 0o644))

	srv := httptest.NewServer(k.NewRouter(nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/storage/adverts/a.txt")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello", string(body))
}

func TestStartTrainsInBackground(t *testing.T) {
	k := boot(t)
	ctx := context.Background()
	vendor := services.Actor{ID: "64b000000000000000000001", Role: "vendor"}
	for i, title := range []string{"Flat A", "Flat B"} {
		_, err := k.Adverts.Create(ctx, services.AdvertInput{
			Title: title, Description: "two bedroom flat", Price: float64(1000 + i*150),
			Category: "apartment", Location: "Accra",
		}, []byte("\x89PNG\r\n\x1a\n"), vendor)
		require.NoError(t, err)
	}

	k.Start()
	require.Eventually(t, func() bool { return k.Suggestions.State() != nil }, 2*time.Second, 10*time.Millisecond)
}
