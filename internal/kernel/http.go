package kernel

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/propelyu/app/routes"
	"github.com/shashiranjanraj/propelyu/config"
	"github.com/shashiranjanraj/propelyu/pkg/metrics"
	"github.com/shashiranjanraj/propelyu/pkg/middleware"
	"github.com/shashiranjanraj/propelyu/pkg/router"
	"github.com/shashiranjanraj/propelyu/pkg/storage"
)

// NewRouter builds the router with the global middleware stack and every API
// route mounted. limiter may be nil to disable rate limiting.
//
// Global middleware (outermost → innermost):
//  1. Prometheus metrics, outermost for accurate total latency
//  2. Recovery
//  3. Request ID, before anything logs
//  4. Logger
//  5. CORS
//  6. Rate limiter
func (k *Kernel) NewRouter(limiter *middleware.RateLimiter) *router.Router {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS())
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	routes.RegisterAPI(r, routes.Deps{
		Issuer:      k.Issuer,
		Users:       k.Users,
		Adverts:     k.Adverts,
		Suggestions: k.Suggestions,
		GenAI:       k.GenAI,
		Pool:        k.Pool,
	})

	if local, ok := k.Disk.(*storage.LocalDisk); ok {
		r.HandleFunc("/storage/*", http.StripPrefix("/storage/", http.FileServer(http.Dir(local.Root()))).ServeHTTP)
	}
	return r
}

// Handler is the HTTP handler served by `propelyu serve`. Requests per
// minute per client come from RATE_LIMIT (0 disables).
func (k *Kernel) Handler() http.Handler {
	var limiter *middleware.RateLimiter
	if n := config.Int("RATE_LIMIT", 200); n > 0 {
		limiter = middleware.NewRateLimiter(n, time.Minute)
		go limiter.Sweep(k.ctx)
	}
	return k.NewRouter(limiter).Handler()
}
