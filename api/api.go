// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/rewards/api/balances"
	"github.com/vechain/rewards/api/middleware"
	"github.com/vechain/rewards/api/minings"
	"github.com/vechain/rewards/api/pools"
	"github.com/vechain/rewards/api/subscriptions"
	"github.com/vechain/rewards/log"
	"github.com/vechain/rewards/program"
)

var logger = log.WithContext("pkg", "api")

// DefaultLogsLimit caps the number of events returned by one query.
const DefaultLogsLimit = 1000

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
	LogsLimit            uint64
	RateLimit            float64 // requests per second per client, 0 disables
	RateBurst            int
}

// New return api router and a func that ends open subscriptions.
func New(p *program.Program, opts Options) (http.Handler, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	if opts.LogsLimit == 0 {
		opts.LogsLimit = DefaultLogsLimit
	}
	if opts.EnableReqLogger == nil {
		opts.EnableReqLogger = &atomic.Bool{}
	}

	router := mux.NewRouter()

	pools.New(p, opts.LogsLimit).
		Mount(router, "/pools")
	minings.New(p).
		Mount(router, "/pools/{pool}/minings")
	balances.New(p).
		Mount(router, "/balances")
	subs := subscriptions.New(p, origins)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	router.Use(middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold))
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		router.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(opts.RateLimit, burst)))
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
	)(handler)
	return handler, subs.Close
}
