package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/notesweb/internal/telemetry/metrics"
	"github.com/2beens/notesweb/pkg"
)

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit allows allowedPerMin requests per client ip, for all routes it is applied to.
// Client ips come from ipReader, which only trusts proxy headers from configured proxies.
func RateLimit(
	rateLimiter RequestRateLimiter,
	ipReader *pkg.ClientIPReader,
	metricsManager *metrics.Manager,
	limiterName string,
	allowedPerMin int,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userIp, err := ipReader.ReadUserIP(r)
			if err != nil {
				log.Debugf("rate limit, read user ip: %s", err)
				userIp = "unknown"
			}

			res, err := rateLimiter.Allow(
				r.Context(),
				limiterName+"||"+userIp,
				redis_rate.PerMinute(allowedPerMin),
			)
			if err != nil {
				// fail open
				log.Errorf("rate limit [%s] for %s: %s", limiterName, userIp, err)
				next.ServeHTTP(w, r)
				return
			}

			if res.Allowed > 0 {
				next.ServeHTTP(w, r)
				return
			}

			if metricsManager != nil {
				metricsManager.CounterRateLimitedRequests.Inc()
			}
			retryAfterSec := int(res.RetryAfter.Round(time.Second).Seconds())
			if retryAfterSec < 1 {
				retryAfterSec = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
			http.Error(
				w,
				fmt.Sprintf("retry after %d seconds", retryAfterSec),
				http.StatusTooManyRequests,
			)
		})
	}
}
