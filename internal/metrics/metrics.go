// Package metrics exposes the process's prometheus gauges/counters on a
// dedicated loopback-only listener, grounded on the promauto style the rest
// of the corpus uses (e.g. xg2g's internal/ratelimit.rateLimitExceeded).
package metrics

import (
	"context"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DownloadsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "podrelay",
		Name:      "downloads_active",
		Help:      "Number of downloads currently in flight.",
	})

	DownloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "podrelay",
		Name:      "downloads_total",
		Help:      "Total completed downloads, by result.",
	}, []string{"result"})

	PodcastCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "podrelay",
		Name:      "podcast_cache_hits_total",
		Help:      "Total podcast-cache lookups that hit a fresh entry.",
	})

	PodcastCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "podrelay",
		Name:      "podcast_cache_misses_total",
		Help:      "Total podcast-cache lookups that missed or found a stale entry.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "podrelay",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests served, by request path (route label) and status.",
	}, []string{"route", "status"})
)

// Serve starts the metrics listener on hostPort, binding exactly the address
// given; podrelayd passes a loopback address (spec's metrics_port: "0" default disables it entirely — callers should
// not call Serve in that case). It runs until ctx is canceled.
func Serve(ctx context.Context, hostPort string) error {
	ln, err := net.Listen("tcp", hostPort)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	err = srv.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
