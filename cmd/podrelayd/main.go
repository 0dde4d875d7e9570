// Command podrelayd is the process entry point: it loads settings, wires
// every component together, and runs the HTTP server until a shutdown
// signal arrives. Grounded on cobblepod/cmd/http/main.go's signal-handling
// and graceful-shutdown skeleton.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"podrelay/internal/applog"
	"podrelay/internal/config"
	"podrelay/internal/downloadqueue"
	"podrelay/internal/freshen"
	"podrelay/internal/fsresolve"
	"podrelay/internal/metrics"
	"podrelay/internal/podcast"
	"podrelay/internal/remote"
	"podrelay/internal/responders"
	"podrelay/internal/webserver"
)

const (
	podcastCacheTTL     = time.Hour
	defaultViewCacheTTL = 24 * time.Hour
	remoteRateLimit     = 4 // queries/sec against the remote's GraphQL API
	remoteRateBurst     = 8
)

func main() {
	settings := config.New()

	logger, err := applog.NewFile(settings.Get("log_level"), settings.Get("log_dir"), mustInt(settings, "log_max_count", 10))
	if err != nil {
		logger = applog.New(settings.Get("log_level"), true)
		logger.Warn().Err(err).Msg("falling back to stdout-only logging")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = applog.WithContext(ctx, logger)

	if overlayPath := os.Getenv("PODRELAY_CONFIG_OVERLAY"); overlayPath != "" {
		overlay, err := config.NewOverlay(settings, overlayPath)
		if err != nil {
			logger.Error().Err(err).Msg("failed to load config overlay")
		} else if err := overlay.Start(ctx, logger); err != nil {
			logger.Error().Err(err).Msg("failed to start config overlay watcher")
		}
	}

	resolver, err := fsresolve.New(settings.Get("music_dir"))
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize file resolver")
		os.Exit(1)
	}

	freshener := freshen.New()

	defaultViews, err := podcast.OpenDefaultViewStore(settings.Get("log_dir")+"/defaultviews", defaultViewCacheTTL)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open default-view store")
		os.Exit(1)
	}
	defer defaultViews.Close()

	podcastCache := podcast.NewCache[podcast.Podcast](podcastCacheTTL, nil)
	snapshotPath := settings.Get("log_dir") + "/podcastcache.json"
	if err := podcast.LoadSnapshot(snapshotPath, podcastCache); err != nil {
		logger.Warn().Err(err).Msg("failed to load podcast cache snapshot")
	}

	threads, err := settings.DownloadThreads()
	if err != nil {
		logger.Error().Err(err).Msg("invalid download_threads")
		os.Exit(1)
	}
	queue := downloadqueue.New(threads, settings.GetBool("download_oldest_first"), settings.Get("user_agent"), freshener)

	limiter := rate.NewLimiter(rate.Limit(remoteRateLimit), remoteRateBurst)
	remoteClient := remote.New(remote.Endpoint, remote.WebBase, settings.Get("user_agent"), limiter)

	podcastXML := &responders.PodcastXML{
		Resolver:     resolver,
		Remote:       remoteClient,
		PodcastCache: podcastCache,
		DefaultViews: defaultViews,
		Queue:        queue,
		Settings:     settings,
	}

	router := &webserver.Router{
		Banner:     &responders.Banner{Version: "1.0"},
		Favicon:    &responders.Favicon{},
		Folder:     &responders.Folder{Resolver: resolver, PodcastXML: podcastXML},
		File:       &responders.File{Resolver: resolver, Freshener: freshener, PodcastXML: podcastXML},
		PodcastXML: podcastXML,
	}

	srv, err := webserver.Listen(settings.Get("http_hostname")+":"+settings.Get("http_port"), router)
	if err != nil {
		logger.Error().Err(err).Msg("failed to bind HTTP listener")
		os.Exit(1)
	}

	if metricsPort := settings.Get("metrics_port"); metricsPort != "" && metricsPort != "0" {
		go func() {
			if err := metrics.Serve(ctx, "127.0.0.1:"+metricsPort); err != nil {
				logger.Error().Err(err).Msg("metrics server exited")
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Serve(ctx); err != nil {
			logger.Error().Err(err).Msg("HTTP server failed")
			cancel()
		}
	}()

	logger.Info().Str("addr", srv.Addr().String()).Msg("podrelayd started")

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case <-ctx.Done():
		logger.Info().Msg("context canceled")
	}

	cancel()

	if err := srv.Close(); err != nil {
		logger.Error().Err(err).Msg("error closing HTTP server")
	} else {
		logger.Info().Msg("podrelayd exited gracefully")
	}

	if err := podcast.WriteSnapshot(snapshotPath, podcastCache); err != nil {
		logger.Error().Err(err).Msg("failed to write podcast cache snapshot")
	}
}

func mustInt(settings *config.Settings, key string, fallback int) int {
	n, err := settings.GetInt(key)
	if err != nil {
		return fallback
	}
	return n
}
