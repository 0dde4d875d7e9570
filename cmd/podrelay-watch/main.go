// Command podrelay-watch periodically re-polls every subscribed username's
// feed through the running podrelayd HTTP front end, so new episodes start
// downloading before a podcast client next checks in. Grounded on
// cobblepod/cmd/worker/main.go's ticker + signal-channel shutdown skeleton,
// retargeted from a job-queue poll loop to an HTTP poll loop.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"podrelay/internal/applog"
	"podrelay/internal/config"
)

const pollTimeout = 30 * time.Second

func main() {
	settings := config.New()
	logger := applog.New(settings.Get("log_level"), true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = applog.WithContext(ctx, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	interval, err := settings.GetInt("watch_interval_minutes")
	if err != nil || interval <= 0 {
		interval = 15
	}
	ticker := time.NewTicker(time.Duration(interval) * time.Minute)
	defer ticker.Stop()

	client := &http.Client{Timeout: pollTimeout}
	base := "http://" + settings.Get("http_hostname") + ":" + settings.Get("http_port")

	logger.Info().Int("interval_minutes", interval).Msg("podrelay-watch started")

	pollAll(ctx, client, base, settings, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("context canceled, shutting down")
			return
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
			return
		case <-ticker.C:
			pollAll(ctx, client, base, settings, logger)
		}
	}
}

// pollAll issues one GET per subscribed username, against that username's
// default-view feed (podrelayd resolves the view and enqueues downloads as
// a side effect of serving the response).
func pollAll(ctx context.Context, client *http.Client, base string, settings *config.Settings, logger zerolog.Logger) {
	for username := range settings.SubscribedUsernames() {
		url := base + "/" + username + ".xml"
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			logger.Error().Err(err).Str("user", username).Msg("failed to build poll request")
			continue
		}
		req.Header.Set("User-Agent", settings.Get("user_agent"))

		resp, err := client.Do(req)
		if err != nil {
			logger.Error().Err(err).Str("user", username).Msg("poll failed")
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 400 {
			logger.Warn().Str("user", username).Int("status", resp.StatusCode).Msg("poll returned error status")
			continue
		}
		logger.Info().Str("user", username).Msg("polled feed")
	}
}
