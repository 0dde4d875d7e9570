// Package downloadqueue implements component G: a process-wide singleton
// that deduplicates and streams episode downloads to disk through a bounded
// worker pool, grounded on the teacher's internal/queue package — rewritten
// from a Redis-backed distributed job queue to an in-process, mutex-guarded
// pair of slices, since a single podrelay process has no need for the
// cross-process coordination Redis bought the original.
package downloadqueue

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"podrelay/internal/applog"
	"podrelay/internal/freshen"
	"podrelay/internal/metrics"
	"podrelay/internal/podcast"
	"podrelay/internal/workerpool"
)

const (
	streamBufferSize = 64 * 1024
	idleTimeout      = 5 * time.Second
	minWorkers       = 1
)

// Queue is the download queue singleton. All field access beyond
// construction goes through mu.
type Queue struct {
	mu               sync.Mutex
	waiting          []podcast.Download
	active           []podcast.Download
	terminalCallback func()
	oldestFirst      bool

	pool       *workerpool.Pool
	httpClient *http.Client
	userAgent  string
	freshener  freshen.Freshener

	mkdirMu sync.Mutex
}

// New builds a Queue. threads is the already-resolved worker count (spec
// §4.6: download_threads in [1,50], or "auto" resolved by the caller via
// config.Settings.DownloadThreads). oldestFirst controls the waiting-queue
// sort direction (config's download_oldest_first).
func New(threads int, oldestFirst bool, userAgent string, freshener freshen.Freshener) *Queue {
	return &Queue{
		oldestFirst: oldestFirst,
		pool:        workerpool.New(minWorkers, threads, idleTimeout),
		httpClient:  &http.Client{Timeout: 0},
		userAgent:   userAgent,
		freshener:   freshener,
	}
}

// Enqueue adds d to the waiting queue unless its local file already exists
// (in which case its lastUsed attribute is refreshed) or it's already
// tracked in waiting or active. Returns whether it was newly enqueued.
func (q *Queue) Enqueue(d podcast.Download) bool {
	if _, err := os.Stat(d.LocalFilePath); err == nil {
		_ = q.freshener.Touch(d.LocalFilePath)
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for _, existing := range q.waiting {
		if existing.Equal(d) {
			return false
		}
	}
	for _, existing := range q.active {
		if existing.Equal(d) {
			return false
		}
	}

	q.waiting = append(q.waiting, d)
	q.sortWaitingLocked()
	return true
}

func (q *Queue) sortWaitingLocked() {
	sort.Slice(q.waiting, func(i, j int) bool {
		if q.oldestFirst {
			return q.waiting[i].LastModified.Before(q.waiting[j].LastModified)
		}
		return q.waiting[i].LastModified.After(q.waiting[j].LastModified)
	})
}

// ProcessQueue drains waiting into the worker pool. If terminalCallback is
// non-nil it replaces any previously registered callback; if both waiting
// and active are already empty at that point, it fires immediately.
func (q *Queue) ProcessQueue(ctx context.Context, terminalCallback func()) {
	q.mu.Lock()
	if terminalCallback != nil {
		q.terminalCallback = terminalCallback
	}

	drained := q.waiting
	q.waiting = nil
	q.active = append(q.active, drained...)

	if len(q.waiting) == 0 && len(q.active) == 0 && q.terminalCallback != nil {
		cb := q.terminalCallback
		q.terminalCallback = nil
		q.mu.Unlock()
		cb()
		return
	}
	q.mu.Unlock()

	for _, d := range drained {
		d := d
		q.pool.Submit(func() {
			q.runDownload(ctx, d)
		})
	}
}

// Waiting and Active report current queue depth, for diagnostics/metrics.
func (q *Queue) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

func (q *Queue) Active() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.active)
}

func (q *Queue) finishLocked(d podcast.Download) {
	for i, existing := range q.active {
		if existing.Equal(d) {
			q.active = append(q.active[:i], q.active[i+1:]...)
			break
		}
	}
}

// runDownload is the worker task body (spec §4.6's 11-step protocol).
func (q *Queue) runDownload(ctx context.Context, d podcast.Download) {
	logger := applog.FromContext(ctx).With().Str("url", d.RemoteURL).Str("path", d.LocalFilePath).Logger()
	start := time.Now()

	metrics.DownloadsActive.Inc()
	err := q.download(ctx, d, logger)
	metrics.DownloadsActive.Dec()

	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
	} else {
		metrics.DownloadsTotal.WithLabelValues("ok").Inc()
	}

	q.mu.Lock()
	q.finishLocked(d)
	var cb func()
	if q.terminalCallback != nil && len(q.waiting) == 0 && len(q.active) == 0 {
		cb = q.terminalCallback
		q.terminalCallback = nil
	}
	q.mu.Unlock()

	if err != nil {
		logger.Error().Err(err).Msg("download failed")
	} else {
		logger.Info().Dur("elapsed", time.Since(start)).Msg("download complete")
	}

	if cb != nil {
		cb()
	}
}

func (q *Queue) download(ctx context.Context, d podcast.Download, logger zerolog.Logger) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.RemoteURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", q.userAgent)
	req.Header.Set("Referer", d.RemoteURL)

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	dir := filepath.Dir(d.LocalFilePath)
	q.mkdirMu.Lock()
	mkdirErr := os.MkdirAll(dir, 0o755)
	q.mkdirMu.Unlock()
	if mkdirErr != nil {
		return fmt.Errorf("mkdir %s: %w", dir, mkdirErr)
	}

	partPath := d.LocalFilePath + ".part"
	if fi, lerr := os.Lstat(partPath); lerr == nil && fi.Mode()&os.ModeSymlink != 0 {
		if rmErr := os.Remove(partPath); rmErr != nil {
			return fmt.Errorf("remove stale symlink %s: %w", partPath, rmErr)
		}
	}

	f, err := os.OpenFile(partPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", partPath, err)
	}

	_ = q.freshener.Touch(partPath)

	if err := q.stream(f, resp.Body, d, logger); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync %s: %w", partPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", partPath, err)
	}

	if err := os.Chtimes(partPath, d.LastModified, d.LastModified); err != nil {
		return fmt.Errorf("set mtime on %s: %w", partPath, err)
	}

	if _, err := os.Stat(d.LocalFilePath); err == nil {
		if err := os.Remove(d.LocalFilePath); err != nil {
			return fmt.Errorf("remove existing %s: %w", d.LocalFilePath, err)
		}
	}
	if err := os.Rename(partPath, d.LocalFilePath); err != nil {
		return fmt.Errorf("rename %s to %s: %w", partPath, d.LocalFilePath, err)
	}

	return nil
}

// stream copies body into f in fixed-size buffers, printing a progress line
// each time the written-so-far percentage crosses a new multiple of 10.
func (q *Queue) stream(f io.Writer, body io.Reader, d podcast.Download, logger zerolog.Logger) error {
	buf := make([]byte, streamBufferSize)
	var written int64
	lastPrinted := -1
	name := filepath.Base(d.LocalFilePath)

	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write: %w", werr)
			}
			written += int64(n)
			if d.LengthBytes > 0 {
				pct := int(written * 100 / d.LengthBytes)
				threshold := (pct / 10) * 10
				if threshold > lastPrinted && threshold > 0 && threshold < 100 {
					lastPrinted = threshold
					fmt.Printf("  %d%% %s\n", threshold, name)
				}
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("read: %w", rerr)
		}
	}
}
