// Package config is the "settings table" external collaborator: a
// string-to-string table read by name, with defaults matching spec §6. The
// core never validates these values beyond what it needs to operate safely;
// full validation is this package's job, not the core's.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// Settings is a process-wide, read-mostly table. Values can be swapped out
// at runtime via Store (used by the fsnotify-driven overlay in overlay.go),
// so every read goes through the table rather than a cached copy. mu guards
// values against the concurrent read (every request-worker goroutine calls
// Get) and write (the overlay's fsnotify goroutine calls Store) that spec
// §4.11's "changes to settings are observed on each read" implies.
type Settings struct {
	mu     sync.RWMutex
	values map[string]string
}

// Defaults mirrors spec §6's defaults table.
func Defaults() map[string]string {
	home, _ := os.UserHomeDir()
	return map[string]string{
		"download_oldest_first":   "false",
		"download_threads":        "3",
		"episode_max_count":       "25",
		"http_cache_time_seconds": "3600",
		"http_hostname":           "localhost",
		"http_port":               "6499",
		"log_max_count":           "10",
		"log_dir":                 home + "/Library/Logs/podrelay",
		"log_level":               "INFO",
		"music_dir":               home + "/Music/podrelay",
		"subscribed_to":           "",
		"user_agent":              "podrelay/1.0",
		"watch_interval_minutes":  "15",
		"metrics_port":            "0",
	}
}

// New builds a Settings table from defaults overridden by environment
// variables (uppercased key names), matching the teacher's
// getEnvWithDefault pattern.
func New() *Settings {
	values := Defaults()
	for k := range values {
		if v, ok := os.LookupEnv(strings.ToUpper(k)); ok {
			values[k] = v
		}
	}
	return &Settings{values: values}
}

// Get returns the raw string value for name, or "" if unknown.
func (s *Settings) Get(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// Store replaces the value for name; used by the overlay watcher to apply a
// hot-reloaded value without reconstructing the whole table.
func (s *Settings) Store(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// Snapshot returns a copy of the whole table, for diagnostics/tests.
func (s *Settings) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *Settings) GetInt(name string) (int, error) {
	v := s.Get(name)
	return strconv.Atoi(v)
}

func (s *Settings) GetBool(name string) bool {
	return strings.EqualFold(s.Get(name), "true")
}

// DownloadThreads resolves "auto" to the logical CPU count, per spec §6.
func (s *Settings) DownloadThreads() (int, error) {
	v := s.Get("download_threads")
	if strings.EqualFold(v, "auto") {
		return runtime.NumCPU(), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("download_threads: %w", err)
	}
	if n < 1 || n > 50 {
		return 0, fmt.Errorf("download_threads must be 1..50 or \"auto\", got %d", n)
	}
	return n, nil
}

// SubscribedUsernames splits the whitespace-delimited subscribed_to value.
func (s *Settings) SubscribedUsernames() map[string]bool {
	out := make(map[string]bool)
	for _, name := range strings.Fields(s.Get("subscribed_to")) {
		out[name] = true
	}
	return out
}
