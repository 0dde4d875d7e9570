package podcast

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/renameio/v2"
)

// snapshotEntry is the on-disk shape of one podcast cache entry.
type snapshotEntry struct {
	Key        string  `json:"key"`
	Podcast    Podcast `json:"podcast"`
	InsertedAt int64   `json:"insertedAtUnix"`
}

// WriteSnapshot durably persists the contents of a podcast Cache to path so
// a restart can warm-start instead of forcing every subscribed feed to be
// re-queried from the remote. Grounded on xg2g/internal/jobs/write_unix.go's
// renameio.NewPendingFile + CloseAtomicallyReplace pattern: the snapshot is
// either fully written or not written at all, never half-written.
func WriteSnapshot(path string, cache *Cache[Podcast]) error {
	cache.mu.Lock()
	entries := make([]snapshotEntry, 0, len(cache.entries))
	for key, e := range cache.entries {
		entries = append(entries, snapshotEntry{Key: key, Podcast: e.value, InsertedAt: e.insertedAt.Unix()})
	}
	cache.mu.Unlock()

	pendingFile, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("podcast: create pending snapshot file: %w", err)
	}
	defer func() { _ = pendingFile.Cleanup() }()

	if err := json.NewEncoder(pendingFile).Encode(entries); err != nil {
		return fmt.Errorf("podcast: encode snapshot: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("podcast: atomically replace snapshot file: %w", err)
	}
	return nil
}

// LoadSnapshot populates cache from a previously written snapshot file. A
// missing file is not an error — it just means a cold start.
func LoadSnapshot(path string, cache *Cache[Podcast]) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("podcast: read snapshot %s: %w", path, err)
	}

	var entries []snapshotEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("podcast: decode snapshot %s: %w", path, err)
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	for _, e := range entries {
		cache.entries[e.Key] = entry[Podcast]{value: e.Podcast, insertedAt: time.Unix(e.InsertedAt, 0).UTC()}
	}
	return nil
}
