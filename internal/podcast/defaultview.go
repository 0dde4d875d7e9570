package podcast

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// DefaultViewStore is the per-username cache of "which MusicType did this
// user's bare feed resolve to last time" (spec §4.5's "parallel small cache
// memoizes default-view lookups"). It is the only default-view cache: entries
// live in an embedded disk-backed store, so a restart doesn't force every
// subscribed user's default view to be re-queried from the remote before its
// TTL has expired. Grounded on xg2g's
// internal/v3/store/badger_store.go TTL-entry pattern.
type DefaultViewStore struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenDefaultViewStore opens (creating if absent) a badger database at dir.
func OpenDefaultViewStore(dir string, ttl time.Duration) (*DefaultViewStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("podcast: open default-view store at %s: %w", dir, err)
	}
	return &DefaultViewStore{db: db, ttl: ttl}, nil
}

func (s *DefaultViewStore) Close() error {
	return s.db.Close()
}

func defaultViewKey(username string) []byte {
	return []byte("defaultview:" + username)
}

// Get returns the cached MusicType for username, or false if absent/expired
// (badger expires the key itself; a miss here is indistinguishable from
// never-cached, which is the correct behavior either way).
func (s *DefaultViewStore) Get(username string) (MusicType, bool) {
	var mt MusicType
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(defaultViewKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &mt)
		})
	})
	if err != nil {
		return "", false
	}
	return mt, true
}

// Set records username's resolved default view with the store's TTL.
func (s *DefaultViewStore) Set(username string, mt MusicType) error {
	buf, err := json.Marshal(mt)
	if err != nil {
		return fmt.Errorf("podcast: marshal default view for %s: %w", username, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(defaultViewKey(username), buf).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
}
