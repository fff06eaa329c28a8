package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	prefsBucket  = []byte("preferences")
	visitsBucket = []byte("visits")
)

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{prefsBucket, visitsBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the raw bytes stored under key in the preferences bucket.
func (s *Store) Get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(prefsBucket).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		// bolt memory is only valid inside the transaction
		out = append([]byte(nil), data...)
		return nil
	})
	return out, err
}

func (s *Store) Put(key string, value []byte) error {
	return withRetry(func() error {
		return s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(prefsBucket).Put([]byte(key), value)
		})
	})
}

func (s *Store) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(prefsBucket).Delete([]byte(key))
	})
}

// ForEach visits every stored preference in key order.
func (s *Store) ForEach(fn func(key string, value []byte) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(prefsBucket).ForEach(func(k, v []byte) error {
			return fn(string(k), append([]byte(nil), v...))
		})
	})
}

// RecordVisit bumps the visit counter for a post and stamps it with at.
func (s *Store) RecordVisit(postID int, title string, at time.Time) error {
	key := []byte(strconv.Itoa(postID))
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(visitsBucket)

		visit := Visit{PostID: postID}
		if data := b.Get(key); data != nil {
			if err := json.Unmarshal(data, &visit); err != nil {
				visit = Visit{PostID: postID}
			}
		}
		visit.Title = title
		visit.VisitedAt = at
		visit.Count++

		data, err := json.Marshal(visit)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

func (s *Store) GetVisit(postID int) (*Visit, error) {
	var visit Visit
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(visitsBucket).Get([]byte(strconv.Itoa(postID)))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &visit)
	})
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// VisitedIDs returns the set of post IDs with at least one recorded visit.
func (s *Store) VisitedIDs() (map[int]bool, error) {
	ids := make(map[int]bool)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(visitsBucket).ForEach(func(k, _ []byte) error {
			id, err := strconv.Atoi(string(k))
			if err != nil {
				return nil
			}
			ids[id] = true
			return nil
		})
	})
	return ids, err
}

// RecentVisits returns visits newest first, capped at limit when limit > 0.
func (s *Store) RecentVisits(limit int) ([]*Visit, error) {
	var visits []*Visit
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(visitsBucket).ForEach(func(_ []byte, v []byte) error {
			var visit Visit
			if err := json.Unmarshal(v, &visit); err != nil {
				return nil
			}
			visits = append(visits, &visit)
			return nil
		})
	})
	sort.Slice(visits, func(i, j int) bool {
		return visits[i].VisitedAt.After(visits[j].VisitedAt)
	})
	if limit > 0 && len(visits) > limit {
		visits = visits[:limit]
	}
	return visits, err
}

func (s *Store) ClearVisits() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(visitsBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(visitsBucket)
		return err
	})
}

// withRetry retries fn with exponential backoff; bolt returns
// ErrTimeout-style errors when another process briefly holds the lock.
func withRetry(fn func() error) error {
	const maxRetries = 3
	backoff := 50 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt < maxRetries-1 {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return fmt.Errorf("after %d attempts: %w", maxRetries, err)
}

func retryable(err error) bool {
	for _, permanent := range []error{
		bolt.ErrDatabaseNotOpen,
		bolt.ErrDatabaseReadOnly,
		bolt.ErrKeyRequired,
		bolt.ErrKeyTooLarge,
		bolt.ErrValueTooLarge,
	} {
		if errors.Is(err, permanent) {
			return false
		}
	}
	return true
}
