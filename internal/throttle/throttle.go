// Package throttle is a bbolt-backed fixed-window rate limiter guarding the
// public form endpoints against drive-by spam. Counters survive restarts,
// which an in-memory map would not.
package throttle

import (
	"encoding/binary"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("throttle")

type Limiter struct {
	db     *bolt.DB
	limit  int
	window time.Duration
}

// NewLimiter opens (or creates) the throttle store under workdir/data.
func NewLimiter(workdir string, limit int, window time.Duration) (*Limiter, error) {
	if limit <= 0 {
		limit = 20
	}
	if window <= 0 {
		window = time.Hour
	}
	db, err := bolt.Open(filepath.Join(workdir, "data", "throttle.db"), 0o600,
		&bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open throttle store")
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Limiter{db: db, limit: limit, window: window}, nil
}

// Allow counts one hit for key and reports whether it is still inside the
// window budget. Window boundaries are fixed, not sliding.
func (l *Limiter) Allow(key string) bool {
	windowID := time.Now().Unix() / int64(l.window/time.Second)
	allowed := false
	err := l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		k := []byte(key)

		var storedWindow int64
		var count uint32
		if v := b.Get(k); len(v) == 12 {
			storedWindow = int64(binary.BigEndian.Uint64(v[:8]))
			count = binary.BigEndian.Uint32(v[8:])
		}
		if storedWindow != windowID {
			storedWindow = windowID
			count = 0
		}
		count++
		allowed = count <= uint32(l.limit)

		v := make([]byte, 12)
		binary.BigEndian.PutUint64(v[:8], uint64(storedWindow))
		binary.BigEndian.PutUint32(v[8:], count)
		return b.Put(k, v)
	})
	if err != nil {
		// storage trouble must not lock visitors out
		return true
	}
	return allowed
}

// Close releases the store.
func (l *Limiter) Close() error {
	return l.db.Close()
}
