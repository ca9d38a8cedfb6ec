package repl

import (
	"encoding/binary"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"
)

// HistoryFile is the base name of the history database in the cache
// directory.
const HistoryFile = "history.db"

var bucketHistory = []byte("history")

// History is the persistent list of submitted REPL lines, stored in a bbolt
// database keyed by sequence number. A nil *History keeps nothing.
type History struct {
	db      *bolt.DB
	entries []string
}

// OpenHistory opens or creates the history database at path and loads its
// entries.
func OpenHistory(path string) (*History, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, ErrHistory.Wrap(err).With(slog.String("path", path))
	}

	h := &History{db: db}

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketHistory)
		if err != nil {
			return err
		}

		return b.ForEach(func(_, v []byte) error {
			h.entries = append(h.entries, string(v))

			return nil
		})
	})
	if err != nil {
		_ = db.Close()

		return nil, ErrHistory.Wrap(err).With(slog.String("path", path))
	}

	return h, nil
}

// Add appends line unless it repeats the most recent entry.
func (h *History) Add(line string) error {
	if h == nil || line == "" {
		return nil
	}

	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return nil
	}

	h.entries = append(h.entries, line)

	if h.db == nil {
		return nil
	}

	return h.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHistory)

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		return b.Put(marshalSeq(seq), []byte(line))
	})
}

// Len returns the number of entries.
func (h *History) Len() int {
	if h == nil {
		return 0
	}

	return len(h.entries)
}

// Entry returns the i'th entry, oldest first.
func (h *History) Entry(i int) (string, bool) {
	if i < 0 || i >= h.Len() {
		return "", false
	}

	return h.entries[i], true
}

// Close releases the database.
func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}

	return h.db.Close()
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)

	return b
}
