// Package statestore persists the committed oracle storage and an
// append-only operation log in a single pebble database. Documents are CBOR
// encoded. The store is written from inside the engine's commit hook, so
// writes are already serialized.
package statestore

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/cockroachdb/pebble"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/ugorji/go/codec"

	"github.com/tzoracle/oracled/internal/core/state"
)

const logCacheSize = 256

var (
	storageKey = []byte("s/current")
	logPrefix  = []byte("l/")
)

// LogEntry is one applied operation in the durable op log.
type LogEntry struct {
	Seq       uint64 `json:"seq"`
	Kind      string `json:"kind"`
	Caller    string `json:"caller"`
	Amount    uint64 `json:"amount"`
	Result    string `json:"result"`
	AppliedAt int64  `json:"applied_at"`
	Op        []byte `json:"op,omitempty"`
}

// Store is the pebble-backed persistence layer.
type Store struct {
	mu    sync.Mutex
	db    *pebble.DB
	path  string
	seq   uint64
	cbor  *codec.CborHandle
	cache *lru.Cache[uint64, *LogEntry]
	log   zerolog.Logger
}

// Open opens (or creates) the store at path and recovers the last log
// sequence number.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", path, err)
	}

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}

	cache, err := lru.New[uint64, *LogEntry](logCacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		db:    db,
		path:  path,
		cbor:  new(codec.CborHandle),
		cache: cache,
		log:   logger.With().Str("component", "statestore").Logger(),
	}

	if err := s.recoverSeq(); err != nil {
		db.Close()
		return nil, err
	}

	s.log.Info().Str("path", path).Uint64("last_seq", s.seq).Msg("store opened")
	return s, nil
}

// recoverSeq scans to the last op-log key to resume sequence numbering.
func (s *Store) recoverSeq() error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: logPrefix,
		UpperBound: []byte("l0"), // '0' is the byte after '/'
	})
	if err != nil {
		return fmt.Errorf("open log iterator: %w", err)
	}
	defer iter.Close()

	if iter.Last() && iter.Valid() {
		key := iter.Key()
		if len(key) == len(logPrefix)+8 {
			s.seq = binary.BigEndian.Uint64(key[len(logPrefix):])
		}
	}
	return iter.Error()
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// LoadStorage reads the committed storage document. The second return is
// false when no document has ever been committed (fresh data dir).
func (s *Store) LoadStorage() (*state.Storage, bool, error) {
	value, closer, err := s.db.Get(storageKey)
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read storage document: %w", err)
	}
	defer closer.Close()

	st := state.New()
	if err := codec.NewDecoderBytes(value, s.cbor).Decode(st); err != nil {
		return nil, false, fmt.Errorf("decode storage document: %w", err)
	}
	return st, true, nil
}

// Commit atomically writes the new storage document and appends the op-log
// entry, assigning it the next sequence number.
func (s *Store) Commit(st *state.Storage, entry *LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Seq = s.seq + 1

	var doc []byte
	if err := codec.NewEncoderBytes(&doc, s.cbor).Encode(st); err != nil {
		return fmt.Errorf("encode storage document: %w", err)
	}
	var raw []byte
	if err := codec.NewEncoderBytes(&raw, s.cbor).Encode(entry); err != nil {
		return fmt.Errorf("encode log entry: %w", err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	if err := batch.Set(storageKey, doc, nil); err != nil {
		return err
	}
	if err := batch.Set(logKey(entry.Seq), raw, nil); err != nil {
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	s.seq = entry.Seq
	s.cache.Add(entry.Seq, entry)
	s.log.Debug().Uint64("seq", entry.Seq).Str("kind", entry.Kind).Msg("committed")
	return nil
}

// Log fetches one op-log entry by sequence number, serving recent entries
// from the in-memory cache.
func (s *Store) Log(seq uint64) (*LogEntry, bool, error) {
	if e, ok := s.cache.Get(seq); ok {
		return e, true, nil
	}

	value, closer, err := s.db.Get(logKey(seq))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read log entry %d: %w", seq, err)
	}
	defer closer.Close()

	e := new(LogEntry)
	if err := codec.NewDecoderBytes(value, s.cbor).Decode(e); err != nil {
		return nil, false, fmt.Errorf("decode log entry %d: %w", seq, err)
	}
	s.cache.Add(seq, e)
	return e, true, nil
}

// LastSeq returns the sequence number of the most recent log entry, 0 when
// the log is empty.
func (s *Store) LastSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

func logKey(seq uint64) []byte {
	key := make([]byte, len(logPrefix)+8)
	copy(key, logPrefix)
	binary.BigEndian.PutUint64(key[len(logPrefix):], seq)
	return key
}
