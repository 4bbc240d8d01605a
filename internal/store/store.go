// Package store persists harvested records in a local bbolt database, one
// bucket per currency-pair symbol. Records keep their discovery order via
// monotonically increasing keys; repeated runs append.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fxwire-hq/fxwire-news-harvester/internal/domain"
	"github.com/fxwire-hq/fxwire-news-harvester/internal/logger"
)

// Store wraps a bbolt database of NewsRecords.
type Store struct {
	db  *bolt.DB
	log logger.Logger
}

// Open opens (or creates) the database at path.
func Open(path string, log logger.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store path is empty")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveAll appends the records to their symbol buckets in one transaction,
// preserving slice order.
func (s *Store) SaveAll(records []domain.NewsRecord) error {
	if len(records) == 0 {
		return nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, rec := range records {
			if strings.TrimSpace(rec.Symbol) == "" {
				return errors.New("record has no symbol")
			}

			bucket, err := tx.CreateBucketIfNotExists([]byte(rec.Symbol))
			if err != nil {
				return fmt.Errorf("create bucket %s: %w", rec.Symbol, err)
			}

			seq, err := bucket.NextSequence()
			if err != nil {
				return fmt.Errorf("next sequence: %w", err)
			}

			payload, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal record %s: %w", rec.URL, err)
			}

			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)
			if err := bucket.Put(key, payload); err != nil {
				return fmt.Errorf("put record %s: %w", rec.URL, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.DebugObj("records persisted", "store_save", map[string]any{
		"count": len(records),
	})
	return nil
}

// BySymbol returns every stored record for the symbol in insertion order.
// A symbol never seen yields an empty slice.
func (s *Store) BySymbol(symbol string) ([]domain.NewsRecord, error) {
	var records []domain.NewsRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(symbol))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(_, v []byte) error {
			var rec domain.NewsRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshal stored record: %w", err)
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
