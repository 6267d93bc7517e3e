// Package store persists finished summaries in a local bbolt database so
// they can be listed and re-fetched without re-running the pipeline.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"papersum/internal/keywords"
)

var bucketSummaries = []byte("summaries")

// ErrNotFound is returned by Get and Delete for unknown summary ids.
var ErrNotFound = errors.New("summary not found")

// SavedSummary is one persisted pipeline result with its input metadata.
type SavedSummary struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Filename       string             `json:"filename"`
	Model          string             `json:"model"`
	Level          string             `json:"level"`
	Summary        string             `json:"summary"`
	References     []string           `json:"references"`
	ReferenceCount int                `json:"referenceCount"`
	Keywords       []keywords.Keyword `json:"keywords"`
	HasCitations   bool               `json:"hasCitations"`
	ChunkCount     int                `json:"chunkCount"`
	TokenCount     int                `json:"tokenCount"`
	CreatedAt      time.Time          `json:"createdAt"`
}

type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open summary store: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSummaries)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create summary bucket: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ContentID derives a stable summary id from the document text and the
// settings that shaped the output. The same paper summarized at the same
// level overwrites its previous entry.
func ContentID(text, model, level string) string {
	h := sha256.Sum256([]byte(model + "\x00" + level + "\x00" + text))
	return hex.EncodeToString(h[:16])
}

// Put stores the summary under its id, stamping CreatedAt if unset.
func (s *Store) Put(sum *SavedSummary) error {
	if sum.ID == "" {
		return fmt.Errorf("put summary: empty id")
	}
	if sum.CreatedAt.IsZero() {
		sum.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("encode summary %s: %w", sum.ID, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSummaries).Put([]byte(sum.ID), data)
	})
}

func (s *Store) Get(id string) (*SavedSummary, error) {
	var sum SavedSummary
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSummaries).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &sum)
	})
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// List returns every saved summary with the Summary body omitted, newest
// first.
func (s *Store) List() ([]SavedSummary, error) {
	var sums []SavedSummary
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSummaries).ForEach(func(k, v []byte) error {
			var sum SavedSummary
			if err := json.Unmarshal(v, &sum); err != nil {
				return fmt.Errorf("decode summary %s: %w", k, err)
			}
			sum.Summary = ""
			sums = append(sums, sum)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(sums, func(i, j int) bool {
		return sums[i].CreatedAt.After(sums[j].CreatedAt)
	})
	return sums, nil
}

func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSummaries)
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}
