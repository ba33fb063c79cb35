package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/young1lin/websearch-mcp/internal/models"
	"github.com/young1lin/websearch-mcp/pkg/logger"
)

var bucketName = []byte("searches")

// Entry is one recorded search. Only a summary is kept; results are never
// stored, so the log cannot serve as a cache.
type Entry struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	Provider    string    `json:"provider"`
	ResultCount int       `json:"result_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryStore persists search history using BBolt. Keys are UUIDv7 strings,
// which sort in creation order.
type HistoryStore struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewHistoryStore opens (or creates) the history database at path.
func NewHistoryStore(path string) (*HistoryStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("history store initialized", zap.String("path", path))
	return &HistoryStore{db: db, now: time.Now}, nil
}

// Record appends a summary of resp to the history.
func (s *HistoryStore) Record(_ context.Context, resp *models.SearchResponse) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	entry := Entry{
		ID:          id.String(),
		Query:       resp.Query,
		Provider:    resp.Provider,
		ResultCount: len(resp.Results),
		CreatedAt:   s.now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(entry.ID), data)
	})
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *HistoryStore) Recent(limit int) ([]Entry, error) {
	entries := make([]Entry, 0)

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("corrupt history entry %s: %w", k, err)
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Clear removes all recorded searches.
func (s *HistoryStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketName)
		return err
	})
}

// Close closes the database connection
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
