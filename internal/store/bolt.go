package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	bolt "go.etcd.io/bbolt"

	"img2text/internal/batch"
)

var runsBucket = []byte("runs")

// Bolt keeps results in a local bbolt file: one nested bucket per run, keyed
// by position.
type Bolt struct {
	db *bolt.DB
	mu sync.Mutex
}

func NewBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("bolt dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("bolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt bucket: %w", err)
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Record(_ context.Context, runID string, position int, r batch.ExtractionResult) error {
	js, err := json.Marshal(newRecord(runID, position, r))
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.db.Update(func(tx *bolt.Tx) error {
		run, err := tx.Bucket(runsBucket).CreateBucketIfNotExists([]byte(runID))
		if err != nil {
			return err
		}
		return run.Put(positionKey(position), js)
	})
}

// Records returns the stored results of one run in position order.
func (b *Bolt) Records(runID string) ([]Record, error) {
	var out []Record
	err := b.db.View(func(tx *bolt.Tx) error {
		run := tx.Bucket(runsBucket).Bucket([]byte(runID))
		if run == nil {
			return nil
		}
		return run.ForEach(func(_, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	return out, err
}

func (b *Bolt) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

func positionKey(p int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(p))
	return k
}
