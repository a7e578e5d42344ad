package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	badgerKeyPrefix = "c:"
	badgerTagPrefix = "t:"
)

// BadgerService is an embedded cache for single-node deployments. Tag
// membership is stored as empty t:<tag>:<key> markers sharing the entry TTL.
type BadgerService struct {
	db *badger.DB
}

func NewBadgerService(db *badger.DB) *BadgerService {
	return &BadgerService{db: db}
}

// OpenBadger opens a database at path, or in memory when path is empty.
func OpenBadger(path string) (*badger.DB, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return db, nil
}

func (s *BadgerService) Set(_ context.Context, key string, data []byte, tags []string, duration time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.SetEntry(badger.NewEntry([]byte(badgerKeyPrefix+key), data).WithTTL(duration)); err != nil {
			return err
		}
		for _, tag := range tags {
			if err := txn.SetEntry(badger.NewEntry(tagMarker(tag, key), nil).WithTTL(duration)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerService) Get(_ context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	return data, err
}

func (s *BadgerService) Invalidate(_ context.Context, tags ...string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, tag := range tags {
			prefix := []byte(badgerTagPrefix + tag + ":")
			var markers [][]byte
			it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
			for it.Rewind(); it.Valid(); it.Next() {
				markers = append(markers, it.Item().KeyCopy(nil))
			}
			it.Close()

			for _, marker := range markers {
				key := marker[len(prefix):]
				if err := txn.Delete(append([]byte(badgerKeyPrefix), key...)); err != nil {
					return err
				}
				if err := txn.Delete(marker); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func tagMarker(tag, key string) []byte {
	return []byte(badgerTagPrefix + tag + ":" + key)
}
