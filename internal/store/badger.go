package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

// Badger is the default on-disk backend.
type Badger struct {
	db     *badger.DB
	logger *slog.Logger
}

// BadgerOptions tunes OpenBadger.
type BadgerOptions struct {
	// InMemory opens the database without touching disk; path is ignored.
	InMemory bool
	// ReadOnly opens an existing database for inspection.
	ReadOnly bool
}

// OpenBadger opens (or creates) a badger database at path.
func OpenBadger(path string, logger *slog.Logger, opts BadgerOptions) (*Badger, error) {
	bopts := badger.DefaultOptions(path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil
	bopts.SyncWrites = !opts.InMemory
	bopts.ReadOnly = opts.ReadOnly
	bopts.CompactL0OnClose = !opts.ReadOnly

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened", "path", path, "in_memory", opts.InMemory)
	}

	return &Badger{db: db, logger: logger}, nil
}

// Get implements KV.
func (b *Badger) Get(_ context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})

	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return "", false, nil
	case errors.Is(err, badger.ErrDBClosed):
		return "", false, ErrClosed
	case err != nil:
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements KV.
func (b *Badger) Set(_ context.Context, key, value string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrTxnTooBig):
		return fmt.Errorf("set %q: %w: %w", key, ErrQuotaExceeded, err)
	case errors.Is(err, badger.ErrDBClosed):
		return ErrClosed
	default:
		return fmt.Errorf("set %q: %w", key, err)
	}
}

// Remove implements KV.
func (b *Badger) Remove(_ context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	if err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Keys implements Backend.
func (b *Badger) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list keys %q: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Backend.
func (b *Badger) Close() error {
	if b.logger != nil {
		b.logger.Info("Closing badger database")
	}
	return b.db.Close()
}
