package store

import (
	"context"
	stderrors "errors"
	"os"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/wippyai/variant/container"
)

const backendBadger = "badger"

// Badger is a Store on an embedded badger database.
type Badger struct {
	db   *badgerdb.DB
	opts options
}

var _ Store = (*Badger)(nil)

// OpenBadger opens (creating if needed) a badger database in dir. An empty
// dir opens an in-memory database.
func OpenBadger(dir string, opts ...Option) (*Badger, error) {
	o := buildOptions(opts)

	var bopts badgerdb.Options
	if dir == "" {
		bopts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, backendError(backendBadger, "open", err)
		}
		bopts = badgerdb.DefaultOptions(dir)
	}
	bopts = bopts.
		WithLogger(newBadgerLogger(o.log)).
		WithNumCompactors(2).
		WithNumMemtables(2).
		WithBlockCacheSize(32 << 20).
		WithIndexCacheSize(32 << 20)

	db, err := badgerdb.Open(bopts)
	if err != nil {
		return nil, backendError(backendBadger, "open", err)
	}

	o.log.Info("badger store opened",
		zap.String("dir", dir),
		zap.Bool("in_memory", dir == ""),
		zap.Bool("compress", o.compress))

	return &Badger{db: db, opts: o}, nil
}

// Put stores c under key, replacing any previous value.
func (s *Badger) Put(ctx context.Context, key string, c container.Container) (err error) {
	defer func() { s.opts.observe(backendBadger, "put", err) }()

	if err := checkKey(key); err != nil {
		return err
	}
	if err := checkContainer(c); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	value := frame(c, s.opts.compress)
	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), value)
	}); err != nil {
		return backendError(backendBadger, "put", err)
	}
	s.opts.written(len(c))
	return nil
}

// Get returns the container stored under key.
func (s *Badger) Get(ctx context.Context, key string) (c container.Container, err error) {
	defer func() { s.opts.observe(backendBadger, "get", err) }()

	if err := checkKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []byte
	err = s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if stderrors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, backendError(backendBadger, "get", err)
	}
	return unframe(raw)
}

// Delete removes key. Deleting a missing key is an ErrNotFound error.
func (s *Badger) Delete(ctx context.Context, key string) (err error) {
	defer func() { s.opts.observe(backendBadger, "delete", err) }()

	if err := checkKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err = s.db.Update(func(txn *badgerdb.Txn) error {
		if _, err := txn.Get([]byte(key)); err != nil {
			return err
		}
		return txn.Delete([]byte(key))
	})
	if stderrors.Is(err, badgerdb.ErrKeyNotFound) {
		return notFound(key)
	}
	if err != nil {
		return backendError(backendBadger, "delete", err)
	}
	return nil
}

// Keys lists stored keys in order.
func (s *Badger) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.IteratorOptions{})
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
		return nil, backendError(backendBadger, "keys", err)
	}
	return keys, nil
}

// Close closes the database.
func (s *Badger) Close() error {
	if err := s.db.Close(); err != nil {
		return backendError(backendBadger, "close", err)
	}
	return nil
}
