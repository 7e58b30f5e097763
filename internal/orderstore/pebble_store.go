package orderstore

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"ordintake/internal/model"
)

// PebbleStore implements Store using PebbleDB for durability across worker
// restarts.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(dir string) (*PebbleStore, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: d}, nil
}

func (p *PebbleStore) Close() error { return p.db.Close() }

func encodeOrder(o model.Order) ([]byte, error) { return json.Marshal(o) }
func decodeOrder(val []byte) (model.Order, error) {
	var o model.Order
	if err := json.Unmarshal(val, &o); err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (p *PebbleStore) Put(orderID string, o model.Order) error {
	b, err := encodeOrder(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	if err := p.db.Set([]byte(orderID), b, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	return nil
}

func (p *PebbleStore) Get(orderID string) (model.Order, bool) {
	v, closer, err := p.db.Get([]byte(orderID))
	if err != nil {
		return model.Order{}, false
	}
	defer closer.Close()
	o, e := decodeOrder(v)
	if e != nil {
		return model.Order{}, false
	}
	return o, true
}

func (p *PebbleStore) Range(fn func(orderID string, o model.Order) error) error {
	it, err := p.db.NewIter(nil)
	if err != nil {
		return fmt.Errorf("pebble iter: %w", err)
	}
	defer it.Close()
	for it.First(); it.Valid(); it.Next() {
		k := append([]byte(nil), it.Key()...)
		v := append([]byte(nil), it.Value()...)
		o, err := decodeOrder(v)
		if err != nil {
			return err
		}
		if err := fn(string(k), o); err != nil {
			return err
		}
	}
	return nil
}
