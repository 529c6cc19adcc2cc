// Package storage is the durable key-value persistence behind the cart and
// cached checkout state. Concurrent writers to the same key follow
// last-write-wins; there is no cross-session locking or merge. Views that
// care about freshness listen on the cart event bus and re-read.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// KV is a synchronous key-value store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Namespaced returns a KV view that prefixes every key, used to scope
// storage to a shopper session.
func Namespaced(kv KV, prefix string) KV {
	return &prefixed{kv: kv, prefix: prefix}
}

type prefixed struct {
	kv     KV
	prefix string
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.kv.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.kv.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.kv.Delete(ctx, p.prefix+key)
}
