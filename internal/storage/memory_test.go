package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "cart"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := m.Set(ctx, "cart", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, err := m.Get(ctx, "cart")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(v) != `[]` {
		t.Fatalf("got %q", v)
	}

	if err := m.Delete(ctx, "cart"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.Get(ctx, "cart"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if err := m.Set(ctx, "k", []byte("abc")); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, _ := m.Get(ctx, "k")
	v[0] = 'x'
	v2, _ := m.Get(ctx, "k")
	if string(v2) != "abc" {
		t.Fatalf("stored value mutated: %q", v2)
	}
}

func TestNamespaced(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	a := Namespaced(m, "session:a:")
	b := Namespaced(m, "session:b:")

	if err := a.Set(ctx, "cart", []byte("A")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := b.Get(ctx, "cart"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("namespaces leak: %v", err)
	}
	v, err := m.Get(ctx, "session:a:cart")
	if err != nil || string(v) != "A" {
		t.Fatalf("prefixed key not written: %q %v", v, err)
	}
}
