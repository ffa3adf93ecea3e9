package users

import (
	"context"
	"testing"
)

func TestMemoryRegistryIdempotentRecord(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	for i := 0; i < 3; i++ {
		if err := r.Record(ctx, 42); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := r.Record(ctx, 7); err != nil {
		t.Fatalf("record: %v", err)
	}

	n, err := r.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}

	ids, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != 7 || ids[1] != 42 {
		t.Fatalf("ids = %v", ids)
	}
}

func TestMemoryRegistryEmpty(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	n, err := r.Count(ctx)
	if err != nil || n != 0 {
		t.Fatalf("count = %d, err %v", n, err)
	}
	ids, err := r.List(ctx)
	if err != nil || len(ids) != 0 {
		t.Fatalf("ids = %v, err %v", ids, err)
	}
}
