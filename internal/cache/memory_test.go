package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); err != ErrCacheMiss {
		t.Errorf("expected cache miss, got %v", err)
	}

	if err := c.Set(ctx, "cities", []byte(`["Auckland"]`), time.Minute); err != nil {
		t.Fatal(err)
	}
	v, err := c.Get(ctx, "cities")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != `["Auckland"]` {
		t.Errorf("got %q", v)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), -time.Second); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("expired entry still served: %v", err)
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("deleted entry still served: %v", err)
	}
}

func TestMemoryCacheGetOrSet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	calls := 0
	fetch := func() ([]byte, error) {
		calls++
		return []byte("computed"), nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrSet(ctx, "k", time.Minute, fetch)
		if err != nil {
			t.Fatal(err)
		}
		if string(v) != "computed" {
			t.Errorf("got %q", v)
		}
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
}

func TestMemoryCacheGetOrSetError(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	wantErr := errors.New("fetch failed")
	_, err := c.GetOrSet(context.Background(), "k", time.Minute, func() ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want %v", err, wantErr)
	}

	// the failure must not be cached
	if _, err := c.Get(context.Background(), "k"); err != ErrCacheMiss {
		t.Errorf("failed fetch left an entry behind: %v", err)
	}
}
