package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jfmyers9/threadplay/pkg/enqueue"
)

// createTestCache creates an in-memory SQLite cache for testing
func createTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test cache: %v", err)
	}

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

func TestNew(t *testing.T) {
	t.Run("in-memory database", func(t *testing.T) {
		c, err := New(":memory:")
		if err != nil {
			t.Fatalf("failed to create in-memory cache: %v", err)
		}
		defer func() { _ = c.Close() }()

		if c.db == nil {
			t.Error("cache database is nil")
		}
	})

	t.Run("file-based database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.db")

		c, err := New(path)
		if err != nil {
			t.Fatalf("failed to create file-based cache: %v", err)
		}
		defer func() { _ = c.Close() }()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("database file not created: %v", err)
		}
	})
}

func TestCache_GetMiss(t *testing.T) {
	c := createTestCache(t)

	resp, err := c.Get(context.Background(), "http://example.com/enqueue/g/thread/1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp != nil {
		t.Errorf("expected nil on miss, got %+v", resp)
	}
}

func TestCache_PutGet(t *testing.T) {
	c := createTestCache(t)
	ctx := context.Background()
	key := "http://example.com/enqueue/g/thread/1"
	fetched := time.Now().Add(-time.Minute).Truncate(time.Second)

	err := c.Put(ctx, key, enqueue.CachedResponse{
		ETag:      `"abc"`,
		Body:      []byte(`{"subject":"s","webms":[]}`),
		FetchedAt: fetched,
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	resp, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp == nil {
		t.Fatal("expected cached response, got nil")
	}
	if resp.ETag != `"abc"` {
		t.Errorf("ETag = %q", resp.ETag)
	}
	if resp.LastModified != "" {
		t.Errorf("LastModified = %q, want empty", resp.LastModified)
	}
	if string(resp.Body) != `{"subject":"s","webms":[]}` {
		t.Errorf("Body = %q", resp.Body)
	}
	if !resp.FetchedAt.Equal(fetched) {
		t.Errorf("FetchedAt = %v, want %v", resp.FetchedAt, fetched)
	}
}

func TestCache_PutReplaces(t *testing.T) {
	c := createTestCache(t)
	ctx := context.Background()
	key := "k"

	if err := c.Put(ctx, key, enqueue.CachedResponse{ETag: "v1", Body: []byte("one")}); err != nil {
		t.Fatalf("Put v1: %v", err)
	}
	if err := c.Put(ctx, key, enqueue.CachedResponse{LastModified: "Mon, 02 Jan 2006 15:04:05 GMT", Body: []byte("two")}); err != nil {
		t.Fatalf("Put v2: %v", err)
	}

	resp, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(resp.Body) != "two" || resp.ETag != "" || resp.LastModified == "" {
		t.Errorf("unexpected entry after replace: %+v", resp)
	}

	count, err := c.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 entry, got %d", count)
	}
}

func TestCache_Cleanup(t *testing.T) {
	c := createTestCache(t)
	ctx := context.Background()

	old := enqueue.CachedResponse{ETag: "old", Body: []byte("old"), FetchedAt: time.Now().Add(-48 * time.Hour)}
	fresh := enqueue.CachedResponse{ETag: "fresh", Body: []byte("fresh"), FetchedAt: time.Now()}

	if err := c.Put(ctx, "old", old); err != nil {
		t.Fatalf("Put old: %v", err)
	}
	if err := c.Put(ctx, "fresh", fresh); err != nil {
		t.Fatalf("Put fresh: %v", err)
	}

	removed, err := c.Cleanup(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	if resp, _ := c.Get(ctx, "old"); resp != nil {
		t.Error("old entry still present")
	}
	if resp, _ := c.Get(ctx, "fresh"); resp == nil {
		t.Error("fresh entry removed")
	}
}
