package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/voicebridge/translation"
)

// newTestRedisStore creates a RedisStore backed by miniredis.
func newTestRedisStore(t *testing.T, cfg RedisConfig) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(func() { mini.Close() })

	cfg.Addr = mini.Addr()
	store := NewRedisStore(cfg)
	t.Cleanup(func() { store.Close() })
	return store, mini
}

func redisTestRequest() translation.Request {
	return translation.Request{
		Text:           "Hello world",
		SourceLanguage: "en",
		TargetLanguage: "es",
		Service:        "deepl",
	}
}

func TestRedisStoreSetAndGet(t *testing.T) {
	store, _ := newTestRedisStore(t, RedisConfig{})
	ctx := context.Background()
	req := redisTestRequest()

	store.Set(ctx, req, &translation.Result{
		TranslatedText: "Hola mundo",
		SourceLanguage: "en",
		TargetLanguage: "es",
		Service:        "deepl",
	})

	got, ok := store.Get(ctx, req)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.TranslatedText != "Hola mundo" {
		t.Fatalf("expected Hola mundo, got %q", got.TranslatedText)
	}

	stats := store.Stats()
	if stats.Hits != 1 || stats.Requests != 1 {
		t.Fatalf("expected 1 hit of 1 request, got %+v", stats)
	}
}

func TestRedisStoreMiss(t *testing.T) {
	store, _ := newTestRedisStore(t, RedisConfig{})

	if _, ok := store.Get(context.Background(), redisTestRequest()); ok {
		t.Fatal("expected miss on empty store")
	}
	stats := store.Stats()
	if stats.Misses != 1 || stats.Hits != 0 {
		t.Fatalf("expected 1 miss and 0 hits, got %+v", stats)
	}
}

func TestRedisStoreAnyMirror(t *testing.T) {
	store, _ := newTestRedisStore(t, RedisConfig{})
	ctx := context.Background()

	store.Set(ctx, redisTestRequest(), &translation.Result{
		TranslatedText: "Hola mundo",
		Service:        "deepl",
	})

	// A lookup pinned to a different service must not match the exact
	// key, but the any-mirror satisfies GetWithFallback.
	other := redisTestRequest()
	other.Service = "gpt4o"
	if _, ok := store.Get(ctx, other); ok {
		t.Fatal("exact lookup for another service should miss")
	}
	got, ok := store.GetWithFallback(ctx, other)
	if !ok {
		t.Fatal("expected hit via any mirror")
	}
	if got.Service != "deepl" {
		t.Fatalf("expected cached deepl result, got %q", got.Service)
	}
}

func TestRedisStoreKeyPrefix(t *testing.T) {
	store, mini := newTestRedisStore(t, RedisConfig{KeyPrefix: "myprefix"})
	ctx := context.Background()
	req := redisTestRequest()

	store.Set(ctx, req, &translation.Result{TranslatedText: "Hola mundo"})

	raw, err := mini.Get("myprefix:" + Key(req))
	if err != nil {
		t.Fatalf("expected prefixed key in redis, err: %v", err)
	}
	if raw == "" {
		t.Fatal("expected non-empty value at prefixed key")
	}
	if _, err := mini.Get("myprefix:" + KeyForService(req, translation.ServiceAny)); err != nil {
		t.Fatalf("expected prefixed any-mirror key in redis, err: %v", err)
	}
}

func TestRedisStoreTTL(t *testing.T) {
	store, mini := newTestRedisStore(t, RedisConfig{TTL: 2 * time.Second})
	ctx := context.Background()
	req := redisTestRequest()

	store.Set(ctx, req, &translation.Result{TranslatedText: "Hola mundo"})
	if _, ok := store.Get(ctx, req); !ok {
		t.Fatal("expected value before TTL")
	}

	mini.FastForward(3 * time.Second)

	if _, ok := store.Get(ctx, req); ok {
		t.Fatal("expected miss after TTL expiration")
	}
}

func TestRedisStoreConnectionErrorDegradesToMiss(t *testing.T) {
	store, mini := newTestRedisStore(t, RedisConfig{})
	ctx := context.Background()
	req := redisTestRequest()

	store.Set(ctx, req, &translation.Result{TranslatedText: "Hola mundo"})
	mini.Close()

	if _, ok := store.Get(ctx, req); ok {
		t.Fatal("expected miss when redis is unreachable")
	}
}
