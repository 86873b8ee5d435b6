package introspect

import (
	"testing"
	"time"

	"github.com/jamwil123/pool-tracker/internal/domain/user"
)

func TestPrincipalCache_SetGet(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(time.Minute, 10)
	cache.Set("k1", user.Principal{UserID: "u-1"})

	principal, ok := cache.Get("k1")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if principal.UserID != "u-1" {
		t.Fatalf("unexpected user id: %s", principal.UserID)
	}
}

func TestPrincipalCache_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	cache := newPrincipalCache(time.Minute, 10)
	cache.now = func() time.Time { return now }
	cache.Set("k1", user.Principal{UserID: "u-1"})

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get("k1"); ok {
		t.Fatalf("expected cache miss after expiry")
	}
}

func TestPrincipalCache_EvictsWhenFull(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(time.Minute, 2)
	cache.Set("k1", user.Principal{UserID: "u-1"})
	cache.Set("k2", user.Principal{UserID: "u-2"})
	cache.Set("k3", user.Principal{UserID: "u-3"})

	if len(cache.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(cache.entries))
	}
	if _, ok := cache.Get("k3"); !ok {
		t.Fatalf("expected newest entry kept")
	}
}

func TestPrincipalCache_DisabledWithoutTTL(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(0, 10)
	cache.Set("k1", user.Principal{UserID: "u-1"})
	if _, ok := cache.Get("k1"); ok {
		t.Fatalf("expected no caching without ttl")
	}
}

func TestHashTokenAndBuildURL(t *testing.T) {
	t.Parallel()

	if hashToken("a") == hashToken("b") || len(hashToken("a")) != 64 {
		t.Fatalf("unexpected token digest")
	}
	if got := buildURL("https://auth.example.com/", "v1/auth/introspect"); got != "https://auth.example.com/v1/auth/introspect" {
		t.Fatalf("unexpected url: %s", got)
	}
	if got := buildURL("https://auth.example.com", "https://other.example.com/x"); got != "https://other.example.com/x" {
		t.Fatalf("unexpected absolute url: %s", got)
	}
}
