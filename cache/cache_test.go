package cache

import (
	"testing"

	"github.com/lead-agent/prospect/models"
)

func TestKey_DistinguishesWebsite(t *testing.T) {
	a := Key("Acme Widgets", "https://acme.example")
	b := Key("Acme Widgets", "https://other.example")
	if a == b {
		t.Error("same key for different websites")
	}
	if a != Key("Acme Widgets", "https://acme.example") {
		t.Error("key is not deterministic")
	}
}

func TestCache_GetSet(t *testing.T) {
	c := New(10)
	key := Key("Acme Widgets", "")
	profile := &models.Profile{Website: "https://acme.example"}

	if _, hit := c.Get(key, 60); hit {
		t.Error("hit on an empty cache")
	}

	c.Set(key, profile)

	got, hit := c.Get(key, 60)
	if !hit {
		t.Fatal("miss after Set")
	}
	if got.Website != profile.Website {
		t.Errorf("Website = %q", got.Website)
	}
}

func TestCache_ZeroMaxAgeBypasses(t *testing.T) {
	c := New(10)
	key := Key("Acme Widgets", "")
	c.Set(key, &models.Profile{})

	if _, hit := c.Get(key, 0); hit {
		t.Error("maxAge 0 must bypass the cache")
	}
}

func TestCache_CapacityEviction(t *testing.T) {
	c := New(2)
	c.Set("a", &models.Profile{})
	c.Set("b", &models.Profile{})
	c.Set("c", &models.Profile{})

	c.mu.RLock()
	n := len(c.store)
	c.mu.RUnlock()
	if n != 2 {
		t.Errorf("store holds %d entries, want capacity 2", n)
	}
	if _, hit := c.Get("c", 60); !hit {
		t.Error("newest entry was evicted")
	}
}
