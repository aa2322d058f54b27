package util

import (
	"reflect"
	"testing"
	"time"
)

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewWithConfig[string, int](CacheConfig{Capacity: 2})
	if err != nil {
		t.Fatal(err)
	}
	c.Put("a", 1)
	c.Put("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Errorf("b should have been evicted")
	}
	if got := c.Values(); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("Values() = %v, want [1 3]", got)
	}
}

func TestLRUCache_UpdateKeepsSize(t *testing.T) {
	c, _ := NewWithConfig[string, int](CacheConfig{Capacity: 2})
	c.Put("a", 1)
	c.Put("a", 10)
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) = %d, want 10", v)
	}
}

func TestLRUCache_TTL(t *testing.T) {
	c, _ := NewWithConfig[string, int](CacheConfig{Capacity: 4, TTL: time.Minute})
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Put("old", 1)
	now = now.Add(30 * time.Second)
	c.Put("new", 2)
	now = now.Add(45 * time.Second)

	if _, ok := c.Get("old"); ok {
		t.Errorf("old should have expired")
	}
	if got := c.Values(); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("Values() = %v, want [2]", got)
	}
}

func TestNewWithConfig_RequiresCapacity(t *testing.T) {
	if _, err := NewWithConfig[string, int](CacheConfig{}); err == nil {
		t.Fatal("expected an error for zero capacity")
	}
}
