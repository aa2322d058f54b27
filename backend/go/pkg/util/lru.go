package util

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// CacheConfig 用于配置LRU缓存的行为。
type CacheConfig struct {
	// Capacity 是缓存的最大元素数量，必须大于0。
	Capacity int
	// TTL 是元素的存活时间。如果为0，则元素永不过期。
	TTL time.Duration
}

// entry 结构体用于存储链表节点中的实际数据。
type entry[K comparable, V any] struct {
	key        K
	value      V
	expiration time.Time
}

// LRUCache 是一个支持泛型、线程安全的有界LRU缓存。
type LRUCache[K comparable, V any] struct {
	config CacheConfig
	ll     *list.List // 队首为最近使用
	cache  map[K]*list.Element
	lock   sync.Mutex
	now    func() time.Time
}

// NewWithConfig 使用指定的配置创建一个LRU缓存实例。
func NewWithConfig[K comparable, V any](config CacheConfig) (*LRUCache[K, V], error) {
	if config.Capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", config.Capacity)
	}
	return &LRUCache[K, V]{
		config: config,
		ll:     list.New(),
		cache:  make(map[K]*list.Element),
		now:    time.Now,
	}, nil
}

// Get 方法根据键获取一个值，并把它标记为最近使用。
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	element, ok := c.cache[key]
	if !ok {
		var zeroV V
		return zeroV, false
	}

	// 被动淘汰过期元素
	e := element.Value.(*entry[K, V])
	if c.expired(e) {
		c.removeElement(element)
		var zeroV V
		return zeroV, false
	}

	c.ll.MoveToFront(element)
	return e.value, true
}

// Put 方法向缓存中添加或更新一个键值对，超出容量时淘汰最久未使用的元素。
func (c *LRUCache[K, V]) Put(key K, value V) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if element, ok := c.cache[key]; ok {
		e := element.Value.(*entry[K, V])
		e.value = value
		c.touch(e)
		c.ll.MoveToFront(element)
		return
	}

	e := &entry[K, V]{key: key, value: value}
	c.touch(e)
	c.cache[key] = c.ll.PushFront(e)

	for c.ll.Len() > c.config.Capacity {
		c.removeElement(c.ll.Back())
	}
}

// Values 按从旧到新的顺序返回所有未过期的值，不改变使用顺序。
func (c *LRUCache[K, V]) Values() []V {
	c.lock.Lock()
	defer c.lock.Unlock()

	values := make([]V, 0, c.ll.Len())
	for element := c.ll.Back(); element != nil; {
		prev := element.Prev()
		e := element.Value.(*entry[K, V])
		if c.expired(e) {
			c.removeElement(element)
		} else {
			values = append(values, e.value)
		}
		element = prev
	}
	return values
}

// Len 返回当前缓存中的条目数量，可能包含尚未被动淘汰的过期条目。
func (c *LRUCache[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.ll.Len()
}

// 以下方法假设已持有锁。

func (c *LRUCache[K, V]) touch(e *entry[K, V]) {
	if c.config.TTL > 0 {
		e.expiration = c.now().Add(c.config.TTL)
	}
}

func (c *LRUCache[K, V]) expired(e *entry[K, V]) bool {
	return c.config.TTL > 0 && c.now().After(e.expiration)
}

func (c *LRUCache[K, V]) removeElement(element *list.Element) {
	c.ll.Remove(element)
	delete(c.cache, element.Value.(*entry[K, V]).key)
}
