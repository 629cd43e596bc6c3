package cache

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrTooHeavy = errors.New("entry exceeds cache budget")
)

// Cache is a weighted least recently used cache. Entries are evicted from the
// tail once the sum of weights exceeds the budget, and optionally expire after
// a fixed time to live.
type Cache[V any] interface {
	// Insert adds or replaces the entry for key.
	Insert(key string, value V, weight int) error

	// Retrieve returns the entry for key if it is present and not expired.
	Retrieve(key string) (V, bool)

	// Remove drops the entry for key, if any.
	Remove(key string)

	// Weight returns the current sum of entry weights.
	Weight() int

	// Clear removes every entry.
	Clear()
}

type node[V any] struct {
	prev, next *node[V]

	key       string
	value     V
	weight    int
	expiresAt time.Time
}

type cache[V any] struct {
	mu     sync.Mutex
	head   *node[V]
	tail   *node[V]
	lookup map[string]*node[V]
	weight int

	budget int
	ttl    time.Duration
	now    func() time.Time
}

type Option[V any] func(*cache[V])

// WithTTL expires entries ttl after they were inserted. Zero disables
// expiry.
func WithTTL[V any](ttl time.Duration) Option[V] {
	return func(c *cache[V]) {
		c.ttl = ttl
	}
}

func withClock[V any](now func() time.Time) Option[V] {
	return func(c *cache[V]) {
		c.now = now
	}
}

// New returns a cache that holds at most budget units of weight.
func New[V any](budget int, opts ...Option[V]) Cache[V] {
	c := &cache[V]{
		lookup: make(map[string]*node[V]),
		budget: budget,
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *cache[V]) Insert(key string, value V, weight int) error {
	if weight > c.budget {
		return ErrTooHeavy
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.lookup[key]; ok {
		c.unlink(existing)
	}

	n := &node[V]{
		key:    key,
		value:  value,
		weight: weight,
	}
	if c.ttl > 0 {
		n.expiresAt = c.now().Add(c.ttl)
	}
	c.pushFront(n)

	for c.weight > c.budget && c.tail != nil {
		c.unlink(c.tail)
	}

	return nil
}

func (c *cache[V]) Retrieve(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V

	n, ok := c.lookup[key]
	if !ok {
		return zero, false
	}
	if !n.expiresAt.IsZero() && !c.now().Before(n.expiresAt) {
		c.unlink(n)
		return zero, false
	}

	if n != c.head {
		c.unlink(n)
		c.pushFront(n)
	}
	return n.value, true
}

func (c *cache[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.lookup[key]; ok {
		c.unlink(n)
	}
}

func (c *cache[V]) Weight() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.weight
}

func (c *cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.head = nil
	c.tail = nil
	c.lookup = make(map[string]*node[V])
	c.weight = 0
}

// pushFront requires c.mu to be held.
func (c *cache[V]) pushFront(n *node[V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}

	c.lookup[n.key] = n
	c.weight += n.weight
}

// unlink requires c.mu to be held.
func (c *cache[V]) unlink(n *node[V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil

	delete(c.lookup, n.key)
	c.weight -= n.weight
}
