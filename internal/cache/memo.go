// Package cache memoizes derived values by the identity of their inputs.
// It is an optimization only: a miss recomputes the same value.
package cache

import (
	"container/list"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultSize bounds a Memo created with a non-positive size.
const DefaultSize = 256

// Key identifies one derived value: the table version it came from, the
// label selection and the columns involved. Kind separates different
// computations over the same selection.
type Key struct {
	Kind    string
	Version string
	Label   string
	Columns []string
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", k.Kind, k.Version, k.Label, strings.Join(k.Columns, "\x1f"))
}

type entry[V any] struct {
	key     string
	version string
	value   V
}

// Memo is a bounded, least-recently-used map from Key to V. Concurrent
// lookups of the same missing key run the computation once.
type Memo[V any] struct {
	mu      sync.Mutex
	size    int
	order   *list.List
	entries map[string]*list.Element
	group   singleflight.Group

	hits, misses int
}

// New returns a Memo holding at most size values.
func New[V any](size int) *Memo[V] {
	if size <= 0 {
		size = DefaultSize
	}
	return &Memo[V]{size: size, order: list.New(), entries: make(map[string]*list.Element)}
}

// Get returns the cached value for k or computes, stores and returns it.
// Errors are returned to every waiter and nothing is stored.
func (m *Memo[V]) Get(k Key, compute func() (V, error)) (V, error) {
	ks := k.String()
	m.mu.Lock()
	if el, ok := m.entries[ks]; ok {
		m.order.MoveToFront(el)
		m.hits++
		v := el.Value.(*entry[V]).value
		m.mu.Unlock()
		return v, nil
	}
	m.misses++
	m.mu.Unlock()

	res, err, _ := m.group.Do(ks, func() (any, error) {
		v, err := compute()
		if err != nil {
			return v, err
		}
		m.store(ks, k.Version, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}

func (m *Memo[V]) store(ks, version string, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.entries[ks]; ok {
		el.Value.(*entry[V]).value = v
		m.order.MoveToFront(el)
		return
	}
	m.entries[ks] = m.order.PushFront(&entry[V]{key: ks, version: version, value: v})
	for m.order.Len() > m.size {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.entries, oldest.Value.(*entry[V]).key)
	}
}

// Retain drops every entry whose table version differs from version.
func (m *Memo[V]) Retain(version string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ks, el := range m.entries {
		if el.Value.(*entry[V]).version != version {
			m.order.Remove(el)
			delete(m.entries, ks)
		}
	}
}

// Len is the number of cached values.
func (m *Memo[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// Stats returns the hit and miss counts.
func (m *Memo[V]) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}
