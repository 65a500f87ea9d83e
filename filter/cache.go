package filter

import (
	"container/list"
	"sync"
)

// programCache keeps the most recently used compiled filters, keyed by
// their trimmed expression
type programCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // *exprFilter, most recently used first
	byExpr   map[string]*list.Element
}

func newProgramCache(capacity int) *programCache {
	return &programCache{
		capacity: capacity,
		order:    list.New(),
		byExpr:   make(map[string]*list.Element, capacity),
	}
}

func (c *programCache) get(expression string) (*exprFilter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.byExpr[expression]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*exprFilter), true
}

// add stores f, evicting the least recently used filter when full.
// Concurrent compiles of one expression keep the first program.
func (c *programCache) add(f *exprFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.byExpr[f.expression]; ok {
		c.order.MoveToFront(elem)
		return
	}

	c.byExpr[f.expression] = c.order.PushFront(f)
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.byExpr, oldest.Value.(*exprFilter).expression)
	}
}

func (c *programCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
