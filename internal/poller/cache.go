// internal/poller/cache.go
package poller

// Cache holds the last raw words read per range.
// Owned by the session loop; not safe for concurrent use.
type Cache struct {
	ranges map[RangeKey][]uint16
}

func NewCache() *Cache {
	return &Cache{ranges: make(map[RangeKey][]uint16)}
}

// Store replaces the words of one range.
func (c *Cache) Store(k RangeKey, words []uint16) {
	c.ranges[k] = words
}

// Words extracts n words at addr from range r.
// ok is false when the range was never read or is shorter than needed.
func (c *Cache) Words(r Range, addr, n uint16) ([]uint16, bool) {
	data, ok := c.ranges[r.Key()]
	if !ok || addr < r.Start {
		return nil, false
	}
	off := int(addr - r.Start)
	if off+int(n) > len(data) {
		return nil, false
	}
	return data[off : off+int(n)], true
}

// Clear drops everything; used on session reset.
func (c *Cache) Clear() {
	clear(c.ranges)
}
