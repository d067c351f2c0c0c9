package geocode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-report-alerts/internal/fault"
	"github.com/mr1hm/go-report-alerts/internal/models"
	"github.com/mr1hm/go-report-alerts/internal/observability"
)

// CachedResolver wraps a Resolver with an in-memory TTL+LRU cache. Postal
// codes are stable, so resolved pairs are reused across orchestrator runs to
// bound API cost; the TTL guards against the rare boundary redraw.
type CachedResolver struct {
	inner   Resolver
	cache   *ttlCache
	metrics *observability.Metrics
}

// NewCachedResolver creates a cache decorator around a resolver. metrics may
// be nil.
func NewCachedResolver(inner Resolver, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedResolver {
	return &CachedResolver{
		inner:   inner,
		cache:   newTTLCache(maxEntries, ttl, clock),
		metrics: metrics,
	}
}

func (c *CachedResolver) PincodeFromPoint(ctx context.Context, p models.GeoPoint) (models.PostalCode, error) {
	// Coordinates from device GPS jitter below ~10m; rounding to four
	// decimals collapses jittered resubmissions onto one key.
	key := fmt.Sprintf("pt:%.4f,%.4f", p.Latitude, p.Longitude)
	v, result := c.cache.get(key)
	c.count(result)
	if result == lookupHit {
		return v.code, nil
	}

	code, err := c.inner.PincodeFromPoint(ctx, p)
	c.countRequest("pincode", err)
	if err != nil {
		return code, err
	}
	c.cache.put(key, cacheValue{code: code})
	return code, nil
}

func (c *CachedResolver) PointFromPincode(ctx context.Context, code models.PostalCode) (models.GeoPoint, error) {
	key := "pin:" + string(code)
	v, result := c.cache.get(key)
	c.count(result)
	if result == lookupHit {
		return v.point, nil
	}

	point, err := c.inner.PointFromPincode(ctx, code)
	c.countRequest("point", err)
	if err != nil {
		return point, err
	}
	c.cache.put(key, cacheValue{point: point})
	return point, nil
}

func (c *CachedResolver) count(result lookupResult) {
	if c.metrics == nil {
		return
	}
	c.metrics.GeocodeCache.WithLabelValues(string(result)).Inc()
}

func (c *CachedResolver) countRequest(method string, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	switch {
	case errors.Is(err, fault.ErrNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	c.metrics.GeocodeRequests.WithLabelValues(method, outcome).Inc()
}

type lookupResult string

const (
	lookupHit     lookupResult = "hit"
	lookupMiss    lookupResult = "miss"
	lookupExpired lookupResult = "expired"
)

type cacheValue struct {
	code  models.PostalCode
	point models.GeoPoint
}

// ttlCache is a thread-safe LRU cache whose entries expire after a fixed TTL.
type ttlCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key     string
	value   cacheValue
	savedAt time.Time
	prev    *entry
	next    *entry
}

func newTTLCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *ttlCache {
	return &ttlCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *ttlCache) get(key string) (cacheValue, lookupResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return cacheValue{}, lookupMiss
	}
	if c.clock.Since(e.savedAt) > c.ttl {
		delete(c.entries, e.key)
		c.unlink(e)
		return cacheValue{}, lookupExpired
	}
	c.moveToFront(e)
	return e.value, lookupHit
}

func (c *ttlCache) put(key string, value cacheValue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.savedAt = c.clock.Now()
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, savedAt: c.clock.Now()}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *ttlCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *ttlCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *ttlCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *ttlCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlink(c.tail)
}
