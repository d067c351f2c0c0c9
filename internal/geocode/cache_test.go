package geocode

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-report-alerts/internal/models"
)

type countingResolver struct {
	pincodeCalls int
	pointCalls   int
	code         models.PostalCode
	point        models.GeoPoint
	err          error
}

func (m *countingResolver) PincodeFromPoint(_ context.Context, _ models.GeoPoint) (models.PostalCode, error) {
	m.pincodeCalls++
	return m.code, m.err
}

func (m *countingResolver) PointFromPincode(_ context.Context, _ models.PostalCode) (models.GeoPoint, error) {
	m.pointCalls++
	return m.point, m.err
}

func TestCachedResolver_PointFromPincode_Hit(t *testing.T) {
	inner := &countingResolver{point: models.GeoPoint{Latitude: 18.93, Longitude: 72.83}}
	cached := NewCachedResolver(inner, 10, time.Hour, clockwork.NewFakeClock(), nil)

	p1, err := cached.PointFromPincode(context.Background(), "400001")
	require.NoError(t, err)

	p2, err := cached.PointFromPincode(context.Background(), "400001")
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, 1, inner.pointCalls, "second lookup should be served from cache")
}

func TestCachedResolver_PincodeFromPoint_Hit(t *testing.T) {
	inner := &countingResolver{code: "400001"}
	cached := NewCachedResolver(inner, 10, time.Hour, clockwork.NewFakeClock(), nil)

	p := models.GeoPoint{Latitude: 19.0760, Longitude: 72.8777}

	_, err := cached.PincodeFromPoint(context.Background(), p)
	require.NoError(t, err)
	_, err = cached.PincodeFromPoint(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.pincodeCalls)
}

func TestCachedResolver_ErrorsNotCached(t *testing.T) {
	inner := &countingResolver{err: errors.New("boom")}
	cached := NewCachedResolver(inner, 10, time.Hour, clockwork.NewFakeClock(), nil)

	_, err := cached.PointFromPincode(context.Background(), "400001")
	require.Error(t, err)
	_, err = cached.PointFromPincode(context.Background(), "400001")
	require.Error(t, err)

	assert.Equal(t, 2, inner.pointCalls, "errors must not be cached")
}

func TestCachedResolver_TTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingResolver{point: models.GeoPoint{Latitude: 1, Longitude: 2}}
	cached := NewCachedResolver(inner, 10, time.Hour, clock, nil)

	_, err := cached.PointFromPincode(context.Background(), "400001")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	_, err = cached.PointFromPincode(context.Background(), "400001")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.pointCalls, "expired entry must be re-resolved")
}

func TestCachedResolver_LRUEviction(t *testing.T) {
	inner := &countingResolver{point: models.GeoPoint{Latitude: 1, Longitude: 2}}
	cached := NewCachedResolver(inner, 3, time.Hour, clockwork.NewFakeClock(), nil)

	for i := 0; i < 4; i++ {
		_, err := cached.PointFromPincode(context.Background(), models.PostalCode(fmt.Sprintf("40000%d", i)))
		require.NoError(t, err)
	}

	// 400000 is the least recently used entry and should have been evicted.
	_, err := cached.PointFromPincode(context.Background(), "400000")
	require.NoError(t, err)
	assert.Equal(t, 5, inner.pointCalls)

	// 400003 is still resident.
	_, err = cached.PointFromPincode(context.Background(), "400003")
	require.NoError(t, err)
	assert.Equal(t, 5, inner.pointCalls)
}
