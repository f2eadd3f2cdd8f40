package healpixgeo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAng2PixPix2AngRoundTrip(t *testing.T) {
	const order = 6
	lon, lat := 1.2, 0.3
	ipix, err := Ang2Pix(order, lon, lat)
	require.NoError(t, err)

	centerLon, centerLat, err := Pix2Ang(order, ipix)
	require.NoError(t, err)

	// the queried point must fall back inside its own cell's neighbourhood:
	// re-querying the returned centre must hash to the same pixel.
	again, err := Ang2Pix(order, centerLon, centerLat)
	require.NoError(t, err)
	assert.Equal(t, ipix, again)
}

func TestNeighboursNonEmpty(t *testing.T) {
	n, err := Neighbours(4, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, n)
	assert.LessOrEqual(t, len(n), 8)
}

func TestQueryDiscContainsCenter(t *testing.T) {
	const order = 5
	lon, lat := 0.5, 0.1
	center, err := Ang2Pix(order, lon, lat)
	require.NoError(t, err)

	hit, err := QueryDisc(order, lon, lat, 0.1, true)
	require.NoError(t, err)
	assert.Contains(t, hit, center)
}

func TestQueryBoxCoversKnownPoint(t *testing.T) {
	const order = 4
	lonDeg, latDeg := 45.0, 10.0
	lonRad, latRad := lonDeg*math.Pi/180, latDeg*math.Pi/180
	center, err := Ang2Pix(order, lonRad, latRad)
	require.NoError(t, err)

	hits, err := QueryBox(order, 40, 5, 50, 15)
	require.NoError(t, err)
	assert.Contains(t, hits, center)
}
