// Package healpixgeo adapts the ecosystem HEALPix implementation and
// paulmach/orb's planar geometry helpers into the plain (ipix []uint64)
// shape moc's constructors need — the same "delegate geometry to an
// external library, get tile/pixel ids back" split the teacher uses in
// bitmapMultiPolygon (tilecover.Geometry in, our own ids out).
//
// This package has no dependency on the moc package: it speaks only in
// nested-scheme pixel indices and plain floats, so moc/constructors.go can
// import it without creating an import cycle back from here into moc.
package healpixgeo

import (
	"math"

	"github.com/astrogo/healpix"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Nside returns 2^order, the HEALPix resolution parameter for a given
// nested depth/order.
func Nside(order uint8) int64 {
	return int64(1) << uint(order)
}

// pix returns a HEALPix pixelisation at nside, nested scheme, equatorial
// frame — the scheme moc's depth/idx pairs are defined against.
func pix(nside int64) (*healpix.HEALPix, error) {
	hp, err := healpix.New(nside, healpix.Nest, healpix.Equatorial)
	if err != nil {
		return nil, err
	}
	return hp, nil
}

// Ang2Pix returns the nested pixel index containing (lonRad, latRad) at
// the given order.
func Ang2Pix(order uint8, lonRad, latRad float64) (uint64, error) {
	hp, err := pix(Nside(order))
	if err != nil {
		return 0, err
	}
	theta := math.Pi/2 - latRad
	ipix := hp.Ang2Pix(theta, lonRad)
	return uint64(ipix), nil
}

// Pix2Ang returns the (lonRad, latRad) of the centre of nested pixel ipix
// at the given order.
func Pix2Ang(order uint8, ipix uint64) (lonRad, latRad float64, err error) {
	hp, err := pix(Nside(order))
	if err != nil {
		return 0, 0, err
	}
	theta, phi := hp.Pix2Ang(int64(ipix))
	return phi, math.Pi/2 - theta, nil
}

// Neighbours returns the (up to 8) nested-scheme pixel indices adjacent to
// ipix at order, used by moc's Expand/Contract border operations.
func Neighbours(order uint8, ipix uint64) ([]uint64, error) {
	hp, err := pix(Nside(order))
	if err != nil {
		return nil, err
	}
	raw := hp.Neighbours(int64(ipix))
	out := make([]uint64, 0, len(raw))
	for _, n := range raw {
		if n >= 0 {
			out = append(out, uint64(n))
		}
	}
	return out, nil
}

// QueryDisc returns every nested pixel at order whose centre lies within
// radiusRad great-circle distance of (lonRad, latRad) — the cone coverage
// used by moc.FromCone. inclusive additionally returns pixels that merely
// overlap the disc, matching the spec's "any intersection counts" cone
// semantics.
func QueryDisc(order uint8, lonRad, latRad, radiusRad float64, inclusive bool) ([]uint64, error) {
	hp, err := pix(Nside(order))
	if err != nil {
		return nil, err
	}
	theta := math.Pi/2 - latRad
	fact := 1.0
	if inclusive {
		fact = 4.0
	}
	raw, err := hp.QueryDiscInclusive(theta, lonRad, radiusRad, fact)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(raw))
	for i, p := range raw {
		out[i] = uint64(p)
	}
	return out, nil
}

// lonLatToPoint converts spherical (lonRad, latRad) to a planar orb.Point
// of (lon, lat) in degrees, the form planar.PolygonContains tests against:
// an equirectangular approximation appropriate at pixel-centre
// granularity.
func lonLatToPoint(lonRad, latRad float64) orb.Point {
	return orb.Point{lonRad * 180 / math.Pi, latRad * 180 / math.Pi}
}

// QueryPolygon returns every nested pixel at order whose centre falls
// inside the (lon, lat)-degree polygon verts (a closed ring, degrees), used
// by moc.FromPolygon. Candidate pixels are first gathered from the
// polygon's vertices via QueryDisc-style bounding, then filtered with
// planar.PolygonContains — mirroring bitmapMultiPolygon's
// boundary-then-interior split, simplified to a single membership pass
// since moc's Builder already coalesces and degrades the result.
func QueryPolygon(order uint8, vertsDeg [][2]float64) ([]uint64, error) {
	if len(vertsDeg) < 3 {
		return nil, nil
	}
	ring := make(orb.Ring, 0, len(vertsDeg)+1)
	minLon, maxLon := vertsDeg[0][0], vertsDeg[0][0]
	minLat, maxLat := vertsDeg[0][1], vertsDeg[0][1]
	for _, v := range vertsDeg {
		ring = append(ring, orb.Point{v[0], v[1]})
		if v[0] < minLon {
			minLon = v[0]
		}
		if v[0] > maxLon {
			maxLon = v[0]
		}
		if v[1] < minLat {
			minLat = v[1]
		}
		if v[1] > maxLat {
			maxLat = v[1]
		}
	}
	ring = append(ring, ring[0])
	poly := orb.Polygon{ring}

	centerLon := (minLon + maxLon) / 2 * math.Pi / 180
	centerLat := (minLat + maxLat) / 2 * math.Pi / 180
	radius := math.Hypot((maxLon-minLon)*math.Pi/180, (maxLat-minLat)*math.Pi/180)

	candidates, err := QueryDisc(order, centerLon, centerLat, radius, true)
	if err != nil {
		return nil, err
	}

	var out []uint64
	for _, c := range candidates {
		lon, lat, err := Pix2Ang(order, c)
		if err != nil {
			continue
		}
		if planar.PolygonContains(poly, lonLatToPoint(lon, lat)) {
			out = append(out, c)
		}
	}
	return out, nil
}

// QueryBox returns every nested pixel at order whose centre falls within
// the (lon, lat)-degree axis-aligned box, used by moc.FromBox.
func QueryBox(order uint8, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg float64) ([]uint64, error) {
	return QueryPolygon(order, [][2]float64{
		{minLonDeg, minLatDeg}, {maxLonDeg, minLatDeg}, {maxLonDeg, maxLatDeg}, {minLonDeg, maxLatDeg},
	})
}

// QueryZone returns every nested pixel at order whose centre falls inside
// a lon/lat declination band, used by moc.FromZone.
func QueryZone(order uint8, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg float64) ([]uint64, error) {
	return QueryBox(order, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg)
}

// QueryEllipse returns every nested pixel at order whose centre falls
// inside the elliptical region centred at (lonRad, latRad) with semi-major
// aRad, semi-minor bRad and position angle paRad (measured east of north),
// used by moc.FromEllipse. Implemented as a polygon approximation, the same
// "sample a closed curve, hand it to the polygon path" approach the spec
// recommends for non-circular regions.
func QueryEllipse(order uint8, lonRad, latRad, aRad, bRad, paRad float64) ([]uint64, error) {
	const segments = 64
	verts := make([][2]float64, 0, segments)
	cosPA, sinPA := math.Cos(paRad), math.Sin(paRad)
	for i := 0; i < segments; i++ {
		t := 2 * math.Pi * float64(i) / float64(segments)
		x := aRad * math.Cos(t)
		y := bRad * math.Sin(t)
		dx := x*cosPA - y*sinPA
		dy := x*sinPA + y*cosPA
		lon := lonRad + dx/math.Cos(latRad)
		lat := latRad + dy
		verts = append(verts, [2]float64{lon * 180 / math.Pi, lat * 180 / math.Pi})
	}
	return QueryPolygon(order, verts)
}

// Adapter satisfies moc.Geo structurally (this package intentionally
// never imports moc — see the package doc) by delegating each method to
// the free function of the same name above.
type Adapter struct{}

func (Adapter) QueryDisc(order uint8, lonRad, latRad, radiusRad float64, inclusive bool) ([]uint64, error) {
	return QueryDisc(order, lonRad, latRad, radiusRad, inclusive)
}

func (Adapter) QueryPolygon(order uint8, vertsDeg [][2]float64) ([]uint64, error) {
	return QueryPolygon(order, vertsDeg)
}

func (Adapter) QueryBox(order uint8, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg float64) ([]uint64, error) {
	return QueryBox(order, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg)
}

func (Adapter) QueryZone(order uint8, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg float64) ([]uint64, error) {
	return QueryZone(order, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg)
}

func (Adapter) QueryEllipse(order uint8, lonRad, latRad, aRad, bRad, paRad float64) ([]uint64, error) {
	return QueryEllipse(order, lonRad, latRad, aRad, bRad, paRad)
}

func (Adapter) Ang2Pix(order uint8, lonRad, latRad float64) (uint64, error) {
	return Ang2Pix(order, lonRad, latRad)
}
