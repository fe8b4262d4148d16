package guidemovie

import (
	"errors"
	"math"
	"strings"
)

// ErrNoTransform reports a header without a usable celestial transform.
// Guide frames commonly ship without one; callers render the frame with no
// coordinate overlay and move on.
var ErrNoTransform = errors.New("guidemovie: no celestial transform in header")

const deg2rad = math.Pi / 180

// WCS is a linear gnomonic (TAN) world coordinate transform between pixel
// and sky coordinates, built from the standard CRVAL/CRPIX/CD cards.
type WCS struct {
	crval1, crval2 float64 // sky reference, degrees
	crpix1, crpix2 float64 // pixel reference
	cd             [4]float64
	inv            [4]float64
}

// ParseWCS builds a transform from the astrometric cards of h. It accepts a
// CD matrix or the older CDELT1/2 + CROTA2 form, and requires an RA/DEC
// CTYPE pair. ErrNoTransform is the only error it returns.
func ParseWCS(h Header) (*WCS, error) {
	ctype1, _ := h.str("CTYPE1")
	ctype2, _ := h.str("CTYPE2")
	if !strings.HasPrefix(ctype1, "RA") || !strings.HasPrefix(ctype2, "DEC") {
		return nil, ErrNoTransform
	}

	w := &WCS{}
	var ok1, ok2, ok3, ok4 bool
	w.crval1, ok1 = h.num("CRVAL1")
	w.crval2, ok2 = h.num("CRVAL2")
	w.crpix1, ok3 = h.num("CRPIX1")
	w.crpix2, ok4 = h.num("CRPIX2")
	if !(ok1 && ok2 && ok3 && ok4) {
		return nil, ErrNoTransform
	}

	if cd11, ok := h.num("CD1_1"); ok {
		cd12, _ := h.num("CD1_2")
		cd21, _ := h.num("CD2_1")
		cd22, ok22 := h.num("CD2_2")
		if !ok22 {
			return nil, ErrNoTransform
		}
		w.cd = [4]float64{cd11, cd12, cd21, cd22}
	} else {
		cdelt1, okd1 := h.num("CDELT1")
		cdelt2, okd2 := h.num("CDELT2")
		if !okd1 || !okd2 {
			return nil, ErrNoTransform
		}
		crota, _ := h.num("CROTA2")
		sin, cos := math.Sincos(crota * deg2rad)
		w.cd = [4]float64{cdelt1 * cos, -cdelt2 * sin, cdelt1 * sin, cdelt2 * cos}
	}

	det := w.cd[0]*w.cd[3] - w.cd[1]*w.cd[2]
	if det == 0 || math.IsNaN(det) {
		return nil, ErrNoTransform
	}
	w.inv = [4]float64{w.cd[3] / det, -w.cd[1] / det, -w.cd[2] / det, w.cd[0] / det}
	return w, nil
}

// PixelToSky maps a pixel coordinate to (ra, dec) in degrees.
func (w *WCS) PixelToSky(x, y float64) (ra, dec float64) {
	u := (w.cd[0]*(x-w.crpix1) + w.cd[1]*(y-w.crpix2)) * deg2rad
	v := (w.cd[2]*(x-w.crpix1) + w.cd[3]*(y-w.crpix2)) * deg2rad

	ra0 := w.crval1 * deg2rad
	dec0 := w.crval2 * deg2rad

	rho := math.Hypot(u, v)
	if rho == 0 {
		return w.crval1, w.crval2
	}
	c := math.Atan(rho)
	sinc, cosc := math.Sincos(c)
	dec = math.Asin(cosc*math.Sin(dec0) + v*sinc*math.Cos(dec0)/rho)
	ra = ra0 + math.Atan2(u*sinc, rho*math.Cos(dec0)*cosc-v*math.Sin(dec0)*sinc)

	ra /= deg2rad
	for ra < 0 {
		ra += 360
	}
	for ra >= 360 {
		ra -= 360
	}
	return ra, dec / deg2rad
}

// SkyToPixel maps (ra, dec) in degrees to a pixel coordinate.
func (w *WCS) SkyToPixel(ra, dec float64) (x, y float64) {
	raR := ra * deg2rad
	decR := dec * deg2rad
	ra0 := w.crval1 * deg2rad
	dec0 := w.crval2 * deg2rad

	cosc := math.Sin(dec0)*math.Sin(decR) + math.Cos(dec0)*math.Cos(decR)*math.Cos(raR-ra0)
	u := math.Cos(decR) * math.Sin(raR-ra0) / cosc / deg2rad
	v := (math.Cos(dec0)*math.Sin(decR) - math.Sin(dec0)*math.Cos(decR)*math.Cos(raR-ra0)) / cosc / deg2rad

	x = w.inv[0]*u + w.inv[1]*v + w.crpix1
	y = w.inv[2]*u + w.inv[3]*v + w.crpix2
	return x, y
}
