package guidemovie

import (
	"math"
	"sort"
)

// zscale tuning, after the IRAF display algorithm.
const (
	zscaleSamples  = 1000
	zscaleContrast = 0.25
	zscaleKrej     = 2.5
	zscaleMaxIter  = 5
)

// ZScale computes robust display limits for a pixel plane. It is the same
// class of algorithm astronomical viewers use: a line is fit to an evenly
// spaced, sorted sample of the pixels with k-sigma rejection, and the sample
// midpoint is spread by the fitted slope over the contrast. The result clips
// to a statistically representative low/high rather than the true extremes,
// so hot pixels and cosmic rays do not wash out the display.
func ZScale(pix []float64) (lo, hi float64) {
	if len(pix) == 0 {
		return 0, 1
	}

	stride := len(pix)/zscaleSamples + 1
	samples := make([]float64, 0, len(pix)/stride+1)
	for i := 0; i < len(pix); i += stride {
		if !math.IsNaN(pix[i]) && !math.IsInf(pix[i], 0) {
			samples = append(samples, pix[i])
		}
	}
	if len(samples) == 0 {
		return 0, 1
	}
	sort.Float64s(samples)

	n := len(samples)
	lo, hi = samples[0], samples[n-1]
	if lo == hi {
		return lo, lo + 1
	}
	median := samples[n/2]

	slope, ngood := fitLine(samples)
	minGood := n / 2
	if minGood < 5 {
		minGood = 5
	}
	if ngood >= minGood && slope > 0 {
		slope /= zscaleContrast
		zlo := median - slope*float64(n/2)
		zhi := median + slope*float64(n-1-n/2)
		if zlo > lo {
			lo = zlo
		}
		if zhi < hi {
			hi = zhi
		}
	}
	return lo, hi
}

// fitLine fits value = intercept + slope*index to the sorted sample,
// iteratively rejecting points more than krej sigma from the fit. It returns
// the final slope and how many points survived rejection.
func fitLine(samples []float64) (slope float64, ngood int) {
	n := len(samples)
	good := make([]bool, n)
	for i := range good {
		good[i] = true
	}
	ngood = n

	var intercept float64
	for iter := 0; iter < zscaleMaxIter; iter++ {
		// least squares over the surviving points
		var sx, sy, sxx, sxy, count float64
		for i, ok := range good {
			if !ok {
				continue
			}
			x := float64(i)
			sx += x
			sy += samples[i]
			sxx += x * x
			sxy += x * samples[i]
			count++
		}
		det := count*sxx - sx*sx
		if count < 2 || det == 0 {
			return 0, ngood
		}
		slope = (count*sxy - sx*sy) / det
		intercept = (sy*sxx - sx*sxy) / det

		// k-sigma rejection against the fit
		var sum, sumsq float64
		for i, ok := range good {
			if !ok {
				continue
			}
			r := samples[i] - (intercept + slope*float64(i))
			sum += r
			sumsq += r * r
		}
		mean := sum / count
		sigma := math.Sqrt(sumsq/count - mean*mean)
		if sigma == 0 {
			break
		}
		rejected := 0
		for i, ok := range good {
			if !ok {
				continue
			}
			r := samples[i] - (intercept + slope*float64(i))
			if math.Abs(r-mean) > zscaleKrej*sigma {
				good[i] = false
				rejected++
			}
		}
		ngood -= rejected
		if rejected == 0 || ngood < 2 {
			break
		}
	}
	return slope, ngood
}
