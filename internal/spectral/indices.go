// Package spectral computes the simulated near-infrared band and the
// vegetation/water indices derived from it. Every function here is a pure
// function of the visible channels; no physical NIR sensor data exists, so
// NIR reflectance is approximated from RGB with a fixed heuristic.
package spectral

import "math"

// BandSample carries every per-pixel value the rest of the pipeline needs.
// Samples are recomputed on demand and never stored.
type BandSample struct {
	NIR  float64
	NDVI float64
	NDWI float64
	VARI float64
	ExG  float64
}

// Sample computes all bands for one pixel.
func Sample(r, g, b uint8) BandSample {
	nir := SimulateNIR(r, g, b)
	return BandSample{
		NIR:  nir,
		NDVI: ndviFromNIR(nir, float64(r)),
		NDWI: ndwiFromNIR(nir, float64(g)),
		VARI: VARI(r, g, b),
		ExG:  ExG(r, g, b),
	}
}

// SimulateNIR approximates near-infrared reflectance from the visible
// channels. Healthy vegetation reflects strongly in NIR and green while
// absorbing red, which the weights mirror. Result is clamped to [0,255].
func SimulateNIR(r, g, b uint8) float64 {
	nir := float64(g)*1.4 + (255-float64(r))*0.3 - float64(b)*0.2
	return clamp(math.Round(nir), 0, 255)
}

// NDVI is the normalized difference of simulated NIR and red. A zero
// denominator yields 0 rather than an error.
func NDVI(r, g, b uint8) float64 {
	return ndviFromNIR(SimulateNIR(r, g, b), float64(r))
}

// NDWI is the normalized difference of green and simulated NIR. Zero
// denominator yields 0.
func NDWI(r, g, b uint8) float64 {
	return ndwiFromNIR(SimulateNIR(r, g, b), float64(g))
}

// VARI is the visible atmospherically resistant index (g-r)/(g+r-b). Zero
// denominator yields 0.
func VARI(r, g, b uint8) float64 {
	denominator := float64(g) + float64(r) - float64(b)
	if denominator == 0 {
		return 0
	}
	return (float64(g) - float64(r)) / denominator
}

// ExG is the excess green index over sum-normalized channels. A black pixel
// (zero channel sum) yields 0.
func ExG(r, g, b uint8) float64 {
	sum := float64(r) + float64(g) + float64(b)
	if sum == 0 {
		return 0
	}
	rn := float64(r) / sum
	gn := float64(g) / sum
	bn := float64(b) / sum
	return 2*gn - rn - bn
}

func ndviFromNIR(nir, red float64) float64 {
	denominator := nir + red
	if denominator == 0 {
		return 0
	}
	return (nir - red) / denominator
}

func ndwiFromNIR(nir, green float64) float64 {
	denominator := green + nir
	if denominator == 0 {
		return 0
	}
	return (green - nir) / denominator
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
