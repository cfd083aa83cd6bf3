package silhouette

import "gonum.org/v1/gonum/floats"

// otsuThreshold returns the binarization threshold that maximizes the
// between-class intensity variance of the 256-bin histogram. Pixels at or
// below the returned value form the dark class.
//
// A histogram with no valid two-class split (for example a near-uniform
// image with all mass in one bin) has zero between-class variance
// everywhere; in that case the dominant bin itself is returned so callers
// classify the whole frame as a single class deterministically.
func otsuThreshold(hist []float64) int {
	total := floats.Sum(hist)
	if total == 0 {
		return 0
	}

	sumAll := 0.0
	for i, h := range hist {
		sumAll += float64(i) * h
	}

	var weightDark, sumDark, best float64
	threshold := -1
	for t := 0; t < len(hist); t++ {
		weightDark += hist[t]
		if weightDark == 0 {
			continue
		}
		weightLight := total - weightDark
		if weightLight == 0 {
			break
		}
		sumDark += float64(t) * hist[t]
		meanDark := sumDark / weightDark
		meanLight := (sumAll - sumDark) / weightLight
		between := weightDark * weightLight * (meanDark - meanLight) * (meanDark - meanLight)
		if between > best {
			best = between
			threshold = t
		}
	}
	if threshold < 0 {
		return dominantBin(hist)
	}
	return threshold
}

// dominantBin returns the index of the histogram's largest bin.
func dominantBin(hist []float64) int {
	return floats.MaxIdx(hist)
}
