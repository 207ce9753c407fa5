package figure

import (
	"math"
	"strconv"
)

// Bin is one equal-width histogram bucket covering [Lo, Hi).
type Bin struct {
	Lo, Hi float64
	Count  int
}

// Label renders the bucket range compactly.
func (b Bin) Label() string {
	return strconv.FormatFloat(b.Lo, 'g', 4, 64) + "–" + strconv.FormatFloat(b.Hi, 'g', 4, 64)
}

// Bins groups samples into n equal-width buckets. With n <= 0 the count
// follows Sturges' rule. The last bucket is closed so the maximum is counted.
func Bins(samples []float64, n int) []Bin {
	var vals []float64
	for _, v := range samples {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return nil
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if n <= 0 {
		n = int(math.Ceil(math.Log2(float64(len(vals))))) + 1
	}
	if hi == lo {
		return []Bin{{Lo: lo - 0.5, Hi: hi + 0.5, Count: len(vals)}}
	}
	// hi-lo can overflow float64, so scale before subtracting.
	width := hi/float64(n) - lo/float64(n)
	if width <= 0 || math.IsInf(width, 0) {
		return []Bin{{Lo: lo, Hi: hi, Count: len(vals)}}
	}
	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Lo: lo + float64(i)*width, Hi: lo + float64(i+1)*width}
	}
	bins[n-1].Hi = hi
	for _, v := range vals {
		pos := math.Floor(v/width - lo/width)
		i := n - 1
		if pos < float64(n) {
			i = max(int(pos), 0)
		}
		bins[i].Count++
	}
	return bins
}
