package stats

import (
	"fmt"
	"math"
)

// DefaultBins 預設分箱數
const DefaultBins = 10

// Histogram 等寬分箱落點統計
//
// 區間: [lo, lo+w), [lo+w, lo+2w), ..., [hi-w, hi]，最後一箱包含最大值。
type Histogram struct {
	Bucket  []string  `json:"bucket" yaml:"bucket"`
	Collect []int     `json:"collect" yaml:"collect"`
	Dist    []float64 `json:"dist" yaml:"dist"`
}

// Hist 將 xs 分成 bins 個等寬區間計數；所有值相同時只有一箱。
func Hist(xs []float64, bins int) *Histogram {
	if len(xs) == 0 {
		return &Histogram{}
	}
	if bins < 1 {
		bins = DefaultBins
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo == hi {
		return &Histogram{
			Bucket:  []string{fmt.Sprintf("[%.4g,%.4g]", lo, hi)},
			Collect: []int{len(xs)},
			Dist:    []float64{1},
		}
	}

	w := (hi - lo) / float64(bins)
	h := &Histogram{
		Bucket:  make([]string, bins),
		Collect: make([]int, bins),
		Dist:    make([]float64, bins),
	}
	for i := range h.Bucket {
		a, b := lo+float64(i)*w, lo+float64(i+1)*w
		if i == bins-1 {
			h.Bucket[i] = fmt.Sprintf("[%.4g,%.4g]", a, hi)
		} else {
			h.Bucket[i] = fmt.Sprintf("[%.4g,%.4g)", a, b)
		}
	}
	for _, x := range xs {
		h.Collect[bucketIndex(x, lo, w, bins)]++
	}
	n := float64(len(xs))
	for i, c := range h.Collect {
		h.Dist[i] = float64(c) / n
	}
	return h
}

func bucketIndex(x, lo, w float64, bins int) int {
	idx := int((x - lo) / w)
	// 浮點誤差與最大值都落在最後一箱
	if idx >= bins {
		return bins - 1
	}
	if idx < 0 {
		return 0
	}
	return idx
}
