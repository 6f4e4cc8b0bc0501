package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"github.com/zintix-labs/probdist/errs"
	"golang.org/x/text/language"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// Summary 樣本描述統計
type Summary struct {
	N        int     `json:"n" yaml:"n"`
	Mean     float64 `json:"mean" yaml:"mean"`
	MeanCI   CI      `json:"mean_ci" yaml:"mean_ci"`
	Std      float64 `json:"std" yaml:"std"`
	Min      float64 `json:"min" yaml:"min"`
	Q25      float64 `json:"q25" yaml:"q25"`
	Median   float64 `json:"median" yaml:"median"`
	MedianCI CI      `json:"median_ci" yaml:"median_ci"`
	Q75      float64 `json:"q75" yaml:"q75"`
	Max      float64 `json:"max" yaml:"max"`
}

// Summarize 計算樣本描述統計，不修改 xs。
//
// Std 為樣本標準差（n-1）；只有一筆資料時為 0。
func Summarize(xs []float64) (*Summary, error) {
	if len(xs) == 0 {
		return nil, errs.Invalid("values must be a non-empty collection")
	}
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, errs.Invalid("values must be finite numbers")
		}
	}
	s := &Summary{N: len(xs)}
	var err error
	if s.Mean, err = mstats.Mean(xs); err != nil {
		return nil, errs.Wrap(err, "summary: mean")
	}
	if s.N > 1 {
		if s.Std, err = mstats.StandardDeviationSample(xs); err != nil {
			return nil, errs.Wrap(err, "summary: std")
		}
	}
	if s.Min, err = mstats.Min(xs); err != nil {
		return nil, errs.Wrap(err, "summary: min")
	}
	if s.Max, err = mstats.Max(xs); err != nil {
		return nil, errs.Wrap(err, "summary: max")
	}
	if s.Median, err = mstats.Median(xs); err != nil {
		return nil, errs.Wrap(err, "summary: median")
	}
	if s.Q25, err = mstats.PercentileNearestRank(xs, 25); err != nil {
		return nil, errs.Wrap(err, "summary: q25")
	}
	if s.Q75, err = mstats.PercentileNearestRank(xs, 75); err != nil {
		return nil, errs.Wrap(err, "summary: q75")
	}
	s.MeanCI = meanCI(s.Mean, s.Std, s.N)
	s.MedianCI.Lo, s.MedianCI.Hi = quantileCI(xs, 0.5, 0.95)
	return s, nil
}

// meanCI 回傳平均數 95% 常態近似信賴區間
func meanCI(mean, std float64, n int) CI {
	se := 0.0
	if n > 1 {
		se = std / math.Sqrt(float64(n))
	}
	return CI{Lo: mean - 1.96*se, Hi: mean + 1.96*se}
}
