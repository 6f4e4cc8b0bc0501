// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats

import (
	"math"
	"slices"

	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/sdk/dist"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// KSCoef α = 0.05 時 Kolmogorov–Smirnov 漸近臨界值係數
const KSCoef = 1.36

// FitReport 單樣本 Kolmogorov–Smirnov 檢定結果
//
// RefMean / RefVar 在參考分佈的動差不存在時為 nil（例如 Cauchy）。
type FitReport struct {
	Dist     string    `json:"dist" yaml:"dist"`
	Args     dist.Args `json:"args" yaml:"args"`
	N        int       `json:"n" yaml:"n"`
	D        float64   `json:"d" yaml:"d"`
	Critical float64   `json:"critical" yaml:"critical"`
	Pass     bool      `json:"pass" yaml:"pass"`
	RefMean  *float64  `json:"ref_mean,omitempty" yaml:"ref_mean,omitempty"`
	RefVar   *float64  `json:"ref_var,omitempty" yaml:"ref_var,omitempty"`
}

// refDist distuv 參考分佈共同的方法集合
type refDist interface {
	CDF(x float64) float64
	Mean() float64
	Variance() float64
}

type reference struct {
	cdf      func(x float64) float64
	mean     float64
	variance float64
}

func shifted(d refDist, loc float64) reference {
	return reference{
		cdf:      func(x float64) float64 { return d.CDF(x - loc) },
		mean:     d.Mean() + loc,
		variance: d.Variance(),
	}
}

// Fit 以名稱與參數建立參考分佈，計算 xs 的 KS 統計量 D。
//
// 參數解析規則與 dist 登錄表相同（未給定者套用預設值）。離散分佈只在觀測值上比較 CDF。
func Fit(name string, a dist.Args, xs []float64) (*FitReport, error) {
	e, ok := dist.Lookup(name)
	if !ok {
		return nil, errs.Invalid("unknown distribution %q", name)
	}
	if len(xs) == 0 {
		return nil, errs.Invalid("values must be a non-empty collection")
	}
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, errs.Invalid("values must be finite numbers")
		}
	}
	args, err := e.Resolve(a)
	if err != nil {
		return nil, err
	}
	ref, err := lookupRef(name, args)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	var d float64
	if e.Discrete {
		d = ksDiscrete(sorted, ref.cdf)
	} else {
		d = ksContinuous(sorted, ref.cdf)
	}
	crit := KSCoef / math.Sqrt(float64(len(xs)))
	return &FitReport{
		Dist:     name,
		Args:     args,
		N:        len(xs),
		D:        d,
		Critical: crit,
		Pass:     d <= crit,
		RefMean:  finite(ref.mean),
		RefVar:   finite(ref.variance),
	}, nil
}

func lookupRef(name string, a dist.Args) (reference, error) {
	switch name {
	case "unif":
		if a["min"] == a["max"] {
			return reference{}, errs.Invalid("min must be less than max to fit")
		}
		return shifted(distuv.Uniform{Min: a["min"], Max: a["max"]}, 0), nil
	case "norm":
		if a["sd"] == 0 {
			return reference{}, errs.Invalid("sd must be greater than zero to fit")
		}
		return shifted(distuv.Normal{Mu: a["mean"], Sigma: a["sd"]}, 0), nil
	case "exp":
		return shifted(distuv.Exponential{Rate: a["rate"]}, 0), nil
	case "gamma":
		return shifted(distuv.Gamma{Alpha: a["alpha"], Beta: a["rate"]}, 0), nil
	case "beta":
		return shifted(distuv.Beta{Alpha: a["alpha"], Beta: a["beta"]}, a["loc"]), nil
	case "chisq":
		// ncp 為平移量
		return shifted(distuv.ChiSquared{K: a["df"]}, a["ncp"]), nil
	case "cauchy":
		return shifted(distuv.StudentsT{Mu: a["loc"], Sigma: a["scale"], Nu: 1}, 0), nil
	case "laplace":
		return shifted(distuv.Laplace{Mu: a["loc"], Scale: a["scale"]}, 0), nil
	case "binom":
		return shifted(distuv.Binomial{N: a["size"], P: a["p"]}, 0), nil
	case "pois":
		return shifted(distuv.Poisson{Lambda: a["lambda"]}, 0), nil
	case "nbinom":
		return nbinomRef(a)
	case "uf":
		return reference{cdf: ufCDF, mean: math.Inf(1), variance: math.Inf(1)}, nil
	default:
		return reference{}, errs.Invalid("no reference distribution for %s", name)
	}
}

// nbinomRef 失敗次數的負二項分佈：F(k) = I_p(size, k+1)
func nbinomRef(a dist.Args) (reference, error) {
	size := a["size"]
	p, hasP := a["p"]
	mu, hasMu := a["mu"]
	switch {
	case hasP && hasMu:
		return reference{}, errs.Invalid("p and mu cannot both be given")
	case hasMu:
		p = size / (size + mu)
	case !hasP:
		return reference{}, errs.Invalid("either p or mu must be given")
	}
	if p == 0 {
		return reference{}, errs.Invalid("p must be greater than zero")
	}
	cdf := func(x float64) float64 {
		if x < 0 {
			return 0
		}
		return mathext.RegIncBeta(size, math.Floor(x)+1, p)
	}
	return reference{
		cdf:      cdf,
		mean:     size * (1 - p) / p,
		variance: size * (1 - p) / (p * p),
	}, nil
}

// ufCDF rate ~ U(0,1) 的指數混合：F(x) = 1 - (1 - e^-x) / x
func ufCDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return 1 + math.Expm1(-x)/x
}

func ksContinuous(sorted []float64, cdf func(float64) float64) float64 {
	n := float64(len(sorted))
	d := 0.0
	for i, x := range sorted {
		f := cdf(x)
		d = max(d, float64(i+1)/n-f, f-float64(i)/n)
	}
	return d
}

// ksDiscrete 在每個相異觀測值 v 上比較 F_n(v) 與 F(v)，以及 F_n(v-) 與 F(v-1)。
func ksDiscrete(sorted []float64, cdf func(float64) float64) float64 {
	n := float64(len(sorted))
	d := 0.0
	for i := 0; i < len(sorted); {
		v := sorted[i]
		j := i
		for j < len(sorted) && sorted[j] == v {
			j++
		}
		d = max(d, math.Abs(float64(j)/n-cdf(v)), math.Abs(float64(i)/n-cdf(v-1)))
		i = j
	}
	return d
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
