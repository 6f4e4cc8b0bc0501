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

package dist

import (
	"math"

	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/sdk/sampler"
	"github.com/zintix-labs/probdist/sdk/valid"
)

// 本檔案 (transform.go) 為直接建立在均勻亂數上的分佈：
//   - Normal      : polar Box-Muller（拒絕採樣）
//   - Exponential : 反函數法
//   - Cauchy      : 反函數法
//   - Laplace     : 反函數法 + 隨機正負號

var signs = []float64{-1, 1}

// Rnorm 產生 n 個常態變量 N(mean, sd^2)。sd 可為 0（退化為常數 mean）。
func (s *Sampler) Rnorm(n int, mean, sd float64) (_ []float64, err error) {
	defer guard(&err)
	if err := valid.Count(n); err != nil {
		return nil, err
	}
	if _, err := valid.Check("mean", mean, valid.Real); err != nil {
		return nil, err
	}
	if _, err := valid.Check("sd", sd, valid.NonNegReal); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		z, err := s.stdNormal()
		if err != nil {
			return nil, err
		}
		out[i] = mean + sd*z
	}
	return out, nil
}

// stdNormal 以 polar Box-Muller 產生一個標準常態變量。
//
// 在單位圓內均勻取點 (V1,V2)：S > 1 時重抽；S == 0 也重抽，避免 0/0。
// 接受率約 π/4。
func (s *Sampler) stdNormal() (float64, error) {
	for tries := 0; ; tries++ {
		if s.exhausted(tries) {
			return 0, errs.Exhaustedf("normal: rejection budget %d exhausted", s.rejectBudget)
		}
		v1 := 2*s.c.Open01() - 1
		v2 := 2*s.c.Open01() - 1
		sq := v1*v1 + v2*v2
		if sq > 1 || sq == 0 {
			continue
		}
		return v1 * math.Sqrt(-2*math.Log(sq)/sq), nil
	}
}

// Rexp 產生 n 個指數變量，x = -ln(u)/rate，u ∈ (0,1)。
func (s *Sampler) Rexp(n int, rate float64) (_ []float64, err error) {
	defer guard(&err)
	if err := valid.Count(n); err != nil {
		return nil, err
	}
	if _, err := valid.Check("rate", rate, valid.PosReal); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = -math.Log(s.c.Open01()) / rate
	}
	return out, nil
}

// Rcauchy 產生 n 個 Cauchy 變量，x = scale*tan(π(u-0.5)) + loc。
func (s *Sampler) Rcauchy(n int, loc, scale float64) (_ []float64, err error) {
	defer guard(&err)
	if err := valid.Count(n); err != nil {
		return nil, err
	}
	if _, err := valid.Check("loc", loc, valid.Real); err != nil {
		return nil, err
	}
	if _, err := valid.Check("scale", scale, valid.PosReal); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = scale*math.Tan(math.Pi*(s.c.Float64()-0.5)) + loc
	}
	return out, nil
}

// Rlaplace 產生 n 個 Laplace 變量，x = loc - scale*sign*ln(1-2|u|)。
//
// |u| 取自 [0,0.5)，sign 透過加權抽樣引擎從 {-1,+1} 等權重抽出。
func (s *Sampler) Rlaplace(n int, loc, scale float64) (_ []float64, err error) {
	defer guard(&err)
	if err := valid.Count(n); err != nil {
		return nil, err
	}
	if _, err := valid.Check("loc", loc, valid.Real); err != nil {
		return nil, err
	}
	if _, err := valid.Check("scale", scale, valid.PosReal); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		sign, err := sampler.Sample(s.c, signs, 1, false, nil)
		if err != nil {
			return nil, err
		}
		u := s.c.Uniform(0, 0.5)
		out[i] = loc - scale*sign[0]*math.Log(1-2*u)
	}
	return out, nil
}
