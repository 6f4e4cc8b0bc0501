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
	"github.com/zintix-labs/probdist/sdk/valid"
)

// 本檔案 (compose.go) 為組合型分佈：
//   - Chi-squared : 標準常態平方和
//   - Gamma       : 三段式拒絕採樣
//   - Beta        : 兩個 Gamma 的比值

const (
	log4          = 1.3862943611198906 // ln(4)
	sgMagicConst  = 2.504077396776274  // 1 + ln(4.5)
	gammaTinyU    = 1e-7
	gammaNearOneU = 1 - 1e-7
)

// Rchisq 產生 n 個卡方變量：ncp + Σ(df 個標準常態的平方)。
//
// ncp 只是平移量，並不是非中心卡方分佈的非中心參數。
func (s *Sampler) Rchisq(n int, df, ncp float64) (_ []float64, err error) {
	defer guard(&err)
	if err := valid.Count(n); err != nil {
		return nil, err
	}
	if _, err := valid.Check("df", df, valid.Natural); err != nil {
		return nil, err
	}
	if _, err := valid.Check("ncp", ncp, valid.NonNegReal); err != nil {
		return nil, err
	}
	k := int(df)
	out := make([]float64, n)
	for i := range out {
		x := ncp
		for j := 0; j < k; j++ {
			z, err := s.stdNormal()
			if err != nil {
				return nil, err
			}
			x += z * z
		}
		out[i] = x
	}
	return out, nil
}

// Rgamma 產生 n 個 Gamma(alpha, rate) 變量（scale = 1/rate）。
func (s *Sampler) Rgamma(n int, alpha, rate float64) (_ []float64, err error) {
	defer guard(&err)
	if err := valid.Count(n); err != nil {
		return nil, err
	}
	if _, err := valid.Check("alpha", alpha, valid.PosReal); err != nil {
		return nil, err
	}
	if _, err := valid.Check("rate", rate, valid.PosReal); err != nil {
		return nil, err
	}
	beta := 1 / rate
	out := make([]float64, n)
	for i := range out {
		g, err := s.gamma(alpha)
		if err != nil {
			return nil, err
		}
		out[i] = g * beta
	}
	return out, nil
}

// gamma 產生一個 Gamma(alpha, 1) 變量，依 alpha 分三段：
//
//	alpha > 1     : Cheng 的 log-logistic 提案分佈 + 對數機率上界拒絕
//	alpha == 1    : 退化為指數分佈（拒絕過小的 u 以避開 log(0)）
//	0 < alpha < 1 : Ahrens-Dieter GS 演算法，以 p <= 1 為分界
func (s *Sampler) gamma(alpha float64) (float64, error) {
	switch {
	case alpha > 1:
		ainv := math.Sqrt(2*alpha - 1)
		bbb := alpha - log4
		ccc := alpha + ainv
		for tries := 0; ; tries++ {
			if s.exhausted(tries) {
				return 0, errs.Exhaustedf("gamma: rejection budget %d exhausted", s.rejectBudget)
			}
			u1 := s.c.Float64()
			if !(gammaTinyU < u1 && u1 < gammaNearOneU) {
				continue
			}
			u2 := 1 - s.c.Float64()
			v := math.Log(u1/(1-u1)) / ainv
			x := alpha * math.Exp(v)
			z := u1 * u1 * u2
			r := bbb + ccc*v - x
			if r+sgMagicConst-4.5*z >= 0 || r >= math.Log(z) {
				return x, nil
			}
		}

	case alpha == 1:
		for tries := 0; ; tries++ {
			if s.exhausted(tries) {
				return 0, errs.Exhaustedf("gamma: rejection budget %d exhausted", s.rejectBudget)
			}
			if u := s.c.Float64(); u > gammaTinyU {
				return -math.Log(u), nil
			}
		}

	default:
		b := (math.E + alpha) / math.E
		for tries := 0; ; tries++ {
			if s.exhausted(tries) {
				return 0, errs.Exhaustedf("gamma: rejection budget %d exhausted", s.rejectBudget)
			}
			p := b * s.c.Float64()
			var x float64
			if p <= 1 {
				x = math.Pow(p, 1/alpha)
			} else {
				x = -math.Log((b - p) / alpha)
			}
			u1 := s.c.Float64()
			if p > 1 {
				if u1 <= math.Pow(x, alpha-1) {
					return x, nil
				}
			} else if u1 <= math.Exp(-x) {
				return x, nil
			}
		}
	}
}

// Rbeta 產生 n 個 Beta(alpha, beta) 變量並平移 loc：loc + g1/(g1+g2)。
//
// g1 ~ Gamma(alpha,1)、g2 ~ Gamma(beta,1)。極小 shape 可能讓兩者同時為 0，
// 此時整組重抽（計入拒絕預算）。
func (s *Sampler) Rbeta(n int, alpha, beta, loc float64) (_ []float64, err error) {
	defer guard(&err)
	if err := valid.Count(n); err != nil {
		return nil, err
	}
	if _, err := valid.Check("alpha", alpha, valid.PosReal); err != nil {
		return nil, err
	}
	if _, err := valid.Check("beta", beta, valid.PosReal); err != nil {
		return nil, err
	}
	if _, err := valid.Check("loc", loc, valid.Real); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		for tries := 0; ; tries++ {
			if s.exhausted(tries) {
				return nil, errs.Exhaustedf("beta: rejection budget %d exhausted", s.rejectBudget)
			}
			g1, err := s.gamma(alpha)
			if err != nil {
				return nil, err
			}
			g2, err := s.gamma(beta)
			if err != nil {
				return nil, err
			}
			if sum := g1 + g2; sum > 0 {
				out[i] = loc + g1/sum
				break
			}
		}
	}
	return out, nil
}
