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

const (
	// PoissonSmallRate 以下使用 Knuth 乘積法
	PoissonSmallRate = 30.0
	// PoissonTrials 大 rate 時以固定次數伯努利試驗近似
	PoissonTrials = 10000
)

// Rbinom 產生 n 個二項變量：size 次 Bernoulli(p) 的成功次數。
func (s *Sampler) Rbinom(n int, size, p float64) (_ []int, err error) {
	defer guard(&err)
	if err := valid.Count(n); err != nil {
		return nil, err
	}
	if _, err := valid.Check("size", size, valid.NonNegInt); err != nil {
		return nil, err
	}
	if _, err := valid.Check("p", p, valid.Probability); err != nil {
		return nil, err
	}
	trials := int(size)
	out := make([]int, n)
	for i := range out {
		out[i] = s.bernoulliSum(trials, p)
	}
	return out, nil
}

// Rnbinom 產生 n 個負二項變量：累積到 size 次成功之前的失敗次數。
//
// p 與 mu 只能擇一給定；給 mu 時 p = size/(size+mu)，此時平均值即為 mu。
func (s *Sampler) Rnbinom(n int, size float64, p, mu *float64) (_ []int, err error) {
	defer guard(&err)
	if err := valid.Count(n); err != nil {
		return nil, err
	}
	if _, err := valid.Check("size", size, valid.Natural); err != nil {
		return nil, err
	}
	if err := valid.Exclusive("p", "mu", p, mu); err != nil {
		return nil, err
	}
	var prob float64
	switch {
	case mu != nil:
		m, err := valid.Check("mu", *mu, valid.NonNegReal)
		if err != nil {
			return nil, err
		}
		prob = size / (size + m)
	case p != nil:
		v, err := valid.Check("p", *p, valid.Probability)
		if err != nil {
			return nil, err
		}
		prob = v
	default:
		return nil, errs.Invalid("either p or mu must be given")
	}
	// p == 0 永遠不會成功，迴圈無法終止
	if prob == 0 {
		return nil, errs.Invalid("p must be greater than zero")
	}

	target := int(size)
	out := make([]int, n)
	for i := range out {
		successes, trials := 0, 0
		for successes < target {
			if s.c.Bernoulli(prob) {
				successes++
			}
			trials++
		}
		out[i] = trials - target
	}
	return out, nil
}

// Rpois 產生 n 個 Poisson(lambda) 變量。
//
//   - lambda < 30  : Knuth 乘積法，連乘均勻亂數直到低於 exp(-lambda)。
//   - lambda >= 30 : 近似法，10000 次 Bernoulli(lambda/10000) 的成功次數。
//     這是刻意的精度/效能取捨（忽略了 Poisson 尾部形狀），因此 lambda 上限為 10000。
func (s *Sampler) Rpois(n int, lambda float64) (_ []int, err error) {
	defer guard(&err)
	if err := valid.Count(n); err != nil {
		return nil, err
	}
	if _, err := valid.Check("lambda", lambda, valid.PosReal); err != nil {
		return nil, err
	}
	if lambda > PoissonTrials {
		return nil, errs.Invalid("lambda must not exceed %d", PoissonTrials)
	}
	out := make([]int, n)
	if lambda >= PoissonSmallRate {
		p := lambda / PoissonTrials
		for i := range out {
			out[i] = s.bernoulliSum(PoissonTrials, p)
		}
		return out, nil
	}
	limit := math.Exp(-lambda)
	for i := range out {
		k, acc := 0, 1.0
		for {
			k++
			acc *= s.c.Float64()
			if acc <= limit {
				break
			}
		}
		out[i] = k - 1
	}
	return out, nil
}

// bernoulliSum 回傳 trials 次 Bernoulli(p) 的成功次數
func (s *Sampler) bernoulliSum(trials int, p float64) int {
	k := 0
	for j := 0; j < trials; j++ {
		if s.c.Bernoulli(p) {
			k++
		}
	}
	return k
}
