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
	"github.com/zintix-labs/probdist/sdk/core"
	"github.com/zintix-labs/probdist/sdk/sampler"
)

// std 套件層級函數共用的加密來源取樣器（無狀態，可併發使用）
var std = Default()

func Prng(byteLen int) (float64, error) { return core.Prng(byteLen) }

func Runif(n int, min, max float64) ([]float64, error) { return std.Runif(n, min, max) }

func Rnorm(n int, mean, sd float64) ([]float64, error) { return std.Rnorm(n, mean, sd) }

func Rexp(n int, rate float64) ([]float64, error) { return std.Rexp(n, rate) }

func Rgamma(n int, alpha, rate float64) ([]float64, error) { return std.Rgamma(n, alpha, rate) }

func Rbeta(n int, alpha, beta, loc float64) ([]float64, error) {
	return std.Rbeta(n, alpha, beta, loc)
}

func Rchisq(n int, df, ncp float64) ([]float64, error) { return std.Rchisq(n, df, ncp) }

func Rcauchy(n int, loc, scale float64) ([]float64, error) { return std.Rcauchy(n, loc, scale) }

func Rlaplace(n int, loc, scale float64) ([]float64, error) { return std.Rlaplace(n, loc, scale) }

func Rbinom(n int, size, p float64) ([]int, error) { return std.Rbinom(n, size, p) }

func Rnbinom(n int, size float64, p, mu *float64) ([]int, error) {
	return std.Rnbinom(n, size, p, mu)
}

func Rpois(n int, lambda float64) ([]int, error) { return std.Rpois(n, lambda) }

func Ruf(n int) ([]float64, error) { return std.Ruf(n) }

func Rfml(n int, loc float64, p ProbFunc, maxSteps int, trace *Trace) ([]int, error) {
	return std.Rfml(n, loc, p, maxSteps, trace)
}

// Sample 以預設加密來源做加權抽樣，語意同 sampler.Sample。
func Sample[T any](items []T, n int, replace bool, ratios []float64) ([]T, error) {
	return SampleWith(std, items, n, replace, ratios)
}

// SampleWith 以指定 Sampler 的熵來源做加權抽樣。
func SampleWith[T any](s *Sampler, items []T, n int, replace bool, ratios []float64) (_ []T, err error) {
	defer guard(&err)
	return sampler.Sample(s.c, items, n, replace, ratios)
}

// Shuffle 以預設加密來源對整個集合做無偏洗牌。
func Shuffle[T any](items []T) (_ []T, err error) {
	defer guard(&err)
	return sampler.Shuffle(std.c, items)
}
