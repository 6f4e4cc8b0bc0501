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

// Package sampler 提供加權抽樣（放回 / 不放回）引擎。
//
// 本檔案 (cumtable.go) 實作累積機率表。
//
// 演算法原理：
//   - 將相對權重正規化後累加，最後一格固定為 1.0。
//   - 抽樣時取一個 [0,1) 均勻亂數 t，線性掃描第一個累積值 >= t 的位置。
//
// 特性：
//   - 建表時間：O(N)。
//   - 抽樣時間：O(N)（線性掃描）。不放回抽樣每抽一次就重建一次，總成本 O(N*n)。
//   - 權重可為任意非負實數，不需事先正規化。
package sampler

import (
	"math"

	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/sdk/core"
)

// CumTable 正規化後的累積機率表，最後一格為 1.0
type CumTable []float64

// BuildCumTable 依相對權重建立累積機率表。
//
// 錯誤條件（皆在抽樣前回報）：
//   - ratios 為空。
//   - 任一權重為負、NaN 或無限大。
//   - 權重總和為 0。
func BuildCumTable[R Numbers](ratios []R) (CumTable, error) {
	if len(ratios) == 0 {
		return nil, errs.Invalid("ratios must be a non-empty collection")
	}
	total := 0.0
	for _, r := range ratios {
		v := float64(r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errs.Invalid("ratios must be finite numbers")
		}
		if v < 0 {
			return nil, errs.Invalid("ratios must not be negative")
		}
		total += v
	}
	if total == 0 {
		return nil, errs.Structuralf("ratios must not all be zero")
	}

	cum := make(CumTable, len(ratios))
	acc := 0.0
	for i, r := range ratios {
		acc += float64(r)
		cum[i] = acc / total
	}
	// 浮點累加誤差可能讓最後一格略小於 1，直接鎖定
	cum[len(cum)-1] = 1
	return cum, nil
}

// Index 回傳第一個累積值 >= t 且寬度 > 0 的索引。
//
// 寬度為 0（權重為 0）的格子永遠不會被選中，即使 t 恰好落在邊界上。
func (ct CumTable) Index(t float64) int {
	prev := 0.0
	for i, c := range ct {
		if c >= t && c > prev {
			return i
		}
		prev = c
	}
	// t 不在 [0,1) 內時保底回傳最後一個有寬度的格子
	for i := len(ct) - 1; i >= 0; i-- {
		if i == 0 || ct[i] > ct[i-1] {
			return i
		}
	}
	return -1
}

// Pick 抽一個均勻亂數並查表。空表回傳 -1。
func (ct CumTable) Pick(c *core.Core) int {
	if len(ct) == 0 {
		return -1
	}
	return ct.Index(c.Float64())
}
