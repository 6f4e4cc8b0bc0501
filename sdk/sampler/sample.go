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

package sampler

import (
	"slices"

	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/sdk/core"
	"github.com/zintix-labs/probdist/sdk/valid"
)

// Sample 從 items 中抽出 n 個元素。
//
//   - ratios 為 nil 代表等權重；否則長度必須與 items 相同。
//   - replace == true：每次抽樣獨立，累積表在整次呼叫中不變。
//   - replace == false：每抽一次就把該元素與其權重從工作副本移除並重建累積表。
//
// 呼叫端的 items 與 ratios 永遠不會被修改；所有錯誤都在抽任何亂數之前回報。
func Sample[T any](c *core.Core, items []T, n int, replace bool, ratios []float64) ([]T, error) {
	if err := valid.NonEmpty("collection", items); err != nil {
		return nil, err
	}
	if err := valid.Count(n); err != nil {
		return nil, err
	}
	if ratios == nil {
		ratios = uniformRatios(len(items))
	}
	if len(ratios) != len(items) {
		return nil, errs.Structuralf("ratios length %d does not match collection length %d", len(ratios), len(items))
	}
	table, err := BuildCumTable(ratios)
	if err != nil {
		return nil, err
	}

	if replace {
		out := make([]T, n)
		for i := range out {
			out[i] = items[table.Pick(c)]
		}
		return out, nil
	}

	if n > len(items) {
		return nil, errs.Structuralf("collection has insufficient length: want %d, have %d", n, len(items))
	}
	// 不放回時，權重為 0 的元素永遠不會被抽到，可抽數量只看正權重個數
	if positive := countPositive(ratios); n > positive {
		return nil, errs.Structuralf("collection has insufficient length: want %d, have %d items with positive ratio", n, positive)
	}

	pool := slices.Clone(items)
	w := slices.Clone(ratios)
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		idx := table.Pick(c)
		out = append(out, pool[idx])
		pool = slices.Delete(pool, idx, idx+1)
		w = slices.Delete(w, idx, idx+1)
		if i == n-1 {
			break
		}
		// 前面已確認剩餘正權重足夠，這裡不會失敗
		if table, err = BuildCumTable(w); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Shuffle 等權重、不放回地抽出整個集合，即一次無偏洗牌。
func Shuffle[T any](c *core.Core, items []T) ([]T, error) {
	return Sample(c, items, len(items), false, nil)
}

// Ratios 將任意數值權重轉成 []float64，方便整數權重直接傳入 Sample。
func Ratios[R Numbers](w []R) []float64 {
	if w == nil {
		return nil
	}
	out := make([]float64, len(w))
	for i, v := range w {
		out[i] = float64(v)
	}
	return out
}

func uniformRatios(n int) []float64 {
	r := make([]float64, n)
	for i := range r {
		r[i] = 1
	}
	return r
}

func countPositive(ratios []float64) int {
	k := 0
	for _, r := range ratios {
		if r > 0 {
			k++
		}
	}
	return k
}
