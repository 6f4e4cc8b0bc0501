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
	"fmt"
	"slices"

	"github.com/zintix-labs/probdist/errs"
	"gonum.org/v1/gonum/stat/distuv"
)

// PointStat 點估計 回傳 估計值 以及信賴區間
type PointStat struct {
	Hat float64 `json:"hat" yaml:"hat"`
	CI  CI      `json:"ci" yaml:"ci"`
}

// TallyCell 單一元素被抽中的頻率
type TallyCell struct {
	Item     string    `json:"item" yaml:"item"`
	Count    int       `json:"count" yaml:"count"`
	Freq     PointStat `json:"freq" yaml:"freq"`
	Expected float64   `json:"expected" yaml:"expected"`
	Covered  bool      `json:"covered" yaml:"covered"` // Expected 是否落在 95% CI 內
}

// Tally 統計放回抽樣結果中各元素的出現頻率，並與權重換算出的期望頻率比較。
//
// items 與 ratios 對齊；ratios 為 nil 時視為等權重。重複的標籤合併為一格。
// picks 中不屬於 items 的值回傳錯誤。
func Tally(items []string, ratios []float64, picks []string) ([]TallyCell, error) {
	if len(items) == 0 {
		return nil, errs.Invalid("items must be a non-empty collection")
	}
	if ratios != nil && len(ratios) != len(items) {
		return nil, errs.Structuralf("ratios length %d does not match collection length %d", len(ratios), len(items))
	}
	total := 0.0
	for i := range items {
		total += ratio(ratios, i)
	}
	if total <= 0 {
		return nil, errs.Structuralf("ratios must not all be zero")
	}

	// 相同標籤合併成一格，依首次出現順序，權重相加
	slot := make(map[string]int, len(items))
	var out []TallyCell
	for i, it := range items {
		j, ok := slot[it]
		if !ok {
			j = len(out)
			slot[it] = j
			out = append(out, TallyCell{Item: it})
		}
		out[j].Expected += ratio(ratios, i) / total
	}
	for _, p := range picks {
		j, ok := slot[p]
		if !ok {
			return nil, errs.Invalid("pick %q is not in items", p)
		}
		out[j].Count++
	}
	for j := range out {
		c := &out[j]
		hat, ci := proportionCICP(c.Count, len(picks), 0.95)
		c.Freq = PointStat{Hat: hat, CI: ci}
		c.Covered = ci.Lo <= c.Expected && c.Expected <= ci.Hi
	}
	return out, nil
}

// Labels 將任意元素轉成 Tally 使用的字串標籤
func Labels[T any](xs []T) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = fmt.Sprint(x)
	}
	return out
}

func ratio(ratios []float64, i int) float64 {
	if ratios == nil {
		return 1
	}
	return ratios[i]
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// 第 q 分位的上下界：把 order statistic 的秩視為二項→Beta 反推 p 範圍，再把 p 轉回樣本索引。
// 樣本太少時退化為整體範圍。
func quantileCI(data []float64, q, confidence float64) (float64, float64) {
	n := len(data)
	if n == 0 {
		return 0, 0
	}
	cp := slices.Clone(data)
	slices.Sort(cp)
	if n < 2 {
		return cp[0], cp[n-1]
	}

	alpha := 1 - confidence
	k := int(q * float64(n))
	if k < 1 {
		k = 1
	} else if k > n-1 {
		k = n - 1
	}

	bLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
	bHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
	pLo := bLo.Quantile(alpha / 2)
	pHi := bHi.Quantile(1 - alpha/2)

	li := min(max(int(pLo*float64(n)), 0), n-1)
	ui := int(pHi * float64(n))
	if ui > 0 {
		ui -= 1
	}
	ui = min(max(ui, 0), n-1)
	return cp[li], cp[ui]
}
