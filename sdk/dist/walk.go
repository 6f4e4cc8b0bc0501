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
	"strconv"

	"github.com/zintix-labs/probdist/sdk/valid"
)

// WalkFailed 有界隨機漫步在步數上限內未能歸零時回傳的哨兵值
const WalkFailed = -1

// DefaultWalkCap 有界隨機漫步預設步數上限
const DefaultWalkCap = 10000

const (
	stepUp   = "One more problem"
	stepDown = "One fewer problem"
)

// ProbFunc 成功機率提供者：每次呼叫回傳一個 [0,1] 的機率。
type ProbFunc func() float64

// Step 有界隨機漫步的單步紀錄
type Step struct {
	Key      string  `json:"key"` // "<第幾個變量>_<第幾步>"
	Draw     int     `json:"draw"`
	Step     int     `json:"step"`
	Problems int     `json:"problems"`
	P        float64 `json:"p"`
	Result   string  `json:"result"`
}

// Trace 呼叫端提供的步驟紀錄容器，只在單次呼叫期間被追加。
type Trace struct {
	Steps []Step `json:"steps"`
}

func (t *Trace) add(st Step) {
	if t == nil {
		return
	}
	t.Steps = append(t.Steps, st)
}

// Len 回傳紀錄筆數
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Steps)
}

// Rfml 有界隨機漫步：從 loc 個問題開始，每步以機率 currP 多一個問題、否則少一個，
// 回傳問題歸零所需的步數。
//
//   - p 為 nil 時，每個變量的 currP 取自熵來源本身。
//   - 步數達到 maxSteps 即回傳 WalkFailed（-1），即使最後一步剛好歸零。
//   - trace 非 nil 時，每一步都追加一筆 Step；Sampler 不會在呼叫結束後持有 trace。
func (s *Sampler) Rfml(n int, loc float64, p ProbFunc, maxSteps int, trace *Trace) (_ []int, err error) {
	defer guard(&err)
	if err := valid.Count(n); err != nil {
		return nil, err
	}
	if _, err := valid.Check("loc", loc, valid.Natural); err != nil {
		return nil, err
	}
	if _, err := valid.Check("cap", float64(maxSteps), valid.Natural); err != nil {
		return nil, err
	}
	if p == nil {
		p = s.c.Float64
	}
	start := int(loc)
	out := make([]int, n)
	for i := range out {
		currP, err := valid.Check("p", p(), valid.Probability)
		if err != nil {
			return nil, err
		}
		x, problems := 0, start
		for problems > 0 && x < maxSteps {
			result := stepDown
			if s.c.Bernoulli(currP) {
				problems++
				result = stepUp
			} else {
				problems--
			}
			trace.add(Step{
				Key:      strconv.Itoa(i) + "_" + strconv.Itoa(x),
				Draw:     i,
				Step:     x,
				Problems: problems,
				P:        currP,
				Result:   result,
			})
			x++
		}
		if x == maxSteps {
			x = WalkFailed
		}
		out[i] = x
	}
	return out, nil
}

// Ruf 「不可靠朋友」分佈：每個變量是一次指數抽樣，而其 rate 本身是一個新的熵值。
func (s *Sampler) Ruf(n int) (_ []float64, err error) {
	defer guard(&err)
	if err := valid.Count(n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		rate := s.c.Open01()
		x, err := s.Rexp(1, rate)
		if err != nil {
			return nil, err
		}
		out[i] = x[0]
	}
	return out, nil
}
