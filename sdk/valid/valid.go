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

// Package valid 提供取樣參數的驗證規則。
//
// 每個公開取樣函數在抽任何亂數之前，都必須先把所有參數交給本包檢查。
// 規則皆為純函數：不修改輸入，同一個合法值重複驗證結果相同。
package valid

import (
	"math"

	"github.com/zintix-labs/probdist/errs"
)

// Rule 驗證規則
type Rule uint8

const (
	Real        Rule = iota // 任意有限實數
	NonNegReal              // >= 0 的有限實數
	PosReal                 // > 0 的有限實數
	Probability             // [0,1]
	NonNegInt               // >= 0 的整數
	Natural                 // >= 1 的整數
)

var ruleName = map[Rule]string{
	Real:        "real",
	NonNegReal:  "non-negative real",
	PosReal:     "positive real",
	Probability: "probability",
	NonNegInt:   "non-negative integer",
	Natural:     "natural number",
}

func (r Rule) String() string {
	if s, ok := ruleName[r]; ok {
		return s
	}
	return "unknown"
}

// MarshalText 以規則名稱輸出（JSON / YAML）
func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Check 依規則檢查 v，通過時原值回傳。
func Check(name string, v float64, rule Rule) (float64, error) {
	if math.IsNaN(v) {
		return v, errs.Invalid("%s must be a number", name)
	}
	if rule == Probability {
		if v < 0 || v > 1 {
			return v, errs.Invalid("%s must be a probability in [0,1]", name)
		}
		return v, nil
	}
	if math.IsInf(v, 0) {
		return v, errs.Invalid("%s cannot be infinite", name)
	}
	switch rule {
	case Real:
	case NonNegReal:
		if v < 0 {
			return v, errs.Invalid("%s must not be negative", name)
		}
	case PosReal:
		if v <= 0 {
			return v, errs.Invalid("%s must be greater than zero", name)
		}
	case NonNegInt:
		if v != math.Trunc(v) {
			return v, errs.Invalid("%s must be a whole number", name)
		}
		if v < 0 {
			return v, errs.Invalid("%s must not be negative", name)
		}
	case Natural:
		if v != math.Trunc(v) {
			return v, errs.Invalid("%s must be a whole number", name)
		}
		if v < 1 {
			return v, errs.Invalid("%s must be at least one", name)
		}
	default:
		return v, errs.Invalid("%s: unknown rule %d", name, rule)
	}
	return v, nil
}

// Opt 處理可省略參數：v 為 nil 時直接回傳 def，不套用規則。
func Opt(name string, v *float64, rule Rule, def float64) (float64, error) {
	if v == nil {
		return def, nil
	}
	return Check(name, *v, rule)
}

// Count 檢查取樣數量 n（whole number >= 1）。
func Count(n int) error {
	_, err := Check("n", float64(n), Natural)
	return err
}

// Range 檢查 min <= max。
func Range(min, max float64) error {
	if min > max {
		return errs.Invalid("min must not be greater than max")
	}
	return nil
}

// NonEmpty 檢查集合非空。
func NonEmpty[T any](name string, items []T) error {
	if len(items) == 0 {
		return errs.Invalid("%s must be a non-empty collection", name)
	}
	return nil
}

// Exclusive 檢查兩個互斥參數不可同時給定。
func Exclusive(a, b string, va, vb *float64) error {
	if va != nil && vb != nil {
		return errs.Invalid("%s and %s cannot both be given", a, b)
	}
	return nil
}

// F 取得 float64 指標，方便呼叫端傳入可省略參數。
func F(v float64) *float64 {
	return &v
}
