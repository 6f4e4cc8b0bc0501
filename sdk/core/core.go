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

// Package core 提供整個取樣系統唯一的亂數入口。
//
// 所有分佈取樣最終都只透過 Core 取得 [0,1) 的均勻亂數：
//   - 正式環境使用 CryptoSource（加密等級位元組來源，不可設定 seed）。
//   - 測試可注入 PCG64 或 Replay，使上層所有分佈變成決定性輸出。
package core

// Source 定義熵來源：每次呼叫回傳一個 [0,1) 的浮點數。
//
// 合約：
//   - 回傳值必須落在 [0,1)。
//   - 熵來源不可用屬於致命錯誤，實作應 panic(*errs.E)（Kind=Entropy），不做重試。
type Source interface {
	Float64() float64
}

// Core 封裝 Source，並提供常用的均勻取樣工具。
type Core struct {
	src Source
}

// New 允許使用外部自實現的 Source 建立 Core。
func New(src Source) *Core {
	if src == nil {
		src = NewCryptoSource(DefaultByteLen)
	}
	return &Core{src: src}
}

// Default 以 16 bytes 的加密來源建立 Core。
func Default() *Core {
	return New(NewCryptoSource(DefaultByteLen))
}

// Float64 回傳 [0,1) 的均勻亂數。
func (c *Core) Float64() float64 {
	return c.src.Float64()
}

// Uniform 將一次熵值線性映射到 [min,max)。
// 不檢查 min <= max，檢查由呼叫端的參數驗證負責。
func (c *Core) Uniform(min, max float64) float64 {
	return min + c.src.Float64()*(max-min)
}

// Open01 回傳 (0,1) 的均勻亂數，遇到 0 重抽。
// 用於 log(u) 類的反函數轉換，避免 log(0)。
func (c *Core) Open01() float64 {
	for {
		if u := c.src.Float64(); u > 0 {
			return u
		}
	}
}

// Bernoulli 回傳一次 u < p 的伯努利試驗結果。
func (c *Core) Bernoulli(p float64) bool {
	return c.src.Float64() < p
}
