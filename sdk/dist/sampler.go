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

// Package dist 實作各機率分佈的隨機變量產生器。
//
// 依賴關係（由葉到根）：
//
//	core.Core (熵) -> Runif
//	Runif -> Rnorm / Rexp / Rcauchy / Rlaplace
//	Rnorm -> Rchisq ; Rgamma -> Rbeta
//	Runif -> Rbinom / Rnbinom / Rpois / Rfml
//
// 每個公開方法的流程固定為：驗證全部參數 -> 逐一產生 n 個變量 -> 依序回傳。
// 驗證失敗時不會消耗任何熵，也不會回傳部分結果。
//
// Sampler 本身不保存跨呼叫的可變狀態，可在多個 goroutine 間共用
// （前提是注入的 core.Source 本身可併發使用；CryptoSource 可以，PCG64 不行）。
package dist

import (
	"context"
	"sync/atomic"

	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/sdk/core"
)

// Sampler 分佈取樣器
type Sampler struct {
	c *core.Core
	// rejectBudget > 0 時，限制 Normal / Gamma 每個變量的拒絕次數
	rejectBudget int
	ctx          context.Context
}

// Option 設定 Sampler 的可選行為
type Option func(*Sampler)

// WithRejectBudget 為拒絕採樣迴圈設定重試上限。
//
// 預設 0 代表不限制（迴圈幾乎必然終止，但理論上無上界）。
// 超過上限時該次請求回傳 errs.Exhausted，不回傳部分結果。
func WithRejectBudget(k int) Option {
	return func(s *Sampler) {
		if k < 0 {
			k = 0
		}
		s.rejectBudget = k
	}
}

// WithContext 讓取樣在 ctx 取消或逾時後中止，回傳 errs.Canceled。
//
// 檢查點在熵來源上，因此單一變量內部的長迴圈（chisq 的 df、binom 的 size）也會被中斷。
func WithContext(ctx context.Context) Option {
	return func(s *Sampler) {
		s.ctx = ctx
	}
}

// New 以指定熵來源建立 Sampler；src 為 nil 時使用加密來源。
func New(src core.Source, opts ...Option) *Sampler {
	s := &Sampler{}
	for _, opt := range opts {
		opt(s)
	}
	if s.ctx != nil {
		if src == nil {
			src = core.NewCryptoSource(core.DefaultByteLen)
		}
		src = &ctxSource{src: src, ctx: s.ctx}
	}
	s.c = core.New(src)
	return s
}

// Default 以 16 bytes 加密來源建立 Sampler。
func Default(opts ...Option) *Sampler {
	return New(core.NewCryptoSource(core.DefaultByteLen), opts...)
}

// Core 回傳底層亂數入口，供加權抽樣等同源元件使用。
func (s *Sampler) Core() *core.Core {
	return s.c
}

// RejectBudget 回傳目前的拒絕次數上限（0 = 不限制）。
func (s *Sampler) RejectBudget() int {
	return s.rejectBudget
}

// exhausted 檢查拒絕迴圈是否已超出預算
func (s *Sampler) exhausted(tries int) bool {
	return s.rejectBudget > 0 && tries >= s.rejectBudget
}

// guard 將熵來源的致命 panic 與取消轉成錯誤回傳，其他 panic 原樣往上拋。
func guard(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*errs.E); ok && (e.Kind == errs.Entropy || e.Kind == errs.Canceled) {
		*err = e
		return
	}
	panic(r)
}

// ctxCheckEvery 每取用這麼多次熵才檢查一次 ctx
const ctxCheckEvery = 256

// ctxSource 在熵來源上插入取消檢查點
type ctxSource struct {
	src core.Source
	ctx context.Context
	n   atomic.Uint64
}

func (c *ctxSource) Float64() float64 {
	if c.n.Add(1)%ctxCheckEvery == 1 {
		if err := c.ctx.Err(); err != nil {
			panic(errs.CanceledErr(err))
		}
	}
	return c.src.Float64()
}
