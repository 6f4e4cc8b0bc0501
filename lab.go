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

// Package probdist 提供取樣引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Lab 把下列地基組裝在一起，讓 CLI 與 HTTP 服務共用同一套取樣流程：
//  1. 熵來源：預設為 crypto/rand；測試與壓測可注入可重現的來源（WithSeed / WithSource）。
//  2. 分佈登錄表：sdk/dist 以名稱對應產生器與參數規則。
//  3. 統計：stats 對結果做描述統計、分箱與 KS 適配檢定。
//
// 取樣核心（sdk/...）本身不寫 log；只有 Lab 這一層記錄計畫執行過程。
package probdist

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/plan"
	"github.com/zintix-labs/probdist/sdk/core"
	"github.com/zintix-labs/probdist/sdk/dist"
	"github.com/zintix-labs/probdist/stats"
)

// SourceFunc 為第 job 個工作建立熵來源
type SourceFunc func(job int) core.Source

// Result 單一工作的取樣結果
type Result struct {
	RunID  string        `json:"run_id" yaml:"run_id"`
	Job    plan.Job      `json:"job" yaml:"job"`
	Values dist.Variates `json:"values" yaml:"values"`
	Report *stats.Report `json:"report" yaml:"report"`
	Used   time.Duration `json:"used" yaml:"used"`
}

// Lab 組裝好的取樣入口，可被多個 goroutine 同時使用。
type Lab struct {
	log     *slog.Logger
	workers int
	budget  int
	source  SourceFunc
	seeds   *seedMaker // 非 nil 時每個工作使用獨立的 PCG64

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string
}

// Option Lab 設定
type Option func(*Lab)

// WithLogger 指定 logger；預設丟棄所有輸出。
func WithLogger(log *slog.Logger) Option {
	return func(l *Lab) {
		if log != nil {
			l.log = log
		}
	}
}

// WithWorkers 計畫執行時的併發工作數（至少 1）
func WithWorkers(mp int) Option {
	return func(l *Lab) {
		l.workers = max(mp, 1)
	}
}

// WithRejectBudget 每個 Sampler 的拒絕採樣重試預算（0 為不限）
func WithRejectBudget(k int) Option {
	return func(l *Lab) {
		l.budget = k
	}
}

// WithSource 注入熵來源工廠，主要用於測試與壓測。
func WithSource(f SourceFunc) Option {
	return func(l *Lab) {
		l.source = f
	}
}

// WithSeed 以 seed 推導每個工作的 PCG64 種子，結果可完整重現。
//
// 只用於測試與壓測；對外服務請使用預設的 crypto/rand 來源。
func WithSeed(seed int64) Option {
	return func(l *Lab) {
		l.seeds = newSeedMaker(seed)
	}
}

// New 建立 Lab
func New(opts ...Option) *Lab {
	l := &Lab{
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers: 1,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Workers 回傳併發工作數
func (l *Lab) Workers() int {
	return l.workers
}

// Sampler 回傳一個新的 Sampler（沿用 Lab 的來源與重試預算設定）
//
// WithSeed 模式下每次呼叫取用下一個種子。
func (l *Lab) Sampler() *dist.Sampler {
	return l.sampler(nil, 0, l.nextSeed())
}

// SamplerContext 與 Sampler 相同，但取樣會在 ctx 結束時中止並回傳 errs.Canceled。
func (l *Lab) SamplerContext(ctx context.Context) *dist.Sampler {
	return l.sampler(ctx, 0, l.nextSeed())
}

func (l *Lab) sampler(ctx context.Context, job int, seed int64) *dist.Sampler {
	var src core.Source
	switch {
	case l.source != nil:
		src = l.source(job)
	case seed != 0:
		src = core.NewPCG64(seed)
	}
	var opts []dist.Option
	if l.budget > 0 {
		opts = append(opts, dist.WithRejectBudget(l.budget))
	}
	if ctx != nil {
		opts = append(opts, dist.WithContext(ctx))
	}
	// src 為 nil 時使用 crypto/rand
	return dist.New(src, opts...)
}

// nextSeed 在 WithSeed 模式下回傳下一個種子，否則回傳 0
func (l *Lab) nextSeed() int64 {
	if l.seeds == nil {
		return 0
	}
	// 0 保留給「未指定」
	for {
		if s := l.seeds.next(); s != 0 {
			return s
		}
	}
}

// Draw 執行單一工作：取樣、描述統計，job.Fit 時附上 KS 適配檢定。
func (l *Lab) Draw(ctx context.Context, job plan.Job) (*Result, error) {
	if err := job.Valid(); err != nil {
		return nil, err
	}
	return l.draw(ctx, uuid.NewString(), 0, l.nextSeed(), job)
}

func (l *Lab) draw(ctx context.Context, runID string, idx int, seed int64, job plan.Job) (*Result, error) {
	if err := l.alive(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	v, err := l.sampler(ctx, idx, seed).Generate(job.Dist, job.N, job.Params)
	if err != nil {
		return nil, err
	}
	xs := v.Floats()

	var fit *stats.FitReport
	if job.Fit {
		if fit, err = stats.Fit(job.Dist, job.Params, xs); err != nil {
			return nil, err
		}
	}
	rep, err := stats.NewReport(job.Name, xs, fit)
	if err != nil {
		return nil, err
	}
	rep.RunID = runID

	res := &Result{
		RunID:  runID,
		Job:    job,
		Values: v,
		Report: rep,
		Used:   time.Since(start),
	}
	l.log.Debug("job done",
		slog.String("run_id", runID),
		slog.String("job", job.Name),
		slog.String("dist", job.Dist),
		slog.Int("n", job.N),
		slog.Duration("used", res.Used),
	)
	return res, nil
}

func (l *Lab) alive(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errs.CanceledErr(ctx.Err())
	case <-l.done:
		return errs.NewFatal("lab closed: " + l.ClosedReason())
	default:
		return nil
	}
}

// Close 關閉 Lab，之後的 Draw / RunPlan 都會回傳錯誤。可重複呼叫。
func (l *Lab) Close() {
	l.closeWithReason("closed")
}

func (l *Lab) closeWithReason(reason string) {
	l.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		l.reason.Store(reason)
		l.closed.Store(true)
		close(l.done)
	})
}

// Closed reports whether the lab has been closed.
func (l *Lab) Closed() bool {
	return l.closed.Load()
}

func (l *Lab) ClosedReason() string {
	if v := l.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
