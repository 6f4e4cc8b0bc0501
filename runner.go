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

package probdist

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/plan"
	"github.com/zintix-labs/probdist/stats"
)

// PlanResult 整份計畫的執行結果，Results 與 Plan.Jobs 順序一致。
type PlanResult struct {
	RunID   string        `json:"run_id" yaml:"run_id"`
	Plan    string        `json:"plan" yaml:"plan"`
	Results []*Result     `json:"results" yaml:"results"`
	Used    time.Duration `json:"used" yaml:"used"`
}

// Reports 依工作順序取出所有統計報告
func (pr *PlanResult) Reports() []*stats.Report {
	out := make([]*stats.Report, len(pr.Results))
	for i, r := range pr.Results {
		out[i] = r.Report
	}
	return out
}

// Draws 總取樣數
func (pr *PlanResult) Draws() int {
	total := 0
	for _, r := range pr.Results {
		total += r.Values.Len()
	}
	return total
}

// RunPlan 以 Lab 的併發數執行計畫中的所有工作。
//
// 任一工作失敗時取消其餘工作並回傳第一個錯誤，不回傳部分結果。
// WithSeed 模式下，種子在派工前依工作順序決定，因此結果與排程無關。
func (l *Lab) RunPlan(ctx context.Context, p *plan.Plan, showpb bool) (*PlanResult, error) {
	if p == nil {
		return nil, errs.Invalid("plan is required")
	}
	if err := p.Valid(); err != nil {
		return nil, err
	}
	if err := l.alive(ctx); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	seeds := make([]int64, len(p.Jobs))
	for i := range seeds {
		seeds[i] = l.nextSeed()
	}
	l.log.Info("plan start",
		slog.String("run_id", runID),
		slog.String("plan", p.Name),
		slog.Int("jobs", len(p.Jobs)),
		slog.Int("draws", p.TotalDraws()),
		slog.Int("workers", l.workers),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*Result, len(p.Jobs))
	var (
		once     sync.Once
		firstErr error
		failed   atomic.Bool
	)
	fail := func(job plan.Job, err error) {
		once.Do(func() {
			firstErr = errs.Wrap(err, "plan: job "+job.Name)
			failed.Store(true)
			cancel()
		})
	}

	jobs := make(chan int, len(p.Jobs))
	wg := new(sync.WaitGroup)
	wg.Add(l.workers)
	bar := pb.StartNew(len(p.Jobs))
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for w := 0; w < l.workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				if failed.Load() {
					continue
				}
				r, err := l.draw(ctx, runID, i, seeds[i], p.Jobs[i])
				if err != nil {
					fail(p.Jobs[i], err)
					continue
				}
				results[i] = r
				bar.Increment()
			}
		}()
	}
	for i := range p.Jobs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	if firstErr != nil {
		l.log.Warn("plan failed", slog.String("run_id", runID), slog.String("err", firstErr.Error()))
		return nil, firstErr
	}
	l.log.Info("plan done", slog.String("run_id", runID), slog.Duration("used", used))
	return &PlanResult{RunID: runID, Plan: p.Name, Results: results, Used: used}, nil
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// state 走全週期（不重複），再用可逆 mix63 打散
//
// 可能被多個 goroutine 同時呼叫（例如同一個 Lab 同時處理多個 Draw），
// 以 CAS 迴圈確保每次呼叫取得唯一的下一個 state。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next))
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
