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

package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/probdist"
	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/server/logger"
)

const (
	DefaultAddr     = ":5808"
	DefaultMaxDraws = 1_000_000
	// LimitMaxDraws MaxDraws 的硬上限
	LimitMaxDraws = 50_000_000

	DefaultDrawTimeout = 30 * time.Second
	DefaultPlanTimeout = 50 * time.Second
)

type SvrCfg struct {
	Log      *slog.Logger
	Addr     string
	MaxDraws int // 單一請求（或整份計畫）允許的最大取樣數
	Lab      *probdist.Lab

	// 單一請求的取樣時限；取樣途中逾時即中止，不只在開始前檢查
	DrawTimeout time.Duration
	PlanTimeout time.Duration
}

// Valid 補上預設值並夾住範圍；缺少 Lab 為 Fatal。
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	if sc.Addr == "" {
		sc.Addr = DefaultAddr
	}

	// 1 <= MaxDraws <= LimitMaxDraws
	if sc.MaxDraws == 0 {
		sc.MaxDraws = DefaultMaxDraws
	}
	sc.MaxDraws = max(1, sc.MaxDraws)
	sc.MaxDraws = min(LimitMaxDraws, sc.MaxDraws)
	if sc.DrawTimeout <= 0 {
		sc.DrawTimeout = DefaultDrawTimeout
	}
	if sc.PlanTimeout <= 0 {
		sc.PlanTimeout = DefaultPlanTimeout
	}
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	return nil
}

// CheckDraws 檢查請求的取樣數是否超過上限（Warn）
func (sc *SvrCfg) CheckDraws(n int) error {
	if n > sc.MaxDraws {
		return errs.Warnf("n must not exceed %d", sc.MaxDraws)
	}
	return nil
}
