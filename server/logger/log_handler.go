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

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/probdist/errs"
)

// enum LogMode
type LogMode uint8

const (
	ModeDev LogMode = iota
	ModeProd
	ModeSilence
)

var modeName = map[LogMode]string{
	ModeDev:     "dev",
	ModeProd:    "prod",
	ModeSilence: "silence",
}

func (m LogMode) String() string {
	if s, ok := modeName[m]; ok {
		return s
	}
	return "unknown"
}

// ParseMode 解析 dev / prod / silence（不分大小寫）；空字串視為 dev。
func ParseMode(s string) (LogMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeDev, nil
	}
	for m, name := range modeName {
		if name == s {
			return m, nil
		}
	}
	return ModeDev, errs.Invalid("unknown log mode %q (want dev|prod|silence)", s)
}

// =========================================================
// 兩種注入方式：
//
// (A) 直接傳入 *slog.Logger：NewDefaultLogger(LogMode) 或自行組裝。
// (B) 傳入 slog.Handler：自行組合 JSON/Text/ReplaceAttr/LevelVar，再用 NewLogger(h) 包成 *slog.Logger。
//
// AsyncHandler 可以把任何 slog.Handler 變成非阻塞 handler。
// =========================================================

// NewDefaultLogger returns a *slog.Logger built from LogMode defaults.
// 外部最常用的入口：直接注入 *slog.Logger。
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode))
}

// NewDefaultAsyncLogger returns an async *slog.Logger built from LogMode defaults.
// 外部最常用的非同步Logger入口：直接注入 *slog.Logger。
func NewDefaultAsyncLogger(mode LogMode) *slog.Logger {
	return slog.New(NewAsyncHandler(buildHandler(mode), 8192))
}

// NewLogger wraps a Handler into a *slog.Logger.
// 進階入口：呼叫者自行組裝 Handler（JSON/Text/ReplaceAttr/LevelVar...）。
func NewLogger(h slog.Handler) *slog.Logger {
	if h == nil {
		h = buildHandler(ModeDev)
	}
	return slog.New(h)
}

// AsyncHandler 讓 Handle 只做非阻塞入列，由背景 goroutine 依序交給下層 handler 寫出。
// 佇列滿或 Close 之後的紀錄直接丟棄並計數，請求路徑不會因為 I/O 變慢。
// WithAttrs / WithGroup 產生的 handler 共用同一個佇列。
type AsyncHandler struct {
	next slog.Handler
	q    *logQueue
}

// logQueue 佇列本體；mu 保護 closed 與 close(ch)，避免關閉後仍有送入。
type logQueue struct {
	mu      sync.RWMutex
	closed  bool
	ch      chan queued
	done    chan struct{}
	dropped atomic.Uint64
	written atomic.Uint64
}

type queued struct {
	ctx context.Context
	h   slog.Handler
	rec slog.Record
}

// NewAsyncHandler 以容量 buf（<= 0 時為 1024）的佇列包裝 next。
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = buildHandler(ModeDev)
	}
	if buf <= 0 {
		buf = 1024
	}
	q := &logQueue{
		ch:   make(chan queued, buf),
		done: make(chan struct{}),
	}
	go q.drain()
	return &AsyncHandler{next: next, q: q}
}

// drain 在 ch 關閉後把剩餘紀錄寫完才結束
func (q *logQueue) drain() {
	defer close(q.done)
	for it := range q.ch {
		_ = it.h.Handle(it.ctx, it.rec)
		q.written.Add(1)
	}
}

func (q *logQueue) push(it queued) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.dropped.Add(1)
		return
	}
	select {
	case q.ch <- it:
	default:
		q.dropped.Add(1)
	}
}

func (h *AsyncHandler) Ready() bool {
	return h != nil && h.q != nil
}

// Dropped 因佇列滿或已關閉而丟棄的筆數
func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.q.dropped.Load()
}

// Written 已交給下層 handler 的筆數
func (h *AsyncHandler) Written() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.q.written.Load()
}

// Close 停止收件並等待佇列寫完，可重複呼叫。
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.q.mu.Lock()
	if !h.q.closed {
		h.q.closed = true
		close(h.q.ch)
	}
	h.q.mu.Unlock()
	<-h.q.done
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle 永遠回傳 nil；slog.Logger 本來就忽略 Handle 的錯誤。
func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	// Record 的 attrs 跨 goroutine 前需要 Clone
	h.q.push(queued{ctx: ctx, h: h.next, rec: r.Clone()})
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), q: h.q}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), q: h.q}
}

// NewAsync 依 LogMode 建立 handler 並包上 AsyncHandler；呼叫端負責在結束時 Close。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	base := buildHandler(mode)
	ah := NewAsyncHandler(base, buf)
	return slog.New(ah), ah
}

// NewLoggerTo 依 LogMode 建立寫到 w 的 logger（CLI 與測試使用）。
func NewLoggerTo(w io.Writer, mode LogMode) *slog.Logger {
	return slog.New(handlerTo(w, mode)).With(slog.String("svc", "probdist"))
}

func buildHandler(logmode LogMode) slog.Handler {
	switch logmode {
	case ModeProd:
		// 正式環境：JSON + stdout
		return handlerTo(os.Stdout, logmode)
	default:
		return handlerTo(os.Stderr, logmode)
	}
}

func handlerTo(w io.Writer, logmode LogMode) slog.Handler {
	switch logmode {
	case ModeDev:
		return slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	case ModeProd:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, nil)
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
}
