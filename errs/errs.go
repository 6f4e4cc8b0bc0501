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

// Package errs 定義 probdist 統一使用的錯誤型別。
//
// 錯誤同時帶有兩個維度：
//   - ErrLv：嚴重度，讓最上層（HTTP / CLI）決定如何回應。
//   - Kind ：錯誤類別，對應取樣流程中的失敗來源（參數、結構、熵來源、重試預算、取消）。
package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Kind 錯誤類別
type Kind uint8

const (
	Unknown    Kind = iota
	Validation      // 參數未通過驗證規則
	Structural      // 結構性錯誤，例如不放回抽樣數量超過集合長度
	Entropy         // 熵來源不可用
	Exhausted       // 拒絕採樣超出重試預算
	Canceled        // 呼叫端的 context 已取消或逾時
)

var kindMap = map[Kind]string{
	Unknown:    "unknown",
	Validation: "validation",
	Structural: "structural",
	Entropy:    "entropy",
	Exhausted:  "exhausted",
	Canceled:   "canceled",
}

func (k Kind) String() string {
	if str, ok := kindMap[k]; ok {
		return str
	}
	return "unknown"
}

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 表示嚴重度；Kind 表示錯誤來源。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    Kind
}

// Error 實作 error 介面。
//
// 驗證類錯誤直接回傳主訊息，讓呼叫端拿到的字串就是違反的約束本身。
func (e *E) Error() string {
	base := e.Message
	if e.Kind != Validation {
		base = fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	}
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

// Invalid 建立參數驗證錯誤（Warn）。
func Invalid(format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), ErrLv: Warn, Kind: Validation}
}

// Structuralf 建立結構性錯誤（Warn），例如集合長度不足、權重長度不符。
func Structuralf(format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), ErrLv: Warn, Kind: Structural}
}

// EntropyErr 包裝熵來源失敗，一律視為 Fatal 且不重試。
func EntropyErr(cause error) *E {
	return &E{Message: "entropy source unavailable", Cause: cause, ErrLv: Fatal, Kind: Entropy}
}

// Exhaustedf 建立重試預算耗盡錯誤。
func Exhaustedf(format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), ErrLv: Warn, Kind: Exhausted}
}

// CanceledErr 包裝 ctx.Err()，保留 cause 讓上層能以 errors.Is 分辨 timeout 與 cancel。
func CanceledErr(cause error) *E {
	return &E{Message: "draw canceled/timeout", Cause: cause, ErrLv: Warn, Kind: Canceled}
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 使用給定訊息包裝底層錯誤。
//
// ErrLevel / Kind 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Kind。
//   - 否則（標準庫或三方依賴錯誤）ErrLv 一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	var e *E
	r := New(Fatal, msg)
	if errors.As(cause, &e) {
		r.ErrLv = e.ErrLv
		r.Kind = e.Kind
	}
	r.Cause = cause
	return r
}

// WrapInvalid 包裝呼叫端輸入造成的下層錯誤（例如文件解析失敗），視為 Warn 的驗證錯誤。
func WrapInvalid(cause error, msg string) *E {
	return &E{Message: msg, Cause: cause, ErrLv: Warn, Kind: Validation}
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// IsKind 判斷錯誤鏈上是否有指定類別的 *E。
func IsKind(err error, k Kind) bool {
	for err != nil {
		e, ok := err.(*E)
		if ok && e.Kind == k {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
