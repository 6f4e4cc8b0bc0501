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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/probdist/errs"
)

// Body 錯誤回應內容
type Body struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則（邊界層最小映射、可預期）：
//   - ctx timeout/cancel → 504/408
//   - 請求內容過大       → 413
//   - errs.Exhausted     → 503（重試預算耗盡，稍後重試可能成功）
//   - errs.Warn          → 400（請求/參數問題）
//   - errs.Fatal         → 500（熵來源失效等系統問題）
//
// 本函數屬於 HTTP 邊界層，因此放在 server/*（而不是 errs）。
func StatusCode(err error) int {
	status := http.StatusInternalServerError

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout // 504
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout // 408
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge // 413
	case errs.IsKind(err, errs.Exhausted):
		return http.StatusServiceUnavailable // 503
	}

	var e *errs.E
	if errors.As(err, &e) {
		switch e.ErrLv {
		case errs.Warn:
			status = http.StatusBadRequest // 400
		default:
			status = http.StatusInternalServerError
		}
	}

	return status
}

// Errs 決定 status code 並寫回 JSON 錯誤內容
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	body := Body{Error: err.Error()}
	if e, ok := errs.AsErr(err); ok && e.Kind != errs.Unknown {
		body.Kind = e.Kind.String()
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(StatusCode(err))
	_ = json.NewEncoder(w).Encode(body)
}

// Log 只記錄值得注意的錯誤：逾時類為 Warn，5xx 為 Error，一般 4xx 不記錄。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	if (status == 408) || (status == 409) || (status == 429) || (status == 503) || (status == 504) {
		log.Warn(msg, slog.Any("err", err))
	} else if (status >= 500) && (status < 600) {
		log.Error(msg, slog.Any("err", err))
	}
}

// Status 以指定 status code 寫回 JSON 錯誤內容，用於路由層的 404 / 405 等非業務錯誤。
func Status(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(Body{Error: msg})
}
