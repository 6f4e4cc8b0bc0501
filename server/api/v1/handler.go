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

// Package v1 實作 /v1 取樣 API。
//
// 所有 handler 共用 SvrCfg 中的 Lab；錯誤一律經 httperr 轉為 JSON 與對應的 status code。
package v1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/sdk/dist"
	"github.com/zintix-labs/probdist/server/httperr"
	"github.com/zintix-labs/probdist/server/svrcfg"
)

// MaxBodyBytes 請求內容上限
const MaxBodyBytes = 8 << 20

// Handler v1 handler 集合
type Handler struct {
	cfg *svrcfg.SvrCfg
}

func NewHandler(sCfg *svrcfg.SvrCfg) (*Handler, error) {
	if sCfg == nil || sCfg.Lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	return &Handler{cfg: sCfg}, nil
}

// Dists 列出所有分佈及其參數規則
func (h *Handler) Dists(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, struct {
		Dists []*dist.Entry `json:"dists"`
	}{dist.Entries()})
}

// readBody 讀取有大小上限的請求內容
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, err
	}
	return body, nil
}

// decodeJSON 解析 JSON 請求，拒絕未知欄位
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errs.WrapInvalid(err, "invalid json")
	}
	return nil
}

// writeJSON 先編碼到記憶體再寫出，保證不會寫到一半才出錯
func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(b, '\n'))
}

// checkLab 拒絕已關閉 Lab 上的請求
func (h *Handler) checkLab() error {
	if h.cfg.Lab.Closed() {
		return errs.NewFatal("lab closed: " + h.cfg.Lab.ClosedReason())
	}
	return nil
}
