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

package v1

import (
	"net/http"

	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/sdk/dist"
	"github.com/zintix-labs/probdist/server/httperr"
	"github.com/zintix-labs/probdist/stats"
)

// FitRequest 對外部觀測值做 KS 適配檢定
type FitRequest struct {
	Dist   string    `json:"dist"`
	Params dist.Args `json:"params,omitempty"`
	Values []float64 `json:"values"`
}

// Fit 檢定 values 是否來自指定分佈，不消耗熵來源
func (h *Handler) Fit(w http.ResponseWriter, r *http.Request) {
	req := new(FitRequest)
	if err := decodeJSON(w, r, req); err != nil {
		httperr.Errs(w, err)
		return
	}
	if req.Dist == "" {
		httperr.Errs(w, errs.Invalid("dist is required"))
		return
	}
	if err := h.cfg.CheckDraws(len(req.Values)); err != nil {
		httperr.Errs(w, err)
		return
	}
	rep, err := stats.Fit(req.Dist, req.Params, req.Values)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, rep)
}
