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
	"context"
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/sdk/dist"
	"github.com/zintix-labs/probdist/server/httperr"
	"github.com/zintix-labs/probdist/stats"
)

// SampleRequest 從任意 JSON 值組成的集合中抽樣
type SampleRequest struct {
	Items   []json.RawMessage `json:"items"`
	N       int               `json:"n"`
	Replace bool              `json:"replace,omitempty"`
	Ratios  []float64         `json:"ratios,omitempty"`
	Tally   bool              `json:"tally,omitempty"`
}

type SampleResponse struct {
	Picks []json.RawMessage `json:"picks"`
	Tally []stats.TallyCell `json:"tally,omitempty"`
}

// Sample 加權抽樣；tally 時附上各元素的觀測頻率、信賴區間與期望頻率。
func (h *Handler) Sample(w http.ResponseWriter, r *http.Request) {
	req := new(SampleRequest)
	if err := decodeJSON(w, r, req); err != nil {
		httperr.Errs(w, err)
		return
	}
	if err := h.cfg.CheckDraws(req.N); err != nil {
		httperr.Errs(w, err)
		return
	}
	if req.Tally && !req.Replace {
		httperr.Errs(w, errs.Invalid("tally requires sampling with replacement"))
		return
	}
	if err := h.checkLab(); err != nil {
		httperr.Errs(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.DrawTimeout)
	defer cancel()
	picks, err := dist.SampleWith(h.cfg.Lab.SamplerContext(ctx), req.Items, req.N, req.Replace, req.Ratios)
	if err != nil {
		httperr.Log(h.cfg.Log, "sample failed", err)
		httperr.Errs(w, err)
		return
	}
	resp := SampleResponse{Picks: picks}
	if req.Tally {
		cells, err := stats.Tally(labels(req.Items), req.Ratios, labels(picks))
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		resp.Tally = cells
	}
	writeJSON(w, resp)
}

// labels 以原始 JSON 文字作為元素標籤
func labels(raw []json.RawMessage) []string {
	out := make([]string, len(raw))
	for i, r := range raw {
		out[i] = string(r)
	}
	return out
}
