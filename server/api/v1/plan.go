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
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/plan"
	"github.com/zintix-labs/probdist/server/httperr"
	"github.com/zintix-labs/probdist/stats"
)

// PlanResponse 計畫執行結果（不含原始變量）
type PlanResponse struct {
	RunID   string          `json:"run_id"`
	Plan    string          `json:"plan"`
	Draws   int             `json:"draws"`
	Reports []*stats.Report `json:"reports"`
	UsedMs  int64           `json:"used_ms"`
}

var contentType = map[string]string{
	"yaml":  "application/yaml",
	"yml":   "application/yaml",
	"table": "text/plain; charset=utf-8",
}

// Plan 執行 YAML 或 JSON 計畫。?format=yaml|table 時以對應格式輸出報告，預設 JSON。
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	var render stats.Render
	if format != "" && format != "json" {
		rd, err := stats.NewRender(format)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		render = rd
	}

	body, err := readBody(w, r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	p, err := plan.Decode(body)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if total := p.TotalDraws(); total > h.cfg.MaxDraws {
		httperr.Errs(w, errs.Warnf("plan draws %d must not exceed %d", total, h.cfg.MaxDraws))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.PlanTimeout)
	defer cancel()
	res, err := h.cfg.Lab.RunPlan(ctx, p, false)
	if err != nil {
		httperr.Log(h.cfg.Log, "plan failed", err)
		httperr.Errs(w, err)
		return
	}

	if render == nil {
		writeJSON(w, PlanResponse{
			RunID:   res.RunID,
			Plan:    res.Plan,
			Draws:   res.Draws(),
			Reports: res.Reports(),
			UsedMs:  res.Used.Milliseconds(),
		})
		return
	}
	var b bytes.Buffer
	if err := render.Write(&b, res.Reports()...); err != nil {
		httperr.Errs(w, errs.Wrap(err, "render reports"))
		return
	}
	w.Header().Set("Content-Type", contentType[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Bytes())
}
