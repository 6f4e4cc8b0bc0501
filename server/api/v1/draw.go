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
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/plan"
	"github.com/zintix-labs/probdist/sdk/dist"
	"github.com/zintix-labs/probdist/server/httperr"
	"github.com/zintix-labs/probdist/stats"
)

// DrawRequest POST /v1/draw/{dist} 的請求內容
type DrawRequest struct {
	N      int       `json:"n"`
	Params dist.Args `json:"params,omitempty"`
	Fit    bool      `json:"fit,omitempty"`
	Values bool      `json:"values,omitempty"`
}

// DrawResponse 取樣結果；Values 只在請求要求時附上
type DrawResponse struct {
	RunID  string         `json:"run_id"`
	Dist   string         `json:"dist"`
	N      int            `json:"n"`
	Params dist.Args      `json:"params"`
	Values *dist.Variates `json:"values,omitempty"`
	Report *stats.Report  `json:"report"`
	UsedMs int64          `json:"used_ms"`
}

// Draw GET 以 query 帶參數（n / fit / values 以外的鍵都視為分佈參數），POST 以 JSON 帶參數。
func (h *Handler) Draw(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "dist")
	e, ok := dist.Lookup(name)
	if !ok {
		httperr.Errs(w, errs.Invalid("unknown distribution %q", name))
		return
	}

	var (
		req *DrawRequest
		err error
	)
	if r.Method == http.MethodGet {
		req, err = drawFromQuery(r)
	} else {
		req = new(DrawRequest)
		err = decodeJSON(w, r, req)
	}
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	// 業務檢驗
	if req.N == 0 {
		httperr.Errs(w, errs.Invalid("n is required"))
		return
	}
	if err := h.cfg.CheckDraws(req.N); err != nil {
		httperr.Errs(w, err)
		return
	}
	resolved, err := e.Resolve(req.Params)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	// 請求解析完成，設置超時 context
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.DrawTimeout)
	defer cancel()

	res, err := h.cfg.Lab.Draw(ctx, plan.Job{
		Name:   name,
		Dist:   name,
		N:      req.N,
		Params: req.Params,
		Fit:    req.Fit,
	})
	if err != nil {
		httperr.Log(h.cfg.Log, "draw failed", err)
		httperr.Errs(w, err)
		return
	}
	resp := DrawResponse{
		RunID:  res.RunID,
		Dist:   name,
		N:      req.N,
		Params: resolved,
		Report: res.Report,
		UsedMs: res.Used.Milliseconds(),
	}
	if req.Values {
		resp.Values = &res.Values
	}
	writeJSON(w, resp)
}

func drawFromQuery(r *http.Request) (*DrawRequest, error) {
	req := &DrawRequest{Params: dist.Args{}}
	for k, vs := range r.URL.Query() {
		if len(vs) == 0 {
			continue
		}
		v := vs[0]
		switch k {
		case "n":
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, errs.Invalid("n must be an integer")
			}
			req.N = n
		case "fit":
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, errs.Invalid("fit must be a boolean")
			}
			req.Fit = b
		case "values":
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, errs.Invalid("values must be a boolean")
			}
			req.Values = b
		default:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, errs.Invalid("%s must be a number", k)
			}
			req.Params[k] = f
		}
	}
	return req, nil
}
