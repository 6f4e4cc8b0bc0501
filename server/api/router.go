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

// Package api 把 middleware、主頁與 v1 取樣 API 掛到 NetRouter 上。
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	v1 "github.com/zintix-labs/probdist/server/api/v1"
	"github.com/zintix-labs/probdist/server/httperr"
	"github.com/zintix-labs/probdist/server/netsvr"
	"github.com/zintix-labs/probdist/server/netsvr/middleware"
	"github.com/zintix-labs/probdist/server/svrcfg"
)

// Endpoint 主頁列出的路由
type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Desc   string `json:"desc"`
}

// Endpoints v1 提供的全部路由
var Endpoints = []Endpoint{
	{http.MethodGet, "/v1/dists", "list distributions and their parameters"},
	{http.MethodGet, "/v1/draw/{dist}", "draw n variates; params as query, e.g. ?n=1000&mean=2&fit=true"},
	{http.MethodPost, "/v1/draw/{dist}", "draw n variates; body {n, params, fit, values}"},
	{http.MethodPost, "/v1/sample", "weighted sampling from a collection; body {items, n, replace, ratios, tally}"},
	{http.MethodPost, "/v1/fit", "KS goodness of fit; body {dist, params, values}"},
	{http.MethodPost, "/v1/plan", "run a YAML or JSON plan; ?format=json|yaml|table"},
}

// RegisterRoutes 註冊
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	registerIndex(svr)                // 2. 註冊主頁與 404 / 405
	return registerV1API(svr, sCfg)   // 3. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetRouter, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

// 註冊主頁
func registerIndex(svr netsvr.NetRouter) {
	svr.Get("/", index)
	svr.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperr.Status(w, http.StatusNotFound, "not found")
	})
	svr.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperr.Status(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

func index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Service   string     `json:"service"`
		Endpoints []Endpoint `json:"endpoints"`
	}{"probdist", Endpoints})
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	h, err := v1.NewHandler(sCfg)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/dists", h.Dists)
		vOne.Get("/draw/{dist}", h.Draw)
		vOne.Post("/draw/{dist}", h.Draw)
		vOne.Post("/sample", h.Sample)
		vOne.Post("/fit", h.Fit)
		vOne.Post("/plan", h.Plan)
	})
	return nil
}
