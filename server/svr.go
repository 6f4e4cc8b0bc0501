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

package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/server/api"
	"github.com/zintix-labs/probdist/server/app"
	"github.com/zintix-labs/probdist/server/netsvr"
	"github.com/zintix-labs/probdist/server/svrcfg"
)

// Run 是 server 套件的「組裝器（assembler）」與「啟動入口（runtime entry）」。
//
// 它負責：
//  1. 驗證輸入的 SvrCfg（包含必要依賴，例如 Lab 與 logger）。
//  2. 建立 HTTP server（netsvr），監聽 SvrCfg.Addr。
//  3. 註冊路由與 middleware（api.RegisterRoutes）。
//  4. 啟動 app.Run()；停止時關閉 Lab，並回傳停止原因。
//
// Run 不綁定任何檔案路徑或環境變數策略；所有依賴都透過 SvrCfg 注入（讀取 .env 見 svrcfg.FromEnv）。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return RunWithSvr(sCfg, netsvr.NewChiServer(sCfg.Addr))
}

// RunWithSvr 與 Run() 相同，但允許呼叫端注入自訂的 NetSvr
// （例如自己包裝的 adapter、額外的 TLS 或 timeout 設定）。
//
//   - svr 必須非 nil；若是 ChiAdapter 會要求 Ready() 為 true。
//   - 這一層只負責「註冊 routes + 啟動 app.Run()」，不接管整個系統的組裝方式。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		err := errs.NewFatal("svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}

	// 註冊 Api
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return err
	}

	// 運行
	a := app.NewWith(svr)
	a.OnShutdown(sCfg.Lab.Close)
	sCfg.Log.Info("[probdist] listening",
		slog.String("addr", svr.Address()),
		slog.Int("max_draws", sCfg.MaxDraws),
		slog.Int("workers", sCfg.Lab.Workers()),
	)
	if err := a.Run(); err != nil && err != http.ErrServerClosed {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}

// NewHandler 在不啟動監聽的情況下組出完整路由，供 httptest 或掛載到既有服務使用。
func NewHandler(sCfg *svrcfg.SvrCfg) (http.Handler, error) {
	if err := sCfg.Valid(); err != nil {
		return nil, err
	}
	svr := netsvr.NewChiServer(sCfg.Addr)
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		return nil, err
	}
	return svr.Handler(), nil
}
