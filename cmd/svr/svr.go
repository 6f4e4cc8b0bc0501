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

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zintix-labs/probdist"
	"github.com/zintix-labs/probdist/server"
	"github.com/zintix-labs/probdist/server/logger"
	"github.com/zintix-labs/probdist/server/svrcfg"
)

// 取樣服務入口。設定來自 .env 與環境變數（PROBDIST_ADDR / PROBDIST_LOG_MODE /
// PROBDIST_MAX_DRAWS / PROBDIST_WORKERS），旗標 -env 可指定其他 .env 檔。
func main() {
	envFile := flag.String("env", ".env", "dotenv file; missing files are ignored")
	flag.Parse()

	sCfg, closeLog, err := loadConfig(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err = server.Run(sCfg)
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}

func loadConfig(envFile string) (*svrcfg.SvrCfg, func(), error) {
	env, err := svrcfg.FromEnv(envFile)
	if err != nil {
		return nil, nil, err
	}
	log, ah := logger.NewAsync(4096, env.LogMode)
	lab := probdist.New(
		probdist.WithLogger(log),
		probdist.WithWorkers(env.Workers),
	)
	return &svrcfg.SvrCfg{
		Log:      log,
		Addr:     env.Addr,
		MaxDraws: env.MaxDraws,
		Lab:      lab,
	}, ah.Close, nil
}
