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

package svrcfg

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/server/logger"
)

// 環境變數名稱
const (
	EnvAddr     = "PROBDIST_ADDR"
	EnvLogMode  = "PROBDIST_LOG_MODE"
	EnvMaxDraws = "PROBDIST_MAX_DRAWS"
	EnvWorkers  = "PROBDIST_WORKERS"
)

// Env 由環境變數（與選用的 .env 檔）取得的設定
type Env struct {
	Addr     string
	LogMode  logger.LogMode
	MaxDraws int
	Workers  int
}

// FromEnv 讀取 .env 檔（不存在則略過）與行程環境變數；行程環境變數優先。
func FromEnv(files ...string) (*Env, error) {
	vals := map[string]string{}
	for _, f := range files {
		m, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errs.Wrap(err, "svrcfg: read "+f)
		}
		for k, v := range m {
			if _, seen := vals[k]; !seen {
				vals[k] = v
			}
		}
	}
	get := func(k string) string {
		if v, ok := os.LookupEnv(k); ok {
			return v
		}
		return vals[k]
	}

	env := &Env{Addr: get(EnvAddr)}
	mode, err := logger.ParseMode(get(EnvLogMode))
	if err != nil {
		return nil, err
	}
	env.LogMode = mode
	if env.MaxDraws, err = atoi(EnvMaxDraws, get(EnvMaxDraws)); err != nil {
		return nil, err
	}
	if env.Workers, err = atoi(EnvWorkers, get(EnvWorkers)); err != nil {
		return nil, err
	}
	return env, nil
}

func atoi(name, s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, errs.Invalid("%s must be a non-negative integer", name)
	}
	return v, nil
}
