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

// Package perf 在指定函式外包一層 pprof，供 CLI 的 -p 旗標使用。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/probdist/errs"
)

// DefaultDir pprof 檔案預設寫入路徑
const DefaultDir = "build/profiling"

// Modes 支援的 profiling 模式；空字串表示不做 profiling
var Modes = []string{"", "cpu", "heap", "allocs"}

// Run 依 mode 決定執行哪種 Profiling，回傳 exe 的錯誤或 profile 寫檔錯誤。
//
// Usage like:
//
//	go run ./cmd/rdist -dist norm -n 10000000 -p cpu
func Run(exe func() error, mode, dir string) error {
	if dir == "" {
		dir = DefaultDir
	}
	switch mode {
	case "":
		return exe()
	case "cpu":
		return CPU(exe, dir)
	case "heap":
		return snapshot(exe, dir, "heap")
	case "allocs":
		return snapshot(exe, dir, "allocs")
	default:
		return errs.Invalid("unknown pprof mode %q (want cpu|heap|allocs)", mode)
	}
}

// CPU 在 exe 執行期間做 CPU profiling，輸出 dir/cpu.pprof。
//
// 可以作性能分析，也可以拿來做構建時給 pgo 的優化 blueprint。
func CPU(exe func() error, dir string) error {
	f, err := create(dir, "cpu")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "perf: start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// snapshot 在 exe 之後寫出 heap（in-use）或 allocs（累積配置）Profile。
// heap 在寫出前先 GC 一次，讓快照貼近 live objects。
func snapshot(exe func() error, dir, name string) error {
	if err := exe(); err != nil {
		return err
	}
	if name == "heap" {
		runtime.GC()
	}
	f, err := create(dir, name)
	if err != nil {
		return err
	}
	defer f.Close()
	if prof := pprof.Lookup(name); prof != nil {
		if err := prof.WriteTo(f, 0); err != nil {
			return errs.Wrap(err, "perf: write "+name+" profile")
		}
	}
	return nil
}

func create(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "perf: create dir")
	}
	f, err := os.Create(filepath.Join(dir, name+".pprof"))
	if err != nil {
		return nil, errs.Wrap(err, "perf: create "+name+".pprof")
	}
	return f, nil
}
