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
	"fmt"
	"os"
	"sort"
	"strings"
)

// task 一個可由 go run ./scripts [task] 執行的工作
type task struct {
	desc string
	run  func() error
}

var tasks = map[string]task{
	"test":        {"go test ./... -cover (ok/FAIL only)", runTest},
	"test-all":    {"go test ./... -cover", runTestAll},
	"test-detail": {"go test ./... -v (skip packages without tests)", runTestDetail},
	"demo":        {"run the embedded demo plan through cmd/rdist", runDemo},
	"bench":       {"draw 10M normals under a cpu profile (build/profiling/cpu.pprof)", runBench},
	"svr":         {"start the sampling HTTP service (cmd/svr)", runSvr},
}

func main() {
	// 如果沒有送任何參數進來，列出可用的 task
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	name := os.Args[1]
	t, ok := tasks[name]
	if !ok {
		PrintYellow(fmt.Sprintf("Unknown task: %s", name))
		usage()
		os.Exit(1)
	}
	if err := t.run(); err != nil {
		PrintRed(fmt.Sprintf("\n%s finished with errors: %v", name, err))
		os.Exit(1) // 告訴 Makefile 失敗了
	}
}

func usage() {
	fmt.Println("Usage: go run ./scripts [task]")
	names := make([]string, 0, len(tasks))
	for n := range tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %-12s %s\n", n, tasks[n].desc)
	}
}

func runTest() error {
	PrintGreen("running tests")
	cleanTestCache()
	return stream(func(line string) {
		switch {
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"):
			PrintRed(line)
		case strings.Contains(line, "build failed") || strings.Contains(line, "setup failed"):
			// 編譯錯誤不以 ok/FAIL 開頭，仍要顯示
			PrintRed(line)
		}
	}, "go", "test", "./...", "-cover", "-count=1")
}

func runTestAll() error {
	PrintGreen("running tests (all with coverage)")
	cleanTestCache()
	return passthrough("go", "test", "./...", "-cover")
}

func runTestDetail() error {
	PrintGreen("running tests (detail)")
	cleanTestCache()
	return stream(func(line string) {
		switch {
		case strings.Contains(line, "[no test files]"):
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"):
			PrintRed(line)
		default:
			fmt.Println(line)
		}
	}, "go", "test", "./...", "-v", "-count=1")
}

func runDemo() error {
	PrintGreen("running demo plan")
	return passthrough("go", "run", "./cmd/rdist", "-demo", "-pb", "-workers", "4")
}

func runBench() error {
	PrintGreen("profiling rnorm")
	return passthrough("go", "run", "./cmd/rdist", "-dist", "norm", "-n", "10000000", "-p", "cpu")
}

func runSvr() error {
	PrintGreen("starting probdist server")
	return passthrough("go", "run", "./cmd/svr")
}
