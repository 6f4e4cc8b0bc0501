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
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/zintix-labs/probdist"
	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/plan"
	"github.com/zintix-labs/probdist/plan/demo"
	"github.com/zintix-labs/probdist/sdk/dist"
	"github.com/zintix-labs/probdist/server/logger"
	"github.com/zintix-labs/probdist/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	dist      string
	n         int
	params    dist.Args
	fit       bool
	planPath  string
	demo      bool
	format    string
	values    bool
	pb        bool
	workers   int
	budget    int
	logMode   string
	list      bool
	pprofmode string
}

// paramFlag 可重複的 -param name=value
type paramFlag struct{ a *dist.Args }

func (f paramFlag) String() string {
	if f.a == nil || *f.a == nil {
		return ""
	}
	keys := make([]string, 0, len(*f.a))
	for k, v := range *f.a {
		keys = append(keys, k+"="+strconv.FormatFloat(v, 'g', -1, 64))
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func (f paramFlag) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return fmt.Errorf("param must look like name=value, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("param %s must be a number", k)
	}
	if *f.a == nil {
		*f.a = dist.Args{}
	}
	(*f.a)[k] = x
	return nil
}

func bindVar() {
	flag.StringVar(&cfg.dist, "dist", "", "distribution name, see -list")
	flag.IntVar(&cfg.n, "n", 100000, "number of variates")
	flag.Var(paramFlag{&cfg.params}, "param", "distribution parameter name=value (repeatable)")
	flag.BoolVar(&cfg.fit, "fit", false, "attach a KS goodness-of-fit test")
	flag.StringVar(&cfg.planPath, "plan", "", "run a YAML/JSON plan file")
	flag.BoolVar(&cfg.demo, "demo", false, "run the built-in demo plan")
	flag.StringVar(&cfg.format, "format", "table", "output format: table|json|yaml")
	flag.BoolVar(&cfg.values, "values", false, "print raw variates, one per line, instead of a report")
	flag.BoolVar(&cfg.pb, "pb", false, "show progress bar")
	flag.IntVar(&cfg.workers, "workers", 1, "number of workers")
	flag.IntVar(&cfg.budget, "budget", 0, "rejection retry budget per sampler (0 = unlimited)")
	flag.StringVar(&cfg.logMode, "log", "silence", "log mode: dev|prod|silence")
	flag.BoolVar(&cfg.list, "list", false, "list distributions and exit")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()
}

// 解析並執行計畫
func execute() error {
	if cfg.list {
		return listDists()
	}
	render, err := cfg.valid()
	if err != nil {
		return err
	}
	p, err := cfg.plan()
	if err != nil {
		return err
	}

	mode, err := logger.ParseMode(cfg.logMode)
	if err != nil {
		return err
	}
	lab := probdist.New(
		probdist.WithLogger(logger.NewLoggerTo(os.Stderr, mode)),
		probdist.WithWorkers(cfg.workers),
		probdist.WithRejectBudget(cfg.budget),
	)
	defer lab.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	green := "\033[1;32m"
	reset := "\033[0m"
	pr := message.NewPrinter(language.English)
	if !cfg.values && cfg.format == "table" {
		pr.Printf("%s[PLAN:%s] [JOBS:%d] [DRAWS:%d] [WORKERS:%d]%s\n", green, p.Name, len(p.Jobs), p.TotalDraws(), lab.Workers(), reset)
	}

	res, err := lab.RunPlan(ctx, p, cfg.pb)
	if err != nil {
		return err
	}
	if cfg.values {
		return writeValues(res)
	}
	if err := render.Write(os.Stdout, res.Reports()...); err != nil {
		return err
	}
	if cfg.format == "table" {
		stats.FormatDuration(os.Stdout, res.Used, res.Draws())
	}
	return nil
}

func (cfg *config) valid() (stats.Render, error) {
	if cfg.workers < 1 {
		return nil, errs.Invalid("workers must be at least one")
	}
	if cfg.budget < 0 {
		return nil, errs.Invalid("budget must not be negative")
	}
	cfg.format = strings.ToLower(cfg.format)
	return stats.NewRender(cfg.format)
}

// plan 依旗標組出要執行的計畫：-plan > -demo > -dist
func (cfg *config) plan() (*plan.Plan, error) {
	switch {
	case cfg.planPath != "":
		return plan.Load(cfg.planPath)
	case cfg.demo:
		return demo.Plan()
	case cfg.dist != "":
		p := &plan.Plan{
			Name: cfg.dist,
			Jobs: []plan.Job{{
				Name:   cfg.dist,
				Dist:   cfg.dist,
				N:      cfg.n,
				Params: cfg.params,
				Fit:    cfg.fit,
			}},
		}
		if err := p.Valid(); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, errs.Invalid("one of -dist, -plan or -demo is required")
	}
}

func writeValues(res *probdist.PlanResult) error {
	w := bufio.NewWriter(os.Stdout)
	for _, r := range res.Results {
		if r.Values.Discrete() {
			for _, v := range r.Values.Int {
				w.WriteString(strconv.Itoa(v))
				w.WriteByte('\n')
			}
			continue
		}
		for _, v := range r.Values.Float {
			w.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			w.WriteByte('\n')
		}
	}
	return w.Flush()
}

func listDists() error {
	w := bufio.NewWriter(os.Stdout)
	for _, e := range dist.Entries() {
		kind := "continuous"
		if e.Discrete {
			kind = "discrete"
		}
		fmt.Fprintf(w, "%-8s %-10s", e.Name, kind)
		for _, p := range e.Params {
			switch {
			case p.Required:
				fmt.Fprintf(w, " %s(required)", p.Name)
			case p.Default != nil:
				fmt.Fprintf(w, " %s=%g", p.Name, *p.Default)
			default:
				fmt.Fprintf(w, " %s?", p.Name)
			}
		}
		w.WriteByte('\n')
	}
	return w.Flush()
}
