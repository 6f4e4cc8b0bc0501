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

package probdist_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/probdist"
	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/plan"
	"github.com/zintix-labs/probdist/plan/demo"
	"github.com/zintix-labs/probdist/sdk/core"
	"github.com/zintix-labs/probdist/sdk/dist"
)

func TestDrawWithFit(t *testing.T) {
	lab := probdist.New(probdist.WithSeed(7))
	res, err := lab.Draw(context.Background(), plan.Job{Name: "n", Dist: "norm", N: 500, Fit: true})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Values.Len() != 500 || res.Values.Discrete() {
		t.Fatalf("unexpected values: len=%d", res.Values.Len())
	}
	if res.Report == nil || res.Report.Fit == nil || res.Report.Summary.N != 500 {
		t.Fatalf("unexpected report %+v", res.Report)
	}
	if res.RunID == "" || res.Report.RunID != res.RunID {
		t.Fatalf("run id not propagated: %q / %q", res.RunID, res.Report.RunID)
	}
}

func TestDrawIsReproducibleWithSeed(t *testing.T) {
	job := plan.Job{Name: "g", Dist: "gamma", N: 50, Params: dist.Args{"alpha": 0.7}}
	a, err := probdist.New(probdist.WithSeed(11)).Draw(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := probdist.New(probdist.WithSeed(11)).Draw(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !slices.Equal(a.Values.Float, b.Values.Float) {
		t.Fatalf("same seed should reproduce the same draws")
	}
}

func TestDrawRejectsInvalidJob(t *testing.T) {
	lab := probdist.New()
	_, err := lab.Draw(context.Background(), plan.Job{Dist: "norm", N: 0})
	if !errs.IsKind(err, errs.Validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = lab.Draw(context.Background(), plan.Job{Dist: "nbinom", N: 1, Params: dist.Args{"size": 1.5, "p": 0.5}})
	if err == nil || !strings.Contains(err.Error(), "size must be a whole number") {
		t.Fatalf("expected whole number error, got %v", err)
	}
}

func TestWithSourceIsUsedPerJob(t *testing.T) {
	var jobs []int
	lab := probdist.New(probdist.WithSource(func(job int) core.Source {
		jobs = append(jobs, job)
		return core.NewReplay(0.25)
	}))
	res, err := lab.Draw(context.Background(), plan.Job{Name: "u", Dist: "unif", N: 3, Params: dist.Args{"min": 0, "max": 4}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range res.Values.Float {
		if x != 1 {
			t.Fatalf("expected replayed value 1, got %v", x)
		}
	}
	if len(jobs) != 1 || jobs[0] != 0 {
		t.Fatalf("unexpected source calls %v", jobs)
	}
}

func TestRunPlanIndependentOfWorkers(t *testing.T) {
	p, err := demo.Plan()
	if err != nil {
		t.Fatalf("demo plan: %v", err)
	}
	one, err := probdist.New(probdist.WithSeed(3)).RunPlan(context.Background(), p, false)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	four, err := probdist.New(probdist.WithSeed(3), probdist.WithWorkers(4)).RunPlan(context.Background(), p, false)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(one.Results) != len(p.Jobs) || len(four.Results) != len(p.Jobs) {
		t.Fatalf("expected %d results", len(p.Jobs))
	}
	for i, j := range p.Jobs {
		a, b := one.Results[i], four.Results[i]
		if a.Job.Name != j.Name || b.Job.Name != j.Name {
			t.Fatalf("result %d out of order: %s / %s", i, a.Job.Name, b.Job.Name)
		}
		if !slices.Equal(a.Values.Floats(), b.Values.Floats()) {
			t.Fatalf("job %s differs between worker counts", j.Name)
		}
		if a.RunID != one.RunID {
			t.Fatalf("job run id %q != plan run id %q", a.RunID, one.RunID)
		}
	}
	if one.Draws() != p.TotalDraws() || len(one.Reports()) != len(p.Jobs) {
		t.Fatalf("unexpected totals: draws=%d reports=%d", one.Draws(), len(one.Reports()))
	}
}

func TestRunPlanAbortsOnFirstError(t *testing.T) {
	p := &plan.Plan{Name: "bad", Jobs: []plan.Job{
		{Name: "ok", Dist: "exp", N: 10},
		{Name: "walk", Dist: "fml", N: 3, Fit: true},
	}}
	res, err := probdist.New(probdist.WithWorkers(2)).RunPlan(context.Background(), p, false)
	if res != nil {
		t.Fatalf("expected no partial results, got %+v", res)
	}
	if err == nil || !strings.Contains(err.Error(), "no reference") {
		t.Fatalf("expected fit error, got %v", err)
	}
}

func TestDrawDeadlineStopsLongVariate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	job := plan.Job{Dist: "chisq", N: 1, Params: dist.Args{"df": 3e6}}
	start := time.Now()
	res, err := probdist.New().Draw(ctx, job)
	if res != nil || !errors.Is(err, context.DeadlineExceeded) || !errs.IsKind(err, errs.Canceled) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if used := time.Since(start); used > time.Second {
		t.Fatalf("draw should stop soon after the deadline, took %v", used)
	}

	// Sampler 取得的 ctx 同樣生效
	done, stop := context.WithCancel(context.Background())
	stop()
	if _, err := dist.SampleWith(probdist.New().SamplerContext(done), []int{1, 2}, 10, true, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled sample, got %v", err)
	}
}

func TestRunPlanCanceledAndClosed(t *testing.T) {
	p := &plan.Plan{Jobs: []plan.Job{{Dist: "unif", N: 1}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := probdist.New().RunPlan(ctx, p, false)
	if e, ok := errs.AsErr(err); !ok || e.ErrLv != errs.Warn || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected warn cancel error, got %v", err)
	}

	lab := probdist.New()
	lab.Close()
	lab.Close()
	if !lab.Closed() || lab.ClosedReason() != "closed" {
		t.Fatalf("expected closed lab")
	}
	_, err = lab.RunPlan(context.Background(), p, false)
	if e, ok := errs.AsErr(err); !ok || e.ErrLv != errs.Fatal {
		t.Fatalf("expected fatal closed error, got %v", err)
	}
	if _, err := lab.RunPlan(context.Background(), nil, false); err == nil {
		t.Fatalf("expected nil plan error")
	}
}
