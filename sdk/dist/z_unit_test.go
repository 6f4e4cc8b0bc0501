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

package dist

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/sdk/core"
	"github.com/zintix-labs/probdist/sdk/valid"
)

const draws = 20000

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

func seeded(seed int64, opts ...Option) *Sampler {
	return New(core.NewPCG64(seed), opts...)
}

// countingSource 記錄熵被取用的次數
type countingSource struct {
	inner core.Source
	calls int
}

func (c *countingSource) Float64() float64 {
	c.calls++
	return c.inner.Float64()
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func mean(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func sd(xs []float64) float64 {
	m := mean(xs)
	s := 0.0
	for _, x := range xs {
		s += (x - m) * (x - m)
	}
	return math.Sqrt(s / float64(len(xs)-1))
}

func median(xs []float64) float64 {
	c := slices.Clone(xs)
	slices.Sort(c)
	return c[len(c)/2]
}

func toFloat(xs []int) []float64 {
	return Variates{Int: xs}.Floats()
}

func near(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: expected %.4f ± %.4f, got %.4f", name, want, tol, got)
	}
}

func expectInvalid(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !errs.IsKind(err, errs.Validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected %q in %q", want, err.Error())
	}
}

// -----------------------------------------------------------------------------
// Uniform
// -----------------------------------------------------------------------------

func TestRunifRange(t *testing.T) {
	s := seeded(1)
	xs, err := s.Runif(1000, 50, 60)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(xs) != 1000 {
		t.Fatalf("expected 1000 values, got %d", len(xs))
	}
	for _, x := range xs {
		if x < 50 || x >= 60 {
			t.Fatalf("out of [50,60): %v", x)
		}
	}
}

func TestRunifWiderRangeWiderSpread(t *testing.T) {
	s := seeded(2)
	narrow, _ := s.Runif(draws, 0, 1)
	wide, _ := s.Runif(draws, 0, 10)
	if sd(wide) <= sd(narrow) {
		t.Fatalf("wider range should spread more: %v <= %v", sd(wide), sd(narrow))
	}
}

func TestRunifValidation(t *testing.T) {
	s := seeded(3)
	_, err := s.Runif(1, 2, 1)
	expectInvalid(t, err, "min must not be greater than max")
	_, err = s.Runif(0, 0, 1)
	expectInvalid(t, err, "n must be at least one")
	_, err = s.Runif(1, math.Inf(-1), 1)
	expectInvalid(t, err, "min cannot be infinite")
}

func TestValidationConsumesNoEntropy(t *testing.T) {
	src := &countingSource{inner: core.NewPCG64(4)}
	s := New(src)
	if _, err := s.Rnorm(0, 0, 1); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := s.Rnbinom(1, 3, valid.F(0.5), valid.F(3)); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := s.Rgamma(3, -1, 1); err == nil {
		t.Fatalf("expected error")
	}
	if src.calls != 0 {
		t.Fatalf("validation consumed %d entropy values", src.calls)
	}
}

func TestEntropyFailureSurfacesAsError(t *testing.T) {
	s := New(&core.CryptoSource{ByteLen: 4, Reader: errReader{}})
	xs, err := s.Runif(3, 0, 1)
	if xs != nil {
		t.Fatalf("expected no partial output, got %v", xs)
	}
	if !errs.IsKind(err, errs.Entropy) {
		t.Fatalf("expected entropy error, got %v", err)
	}
}

func TestContextCancelStopsInsideVariate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(core.NewPCG64(60), WithContext(ctx))
	xs, err := s.Rchisq(1, 1e12, 0)
	if xs != nil {
		t.Fatalf("expected no partial output, got %v", xs)
	}
	if !errs.IsKind(err, errs.Canceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}

	dl, stop := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer stop()
	start := time.Now()
	_, err = New(core.NewPCG64(61), WithContext(dl)).Rbinom(1, 1e12, 0.5)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if used := time.Since(start); used > 5*time.Second {
		t.Fatalf("binom should stop soon after the deadline, took %v", used)
	}
}

func TestContextLiveKeepsStream(t *testing.T) {
	a, err := New(core.NewPCG64(62), WithContext(context.Background())).Rnorm(500, 0, 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := New(core.NewPCG64(62)).Rnorm(500, 0, 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !slices.Equal(a, b) {
		t.Fatalf("a live context must not change the stream")
	}
}

// -----------------------------------------------------------------------------
// Transform family
// -----------------------------------------------------------------------------

func TestRnormMoments(t *testing.T) {
	s := seeded(5)
	xs, err := s.Rnorm(draws, 3, 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	near(t, "normal mean", mean(xs), 3, 0.1)
	near(t, "normal sd", sd(xs), 2, 0.1)
}

func TestRnormZeroSdIsConstant(t *testing.T) {
	s := seeded(6)
	xs, err := s.Rnorm(10, 7, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range xs {
		if x != 7 {
			t.Fatalf("expected 7, got %v", x)
		}
	}
}

func TestRexpMean(t *testing.T) {
	s := seeded(7)
	xs, err := s.Rexp(draws, 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range xs {
		if x < 0 || math.IsInf(x, 0) {
			t.Fatalf("invalid exponential value %v", x)
		}
	}
	near(t, "exp mean", mean(xs), 0.5, 0.03)
	_, err = s.Rexp(1, 0)
	expectInvalid(t, err, "rate must be greater than zero")
}

func TestRexpSkipsZeroUniform(t *testing.T) {
	s := New(core.NewReplay(0, 0.5))
	xs, err := s.Rexp(1, 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	near(t, "exp(u=0.5)", xs[0], math.Ln2, 1e-12)
}

func TestRcauchyMedian(t *testing.T) {
	s := seeded(8)
	xs, err := s.Rcauchy(draws, -2, 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	near(t, "cauchy median", median(xs), -2, 0.1)
}

func TestRlaplaceMoments(t *testing.T) {
	s := seeded(9)
	xs, err := s.Rlaplace(draws, 1, 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	near(t, "laplace mean", mean(xs), 1, 0.1)
	near(t, "laplace sd", sd(xs), 2*math.Sqrt2, 0.15)
	below, above := 0, 0
	for _, x := range xs {
		if x < 1 {
			below++
		} else {
			above++
		}
	}
	if below == 0 || above == 0 {
		t.Fatalf("laplace sign never flipped: below=%d above=%d", below, above)
	}
}

// -----------------------------------------------------------------------------
// Compositional family
// -----------------------------------------------------------------------------

func TestRchisqMatchesManualComposition(t *testing.T) {
	a := seeded(10)
	b := seeded(10)
	const df = 3
	got, err := a.Rchisq(200, df, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for i := range got {
		x := 0.0
		for j := 0; j < df; j++ {
			z, err := b.Rnorm(1, 0, 1)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			x += z[0] * z[0]
		}
		if got[i] != x {
			t.Fatalf("index %d: chisq %v != manual %v", i, got[i], x)
		}
	}
}

func TestRchisqMeanAndOffset(t *testing.T) {
	s := seeded(11)
	xs, err := s.Rchisq(draws, 4, 1.5)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range xs {
		if x < 1.5 {
			t.Fatalf("value below ncp offset: %v", x)
		}
	}
	near(t, "chisq mean", mean(xs), 5.5, 0.15)
	_, err = s.Rchisq(1, 2.5, 0)
	expectInvalid(t, err, "df must be a whole number")
}

func TestRgammaRegimes(t *testing.T) {
	cases := []struct {
		alpha, rate, tol float64
	}{
		{alpha: 0.5, rate: 2, tol: 0.02},
		{alpha: 1, rate: 1, tol: 0.05},
		{alpha: 3, rate: 0.5, tol: 0.2},
	}
	for i, tc := range cases {
		s := seeded(int64(20 + i))
		xs, err := s.Rgamma(draws, tc.alpha, tc.rate)
		if err != nil {
			t.Fatalf("alpha=%v unexpected err: %v", tc.alpha, err)
		}
		for _, x := range xs {
			if x < 0 || math.IsNaN(x) {
				t.Fatalf("alpha=%v invalid gamma value %v", tc.alpha, x)
			}
		}
		near(t, "gamma mean", mean(xs), tc.alpha/tc.rate, tc.tol)
	}
}

func TestRbetaRangeAndMean(t *testing.T) {
	s := seeded(30)
	xs, err := s.Rbeta(draws, 2, 5, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range xs {
		if x < 0 || x > 1 {
			t.Fatalf("beta out of [0,1]: %v", x)
		}
	}
	near(t, "beta mean", mean(xs), 2.0/7.0, 0.02)

	shifted, err := s.Rbeta(100, 1, 1, 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range shifted {
		if x < 10 || x > 11 {
			t.Fatalf("shifted beta out of [10,11]: %v", x)
		}
	}
}

func TestRejectBudgetExhausted(t *testing.T) {
	// (0.99,0.99) -> V=(0.98,0.98) -> S>1，永遠拒絕
	s := New(core.NewReplay(0.99), WithRejectBudget(10))
	_, err := s.Rnorm(1, 0, 1)
	if !errs.IsKind(err, errs.Exhausted) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
	// u1 = 0 永遠不在 (1e-7, 1-1e-7) 內
	g := New(core.NewReplay(0), WithRejectBudget(5))
	_, err = g.Rgamma(1, 2, 1)
	if !errs.IsKind(err, errs.Exhausted) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
	if g.RejectBudget() != 5 {
		t.Fatalf("expected budget 5, got %d", g.RejectBudget())
	}
}

// -----------------------------------------------------------------------------
// Counting family
// -----------------------------------------------------------------------------

func TestRbinomBounds(t *testing.T) {
	s := seeded(40)
	xs, err := s.Rbinom(1000, 6, 0.6)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range xs {
		if x < 0 || x > 6 {
			t.Fatalf("binom out of [0,6]: %d", x)
		}
	}
	// 省略參數時 size=1, p=0.5
	v, err := s.Generate("binom", 1000, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range v.Int {
		if x != 0 && x != 1 {
			t.Fatalf("default binom out of {0,1}: %d", x)
		}
	}
}

func TestRbinomMean(t *testing.T) {
	s := seeded(41)
	xs, err := s.Rbinom(draws, 10, 0.3)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	near(t, "binom mean", mean(toFloat(xs)), 3, 0.1)
	_, err = s.Rbinom(1, 3, 1.5)
	expectInvalid(t, err, "p must be a probability in [0,1]")
}

func TestRnbinomValidation(t *testing.T) {
	s := seeded(42)
	_, err := s.Rnbinom(1, 2.3, valid.F(0.5), nil)
	expectInvalid(t, err, "must be a whole number")
	_, err = s.Rnbinom(1, 0, valid.F(0.5), nil)
	expectInvalid(t, err, "must be at least one")
	_, err = s.Rnbinom(1, 3, valid.F(0.5), valid.F(3))
	expectInvalid(t, err, "cannot both be given")
	_, err = s.Rnbinom(1, 3, nil, nil)
	expectInvalid(t, err, "either p or mu must be given")
	_, err = s.Rnbinom(1, 3, valid.F(0), nil)
	expectInvalid(t, err, "p must be greater than zero")
}

func TestRnbinomMeanWithMu(t *testing.T) {
	s := seeded(43)
	xs, err := s.Rnbinom(draws, 2, nil, valid.F(3))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range xs {
		if x < 0 {
			t.Fatalf("negative nbinom value %d", x)
		}
	}
	near(t, "nbinom mean", mean(toFloat(xs)), 3, 0.15)
}

func TestRnbinomCertainSuccess(t *testing.T) {
	s := seeded(44)
	xs, err := s.Rnbinom(50, 4, valid.F(1), nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range xs {
		if x != 0 {
			t.Fatalf("p=1 should never fail, got %d", x)
		}
	}
}

func TestRpoisSmallAndLargeRate(t *testing.T) {
	s := seeded(45)
	small, err := s.Rpois(draws, 4)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	near(t, "pois(4) mean", mean(toFloat(small)), 4, 0.1)

	large, err := s.Rpois(2000, 50)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range large {
		if x < 0 || x > PoissonTrials {
			t.Fatalf("pois(50) out of range: %d", x)
		}
	}
	near(t, "pois(50) mean", mean(toFloat(large)), 50, 1)

	_, err = s.Rpois(1, 0)
	expectInvalid(t, err, "lambda must be greater than zero")
	_, err = s.Rpois(1, PoissonTrials+1)
	expectInvalid(t, err, "lambda must not exceed")
}

// -----------------------------------------------------------------------------
// Bounded walk / unreliable friend
// -----------------------------------------------------------------------------

func TestRfmlSentinelOnCap(t *testing.T) {
	s := seeded(50)
	trace := new(Trace)
	always := func() float64 { return 1 }
	xs, err := s.Rfml(3, 1, always, 5, trace)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range xs {
		if x != WalkFailed {
			t.Fatalf("expected sentinel %d, got %d", WalkFailed, x)
		}
	}
	if trace.Len() != 15 {
		t.Fatalf("expected 15 trace steps, got %d", trace.Len())
	}
	first := trace.Steps[0]
	if first.Key != "0_0" || first.Problems != 2 || first.Result != stepUp {
		t.Fatalf("unexpected first step %+v", first)
	}
	if last := trace.Steps[14]; last.Key != "2_4" || last.Problems != 6 {
		t.Fatalf("unexpected last step %+v", last)
	}
}

func TestRfmlNeverFailingWalk(t *testing.T) {
	s := seeded(51)
	never := func() float64 { return 0 }
	xs, err := s.Rfml(4, 3, never, DefaultWalkCap, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range xs {
		if x != 3 {
			t.Fatalf("p=0 walk from 3 should take 3 steps, got %d", x)
		}
	}
}

func TestRfmlCapBoundary(t *testing.T) {
	s := seeded(53)
	never := func() float64 { return 0 }
	xs, err := s.Rfml(2, 3, never, 3, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range xs {
		if x != WalkFailed {
			t.Fatalf("walk reaching cap must yield %d, got %d", WalkFailed, x)
		}
	}
	xs, err = s.Rfml(2, 3, never, 4, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range xs {
		if x != 3 {
			t.Fatalf("walk under cap should take 3 steps, got %d", x)
		}
	}
}

func TestRfmlDefaultProbability(t *testing.T) {
	s := seeded(52)
	xs, err := s.Rfml(200, 1, nil, 1000, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range xs {
		if x != WalkFailed && (x < 1 || x > 999) {
			t.Fatalf("unexpected walk length %d", x)
		}
	}
	_, err = s.Rfml(1, 1, func() float64 { return 2 }, 10, nil)
	expectInvalid(t, err, "p must be a probability")
}

func TestRufPositive(t *testing.T) {
	s := seeded(53)
	xs, err := s.Ruf(1000)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, x := range xs {
		if x < 0 || math.IsNaN(x) {
			t.Fatalf("invalid uf value %v", x)
		}
	}
}

// -----------------------------------------------------------------------------
// Registry / package-level API
// -----------------------------------------------------------------------------

func TestGenerateRegistry(t *testing.T) {
	s := seeded(60)
	for _, name := range Names() {
		e, _ := Lookup(name)
		args := Args{}
		switch name {
		case "gamma":
			args["alpha"] = 2
		case "chisq":
			args["df"] = 2
		case "nbinom":
			args["size"] = 2
			args["p"] = 0.5
		case "pois":
			args["lambda"] = 3
		}
		v, err := s.Generate(name, 10, args)
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", name, err)
		}
		if v.Len() != 10 || v.Discrete() != e.Discrete {
			t.Fatalf("%s: unexpected variates %+v", name, v)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	s := seeded(61)
	_, err := s.Generate("weibull", 1, nil)
	expectInvalid(t, err, "unknown distribution")
	_, err = s.Generate("norm", 1, Args{"lambda": 1})
	expectInvalid(t, err, "unknown parameter")
	_, err = s.Generate("pois", 1, nil)
	expectInvalid(t, err, "lambda is required")
	_, err = s.Generate("nbinom", 1, Args{"size": 3, "p": 0.5, "mu": 3})
	expectInvalid(t, err, "cannot both be given")
}

func TestResolveAppliesDefaults(t *testing.T) {
	e, ok := Lookup("norm")
	if !ok {
		t.Fatalf("norm not registered")
	}
	in := Args{"mean": 2}
	got, err := e.Resolve(in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got["mean"] != 2 || got["sd"] != 1 {
		t.Fatalf("unexpected resolved args %v", got)
	}
	if len(in) != 1 {
		t.Fatalf("resolve mutated input: %v", in)
	}
	_, err = e.Resolve(Args{"sd": -1})
	expectInvalid(t, err, "sd must not be negative")

	nb, _ := Lookup("nbinom")
	got, err = nb.Resolve(Args{"size": 2, "mu": 3})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := got["p"]; ok {
		t.Fatalf("optional p should stay absent: %v", got)
	}
}

func TestPackageLevelAPI(t *testing.T) {
	u, err := Prng(1)
	if err != nil || u*256 != math.Round(u*256) {
		t.Fatalf("unexpected prng(1) result %v %v", u, err)
	}
	xs, err := Rnorm(5, 0, 1)
	if err != nil || len(xs) != 5 {
		t.Fatalf("unexpected rnorm result %v %v", xs, err)
	}
	perm, err := Sample([]string{"a", "b", "c"}, 3, false, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	slices.Sort(perm)
	if !slices.Equal(perm, []string{"a", "b", "c"}) {
		t.Fatalf("expected permutation, got %v", perm)
	}
	_, err = Sample([]int{1, 2, 3}, 5, false, nil)
	if err == nil || !strings.Contains(err.Error(), "insufficient length") {
		t.Fatalf("expected insufficient length error, got %v", err)
	}
	shuffled, err := Shuffle([]int{1, 2, 3, 4})
	if err != nil || len(shuffled) != 4 {
		t.Fatalf("unexpected shuffle result %v %v", shuffled, err)
	}
}
