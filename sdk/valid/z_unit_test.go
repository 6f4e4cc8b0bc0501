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

package valid

import (
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/probdist/errs"
)

// expectErr 驗證錯誤存在、為 Validation 類別、且訊息包含 want
func expectErr(t *testing.T, err error, want string) {
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

func TestCheckNatural(t *testing.T) {
	if _, err := Check("size", 3, Natural); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err := Check("size", 2.3, Natural)
	expectErr(t, err, "size must be a whole number")
	_, err = Check("size", 0, Natural)
	expectErr(t, err, "size must be at least one")
	_, err = Check("size", math.Inf(1), Natural)
	expectErr(t, err, "size cannot be infinite")
	_, err = Check("size", math.NaN(), Natural)
	expectErr(t, err, "size must be a number")
}

func TestCheckProbability(t *testing.T) {
	for _, p := range []float64{0, 0.5, 1} {
		if _, err := Check("p", p, Probability); err != nil {
			t.Fatalf("p=%v unexpected err: %v", p, err)
		}
	}
	_, err := Check("p", 1.01, Probability)
	expectErr(t, err, "p must be a probability in [0,1]")
	_, err = Check("p", -0.1, Probability)
	expectErr(t, err, "probability")
}

func TestCheckReals(t *testing.T) {
	_, err := Check("mean", math.Inf(-1), Real)
	expectErr(t, err, "mean cannot be infinite")
	_, err = Check("rate", 0, PosReal)
	expectErr(t, err, "rate must be greater than zero")
	_, err = Check("ncp", -1, NonNegReal)
	expectErr(t, err, "ncp must not be negative")
	if _, err := Check("ncp", 0, NonNegReal); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestCheckNonNegInt(t *testing.T) {
	if _, err := Check("size", 0, NonNegInt); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err := Check("size", -2, NonNegInt)
	expectErr(t, err, "size must not be negative")
	_, err = Check("size", 1.5, NonNegInt)
	expectErr(t, err, "whole number")
}

func TestCheckIsIdempotent(t *testing.T) {
	for _, rule := range []Rule{Real, NonNegReal, PosReal, Probability, NonNegInt, Natural} {
		v := 1.0
		a, err := Check("v", v, rule)
		if err != nil {
			t.Fatalf("rule %s: %v", rule, err)
		}
		b, err := Check("v", a, rule)
		if err != nil {
			t.Fatalf("rule %s: %v", rule, err)
		}
		if a != v || b != v {
			t.Fatalf("rule %s changed value: %v %v", rule, a, b)
		}
	}
}

func TestOptDefaultSkipsRule(t *testing.T) {
	// 預設值不經過規則檢查
	got, err := Opt("rate", nil, PosReal, -1)
	if err != nil || got != -1 {
		t.Fatalf("expected default -1 without error, got %v %v", got, err)
	}
	_, err = Opt("rate", F(0), PosReal, 1)
	expectErr(t, err, "rate must be greater than zero")
}

func TestCountRangeExclusiveNonEmpty(t *testing.T) {
	expectErr(t, Count(0), "n must be at least one")
	if err := Count(5); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	expectErr(t, Range(2, 1), "min must not be greater than max")
	if err := Range(1, 1); err != nil {
		t.Fatalf("equal bounds should pass: %v", err)
	}
	expectErr(t, Exclusive("p", "mu", F(0.5), F(3)), "p and mu cannot both be given")
	if err := Exclusive("p", "mu", F(0.5), nil); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	expectErr(t, NonEmpty("collection", []string{}), "collection must be a non-empty collection")
}
