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

package core

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/zintix-labs/probdist/errs"
)

const repeat = 1000

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestPrngLowEntropyIsWholeByte(t *testing.T) {
	for i := 0; i < repeat; i++ {
		u, err := Prng(1)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		numb := u * 256
		if numb != math.Round(numb) {
			t.Fatalf("expected whole number, got %v", numb)
		}
		if numb < 0 || numb >= 256 {
			t.Fatalf("out of range: %v", numb)
		}
	}
}

func TestPrngDefaultRange(t *testing.T) {
	for i := 0; i < repeat; i++ {
		u, err := Prng(DefaultByteLen)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if u < 0 || u >= 1 {
			t.Fatalf("out of [0,1): %v", u)
		}
	}
}

func TestPrngRejectsBadLen(t *testing.T) {
	_, err := Prng(0)
	if err == nil {
		t.Fatalf("expected error for len 0")
	}
	if !errs.IsKind(err, errs.Validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCryptoSourcePositionalWeighting(t *testing.T) {
	src := &CryptoSource{ByteLen: 2, Reader: bytes.NewReader([]byte{128, 64})}
	want := 128.0/256 + 64.0/(256*256)
	if got := src.Float64(); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCryptoSourceNeverReachesOne(t *testing.T) {
	buf := bytes.Repeat([]byte{255}, 32)
	src := &CryptoSource{ByteLen: 32, Reader: bytes.NewReader(buf)}
	if got := src.Float64(); got >= 1 {
		t.Fatalf("expected < 1, got %v", got)
	}
}

func TestCryptoSourcePanicsOnEntropyFailure(t *testing.T) {
	src := &CryptoSource{ByteLen: 4, Reader: errReader{}}
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		e, ok := r.(*errs.E)
		if !ok || e.Kind != errs.Entropy || e.ErrLv != errs.Fatal {
			t.Fatalf("unexpected panic value: %v", r)
		}
	}()
	src.Float64()
}

func TestPCG64Determinism(t *testing.T) {
	a := NewPCG64(7)
	b := NewPCG64(7)
	for i := 0; i < 5; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("Float64 mismatch at %d", i)
		}
	}
}

func TestPCG64SnapshotRestore(t *testing.T) {
	r := NewPCG64(3)
	r.Float64()
	snap, err := r.Snapshot()
	if err != nil {
		t.Fatalf("snapshot err: %v", err)
	}
	want := r.Float64()
	if err := r.Restore(snap); err != nil {
		t.Fatalf("restore err: %v", err)
	}
	if got := r.Float64(); got != want {
		t.Fatalf("expected %v after restore, got %v", want, got)
	}
}

func TestCoreUniformAndOpen01(t *testing.T) {
	c := New(NewReplay(0, 0.5))
	if got := c.Uniform(50, 60); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
	if got := c.Uniform(50, 60); got != 55 {
		t.Fatalf("expected 55, got %v", got)
	}
	// 下一個值為 0，Open01 應跳過
	if got := c.Open01(); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
}

func TestCoreBernoulli(t *testing.T) {
	c := New(NewReplay(0.2, 0.8))
	if !c.Bernoulli(0.5) {
		t.Fatalf("0.2 < 0.5 should succeed")
	}
	if c.Bernoulli(0.5) {
		t.Fatalf("0.8 < 0.5 should fail")
	}
}

func TestDefaultCoreRange(t *testing.T) {
	c := Default()
	for i := 0; i < repeat; i++ {
		if u := c.Float64(); u < 0 || u >= 1 {
			t.Fatalf("out of [0,1): %v", u)
		}
	}
}
