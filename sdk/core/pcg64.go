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
	r2 "math/rand/v2"
)

// PCG64 是可設定 seed 的決定性 Source。
//
// 只用於測試與效能量測：正式取樣一律走 CryptoSource。
// 相同 seed 產生相同序列，讓上層分佈的測試可以重現。
type PCG64 struct {
	rng *r2.PCG
}

// NewPCG64 以指定 seed 建立 PCG64。
func NewPCG64(seed int64) *PCG64 {
	x := uint64(seed) ^ (0x9e3779b97f4a7c15)
	hi := splitmix64(x)
	lo := splitmix64(x ^ 0xDA942042E4DD58B5)
	return &PCG64{rng: r2.NewPCG(hi, lo)}
}

// Float64 產出 [0,1) 的 float64(53bits精度)
func (r *PCG64) Float64() float64 {
	return float64(r.rng.Uint64()<<11>>11) / (1 << 53)
}

// Snapshot 取得當下內部狀態
func (r *PCG64) Snapshot() ([]byte, error) {
	return r.rng.MarshalBinary()
}

// Restore 恢復內部狀態
func (r *PCG64) Restore(data []byte) error {
	return r.rng.UnmarshalBinary(data)
}

// splitmix64 將輸入值混洗成新的 64-bit 狀態，用於種子展開。
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Replay 依序重播固定的熵值，用完後從頭循環。
// 用於測試邊界值（例如強制 u == 0 或 u 趨近 1）。
type Replay struct {
	vals []float64
	i    int
}

// NewReplay 建立重播來源；vals 為空時永遠回傳 0。
func NewReplay(vals ...float64) *Replay {
	return &Replay{vals: vals}
}

func (r *Replay) Float64() float64 {
	if len(r.vals) == 0 {
		return 0
	}
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}
