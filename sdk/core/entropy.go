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
	"crypto/rand"
	"io"
	"math"

	"github.com/zintix-labs/probdist/errs"
)

// DefaultByteLen 預設每個熵值使用的位元組數
const DefaultByteLen = 16

// CryptoSource 以加密等級位元組組合出 [0,1) 的熵值。
//
// 組合方式為位置加權：Σ byte[i] / 256^(i+1)，i = 0..ByteLen-1。
// 每次呼叫都重新讀取位元組，不保存任何狀態。
type CryptoSource struct {
	ByteLen int
	// Reader 為 nil 時使用 crypto/rand。
	Reader io.Reader
}

// NewCryptoSource 建立指定位元組長度的加密來源，byteLen < 1 時使用預設值。
func NewCryptoSource(byteLen int) *CryptoSource {
	if byteLen < 1 {
		byteLen = DefaultByteLen
	}
	return &CryptoSource{ByteLen: byteLen}
}

// Float64 滿足 Source 合約。讀取失敗時 panic(*errs.E)。
func (s *CryptoSource) Float64() float64 {
	n := s.ByteLen
	if n < 1 {
		n = DefaultByteLen
	}
	buf := make([]byte, n)
	if err := s.read(buf); err != nil {
		panic(errs.EntropyErr(err))
	}
	return combine(buf)
}

func (s *CryptoSource) read(buf []byte) error {
	if s.Reader == nil {
		_, err := rand.Read(buf)
		return err
	}
	_, err := io.ReadFull(s.Reader, buf)
	return err
}

// Prng 讀取 byteLen 個加密位元組並組合成 [0,1) 的熵值。
//
// byteLen == 1 時結果乘以 256 必為整數；byteLen 越大解析度越高，
// 但超過 7 bytes 後受 float64 53-bit 尾數限制，不再增加有效精度。
func Prng(byteLen int) (float64, error) {
	if byteLen < 1 {
		return 0, errs.Invalid("len must be at least one")
	}
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return 0, errs.EntropyErr(err)
	}
	return combine(buf), nil
}

// combine 以位置加權將位元組組合成 [0,1)。
//
// 由高位往低位累加會在 53-bit 之後發生進位捨入，可能把 0.999... 推成 1.0，
// 因此改由最低位往回累加（Horner 形式），並在極端情況下截到 1 以下。
func combine(buf []byte) float64 {
	r := 0.0
	for i := len(buf) - 1; i >= 0; i-- {
		r = (r + float64(buf[i])) / 256
	}
	if r >= 1 {
		r = math.Nextafter(1, 0)
	}
	return r
}
