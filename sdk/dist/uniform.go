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
	"github.com/zintix-labs/probdist/sdk/valid"
)

// Runif 產生 n 個 [min,max) 的均勻變量。
func (s *Sampler) Runif(n int, min, max float64) (_ []float64, err error) {
	defer guard(&err)
	if err := valid.Count(n); err != nil {
		return nil, err
	}
	if _, err := valid.Check("min", min, valid.Real); err != nil {
		return nil, err
	}
	if _, err := valid.Check("max", max, valid.Real); err != nil {
		return nil, err
	}
	if err := valid.Range(min, max); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = s.c.Uniform(min, max)
	}
	return out, nil
}
