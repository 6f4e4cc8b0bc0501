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

// Package plan 定義批次取樣計畫（YAML / JSON 文件）。
//
// 計畫在執行前會完整檢查：分佈名稱、取樣數量與參數都通過後才會開始取樣，
// 因此一份錯誤的計畫不會產生部分結果。
package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/sdk/dist"
	"github.com/zintix-labs/probdist/sdk/valid"
	"gopkg.in/yaml.v3"
)

// Job 單一取樣工作
type Job struct {
	Name   string    `yaml:"name"   json:"name"`
	Dist   string    `yaml:"dist"   json:"dist"`
	N      int       `yaml:"n"      json:"n"`
	Params dist.Args `yaml:"params" json:"params,omitempty"`
	Fit    bool      `yaml:"fit"    json:"fit,omitempty"`
}

// Plan 批次取樣計畫
type Plan struct {
	Name string `yaml:"name" json:"name"`
	Jobs []Job  `yaml:"jobs" json:"jobs"`
}

// Decode 解析 YAML 文件（JSON 為其子集，同樣可用）並檢查內容。
// 未知欄位視為錯誤。
func Decode(data []byte) (*Plan, error) {
	p := &Plan{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errs.Invalid("plan: empty document")
		}
		return nil, errs.WrapInvalid(err, "plan: decode failed")
	}
	if err := p.Valid(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load 讀取檔案後 Decode
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(err, "plan: read "+path)
	}
	return Decode(data)
}

// Valid 檢查計畫並補上預設工作名稱（"<dist>#<index>"）。
func (p *Plan) Valid() error {
	if err := valid.NonEmpty("jobs", p.Jobs); err != nil {
		return err
	}
	if p.Name == "" {
		p.Name = "plan"
	}
	for i := range p.Jobs {
		j := &p.Jobs[i]
		if j.Name == "" {
			j.Name = fmt.Sprintf("%s#%d", j.Dist, i)
		}
		if err := j.Valid(); err != nil {
			return errs.Wrap(err, "plan: job "+j.Name)
		}
	}
	return nil
}

// Valid 檢查單一工作：分佈存在、n 合法、參數可解析。
func (j *Job) Valid() error {
	e, ok := dist.Lookup(j.Dist)
	if !ok {
		return errs.Invalid("unknown distribution %q", j.Dist)
	}
	if err := valid.Count(j.N); err != nil {
		return err
	}
	if _, err := e.Resolve(j.Params); err != nil {
		return err
	}
	return nil
}

// TotalDraws 計畫總取樣數
func (p *Plan) TotalDraws() int {
	total := 0
	for _, j := range p.Jobs {
		total += j.N
	}
	return total
}
