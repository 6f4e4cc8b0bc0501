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
	"sort"

	"github.com/zintix-labs/probdist/errs"
	"github.com/zintix-labs/probdist/sdk/valid"
)

// Args 以名稱傳遞的分佈參數（來自 YAML / JSON / query string）。
type Args map[string]float64

func (a Args) ptr(name string) *float64 {
	if v, ok := a[name]; ok {
		return &v
	}
	return nil
}

// Variates 一次取樣的結果：連續分佈填 Float，離散分佈填 Int。
type Variates struct {
	Float []float64 `json:"float,omitempty" yaml:"float,omitempty"`
	Int   []int     `json:"int,omitempty" yaml:"int,omitempty"`
}

// Discrete 是否為離散分佈的結果
func (v Variates) Discrete() bool {
	return v.Int != nil
}

// Len 變量個數
func (v Variates) Len() int {
	if v.Int != nil {
		return len(v.Int)
	}
	return len(v.Float)
}

// Floats 以 []float64 取得結果（離散結果會轉型複製）。
func (v Variates) Floats() []float64 {
	if v.Int == nil {
		return v.Float
	}
	out := make([]float64, len(v.Int))
	for i, x := range v.Int {
		out[i] = float64(x)
	}
	return out
}

// Param 單一具名參數的規則。
//
// Default 為 nil 時：Required 則必填，否則可省略（例如 nbinom 的 p / mu）。
type Param struct {
	Name     string     `json:"name"`
	Rule     valid.Rule `json:"rule"`
	Default  *float64   `json:"default,omitempty"`
	Required bool       `json:"required,omitempty"`
}

func opt(name string, rule valid.Rule, def float64) Param {
	return Param{Name: name, Rule: rule, Default: valid.F(def)}
}

func req(name string, rule valid.Rule) Param {
	return Param{Name: name, Rule: rule, Required: true}
}

func may(name string, rule valid.Rule) Param {
	return Param{Name: name, Rule: rule}
}

// Generator 以已解析的參數產生 n 個變量
type Generator func(s *Sampler, n int, a Args) (Variates, error)

// Entry 分佈登錄資訊
type Entry struct {
	Name     string  `json:"name"`
	Params   []Param `json:"params"`
	Discrete bool    `json:"discrete"`
	gen      Generator
}

// Resolve 檢查並補齊參數：未知參數報錯，給定值套用驗證規則，未給定者套用預設值。
// 預設值本身不經過驗證。回傳新的 Args，不修改 a。
func (e *Entry) Resolve(a Args) (Args, error) {
	for k := range a {
		if e.param(k) == nil {
			return nil, errs.Invalid("unknown parameter %q for %s", k, e.Name)
		}
	}
	out := make(Args, len(e.Params))
	for _, p := range e.Params {
		if v, ok := a[p.Name]; ok {
			if _, err := valid.Check(p.Name, v, p.Rule); err != nil {
				return nil, err
			}
			out[p.Name] = v
			continue
		}
		switch {
		case p.Default != nil:
			out[p.Name] = *p.Default
		case p.Required:
			return nil, errs.Invalid("%s is required", p.Name)
		}
	}
	return out, nil
}

func (e *Entry) param(name string) *Param {
	for i := range e.Params {
		if e.Params[i].Name == name {
			return &e.Params[i]
		}
	}
	return nil
}

// Generate 解析參數後產生變量
func (e *Entry) Generate(s *Sampler, n int, a Args) (Variates, error) {
	r, err := e.Resolve(a)
	if err != nil {
		return Variates{}, err
	}
	return e.gen(s, n, r)
}

func floats(xs []float64, err error) (Variates, error) {
	if err != nil {
		return Variates{}, err
	}
	return Variates{Float: xs}, nil
}

func ints(xs []int, err error) (Variates, error) {
	if err != nil {
		return Variates{}, err
	}
	return Variates{Int: xs}, nil
}

var registry = map[string]*Entry{
	"unif": {
		Name:   "unif",
		Params: []Param{opt("min", valid.Real, 0), opt("max", valid.Real, 1)},
		gen: func(s *Sampler, n int, a Args) (Variates, error) {
			return floats(s.Runif(n, a["min"], a["max"]))
		},
	},
	"norm": {
		Name:   "norm",
		Params: []Param{opt("mean", valid.Real, 0), opt("sd", valid.NonNegReal, 1)},
		gen: func(s *Sampler, n int, a Args) (Variates, error) {
			return floats(s.Rnorm(n, a["mean"], a["sd"]))
		},
	},
	"exp": {
		Name:   "exp",
		Params: []Param{opt("rate", valid.PosReal, 1)},
		gen: func(s *Sampler, n int, a Args) (Variates, error) {
			return floats(s.Rexp(n, a["rate"]))
		},
	},
	"gamma": {
		Name:   "gamma",
		Params: []Param{req("alpha", valid.PosReal), opt("rate", valid.PosReal, 1)},
		gen: func(s *Sampler, n int, a Args) (Variates, error) {
			return floats(s.Rgamma(n, a["alpha"], a["rate"]))
		},
	},
	"beta": {
		Name:   "beta",
		Params: []Param{opt("alpha", valid.PosReal, 1), opt("beta", valid.PosReal, 1), opt("loc", valid.Real, 0)},
		gen: func(s *Sampler, n int, a Args) (Variates, error) {
			return floats(s.Rbeta(n, a["alpha"], a["beta"], a["loc"]))
		},
	},
	"chisq": {
		Name:   "chisq",
		Params: []Param{req("df", valid.Natural), opt("ncp", valid.NonNegReal, 0)},
		gen: func(s *Sampler, n int, a Args) (Variates, error) {
			return floats(s.Rchisq(n, a["df"], a["ncp"]))
		},
	},
	"cauchy": {
		Name:   "cauchy",
		Params: []Param{opt("loc", valid.Real, 0), opt("scale", valid.PosReal, 1)},
		gen: func(s *Sampler, n int, a Args) (Variates, error) {
			return floats(s.Rcauchy(n, a["loc"], a["scale"]))
		},
	},
	"laplace": {
		Name:   "laplace",
		Params: []Param{opt("loc", valid.Real, 0), opt("scale", valid.PosReal, 1)},
		gen: func(s *Sampler, n int, a Args) (Variates, error) {
			return floats(s.Rlaplace(n, a["loc"], a["scale"]))
		},
	},
	"binom": {
		Name:     "binom",
		Params:   []Param{opt("size", valid.NonNegInt, 1), opt("p", valid.Probability, 0.5)},
		Discrete: true,
		gen: func(s *Sampler, n int, a Args) (Variates, error) {
			return ints(s.Rbinom(n, a["size"], a["p"]))
		},
	},
	"nbinom": {
		Name:     "nbinom",
		Params:   []Param{req("size", valid.Natural), may("p", valid.Probability), may("mu", valid.NonNegReal)},
		Discrete: true,
		gen: func(s *Sampler, n int, a Args) (Variates, error) {
			return ints(s.Rnbinom(n, a["size"], a.ptr("p"), a.ptr("mu")))
		},
	},
	"pois": {
		Name:     "pois",
		Params:   []Param{req("lambda", valid.PosReal)},
		Discrete: true,
		gen: func(s *Sampler, n int, a Args) (Variates, error) {
			return ints(s.Rpois(n, a["lambda"]))
		},
	},
	"uf": {
		Name:   "uf",
		Params: []Param{},
		gen: func(s *Sampler, n int, _ Args) (Variates, error) {
			return floats(s.Ruf(n))
		},
	},
	"fml": {
		Name:     "fml",
		Params:   []Param{opt("loc", valid.Natural, 1), opt("cap", valid.Natural, DefaultWalkCap)},
		Discrete: true,
		gen: func(s *Sampler, n int, a Args) (Variates, error) {
			return ints(s.Rfml(n, a["loc"], nil, int(a["cap"]), nil))
		},
	},
}

// Lookup 依名稱取得分佈登錄資訊
func Lookup(name string) (*Entry, bool) {
	e, ok := registry[name]
	return e, ok
}

// Names 回傳所有已登錄分佈名稱（排序後）
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Entries 依名稱排序回傳所有登錄資訊
func Entries() []*Entry {
	names := Names()
	out := make([]*Entry, len(names))
	for i, n := range names {
		out[i] = registry[n]
	}
	return out
}

// Generate 依名稱產生變量；未知分佈回傳驗證錯誤。
func (s *Sampler) Generate(name string, n int, a Args) (Variates, error) {
	e, ok := Lookup(name)
	if !ok {
		return Variates{}, errs.Invalid("unknown distribution %q", name)
	}
	return e.Generate(s, n, a)
}
