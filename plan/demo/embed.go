package demo

import (
	"embed"

	"github.com/zintix-labs/probdist/plan"
)

// FS provides embedded demo plans for external usage.
//
//go:embed *.yaml
var FS embed.FS

// Plan 讀取內建的示範計畫
func Plan() (*plan.Plan, error) {
	data, err := FS.ReadFile("demo.yaml")
	if err != nil {
		return nil, err
	}
	return plan.Decode(data)
}
