package stats

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/zintix-labs/probdist/errs"
	"gopkg.in/yaml.v3"
)

// Report 一次取樣的統計報告
type Report struct {
	RunID   string     `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Title   string     `json:"title" yaml:"title"`
	Summary *Summary   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Hist    *Histogram `json:"hist,omitempty" yaml:"hist,omitempty"`
	Fit     *FitReport `json:"fit,omitempty" yaml:"fit,omitempty"`
}

// NewReport 對 xs 做描述統計與分箱；fit 非 nil 時一併附上。
func NewReport(title string, xs []float64, fit *FitReport) (*Report, error) {
	sum, err := Summarize(xs)
	if err != nil {
		return nil, err
	}
	return &Report{
		Title:   title,
		Summary: sum,
		Hist:    Hist(xs, DefaultBins),
		Fit:     fit,
	}, nil
}

// Render 定義輸出行為
type Render interface {
	Write(w io.Writer, reps ...*Report) error
}

// NewRender 依格式名稱取得渲染器：table / json / yaml
func NewRender(format string) (Render, error) {
	switch strings.ToLower(format) {
	case "", "table":
		return &TableRender{}, nil
	case "json":
		return &JsonRender{}, nil
	case "yaml", "yml":
		return &YAMLRender{}, nil
	default:
		return nil, errs.Invalid("unknown format %q", format)
	}
}

// Json渲染
type JsonRender struct{}

func (jr *JsonRender) Write(w io.Writer, reps ...*Report) error {
	enc := json.NewEncoder(w)
	if len(reps) == 1 {
		return enc.Encode(reps[0])
	}
	return enc.Encode(reps)
}

// YAML渲染
type YAMLRender struct{}

func (yr *YAMLRender) Write(w io.Writer, reps ...*Report) error {
	// 只有「最內層的一維陣列」輸出成 flow style：[..., ...]
	if len(reps) == 1 {
		return forceReadableList(w, reps[0])
	}
	return forceReadableList(w, &reps)
}

// 表格渲染
type TableRender struct{}

func (tr *TableRender) Write(w io.Writer, reps ...*Report) error {
	for _, r := range reps {
		if _, err := io.WriteString(w, r.Table()); err != nil {
			return err
		}
	}
	return nil
}

// YAML 內層方法
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}

	// 沒有子 sequence 的 sequence 是最內層 => flow style
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
		return

	case yaml.SequenceNode:
		hasChild := false
		for _, c := range n.Content {
			if c != nil && (c.Kind == yaml.SequenceNode || c.Kind == yaml.MappingNode) {
				hasChild = true
				break
			}
		}
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
		if !hasChild {
			n.Style = yaml.FlowStyle
		}
		return

	default:
		return
	}
}
