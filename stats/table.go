package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/message"
)

// Table 以文字表格輸出報告
func (r *Report) Table() string {
	var sb strings.Builder
	if r.Summary != nil {
		k, m := r.fmtSummary()
		sb.WriteString(fmtTable(r.Title, k, m))
	}
	if r.Fit != nil {
		k, m := r.fmtFit()
		sb.WriteString(fmtTable("KS Fit", k, m))
	}
	if r.Hist != nil && len(r.Hist.Bucket) > 0 {
		k, m := r.fmtHist()
		sb.WriteString(fmtTable("Histogram", k, m))
	}
	return sb.String()
}

// FormatDuration 輸出耗時與每秒取樣數
func FormatDuration(w io.Writer, d time.Duration, draws int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	dps := int(float64(draws) / sec)
	if sec < 60.0 {
		p.Fprintf(w, "used: %.2f seconds\ndps : %d draws/sec\n", sec, dps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Fprintf(w, "used: %dm %ds\ndps : %d draws/sec\n", m, s, dps)
		return
	}
	p.Fprintf(w, "used: %dh:%dm:%ds\ndps : %d draws/sec\n", h, m, s, dps)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func (r *Report) fmtSummary() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	s := r.Summary
	basic := map[string]string{
		"Samples":      p.Sprintf("%d", s.N),
		"Mean":         p.Sprintf("%.4f", s.Mean),
		"Mean 95% CI":  p.Sprintf("[%.4f,%.4f]", s.MeanCI.Lo, s.MeanCI.Hi),
		"STD":          p.Sprintf("%.4f", s.Std),
		"Min":          p.Sprintf("%.4f", s.Min),
		"Q25":          p.Sprintf("%.4f", s.Q25),
		"Median":       p.Sprintf("%.4f", s.Median),
		"Median 95%CI": p.Sprintf("[%.4f,%.4f]", s.MedianCI.Lo, s.MedianCI.Hi),
		"Q75":          p.Sprintf("%.4f", s.Q75),
		"Max":          p.Sprintf("%.4f", s.Max),
	}
	keys := []string{"Samples", "Mean", "Mean 95% CI", "STD", "Min", "Q25", "Median", "Median 95%CI", "Q75", "Max"}
	if r.RunID != "" {
		basic["Run ID"] = r.RunID
		keys = append([]string{"Run ID"}, keys...)
	}
	return keys, basic
}

func (r *Report) fmtFit() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	f := r.Fit
	msg := map[string]string{
		"Reference": f.Dist,
		"D":         p.Sprintf("%.5f", f.D),
		"Critical":  p.Sprintf("%.5f", f.Critical),
		"Pass":      fmt.Sprintf("%t", f.Pass),
		"Ref Mean":  optFloat(p, f.RefMean),
		"Ref Var":   optFloat(p, f.RefVar),
	}
	return []string{"Reference", "D", "Critical", "Pass", "Ref Mean", "Ref Var"}, msg
}

func (r *Report) fmtHist() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	h := r.Hist
	msg := make(map[string]string, len(h.Bucket))
	for i, b := range h.Bucket {
		msg[b] = p.Sprintf("%d (%.2f %%)", h.Collect[i], 100*h.Dist[i])
	}
	return h.Bucket, msg
}

func optFloat(p *message.Printer, v *float64) string {
	if v == nil {
		return "undefined"
	}
	return p.Sprintf("%.4f", *v)
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := runewidth.StringWidth(title)
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
