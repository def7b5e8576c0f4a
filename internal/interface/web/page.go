package web

import (
	"embed"
	"html/template"
	"strconv"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/internal/interface/web/presenter"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("index.html").
		Funcs(template.FuncMap{
			"summaryLabel": func(l presenter.Labels, k presenter.SummaryKind) string { return l.SummaryLabel(k) },
			"css":          func(s string) template.CSS { return template.CSS(s) },
			"id":           func(n int64) string { return strconv.FormatInt(n, 10) },
		}).
		ParseFS(templateFS, "templates/index.html"),
)

type pageData struct {
	Labels   presenter.Labels
	Table    presenter.Table
	Subjects []journal.Subject
	Filter   presenter.Filter
	Tiers    []tierOption
	Error    string
}

type tierOption struct {
	Value   string
	Label   string
	Checked bool
}

func tierOptions(l presenter.Labels, selected journal.Tier) []tierOption {
	label := map[journal.Tier]string{
		journal.TierHigh:   l.TierHigh,
		journal.TierMedium: l.TierMedium,
		journal.TierLow:    l.TierLow,
	}
	opts := make([]tierOption, 0, len(journal.Tiers))
	for _, t := range journal.Tiers {
		opts = append(opts, tierOption{Value: string(t), Label: label[t], Checked: t == selected})
	}
	return opts
}
