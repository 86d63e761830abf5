package summary

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/zhangyu1818/lighthouse-ci/internal/compare"
)

const (
	summaryTemplateNameConstant = "summary"
	scoreValueTemplateConstant  = "%.2f"

	renderFailureTemplateConstant = "unable to render summary document: %w"
)

const summaryTemplateConstant = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Audit summary {{.Timestamp}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
h1 { font-size: 1.4rem; }
h2 { font-size: 1.2rem; margin-top: 2rem; }
h3 { font-size: 1rem; margin-bottom: 0.25rem; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.8rem; text-align: left; }
th { background: #f3f3f3; }
</style>
</head>
<body>
<h1>Audit summary {{.Timestamp}}</h1>
{{- range .Regions}}
<h2>{{.Name}}</h2>
{{- range .Pages}}
<h3>{{.PageURL}} ({{.Device}})</h3>
<table>
<tr><th>Category</th><th>Previous Score</th><th>Current Score</th><th>Difference</th></tr>
{{- range .Rows}}
<tr><td>{{.CategoryTitle}}</td><td>{{.PreviousScore}}</td><td>{{.CurrentScore}}</td><td>{{if .DeltaIsGain}}+{{end}}{{.Delta}}</td></tr>
{{- end}}
</table>
{{- end}}
{{- end}}
</body>
</html>
`

// summaryRowView presents one category comparison. The plus sign of a
// positive difference lives in the template text, keyed off DeltaIsGain;
// interpolating it would entity-escape the sign.
type summaryRowView struct {
	CategoryTitle string
	PreviousScore string
	CurrentScore  string
	Delta         string
	DeltaIsGain   bool
}

type summaryPageView struct {
	PageURL string
	Device  string
	Rows    []summaryRowView
}

type summaryRegionView struct {
	Name  string
	Pages []summaryPageView
}

type summaryDocumentView struct {
	Timestamp string
	Regions   []summaryRegionView
}

// Renderer produces the aggregate summary page of one invocation.
type Renderer struct {
	documentTemplate *template.Template
}

// NewRenderer constructs a Renderer with the built-in document template.
func NewRenderer() (*Renderer, error) {
	documentTemplate, parseError := template.New(summaryTemplateNameConstant).Parse(summaryTemplateConstant)
	if parseError != nil {
		return nil, fmt.Errorf(renderFailureTemplateConstant, parseError)
	}
	return &Renderer{documentTemplate: documentTemplate}, nil
}

// Render produces the summary document for the recorded comparisons.
//
// Regions appear in sorted order; within a region, pages keep their recorded
// order. Positive differences carry an explicit plus sign.
func (renderer *Renderer) Render(timestamp string, runSet *compare.RunSet) ([]byte, error) {
	documentView := summaryDocumentView{Timestamp: timestamp}
	for _, regionName := range runSet.RegionNames() {
		regionView := summaryRegionView{Name: regionName}
		for _, pageComparison := range runSet.Comparisons(regionName) {
			pageView := summaryPageView{PageURL: pageComparison.PageURL, Device: string(pageComparison.Device)}
			for _, scoreDifference := range pageComparison.Differences {
				pageView.Rows = append(pageView.Rows, summaryRowView{
					CategoryTitle: scoreDifference.CategoryTitle,
					PreviousScore: fmt.Sprintf(scoreValueTemplateConstant, scoreDifference.PreviousScore),
					CurrentScore:  fmt.Sprintf(scoreValueTemplateConstant, scoreDifference.CurrentScore),
					Delta:         fmt.Sprintf(scoreValueTemplateConstant, scoreDifference.Delta),
					DeltaIsGain:   scoreDifference.Delta > 0,
				})
			}
			regionView.Pages = append(regionView.Pages, pageView)
		}
		documentView.Regions = append(documentView.Regions, regionView)
	}

	var renderedDocument bytes.Buffer
	if executeError := renderer.documentTemplate.Execute(&renderedDocument, documentView); executeError != nil {
		return nil, fmt.Errorf(renderFailureTemplateConstant, executeError)
	}
	return renderedDocument.Bytes(), nil
}
