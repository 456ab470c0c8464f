package chart

import (
	"fmt"
	"html/template"
	"io"
)

// Page is a static dashboard page.
type Page struct {
	Title    string
	Subtitle string
	Sections []Section
}

// Section groups charts under one heading.
type Section struct {
	Heading string
	Note    string
	Charts  []PageChart
}

// PageChart is one embedded spec.
type PageChart struct {
	ID   string
	Spec *Spec
}

type embed struct {
	ID   string
	JSON template.JS
}

type section struct {
	Heading string
	Note    string
	Charts  []embed
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.jsdelivr.net/npm/vega@5"></script>
<script src="https://cdn.jsdelivr.net/npm/vega-lite@5"></script>
<script src="https://cdn.jsdelivr.net/npm/vega-embed@6"></script>
<style>
body { font-family: sans-serif; margin: 2rem; }
.chart { margin-bottom: 2rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{with .Subtitle}}<p>{{.}}</p>{{end}}
{{range .Sections}}
<h2>{{.Heading}}</h2>
{{with .Note}}<p>{{.}}</p>{{end}}
{{range .Charts}}<div class="chart" id="{{.ID}}"></div>
<script>vegaEmbed("#" + {{.ID}}, {{.JSON}}, {actions: false});</script>
{{end}}{{end}}
</body>
</html>
`))

// WriteHTML renders p as a standalone page that embeds every chart with
// vega-embed.
func WriteHTML(w io.Writer, p Page) error {
	data := struct {
		Title    string
		Subtitle string
		Sections []section
	}{Title: p.Title, Subtitle: p.Subtitle}

	for _, s := range p.Sections {
		out := section{Heading: s.Heading, Note: s.Note}
		for _, c := range s.Charts {
			b, err := c.Spec.JSON()
			if err != nil {
				return fmt.Errorf("chart %s: %w", c.ID, err)
			}
			out.Charts = append(out.Charts, embed{ID: c.ID, JSON: template.JS(b)})
		}
		data.Sections = append(data.Sections, out)
	}
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
