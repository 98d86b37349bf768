// Package views holds the server-rendered HTML pages.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// SampleLink is one entry of the sample dataset list.
type SampleLink struct {
	Key  string
	Name string
}

// IndexData is everything the index page shows.
type IndexData struct {
	Mode    string // "backend" or "local"
	Target  string // backend URL or local store description
	Samples []SampleLink
}

const indexHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>AutoPrep</title>
</head>
<body>
<header><h1>AutoPrep</h1><p>Upload a CSV, review its quality, clean it and export the result.</p></header>
<main>
`

const indexEndpoints = `<section>
<h2>API</h2>
<ul>
<li><code>POST /api/profile</code> profile a dataset</li>
<li><code>POST /api/clean</code> clean a dataset</li>
<li><code>POST /api/export/{csv|xlsx|pipeline|explanation}</code> download an artifact</li>
<li><code>GET /api/projects</code> saved projects</li>
<li><code>GET /api/health</code> service health</li>
</ul>
</section>
`

const indexFoot = `</main>
</body>
</html>
`

// Index renders the landing page.
func Index(d IndexData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, indexHead); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "<section><h2>Storage</h2><p>Mode: <strong>%s</strong> (%s)</p></section>\n",
			templ.EscapeString(d.Mode), templ.EscapeString(d.Target)); err != nil {
			return err
		}

		if err := sampleList(d.Samples).Render(ctx, w); err != nil {
			return err
		}

		if _, err := io.WriteString(w, indexEndpoints); err != nil {
			return err
		}
		_, err := io.WriteString(w, indexFoot)
		return err
	})
}

func sampleList(samples []SampleLink) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<section><h2>Sample datasets</h2>\n<ul>\n"); err != nil {
			return err
		}
		for _, s := range samples {
			href := templ.URL("/api/samples/" + s.Key)
			if _, err := fmt.Fprintf(w, "<li><a href=\"%s\">%s</a></li>\n",
				templ.EscapeString(string(href)), templ.EscapeString(s.Name)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>\n</section>\n")
		return err
	})
}
