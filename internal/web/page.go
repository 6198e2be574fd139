package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/csvcut/internal/transform"
)

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>csvcut</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
label { display: block; margin-top: .75rem; }
input[type=text] { width: 100%; }
table { border-collapse: collapse; margin-top: 1.5rem; }
td, th { border-bottom: 1px solid #ddd; padding: .25rem .5rem; text-align: left; }
</style>
</head>
<body>
<h1>csvcut</h1>
<p>Select and transform CSV columns. Lists are comma separated; leave columns empty to keep all of them.</p>
<form method="post" action="/api/process" enctype="multipart/form-data">
<label>CSV file <input type="file" name="file" accept=".csv,text/csv" required></label>
<label>Columns <input type="text" name="columns" placeholder="id,name,email"></label>
<label>Uppercase <input type="text" name="uppercase"></label>
<label>Lowercase <input type="text" name="lowercase"></label>
<label>Strip <input type="text" name="strip"></label>
<label>Transform <input type="text" name="transform" placeholder="id=prefix:USER-"></label>
`

// IndexPage renders the upload form and the table of registered transformers.
func IndexPage(encoding string, defs []transform.Definition) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(pageHead)
		b.WriteString(`<label>Encoding <input type="text" name="encoding" value="`)
		b.WriteString(templ.EscapeString(encoding))
		b.WriteString("\"></label>\n<p><button type=\"submit\">Process</button></p>\n</form>\n")

		b.WriteString("<table>\n<tr><th>Transformer</th><th>Usage</th><th>Description</th></tr>\n")
		for _, def := range defs {
			b.WriteString("<tr><td>")
			b.WriteString(templ.EscapeString(def.Name))
			b.WriteString("</td><td><code>")
			b.WriteString(templ.EscapeString(usage(def)))
			b.WriteString("</code></td><td>")
			b.WriteString(templ.EscapeString(def.Description))
			b.WriteString("</td></tr>\n")
		}
		b.WriteString("</table>\n</body>\n</html>\n")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func usage(def transform.Definition) string {
	if def.Usage == "" {
		return "COLUMN=" + def.Name
	}
	return "COLUMN=" + def.Name + ":" + def.Usage
}
