package report

import (
	"embed"
	"html/template"
	"io"

	"github.com/carbocation/pfx"

	"github.com/carbocation/serovar/compileinfo"
)

//go:embed templates/results.html.tmpl
var templateFS embed.FS

var resultsTemplate = template.Must(template.ParseFS(templateFS, "templates/results.html.tmpl"))

// Page is the data behind the HTML results page.
type Page struct {
	Title    string
	Columns  []string
	Rows     []Row
	Failures []Failure
	Build    string
}

// WriteHTML renders rows, and any failed samples, as a standalone HTML page.
func WriteHTML(w io.Writer, title string, rows []Row, failures []Failure) error {
	if title == "" {
		title = "SalmonellaTypeFinder Results"
	}

	page := Page{
		Title:    title,
		Columns:  Columns,
		Rows:     rows,
		Failures: failures,
		Build:    compileinfo.Get().Short(),
	}

	if err := resultsTemplate.Execute(w, page); err != nil {
		return pfx.Err(err)
	}

	return nil
}
