// Package export renders task snapshots as downloadable documents.
package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/elpatron68/focustasks/internal/tasks"
)

type Format string

const (
	PDF      Format = "pdf"
	Markdown Format = "md"
)

func (f Format) ContentType() string {
	switch f {
	case PDF:
		return "application/pdf"
	case Markdown:
		return "text/markdown; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Exporter renders one snapshot. Now is overridable for stable output in tests.
type Exporter struct {
	Title string
	Now   func() time.Time
}

func New(title string) *Exporter {
	if title == "" {
		title = "Tasks"
	}
	return &Exporter{Title: title, Now: time.Now}
}

func (e *Exporter) Render(format Format, list []tasks.Task) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case PDF:
		err = e.WritePDF(&buf, list)
	case Markdown:
		err = e.WriteMarkdown(&buf, list)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// plain turns a stored (escaped) title back into display text.
func plain(title string) string { return html.UnescapeString(title) }

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"#", `\#`, "<", `\<`, ">", `\>`, "|", `\|`, "~", `\~`, "!", `\!`,
)

// markdownText folds a title onto one line and escapes characters that
// would start Markdown syntax inside a list item.
func markdownText(title string) string {
	return mdEscaper.Replace(strings.Join(strings.Fields(plain(title)), " "))
}

func (e *Exporter) WriteMarkdown(w io.Writer, list []tasks.Task) error {
	active, done := tasks.Partition(list)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", e.Title)
	fmt.Fprintf(&b, "_%s_ (exported %s)\n\n", tasks.Summarize(list), e.Now().Format("2006-01-02 15:04"))
	section := func(name, box string, items []tasks.Task) {
		fmt.Fprintf(&b, "## %s\n\n", name)
		if len(items) == 0 {
			b.WriteString("_none_\n\n")
			return
		}
		for _, t := range items {
			fmt.Fprintf(&b, "- [%s] %s\n", box, markdownText(t.Title))
		}
		b.WriteString("\n")
	}
	section("Active", " ", active)
	section("Done", "x", done)
	_, err := io.WriteString(w, b.String())
	return err
}

func (e *Exporter) WritePDF(w io.Writer, list []tasks.Task) error {
	active, done := tasks.Partition(list)
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(e.Title, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(e.Title))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(tasks.Summarize(list).String()+" - "+e.Now().Format("2006-01-02 15:04")))
	pdf.Ln(10)

	section := func(name, mark string, items []tasks.Task) {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, tr(name))
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 11)
		if len(items) == 0 {
			pdf.MultiCell(0, 6, "-", "0", "L", false)
		}
		for _, t := range items {
			pdf.MultiCell(0, 6, tr(mark+" "+plain(t.Title)), "0", "L", false)
		}
		pdf.Ln(4)
	}
	section("Active", "[ ]", active)
	section("Done", "[x]", done)
	return pdf.Output(w)
}
