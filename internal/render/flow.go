// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tyler-sommer/stick"

	"github.com/malpone/report-geocom/internal/markup"
	"github.com/malpone/report-geocom/internal/ooxml"
	"github.com/malpone/report-geocom/pkg/types"
)

// Template variables available to flow templates.
const (
	varTitle    = "titolo_report"
	varSubtitle = "sottotitolo_report"
	varDate     = "data_odierna"
	varSections = "lista_sezioni"
	varHeading  = "titolo"
	varBody     = "testo"
)

const documentPart = "word/document.xml"

// flowPart matches the WordprocessingML parts that may carry template tags.
var flowPart = regexp.MustCompile(`^word/(document|header\d*|footer\d*)\.xml$`)

var flowVars = map[string]bool{
	varTitle:    true,
	varSubtitle: true,
	varDate:     true,
	varSections: true,
}

// Flow fills the .docx template with doc and returns the document bytes.
func Flow(doc types.ReportDocument, tmpl Template) ([]byte, error) {
	pkg, err := tmpl.open()
	if err != nil {
		return nil, err
	}
	if !pkg.Has(documentPart) {
		return nil, &RenderError{Template: tmpl.Path, Reason: "missing " + documentPart}
	}

	env := stick.New(nil)
	vars := flowContext(doc)
	for _, name := range pkg.Names() {
		if !flowPart.MatchString(name) {
			continue
		}
		data, _ := pkg.Part(name)
		src := prepareDocx(string(data))
		if unknown := unknownNames(src, flowVars); len(unknown) > 0 {
			return nil, &RenderError{Template: tmpl.Path, Reason: name, Err: unknownNamesError(unknown)}
		}

		var out strings.Builder
		if err := env.Execute(src, &out, vars); err != nil {
			return nil, &RenderError{Template: tmpl.Path, Reason: name, Err: err}
		}
		pkg.SetPart(name, []byte(out.String()))
	}

	data, err := pkg.Bytes()
	if err != nil {
		return nil, &RenderError{Template: tmpl.Path, Reason: "writing package", Err: err}
	}
	return data, nil
}

// flowContext builds the template variables. Plain values are escaped;
// section bodies are WordprocessingML run fragments.
func flowContext(doc types.ReportDocument) map[string]stick.Value {
	sections := make([]map[string]stick.Value, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		sections = append(sections, map[string]stick.Value{
			varHeading: ooxml.Escape(s.Heading),
			varBody:    richRuns(s.Body),
		})
	}
	return map[string]stick.Value{
		varTitle:    ooxml.Escape(doc.Title),
		varSubtitle: ooxml.Escape(doc.Subtitle),
		varDate:     ooxml.Escape(doc.GeneratedDate),
		varSections: sections,
	}
}

// richRuns renders body as a sequence of runs. The fragment closes the run
// holding the tag and reopens an empty one, so it can be printed in place of
// any {{ }} tag inside a <w:t>. Line breaks become <w:br/>.
func richRuns(body string) string {
	if body == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("</w:t></w:r>")
	for i, line := range strings.Split(body, "\n") {
		if i > 0 {
			b.WriteString("<w:r><w:br/></w:r>")
		}
		for _, run := range markup.Parse(strings.TrimRight(line, "\r")) {
			writeWordRun(&b, run)
		}
	}
	b.WriteString(`<w:r><w:t xml:space="preserve">`)
	return b.String()
}

func writeWordRun(b *strings.Builder, run markup.Run) {
	b.WriteString("<w:r>")
	if run.Emphasis != markup.None {
		b.WriteString("<w:rPr>")
		if run.Emphasis.IsBold() {
			b.WriteString("<w:b/>")
		}
		if run.Emphasis.IsItalic() {
			b.WriteString("<w:i/>")
		}
		b.WriteString("</w:rPr>")
	}
	fmt.Fprintf(b, `<w:t xml:space="preserve">%s</w:t></w:r>`, ooxml.Escape(run.Text))
}
