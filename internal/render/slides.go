// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/malpone/report-geocom/internal/markup"
	"github.com/malpone/report-geocom/internal/ooxml"
	"github.com/malpone/report-geocom/pkg/types"
)

const (
	defaultPresentationPart = "ppt/presentation.xml"
	slideContentType        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	nsRelationships         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	// Slide ids below 256 are reserved.
	firstSlideID = 256

	coverLayout   = 0
	contentLayout = 1

	// bodyIdx is the placeholder index of the secondary text frame: the
	// subtitle on a title layout, the body on a content layout.
	bodyIdx = 1
)

// Banner geometry in EMU, along the bottom edge of a 4:3 slide.
const (
	bannerX  = 457200
	bannerY  = 6172200
	bannerCX = 8229600
	bannerCY = 369332
)

// Placeholder types that belong to the master chrome and are not copied onto
// generated slides.
var chromeTypes = map[string]bool{"dt": true, "ftr": true, "sldNum": true}

var (
	slidePartName = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	slideIDAttr   = regexp.MustCompile(`<p:sldId\b[^>]*?\sid="(\d+)"`)
)

// SlidesOptions configures Slides.
type SlidesOptions struct {
	// Banner is written in a text box on every content slide. Empty disables it.
	Banner string

	Logger *slog.Logger
}

// Slides appends a cover slide and one slide per section to the .pptx
// template and returns the presentation bytes. Slides already present in
// the template are kept ahead of the generated ones.
func Slides(doc types.ReportDocument, tmpl Template, opts SlidesOptions) ([]byte, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	pkg, err := tmpl.open()
	if err != nil {
		return nil, err
	}
	d, err := openDeck(pkg, log)
	if err != nil {
		return nil, &RenderError{Template: tmpl.Path, Reason: "reading presentation", Err: err}
	}

	cover := d.newSlide(coverLayout)
	if ph, ok := cover.Title(); ok {
		ph.setText(doc.Title)
	} else {
		log.Debug("cover layout has no title placeholder")
	}
	if ph, ok := cover.Placeholder(bodyIdx); ok {
		ph.setText(doc.Subtitle + "\n" + doc.GeneratedDate)
	} else {
		log.Debug("cover layout has no subtitle placeholder")
	}
	if err := d.add(cover); err != nil {
		return nil, &RenderError{Template: tmpl.Path, Reason: "adding cover slide", Err: err}
	}

	layout := contentLayout
	if len(d.layouts) <= contentLayout {
		layout = coverLayout
	}
	for i, section := range doc.Sections {
		s := d.newSlide(layout)
		if ph, ok := s.Title(); ok {
			ph.setText(section.Heading)
		} else {
			log.Debug("content layout has no title placeholder", "section", i)
		}
		if ph, ok := s.Placeholder(bodyIdx); ok {
			ph.setBullets(section.Body)
		} else {
			log.Debug("content layout has no body placeholder", "section", i)
		}
		s.banner = opts.Banner
		if err := d.add(s); err != nil {
			return nil, &RenderError{Template: tmpl.Path, Reason: fmt.Sprintf("adding slide for section %d", i), Err: err}
		}
	}

	if err := d.finish(); err != nil {
		return nil, &RenderError{Template: tmpl.Path, Reason: "updating presentation", Err: err}
	}
	data, err := pkg.Bytes()
	if err != nil {
		return nil, &RenderError{Template: tmpl.Path, Reason: "writing package", Err: err}
	}
	return data, nil
}

// --- package structure ---

type relRef struct {
	RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type presentationXML struct {
	Masters []relRef `xml:"sldMasterIdLst>sldMasterId"`
}

type masterXML struct {
	Layouts []relRef `xml:"sldLayoutIdLst>sldLayoutId"`
}

type layoutXML struct {
	Shapes []shapeXML `xml:"cSld>spTree>sp"`
}

type shapeXML struct {
	CNvPr struct {
		Name string `xml:"name,attr"`
	} `xml:"nvSpPr>cNvPr"`
	Ph *phXML `xml:"nvSpPr>nvPr>ph"`
}

type phXML struct {
	Type string `xml:"type,attr"`
	Idx  string `xml:"idx,attr"`
}

// deck accumulates generated slides for one presentation.
type deck struct {
	pkg          *ooxml.Package
	log          *slog.Logger
	presentation string
	layouts      []string
	nextPart     int
	nextID       int
	entries      []string
}

func openDeck(pkg *ooxml.Package, log *slog.Logger) (*deck, error) {
	presPart := presentationPart(pkg)
	presData, ok := pkg.Part(presPart)
	if !ok {
		return nil, fmt.Errorf("missing %s", presPart)
	}
	var pres presentationXML
	if err := xml.Unmarshal(presData, &pres); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", presPart, err)
	}
	if len(pres.Masters) == 0 {
		return nil, fmt.Errorf("%s has no slide master", presPart)
	}

	masterPart, err := relTarget(pkg, presPart, pres.Masters[0].RID)
	if err != nil {
		return nil, err
	}
	masterData, ok := pkg.Part(masterPart)
	if !ok {
		return nil, fmt.Errorf("missing %s", masterPart)
	}
	var master masterXML
	if err := xml.Unmarshal(masterData, &master); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", masterPart, err)
	}

	d := &deck{pkg: pkg, log: log, presentation: presPart, nextPart: 1, nextID: firstSlideID}
	for _, ref := range master.Layouts {
		part, err := relTarget(pkg, masterPart, ref.RID)
		if err != nil {
			return nil, err
		}
		d.layouts = append(d.layouts, part)
	}
	if len(d.layouts) == 0 {
		return nil, fmt.Errorf("%s has no slide layouts", masterPart)
	}

	for _, name := range pkg.Names() {
		if m := slidePartName.FindStringSubmatch(name); m != nil {
			if n, _ := strconv.Atoi(m[1]); n >= d.nextPart {
				d.nextPart = n + 1
			}
		}
	}
	for _, m := range slideIDAttr.FindAllStringSubmatch(string(presData), -1) {
		if n, _ := strconv.Atoi(m[1]); n >= d.nextID {
			d.nextID = n + 1
		}
	}
	return d, nil
}

// presentationPart locates the main part through the package relationships.
func presentationPart(pkg *ooxml.Package) string {
	rels, err := pkg.Rels("")
	if err == nil {
		for _, rel := range rels.Rels {
			if rel.Type == ooxml.RelOfficeDocument {
				return ooxml.ResolveTarget("", rel.Target)
			}
		}
	}
	return defaultPresentationPart
}

func relTarget(pkg *ooxml.Package, source, id string) (string, error) {
	rels, err := pkg.Rels(source)
	if err != nil {
		return "", err
	}
	rel, ok := rels.ByID(id)
	if !ok {
		return "", fmt.Errorf("%s: relationship %s not found", source, id)
	}
	return ooxml.ResolveTarget(source, rel.Target), nil
}

// newSlide prepares a slide whose placeholders are cloned from the layout
// at index i. A layout that cannot be parsed yields a slide without
// placeholders.
func (d *deck) newSlide(i int) *slide {
	i = min(i, len(d.layouts)-1)
	s := &slide{layout: d.layouts[i]}
	data, ok := d.pkg.Part(s.layout)
	if !ok {
		d.log.Warn("slide layout missing", "layout", s.layout)
		return s
	}
	var layout layoutXML
	if err := xml.Unmarshal(data, &layout); err != nil {
		d.log.Warn("slide layout unreadable", "layout", s.layout, "error", err)
		return s
	}
	for _, sh := range layout.Shapes {
		if sh.Ph == nil || chromeTypes[sh.Ph.Type] {
			continue
		}
		s.placeholders = append(s.placeholders, &placeholder{
			name:  sh.CNvPr.Name,
			kind:  sh.Ph.Type,
			idx:   sh.Ph.Idx,
			paras: []string{"<a:p/>"},
		})
	}
	return s
}

// add writes the slide part and registers it with the presentation.
func (d *deck) add(s *slide) error {
	part := fmt.Sprintf("ppt/slides/slide%d.xml", d.nextPart)
	d.nextPart++
	d.pkg.SetPart(part, []byte(s.xml()))

	if _, err := d.pkg.AddRelationship(part, ooxml.RelSlideLayout, s.layout); err != nil {
		return err
	}
	rid, err := d.pkg.AddRelationship(d.presentation, ooxml.RelSlide, part)
	if err != nil {
		return err
	}
	if err := d.pkg.AddOverride(part, slideContentType); err != nil {
		return err
	}
	d.entries = append(d.entries, fmt.Sprintf(`<p:sldId id="%d" r:id="%s"/>`, d.nextID, rid))
	d.nextID++
	return nil
}

// finish adds the generated slides to the presentation's slide list.
func (d *deck) finish() error {
	data, _ := d.pkg.Part(d.presentation)
	src := string(data)
	entries := strings.Join(d.entries, "")

	switch {
	case strings.Contains(src, "</p:sldIdLst>"):
		src = strings.Replace(src, "</p:sldIdLst>", entries+"</p:sldIdLst>", 1)
	case strings.Contains(src, "<p:sldIdLst/>"):
		src = strings.Replace(src, "<p:sldIdLst/>", "<p:sldIdLst>"+entries+"</p:sldIdLst>", 1)
	default:
		at := -1
		for _, closing := range []string{"</p:sldMasterIdLst>", "</p:notesMasterIdLst>", "</p:handoutMasterIdLst>"} {
			if i := strings.Index(src, closing); i >= 0 {
				at = max(at, i+len(closing))
			}
		}
		if at < 0 {
			return fmt.Errorf("%s: no slide master list", d.presentation)
		}
		src = src[:at] + "<p:sldIdLst>" + entries + "</p:sldIdLst>" + src[at:]
	}
	d.pkg.SetPart(d.presentation, []byte(src))
	return nil
}

// --- slides and placeholders ---

type slide struct {
	layout       string
	placeholders []*placeholder
	banner       string
}

// placeholder is a text frame cloned from a layout. Its geometry and
// formatting are inherited from the layout.
type placeholder struct {
	name  string
	kind  string
	idx   string
	paras []string
}

// Title returns the slide's title placeholder.
func (s *slide) Title() (*placeholder, bool) {
	for _, ph := range s.placeholders {
		if ph.kind == "title" || ph.kind == "ctrTitle" {
			return ph, true
		}
	}
	return nil, false
}

// Placeholder returns the placeholder with the given index.
func (s *slide) Placeholder(idx int) (*placeholder, bool) {
	want := strconv.Itoa(idx)
	for _, ph := range s.placeholders {
		if ph.idx == want {
			return ph, true
		}
	}
	return nil, false
}

// setText replaces the content with one unstyled paragraph per line.
func (ph *placeholder) setText(text string) {
	ph.paras = ph.paras[:0]
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			ph.paras = append(ph.paras, "<a:p/>")
			continue
		}
		ph.paras = append(ph.paras, "<a:p><a:r><a:t>"+ooxml.Escape(line)+"</a:t></a:r></a:p>")
	}
}

// setBullets replaces the content with one top-level paragraph per
// non-blank line of body, emphasis markup turned into styled runs.
func (ph *placeholder) setBullets(body string) {
	ph.paras = ph.paras[:0]
	for _, line := range bulletLines(body) {
		var b strings.Builder
		b.WriteString(`<a:p><a:pPr lvl="0"/>`)
		for _, run := range markup.Parse(line) {
			writeSlideRun(&b, run)
		}
		b.WriteString("</a:p>")
		ph.paras = append(ph.paras, b.String())
	}
	if len(ph.paras) == 0 {
		ph.paras = append(ph.paras, "<a:p/>")
	}
}

// bulletLines splits body into its non-blank lines, with a leading bullet
// marker removed.
func bulletLines(body string) []string {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		line = trimBulletMarker(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// trimBulletMarker removes one leading "•" or "-" when whitespace or the end
// of the line follows it. "-5%" and "-->" are content and stay.
func trimBulletMarker(line string) string {
	for _, marker := range []string{"•", "-"} {
		rest, ok := strings.CutPrefix(line, marker)
		if !ok {
			continue
		}
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			return strings.TrimSpace(rest)
		}
	}
	return line
}

func writeSlideRun(b *strings.Builder, run markup.Run) {
	b.WriteString("<a:r>")
	switch {
	case run.Emphasis.IsBold() && run.Emphasis.IsItalic():
		b.WriteString(`<a:rPr b="1" i="1"/>`)
	case run.Emphasis.IsBold():
		b.WriteString(`<a:rPr b="1"/>`)
	case run.Emphasis.IsItalic():
		b.WriteString(`<a:rPr i="1"/>`)
	}
	b.WriteString("<a:t>" + ooxml.Escape(run.Text) + "</a:t></a:r>")
}

func (s *slide) xml() string {
	var b strings.Builder
	b.WriteString(ooxml.XMLHeader)
	b.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:r="` + nsRelationships + `" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)

	id := 2
	for _, ph := range s.placeholders {
		b.WriteString("<p:sp><p:nvSpPr>")
		fmt.Fprintf(&b, `<p:cNvPr id="%d" name="%s"/>`, id, ooxml.Escape(ph.name))
		b.WriteString(`<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph`)
		if ph.kind != "" {
			fmt.Fprintf(&b, ` type="%s"`, ooxml.Escape(ph.kind))
		}
		if ph.idx != "" {
			fmt.Fprintf(&b, ` idx="%s"`, ooxml.Escape(ph.idx))
		}
		b.WriteString(`/></p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/>`)
		b.WriteString(strings.Join(ph.paras, ""))
		b.WriteString("</p:txBody></p:sp>")
		id++
	}
	if s.banner != "" {
		fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Banner"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id)
		fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, bannerX, bannerY, bannerCX, bannerCY)
		b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`)
		b.WriteString(`<p:txBody><a:bodyPr wrap="square"><a:spAutoFit/></a:bodyPr><a:lstStyle/>`)
		b.WriteString(`<a:p><a:r><a:rPr sz="1200"/><a:t>` + ooxml.Escape(s.banner) + `</a:t></a:r></a:p>`)
		b.WriteString("</p:txBody></p:sp>")
	}
	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String()
}
