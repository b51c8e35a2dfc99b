// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malpone/report-geocom/internal/ooxml"
	"github.com/malpone/report-geocom/pkg/types"
)

func starterSlides(t *testing.T) Template {
	t.Helper()
	data, err := StarterSlidesTemplate()
	require.NoError(t, err)
	return Template{Path: "starter.pptx", Data: data}
}

func TestSlidesOneCoverPlusOnePerSection(t *testing.T) {
	out, err := Slides(sampleDoc(), starterSlides(t), SlidesOptions{})
	require.NoError(t, err)

	pkg, err := ooxml.Read(out)
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("ppt/slides/slide%d.xml", i)
		content, ok := pkg.Part(name)
		require.True(t, ok, name)
		assertWellFormed(t, string(content))
	}
	assert.False(t, pkg.Has("ppt/slides/slide4.xml"))

	pres := readPart(t, out, "ppt/presentation.xml")
	assertWellFormed(t, pres)
	assert.Equal(t, 3, strings.Count(pres, "<p:sldId "))
	assert.Contains(t, pres, `<p:sldIdLst><p:sldId id="256" r:id="rId3"/><p:sldId id="257" r:id="rId4"/><p:sldId id="258" r:id="rId5"/></p:sldIdLst><p:sldSz`)

	rels := readPart(t, out, "ppt/_rels/presentation.xml.rels")
	assert.Contains(t, rels, `Target="slides/slide1.xml"`)
	assert.Contains(t, rels, `Target="slides/slide3.xml"`)

	ct := readPart(t, out, ooxml.ContentTypesPart)
	assert.Equal(t, 3, strings.Count(ct, slideContentType))
}

func TestSlidesCover(t *testing.T) {
	out, err := Slides(sampleDoc(), starterSlides(t), SlidesOptions{})
	require.NoError(t, err)

	cover := readPart(t, out, "ppt/slides/slide1.xml")
	assert.Contains(t, cover, `<p:ph type="ctrTitle"/>`)
	assert.Contains(t, cover, `<a:p><a:r><a:t>Q3 &amp; R&amp;D</a:t></a:r></a:p>`)
	assert.Contains(t, cover, `<p:ph type="subTitle" idx="1"/>`)
	assert.Contains(t, cover, `<a:p><a:r><a:t>Riunione</a:t></a:r></a:p><a:p><a:r><a:t>15 ottobre 2026</a:t></a:r></a:p>`)

	rels := readPart(t, out, "ppt/slides/_rels/slide1.xml.rels")
	assert.Contains(t, rels, `Target="../slideLayouts/slideLayout1.xml"`)
}

func TestSlidesContent(t *testing.T) {
	out, err := Slides(sampleDoc(), starterSlides(t), SlidesOptions{})
	require.NoError(t, err)

	first := readPart(t, out, "ppt/slides/slide2.xml")
	assert.Contains(t, first, `<a:t>Analisi **Q3**</a:t>`, "title is verbatim")
	assert.Equal(t, 2, strings.Count(first, `<a:p><a:pPr lvl="0"/>`), "blank line skipped")
	assert.Contains(t, first, `<a:p><a:pPr lvl="0"/><a:r><a:t>Primo punto</a:t></a:r></a:p>`)
	assert.Contains(t, first, `<a:p><a:pPr lvl="0"/><a:r><a:rPr b="1"/><a:t>Secondo</a:t></a:r><a:r><a:t> punto</a:t></a:r></a:p>`)
	assert.NotContains(t, first, `type="sldNum"`)
	assert.NotContains(t, first, `name="Banner"`)

	second := readPart(t, out, "ppt/slides/slide3.xml")
	assert.Contains(t, second, `<a:r><a:rPr i="1"/><a:t>rapida</a:t></a:r>`)

	rels := readPart(t, out, "ppt/slides/_rels/slide2.xml.rels")
	assert.Contains(t, rels, `Target="../slideLayouts/slideLayout2.xml"`)
}

func TestSlidesBanner(t *testing.T) {
	out, err := Slides(sampleDoc(), starterSlides(t), SlidesOptions{Banner: "Riservato & interno"})
	require.NoError(t, err)

	assert.NotContains(t, readPart(t, out, "ppt/slides/slide1.xml"), `name="Banner"`)
	for _, name := range []string{"ppt/slides/slide2.xml", "ppt/slides/slide3.xml"} {
		content := readPart(t, out, name)
		assertWellFormed(t, content)
		assert.Contains(t, content, `name="Banner"`)
		assert.Contains(t, content, `<a:off x="457200" y="6172200"/><a:ext cx="8229600" cy="369332"/>`)
		assert.Contains(t, content, `<a:t>Riservato &amp; interno</a:t>`)
	}
}

func TestSlidesNoSections(t *testing.T) {
	doc := types.ReportDocument{Title: types.DefaultTitle, Sections: []types.Section{}}
	out, err := Slides(doc, starterSlides(t), SlidesOptions{})
	require.NoError(t, err)

	pres := readPart(t, out, "ppt/presentation.xml")
	assert.Equal(t, 1, strings.Count(pres, "<p:sldId "))
}

func TestSlidesContentLayoutFallback(t *testing.T) {
	base := starterSlides(t).Data
	master := readPart(t, base, "ppt/slideMasters/slideMaster1.xml")
	master = strings.Replace(master, `<p:sldLayoutId id="2147483650" r:id="rId2"/>`, "", 1)
	data := withPart(t, base, "ppt/slideMasters/slideMaster1.xml", master)

	out, err := Slides(sampleDoc(), Template{Data: data}, SlidesOptions{})
	require.NoError(t, err)

	rels := readPart(t, out, "ppt/slides/_rels/slide2.xml.rels")
	assert.Contains(t, rels, `Target="../slideLayouts/slideLayout1.xml"`)

	content := readPart(t, out, "ppt/slides/slide2.xml")
	assert.Contains(t, content, `<a:t>Analisi **Q3**</a:t>`)
	assert.Contains(t, content, `<a:t>Primo punto</a:t>`)
}

func TestSlidesKeepsExistingSlides(t *testing.T) {
	first, err := Slides(sampleDoc(), starterSlides(t), SlidesOptions{})
	require.NoError(t, err)

	out, err := Slides(sampleDoc(), Template{Data: first}, SlidesOptions{})
	require.NoError(t, err)

	pkg, err := ooxml.Read(out)
	require.NoError(t, err)
	assert.True(t, pkg.Has("ppt/slides/slide6.xml"))
	assert.False(t, pkg.Has("ppt/slides/slide7.xml"))

	pres := readPart(t, out, "ppt/presentation.xml")
	assert.Equal(t, 6, strings.Count(pres, "<p:sldId "))
	assert.Contains(t, pres, `<p:sldId id="256" r:id="rId3"/>`)
	assert.Contains(t, pres, `<p:sldId id="261" r:id="rId8"/>`)
}

func TestSlidesDeterministic(t *testing.T) {
	tmpl := starterSlides(t)
	a, err := Slides(sampleDoc(), tmpl, SlidesOptions{Banner: "x"})
	require.NoError(t, err)
	b, err := Slides(sampleDoc(), tmpl, SlidesOptions{Banner: "x"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSlidesMissingTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template_aziendale.pptx")
	_, err := Slides(sampleDoc(), Template{Path: path}, SlidesOptions{})

	var missing *TemplateMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, path, missing.Path)
}

func TestSlidesRenderErrors(t *testing.T) {
	base := starterSlides(t).Data
	master := readPart(t, base, "ppt/slideMasters/slideMaster1.xml")
	noLayouts := strings.Replace(master,
		`<p:sldLayoutId id="2147483649" r:id="rId1"/><p:sldLayoutId id="2147483650" r:id="rId2"/>`, "", 1)
	noPresentation, err := buildPackage([]part{{ooxml.ContentTypesPart, "<Types/>"}})
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "no presentation part", data: noPresentation},
		{name: "no layouts", data: withPart(t, base, "ppt/slideMasters/slideMaster1.xml", noLayouts)},
		{name: "broken master relationship", data: withPart(t, base, "ppt/_rels/presentation.xml.rels",
			ooxml.XMLHeader+`<Relationships xmlns="`+ooxml.NSPackageRels+`"></Relationships>`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Slides(sampleDoc(), Template{Path: "t.pptx", Data: tt.data}, SlidesOptions{})
			var renderErr *RenderError
			require.ErrorAs(t, err, &renderErr)
		})
	}
}

func TestPlaceholderAccessors(t *testing.T) {
	s := &slide{placeholders: []*placeholder{
		{kind: "title"},
		{idx: "1"},
	}}

	title, ok := s.Title()
	require.True(t, ok)
	assert.Equal(t, "title", title.kind)

	body, ok := s.Placeholder(1)
	require.True(t, ok)
	assert.Equal(t, "1", body.idx)

	_, ok = s.Placeholder(2)
	assert.False(t, ok)

	_, ok = (&slide{}).Title()
	assert.False(t, ok)
}

func TestBulletLines(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "markers and blank lines", body: "• uno\r\n\n  - due  \n   \n**tre**", want: []string{"uno", "due", "**tre**"}},
		{name: "leading minus sign kept", body: "-5% di ricavi", want: []string{"-5% di ricavi"}},
		{name: "only one marker removed", body: "- -3 punti", want: []string{"-3 punti"}},
		{name: "arrow kept", body: "--> freccia", want: []string{"--> freccia"}},
		{name: "bullet glued to text kept", body: "•nota", want: []string{"•nota"}},
		{name: "bare marker dropped", body: "-\nquattro", want: []string{"quattro"}},
		{name: "empty", body: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bulletLines(tt.body))
		})
	}
}

func TestSetBulletsEmptyBody(t *testing.T) {
	ph := &placeholder{paras: []string{"<a:p/>"}}
	ph.setBullets("\n \n")
	assert.Equal(t, []string{"<a:p/>"}, ph.paras)
}
