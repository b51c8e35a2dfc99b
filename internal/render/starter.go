// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strconv"
	"strings"

	"github.com/malpone/report-geocom/internal/ooxml"
)

const (
	nsWord         = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsDrawing      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPresentation = "http://schemas.openxmlformats.org/presentationml/2006/main"

	pmlNamespaces = `xmlns:a="` + nsDrawing + `" xmlns:r="` + nsRelationships + `" xmlns:p="` + nsPresentation + `"`

	ctRels = `<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>`
)

type part struct {
	name string
	body string
}

// StarterFlowTemplate returns a minimal .docx template that uses every flow
// variable: title, subtitle, date and a paragraph loop over the sections.
func StarterFlowTemplate() ([]byte, error) {
	return buildPackage([]part{
		{ooxml.ContentTypesPart, `<Types xmlns="` + ooxml.NSContentType + `">` + ctRels +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
			`</Types>`},
		{"_rels/.rels", rels(rel("rId1", ooxml.RelOfficeDocument, "word/document.xml"))},
		{"word/_rels/document.xml.rels", rels(rel("rId1", ooxml.RelStyles, "styles.xml"))},
		{"word/styles.xml", starterStyles},
		{"word/document.xml", starterDocument},
	})
}

// StarterSlidesTemplate returns a minimal .pptx template with one master, a
// title layout and a title-and-content layout.
func StarterSlidesTemplate() ([]byte, error) {
	const pml = "application/vnd.openxmlformats-officedocument.presentationml."
	return buildPackage([]part{
		{ooxml.ContentTypesPart, `<Types xmlns="` + ooxml.NSContentType + `">` + ctRels +
			`<Override PartName="/ppt/presentation.xml" ContentType="` + pml + `presentation.main+xml"/>` +
			`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="` + pml + `slideMaster+xml"/>` +
			`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="` + pml + `slideLayout+xml"/>` +
			`<Override PartName="/ppt/slideLayouts/slideLayout2.xml" ContentType="` + pml + `slideLayout+xml"/>` +
			`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>` +
			`</Types>`},
		{"_rels/.rels", rels(rel("rId1", ooxml.RelOfficeDocument, "ppt/presentation.xml"))},
		{"ppt/presentation.xml", `<p:presentation ` + pmlNamespaces + `>` +
			`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>` +
			`<p:sldSz cx="9144000" cy="6858000" type="screen4x3"/><p:notesSz cx="6858000" cy="9144000"/>` +
			`</p:presentation>`},
		{"ppt/_rels/presentation.xml.rels", rels(
			rel("rId1", ooxml.RelSlideMaster, "slideMasters/slideMaster1.xml"),
			rel("rId2", ooxml.RelTheme, "theme/theme1.xml"),
		)},
		{"ppt/slideMasters/slideMaster1.xml", `<p:sldMaster ` + pmlNamespaces + `>` +
			`<p:cSld>` + spTree(
				textShape(2, "Title Placeholder 1", `type="title"`, 457200, 274638, 8229600, 1143000),
				textShape(3, "Text Placeholder 2", `type="body" idx="1"`, 457200, 1600200, 8229600, 4525963),
			) + `</p:cSld>` +
			`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
			`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/><p:sldLayoutId id="2147483650" r:id="rId2"/></p:sldLayoutIdLst>` +
			`</p:sldMaster>`},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", rels(
			rel("rId1", ooxml.RelSlideLayout, "../slideLayouts/slideLayout1.xml"),
			rel("rId2", ooxml.RelSlideLayout, "../slideLayouts/slideLayout2.xml"),
			rel("rId3", ooxml.RelTheme, "../theme/theme1.xml"),
		)},
		{"ppt/slideLayouts/slideLayout1.xml", `<p:sldLayout ` + pmlNamespaces + ` type="title" preserve="1">` +
			`<p:cSld name="Title Slide">` + spTree(
				textShape(2, "Title 1", `type="ctrTitle"`, 685800, 2130425, 7772400, 1470025),
				textShape(3, "Subtitle 2", `type="subTitle" idx="1"`, 1371600, 3886200, 6400800, 1752600),
			) + `</p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", rels(rel("rId1", ooxml.RelSlideMaster, "../slideMasters/slideMaster1.xml"))},
		{"ppt/slideLayouts/slideLayout2.xml", `<p:sldLayout ` + pmlNamespaces + ` type="obj" preserve="1">` +
			`<p:cSld name="Title and Content">` + spTree(
				textShape(2, "Title 1", `type="title"`, 457200, 274638, 8229600, 1143000),
				textShape(3, "Content Placeholder 2", `idx="1"`, 457200, 1600200, 8229600, 4525963),
				textShape(4, "Slide Number Placeholder 3", `type="sldNum" sz="quarter" idx="12"`, 6553200, 6356350, 2133600, 365125),
			) + `</p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`},
		{"ppt/slideLayouts/_rels/slideLayout2.xml.rels", rels(rel("rId1", ooxml.RelSlideMaster, "../slideMasters/slideMaster1.xml"))},
		{"ppt/theme/theme1.xml", starterTheme},
	})
}

func buildPackage(parts []part) ([]byte, error) {
	pkg := ooxml.New()
	for _, p := range parts {
		pkg.SetPart(p.name, []byte(ooxml.XMLHeader+p.body))
	}
	return pkg.Bytes()
}

func rels(entries ...string) string {
	return `<Relationships xmlns="` + ooxml.NSPackageRels + `">` + strings.Join(entries, "") + `</Relationships>`
}

func rel(id, relType, target string) string {
	return `<Relationship Id="` + id + `" Type="` + relType + `" Target="` + target + `"/>`
}

func spTree(shapes ...string) string {
	return `<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		strings.Join(shapes, "") + `</p:spTree>`
}

func textShape(id int, name, ph string, x, y, cx, cy int) string {
	return `<p:sp><p:nvSpPr><p:cNvPr id="` + strconv.Itoa(id) + `" name="` + name + `"/>` +
		`<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph ` + ph + `/></p:nvPr></p:nvSpPr>` +
		`<p:spPr><a:xfrm><a:off x="` + strconv.Itoa(x) + `" y="` + strconv.Itoa(y) + `"/><a:ext cx="` + strconv.Itoa(cx) + `" cy="` + strconv.Itoa(cy) + `"/></a:xfrm></p:spPr>` +
		`<p:txBody><a:bodyPr/><a:lstStyle/><a:p/></p:txBody></p:sp>`
}

const starterDocument = `<w:document xmlns:w="` + nsWord + `"><w:body>` +
	`<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>{{ titolo_report }}</w:t></w:r></w:p>` +
	`<w:p><w:pPr><w:pStyle w:val="Subtitle"/></w:pPr><w:r><w:t>{{ sottotitolo_report }}</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>{{ data_odierna }}</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>{%p for s in lista_sezioni %}</w:t></w:r></w:p>` +
	`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>{{ s.titolo }}</w:t></w:r></w:p>` +
	`<w:p><w:pPr><w:jc w:val="both"/></w:pPr><w:r><w:t xml:space="preserve">{{r s.testo }}</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>{%p endfor %}</w:t></w:r></w:p>` +
	`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1417" w:right="1134" w:bottom="1134" w:left="1134" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>` +
	`</w:body></w:document>`

const starterStyles = `<w:styles xmlns:w="` + nsWord + `">` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:rPr><w:sz w:val="22"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:rPr><w:b/><w:sz w:val="56"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Subtitle"><w:name w:val="Subtitle"/><w:basedOn w:val="Normal"/><w:rPr><w:i/><w:sz w:val="32"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:pPr><w:keepNext/><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>` +
	`</w:styles>`

const starterTheme = `<a:theme xmlns:a="` + nsDrawing + `" name="Report"><a:themeElements>` +
	`<a:clrScheme name="Report">` +
	`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1><a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="1F497D"/></a:dk2><a:lt2><a:srgbClr val="EEECE1"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="4F81BD"/></a:accent1><a:accent2><a:srgbClr val="C0504D"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="9BBB59"/></a:accent3><a:accent4><a:srgbClr val="8064A2"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="4BACC6"/></a:accent5><a:accent6><a:srgbClr val="F79646"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="0000FF"/></a:hlink><a:folHlink><a:srgbClr val="800080"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="Report"><a:majorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont></a:fontScheme>` +
	`<a:fmtScheme name="Report">` +
	`<a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst>` +
	`<a:lnStyleLst><a:ln w="9525"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="25400"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="38100"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst>` +
	`<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>` +
	`<a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst>` +
	`</a:fmtScheme></a:themeElements></a:theme>`
