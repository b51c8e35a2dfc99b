// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// DefaultTitle is used when the extraction result carries no usable title.
const DefaultTitle = "Report"

// Format selects the output document family.
type Format string

const (
	// FormatFlow is a paragraph-oriented word-processor report (.docx).
	FormatFlow Format = "flow"

	// FormatSlides is a layout-oriented slide deck (.pptx).
	FormatSlides Format = "slides"
)

// ParseFormat maps user input onto a Format. It accepts the canonical names
// and the document-family aliases word/docx and ppt/pptx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flow", "word", "docx":
		return FormatFlow, nil
	case "slides", "ppt", "pptx":
		return FormatSlides, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use flow or slides", s)
	}
}

// FileName returns the fixed output file name for the format.
func (f Format) FileName() string {
	if f == FormatSlides {
		return "Presentazione_Finale.pptx"
	}
	return "Report_Finale.docx"
}

// MIMEType returns the standard MIME type of the format's document family.
func (f Format) MIMEType() string {
	if f == FormatSlides {
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	}
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// Section is one titled block of the report. Body may contain emphasis
// markup and embedded line breaks.
type Section struct {
	// Heading is the section title, rendered verbatim.
	Heading string `json:"titolo" yaml:"titolo"`

	// Body is raw text with *italic*, **bold** and ***bold-italic*** spans.
	Body string `json:"testo" yaml:"testo"`
}

// ReportDocument is the renderer-agnostic form of the report content.
// Renderers only read it.
type ReportDocument struct {
	Title         string    `json:"titolo_report" yaml:"titolo_report"`
	Subtitle      string    `json:"sottotitolo_report" yaml:"sottotitolo_report"`
	GeneratedDate string    `json:"data_odierna" yaml:"data_odierna"`
	Sections      []Section `json:"lista_sezioni" yaml:"lista_sezioni"`
}

// Artifact is a rendered document ready for delivery.
type Artifact struct {
	Name     string
	MIMEType string
	Data     []byte
}
