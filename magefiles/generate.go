//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Generate groups targets that run the CLI against a notes file.
type Generate mg.Namespace

// Report renders notes into output/Report_Finale.docx.
func (Generate) Report(notes string) error {
	return runGenerate("flow", notes)
}

// Slides renders notes into output/Presentazione_Finale.pptx.
func (Generate) Slides(notes string) error {
	return runGenerate("slides", notes)
}

func runGenerate(format, notes string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "generate", "--format", format, "--input", notes, "--output", filepath.Join("output", outputName(format)))
}

func outputName(format string) string {
	if format == "slides" {
		return "Presentazione_Finale.pptx"
	}
	return "Report_Finale.docx"
}
