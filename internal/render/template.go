// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render materialises a types.ReportDocument into an Office Open XML
// document using a pre-authored template: a .docx report (Flow) or a .pptx
// presentation (Slides). Templates are read-only input; every call works on
// its own in-memory copy.
package render

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/malpone/report-geocom/internal/ooxml"
)

// TemplateMissingError reports an absent template asset.
type TemplateMissingError struct {
	Path string
}

func (e *TemplateMissingError) Error() string {
	return fmt.Sprintf("template %s not found", e.Path)
}

// Unwrap lets callers test for fs.ErrNotExist.
func (e *TemplateMissingError) Unwrap() error { return fs.ErrNotExist }

// RenderError reports a template that cannot be bound to the document:
// unknown placeholders, template engine failures, or a broken package.
type RenderError struct {
	Template string
	Reason   string
	Err      error
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("rendering %s: %s", e.Template, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RenderError) Unwrap() error { return e.Err }

// Template identifies a template asset. Data, when set, is used instead of
// reading Path.
type Template struct {
	Path string
	Data []byte
}

// open returns a fresh in-memory package for the template.
func (t Template) open() (*ooxml.Package, error) {
	data := t.Data
	if data == nil {
		var err error
		data, err = os.ReadFile(t.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, &TemplateMissingError{Path: t.Path}
			}
			return nil, fmt.Errorf("reading template %s: %w", t.Path, err)
		}
	}
	pkg, err := ooxml.Read(data)
	if err != nil {
		return nil, &RenderError{Template: t.Path, Reason: "invalid package", Err: err}
	}
	return pkg, nil
}
