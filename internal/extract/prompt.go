// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/tyler-sommer/stick"

	"github.com/malpone/report-geocom/pkg/types"
)

//go:embed prompts/*.twig
var promptFS embed.FS

// Prompts renders the instruction sent to the extraction service: a fixed
// base template, a format-specific addendum, and the user's notes.
type Prompts struct {
	env       *stick.Env
	templates map[string]string
}

// NewPrompts loads the embedded prompt templates.
func NewPrompts() (*Prompts, error) {
	return loadPrompts(promptFS, "prompts")
}

func loadPrompts(fsys fs.FS, dir string) (*Prompts, error) {
	p := &Prompts{
		env:       stick.New(nil),
		templates: make(map[string]string),
	}
	err := fs.WalkDir(fsys, dir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(name, ".twig") {
			return nil
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		p.templates[strings.TrimSuffix(path.Base(name), ".twig")] = string(content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading prompt templates: %w", err)
	}
	for _, tag := range []string{"base", "request", string(types.FormatFlow), string(types.FormatSlides)} {
		if _, ok := p.templates[tag]; !ok {
			return nil, fmt.Errorf("prompt template %q not found", tag)
		}
	}
	return p, nil
}

// Render builds the full prompt for rawText in the given format.
func (p *Prompts) Render(rawText string, format types.Format) (string, error) {
	base, err := p.execute("base", nil)
	if err != nil {
		return "", err
	}
	addendum, err := p.execute(string(format), nil)
	if err != nil {
		return "", err
	}
	return p.execute("request", map[string]stick.Value{
		"base":     strings.TrimSpace(base),
		"addendum": strings.TrimSpace(addendum),
		"text":     rawText,
	})
}

func (p *Prompts) execute(tag string, vars map[string]stick.Value) (string, error) {
	tpl, ok := p.templates[tag]
	if !ok {
		return "", fmt.Errorf("prompt template %q not found", tag)
	}
	if vars == nil {
		vars = map[string]stick.Value{}
	}
	var out strings.Builder
	if err := p.env.Execute(tpl, &out, vars); err != nil {
		return "", fmt.Errorf("execute %q: %w", tag, err)
	}
	return out.String(), nil
}
