// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/malpone/report-geocom/internal/render"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Write starter Word and PowerPoint templates",
	Long: `Templates writes minimal template_aziendale.docx and template_aziendale.pptx
files. The Word template shows the expected tags (titolo_report,
sottotitolo_report, data_odierna, lista_sezioni); the PowerPoint template has
a title layout and a title-and-content layout. Existing files are kept unless
--force is given.`,
	Args: cobra.NoArgs,
	RunE: runTemplates,
}

func init() {
	templatesCmd.Flags().String("dir", ".", "directory to write the templates to")
	templatesCmd.Flags().Bool("force", false, "overwrite existing templates")

	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	force, _ := cmd.Flags().GetBool("force")

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	return writeStarters(dir, filepath.Base(cfg.Templates.Flow), filepath.Base(cfg.Templates.Slides), force, cmd.ErrOrStderr())
}

func writeStarters(dir, flowName, slidesName string, force bool, status io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	starters := []struct {
		name  string
		build func() ([]byte, error)
	}{
		{flowName, render.StarterFlowTemplate},
		{slidesName, render.StarterSlidesTemplate},
	}
	for _, s := range starters {
		path := filepath.Join(dir, s.name)
		if _, err := os.Stat(path); err == nil && !force {
			fmt.Fprintf(status, "Skipping %s: already exists\n", path)
			continue
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}

		data, err := s.build()
		if err != nil {
			return fmt.Errorf("building %s: %w", s.name, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(status, "Wrote %s\n", path)
	}
	return nil
}
