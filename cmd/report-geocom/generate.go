// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/malpone/report-geocom/internal/extract"
	"github.com/malpone/report-geocom/internal/generate"
	"github.com/malpone/report-geocom/internal/secrets"
	"github.com/malpone/report-geocom/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a Word report or a PowerPoint deck from notes",
	Long: `Generate reads notes from --input (or stdin), asks the extraction service
for a structured report, and renders it into the configured template.

--format flow produces Report_Finale.docx; --format slides produces
Presentazione_Finale.pptx. The API key is taken from --api-key, then
REPORT_GEOCOM_API_KEY or the api_key config entry, then .secrets/.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("format", "f", string(types.FormatFlow), "output format: flow (docx) or slides (pptx)")
	generateCmd.Flags().StringP("input", "i", "", "file with the notes (default: stdin)")
	generateCmd.Flags().StringP("output", "o", "", `output path, "-" for stdout (default: <output.dir>/<file name>)`)
	generateCmd.Flags().String("api-key", "", "API key for the extraction service")
	generateCmd.Flags().Bool("preview", false, "print the extracted report as YAML on stderr")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := types.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	inputPath, _ := cmd.Flags().GetString("input")
	text, err := readInput(inputPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	apiKeyFlag, _ := cmd.Flags().GetString("api-key")
	apiKey := resolveAPIKey(apiKeyFlag, viper.GetString("api_key"), cfg.Extraction.Provider)

	log := slog.Default()
	opts := []generate.Option{generate.WithLogger(log)}
	if preview, _ := cmd.Flags().GetBool("preview"); preview {
		opts = append(opts, generate.WithPreview(func(doc types.ReportDocument) {
			if err := writePreview(cmd.ErrOrStderr(), doc); err != nil {
				log.Warn("preview failed", "error", err)
			}
		}))
	}
	backends := func(ctx context.Context, key string) (extract.Backend, error) {
		return extract.NewBackend(ctx, cfg.Extraction, key, log)
	}

	art, err := generate.New(cfg, backends, opts...).Generate(cmd.Context(), generate.Request{
		Text:   text,
		Format: format,
		APIKey: apiKey,
	})
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	path, err := writeArtifact(art, output, cfg.Output.Dir, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", path, len(art.Data))
	}
	return nil
}

// resolveAPIKey applies the key precedence: flag, then environment or
// config, then the provider's key file in .secrets/.
func resolveAPIKey(flag, configured string, provider types.Provider) string {
	if flag != "" {
		return flag
	}
	return secretDefault(secrets.KeyFile(string(provider)), configured)
}

// readInput returns the notes from path, or from stdin when path is empty
// or "-". Non-text content is rejected.
func readInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	if len(data) > 0 {
		if err := checkText(data); err != nil {
			return "", err
		}
	}
	return string(data), nil
}

func checkText(data []byte) error {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return nil
		}
	}
	return fmt.Errorf("input is %s, expected plain text", detected.String())
}

// writeArtifact stores the document and returns the path written, or ""
// when it went to stdout.
func writeArtifact(art *types.Artifact, output, dir string, stdout io.Writer) (string, error) {
	if output == "-" {
		if _, err := stdout.Write(art.Data); err != nil {
			return "", fmt.Errorf("writing %s to stdout: %w", art.Name, err)
		}
		return "", nil
	}
	path := output
	if path == "" {
		path = filepath.Join(dir, art.Name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func writePreview(w io.Writer, doc types.ReportDocument) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
