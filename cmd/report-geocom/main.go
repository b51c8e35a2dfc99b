// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the report-geocom CLI.
// It turns free-form notes into a Word report or a PowerPoint deck built on
// the company templates.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/malpone/report-geocom/internal/secrets"
	"github.com/malpone/report-geocom/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "REPORT_GEOCOM"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if set, or the secret value for key otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the report-geocom CLI.
var rootCmd = &cobra.Command{
	Use:   "report-geocom",
	Short: "Turn meeting notes into formatted reports and presentations",
	Long: `report-geocom sends unstructured notes to a text-understanding service,
which returns a structured report (title, subtitle, sections). The report is
then rendered into the company Word template or PowerPoint template.

Use "generate" to produce a document, "templates" to write starter templates
that show the expected placeholders and layouts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		setupLogging(verbose)

		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", secrets.Names(s))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./report-geocom.yaml or ~/.config/report-geocom/report-geocom.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("report-geocom")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "report-geocom"))
		}
	}

	setDefaults(viper.GetViper())
	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every configuration key so that environment
// variables reach Unmarshal.
func setDefaults(v *viper.Viper) {
	d := types.DefaultAppConfig()
	v.SetDefault("extraction.provider", string(d.Extraction.Provider))
	v.SetDefault("extraction.model", d.Extraction.Model)
	v.SetDefault("extraction.max_retries", d.Extraction.MaxRetries)
	v.SetDefault("extraction.timeout", d.Extraction.Timeout)
	v.SetDefault("templates.flow", d.Templates.Flow)
	v.SetDefault("templates.slides", d.Templates.Slides)
	v.SetDefault("slides.banner", d.Slides.Banner)
	v.SetDefault("date.locale", d.Date.Locale)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("api_key", "")
}

// bindEnv maps keys onto REPORT_GEOCOM_* variables, e.g. extraction.model
// onto REPORT_GEOCOM_EXTRACTION_MODEL.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadConfig decodes the configuration from v.
func loadConfig(v *viper.Viper) (types.AppConfig, error) {
	cfg := types.DefaultAppConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

// setupLogging installs a text handler on stderr. --verbose wins over the
// configured level.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
