package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or check reelforge.toml",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented starter reelforge.toml",
		Long:        "Writes the built-in sample settings. Existing files are left alone unless --force is given.",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !force {
				if err := refuseExisting(target); err != nil {
					return err
				}
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("prepare %s: %w", filepath.Dir(target), err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write starter config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Starter config written: %s\n", target)
			fmt.Fprintln(out, "Next: point paths.background_dir at your .mp4 clips and run `reelforge doctor`.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the file (default: per-user config path)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace a file that already exists")
	return cmd
}

func initTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("locate default config: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(raw)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", raw, err)
	}
	return path, nil
}

func refuseExisting(target string) error {
	_, err := os.Stat(target)
	switch {
	case err == nil:
		return fmt.Errorf("%s already exists; pass --force to replace it", target)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("inspect %s: %w", target, err)
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load, check and summarise the active settings",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("create working directories: %w", err)
			}

			out := cmd.OutOrStdout()
			source := resolved
			if !exists {
				source += " (missing, built-in defaults)"
			}
			fmt.Fprintf(out, "Source: %s\n", source)
			writeSettingsSummary(out, cfg)
			fmt.Fprintln(out, "Settings OK")
			return nil
		},
	}
}

func writeSettingsSummary(out io.Writer, cfg *config.Config) {
	topic := cfg.Notifications.NtfyTopic
	if topic == "" {
		topic = "disabled"
	}
	rows := [][]string{
		{"speech backend", cfg.TTSURL()},
		{"voice", cfg.TTS.Voice},
		{"output dir", cfg.Paths.OutputDir},
		{"frame", fmt.Sprintf("%dx%d @ %d fps", cfg.Render.Width, cfg.Render.Height, cfg.Render.FPS)},
		{"merge words", quotedSet(cfg.Captions.MergeWords)},
		{"allowed punctuation", quotedSet(cfg.Captions.AllowedPunctuation)},
		{"removed punctuation", quotedSet(cfg.Captions.RemovedPunctuation)},
		{"srt sidecar", strconv.FormatBool(cfg.Captions.WriteSRT)},
		{"ntfy", topic},
	}
	fmt.Fprint(out, renderTable([]string{"Setting", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
}

func quotedSet(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return strings.Join(quoted, " ")
}
