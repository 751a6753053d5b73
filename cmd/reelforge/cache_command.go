package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelforge/internal/logging"
	"reelforge/internal/ttscache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the narration cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every cached narration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if !cfg.TTS.CacheEnabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Narration cache is disabled (tts.cache_enabled = false)")
				return nil
			}
			cache := ttscache.New(cfg.AudioCacheDir(), logging.NewComponentLogger(logger, "cache"))
			removed, err := cache.Purge()
			if err != nil {
				return fmt.Errorf("purge narration cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached files from %s\n", removed, cfg.AudioCacheDir())
			return nil
		},
	})
	return cacheCmd
}
